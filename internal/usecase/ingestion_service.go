package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawdata"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
	"github.com/riskibarqy/fpl-dataset/internal/platform/logging"
)

const defaultRawSource = "fpl"

type IngestionConfig struct {
	HistoryMaxWorkers      int
	HistoryRequestInterval time.Duration
}

// IngestionService fetches FPL endpoints and stores each response as a
// table snapshot. Raw responses are archived when a rawdata repository is
// configured.
type IngestionService struct {
	provider    FPLProvider
	tables      rawtable.Repository
	rawDataRepo rawdata.Repository
	cfg         IngestionConfig
	logger      *logging.Logger
}

func NewIngestionService(
	provider FPLProvider,
	tables rawtable.Repository,
	rawDataRepo rawdata.Repository,
	cfg IngestionConfig,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		provider:    provider,
		tables:      tables,
		rawDataRepo: rawDataRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

type BootstrapResult struct {
	Players int
	Teams   int
	Events  int
}

func (s *IngestionService) SyncBootstrap(ctx context.Context) (BootstrapResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncBootstrap")
	defer span.End()

	data, err := s.provider.FetchBootstrap(ctx)
	if err != nil {
		return BootstrapResult{}, err
	}
	s.archive(ctx, data.RawPayloads)

	saves := []struct {
		ref     rawtable.Ref
		records []map[string]any
		leading []string
	}{
		{rawtable.BootstrapPlayers, data.Players, []string{fpl.ColID}},
		{rawtable.BootstrapTeams, data.Teams, []string{fpl.ColID, fpl.ColName}},
		{rawtable.BootstrapEvents, data.Events, []string{fpl.ColID}},
	}
	for _, item := range saves {
		if err := s.save(ctx, item.ref, frame.FromRecords(item.records, item.leading...)); err != nil {
			return BootstrapResult{}, err
		}
	}

	result := BootstrapResult{
		Players: len(data.Players),
		Teams:   len(data.Teams),
		Events:  len(data.Events),
	}
	s.logger.InfoContext(ctx, "bootstrap synced", "players", result.Players, "teams", result.Teams, "events", result.Events)
	return result, nil
}

func (s *IngestionService) SyncFixtures(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncFixtures")
	defer span.End()

	data, err := s.provider.FetchFixtures(ctx)
	if err != nil {
		return 0, err
	}
	s.archive(ctx, data.RawPayloads)

	table := frame.FromRecords(data.Records, fpl.ColID, fpl.ColEvent, fpl.ColTeamHome, fpl.ColTeamAway)
	if err := s.save(ctx, rawtable.Fixtures, table); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "fixtures synced", "rows", table.Len())
	return table.Len(), nil
}

func (s *IngestionService) SyncEventLive(ctx context.Context, gameweek int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncEventLive")
	defer span.End()

	if !fpl.ValidGameweek(gameweek) {
		return 0, fmt.Errorf("%w: gameweek must be between %d and %d, got %d", ErrInvalidInput, fpl.MinGameweek, fpl.MaxGameweek, gameweek)
	}

	data, err := s.provider.FetchEventLive(ctx, gameweek)
	if err != nil {
		return 0, err
	}
	s.archive(ctx, data.RawPayloads)

	table := frame.FromRecords(data.Records, fpl.ColPlayerID, fpl.ColRound)
	if err := s.save(ctx, rawtable.EventLive(gameweek), table); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "event live synced", "gameweek", gameweek, "rows", table.Len())
	return table.Len(), nil
}

// UpsertRawPayloads stamps source and payload hash on each item and stores
// them. It is a no-op without a rawdata repository.
func (s *IngestionService) UpsertRawPayloads(ctx context.Context, source string, items []rawdata.Payload) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertRawPayloads")
	defer span.End()

	if s.rawDataRepo == nil || len(items) == 0 {
		return nil
	}

	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		source = defaultRawSource
	}

	cleaned := make([]rawdata.Payload, 0, len(items))
	for _, item := range items {
		item.Source = source
		item.EntityType = strings.ToLower(strings.TrimSpace(item.EntityType))
		item.EntityKey = strings.TrimSpace(item.EntityKey)
		item.PayloadJSON = strings.TrimSpace(item.PayloadJSON)
		if item.EntityType == "" || item.EntityKey == "" || item.PayloadJSON == "" {
			return fmt.Errorf("%w: entity_type, entity_key and payload are required", ErrInvalidInput)
		}
		if item.FetchedAt.IsZero() {
			item.FetchedAt = time.Now().UTC()
		}

		hash := sha256.Sum256([]byte(item.PayloadJSON))
		item.PayloadHash = hex.EncodeToString(hash[:])
		cleaned = append(cleaned, item)
	}

	if err := s.rawDataRepo.UpsertMany(ctx, cleaned); err != nil {
		return fmt.Errorf("upsert raw payloads: %w", err)
	}
	return nil
}

// archive logs archive failures instead of failing the sync.
func (s *IngestionService) archive(ctx context.Context, items []rawdata.Payload) {
	if err := s.UpsertRawPayloads(ctx, defaultRawSource, items); err != nil {
		s.logger.WarnContext(ctx, "archive raw payloads failed", "count", len(items), "error", err)
	}
}

func (s *IngestionService) save(ctx context.Context, ref rawtable.Ref, table *frame.Frame) error {
	if err := s.tables.Save(ctx, ref, table); err != nil {
		return fmt.Errorf("save table %s: %w", ref, err)
	}
	return nil
}
