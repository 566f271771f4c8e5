package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/fpl-dataset/internal/domain/dataset"
	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
	"github.com/riskibarqy/fpl-dataset/internal/platform/logging"
	"golang.org/x/sync/errgroup"
)

// MergedSink receives the merged dataset after it has been saved to the
// table store.
type MergedSink interface {
	Name() string
	WriteMerged(ctx context.Context, rows []fpl.MergedRow) error
}

type DatasetService struct {
	tables rawtable.Repository
	sinks  []MergedSink
	logger *logging.Logger
}

func NewDatasetService(tables rawtable.Repository, sinks []MergedSink, logger *logging.Logger) *DatasetService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DatasetService{
		tables: tables,
		sinks:  sinks,
		logger: logger,
	}
}

// BuildInput selects the stats source. With no gameweeks the merge reads
// gameweeks_current_season; otherwise it stacks the listed gw_NN_live tables.
type BuildInput struct {
	LiveGameweeks []int
}

type BuildResult struct {
	Report   dataset.Report
	Output   rawtable.Ref
	Exported []string
	Duration time.Duration
}

// Build loads the merge inputs, merges them and saves merged_gameweeks. A
// missing input table aborts the build before anything is written.
func (s *DatasetService) Build(ctx context.Context, input BuildInput) (BuildResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DatasetService.Build")
	defer span.End()

	start := time.Now()
	gameweeks, err := normalizeGameweeks(input.LiveGameweeks)
	if err != nil {
		return BuildResult{}, err
	}

	var in dataset.Input
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		in.Stats, err = s.loadStats(groupCtx, gameweeks)
		return err
	})
	group.Go(func() (err error) {
		in.Players, err = s.load(groupCtx, rawtable.BootstrapPlayers)
		return err
	})
	group.Go(func() (err error) {
		in.Teams, err = s.load(groupCtx, rawtable.BootstrapTeams)
		return err
	})
	group.Go(func() (err error) {
		in.Fixtures, err = s.load(groupCtx, rawtable.Fixtures)
		return err
	})
	if err := group.Wait(); err != nil {
		return BuildResult{}, err
	}

	merged, report, err := dataset.Merge(in)
	if err != nil {
		if errors.Is(err, dataset.ErrMissingColumn) || errors.Is(err, dataset.ErrMissingInput) {
			return BuildResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return BuildResult{}, fmt.Errorf("merge dataset: %w", err)
	}
	s.logReport(ctx, report)

	if err := s.tables.Save(ctx, rawtable.Merged, merged); err != nil {
		return BuildResult{}, fmt.Errorf("save table %s: %w", rawtable.Merged, err)
	}

	result := BuildResult{
		Report: report,
		Output: rawtable.Merged,
	}
	if len(s.sinks) > 0 {
		rows := dataset.MergedRows(merged)
		for _, sink := range s.sinks {
			if err := sink.WriteMerged(ctx, rows); err != nil {
				return BuildResult{}, fmt.Errorf("export merged dataset to %s: %w", sink.Name(), err)
			}
			result.Exported = append(result.Exported, sink.Name())
		}
	}

	result.Duration = time.Since(start)
	s.logger.InfoContext(ctx, "merged dataset saved",
		"table", rawtable.Merged.String(),
		"rows", report.MergedRows,
		"exported", result.Exported,
		"duration", result.Duration,
	)
	return result, nil
}

func (s *DatasetService) loadStats(ctx context.Context, gameweeks []int) (*frame.Frame, error) {
	if len(gameweeks) == 0 {
		return s.load(ctx, rawtable.Gameweeks)
	}

	parts := make([]*frame.Frame, 0, len(gameweeks))
	for _, gw := range gameweeks {
		part, err := s.load(ctx, rawtable.EventLive(gw))
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return frame.Concat(parts...), nil
}

func (s *DatasetService) load(ctx context.Context, ref rawtable.Ref) (*frame.Frame, error) {
	table, err := s.tables.Load(ctx, ref)
	if errors.Is(err, rawtable.ErrTableNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMissingTable, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", ref, err)
	}
	return table, nil
}

func (s *DatasetService) logReport(ctx context.Context, report dataset.Report) {
	s.logger.InfoContext(ctx, "dataset merged",
		"stat_rows", report.StatRows,
		"merged_rows", report.MergedRows,
		"unmatched_fixture_rows", report.UnmatchedFixtureRows,
	)
	if report.DroppedUnknownPlayers > 0 {
		s.logger.WarnContext(ctx, "stat rows dropped for unknown players", "count", report.DroppedUnknownPlayers)
	}
	if report.DuplicatePlayerIDs > 0 || report.DuplicateTeamIDs > 0 || report.DuplicateFixtureKeys > 0 {
		s.logger.WarnContext(ctx, "duplicate join keys ignored, first row kept",
			"player_ids", report.DuplicatePlayerIDs,
			"team_ids", report.DuplicateTeamIDs,
			"fixture_keys", report.DuplicateFixtureKeys,
		)
	}
	if len(report.MissingExpected) > 0 {
		s.logger.WarnContext(ctx, "expected columns missing from inputs", "columns", report.MissingExpected)
	}
}

func normalizeGameweeks(values []int) ([]int, error) {
	if len(values) == 0 {
		return nil, nil
	}
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, gw := range values {
		if !fpl.ValidGameweek(gw) {
			return nil, fmt.Errorf("%w: gameweek must be between %d and %d, got %d", ErrInvalidInput, fpl.MinGameweek, fpl.MaxGameweek, gw)
		}
		if _, ok := seen[gw]; ok {
			continue
		}
		seen[gw] = struct{}{}
		out = append(out, gw)
	}
	sort.Ints(out)
	return out, nil
}
