package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-dataset/internal/domain/rawdata"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	rawdatamock "github.com/riskibarqy/fpl-dataset/internal/mocks/domain/rawdata"
	rawtablemock "github.com/riskibarqy/fpl-dataset/internal/mocks/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
	"github.com/stretchr/testify/mock"
)

func framesWith(rows int, leading ...string) interface{} {
	return mock.MatchedBy(func(f *frame.Frame) bool {
		if f == nil || f.Len() != rows {
			return false
		}
		columns := f.Columns()
		for i, col := range leading {
			if i >= len(columns) || columns[i] != col {
				return false
			}
		}
		return true
	})
}

func TestIngestionService_SyncBootstrap_SavesEachTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tables := rawtablemock.NewRepository(t)
	provider := &fakeProvider{
		bootstrap: ExternalBootstrap{
			Players: []map[string]any{
				{"web_name": "Salah", "id": 100, "team": 10},
				{"web_name": "Haaland", "id": 200, "team": 11},
			},
			Teams:  []map[string]any{{"short_name": "LIV", "name": "Liverpool", "id": 10}},
			Events: []map[string]any{{"id": 1, "finished": true}},
		},
	}

	tables.On("Save", ctx, rawtable.BootstrapPlayers, framesWith(2, "id", "team", "web_name")).Return(nil).Once()
	tables.On("Save", ctx, rawtable.BootstrapTeams, framesWith(1, "id", "name", "short_name")).Return(nil).Once()
	tables.On("Save", ctx, rawtable.BootstrapEvents, framesWith(1, "id")).Return(nil).Once()

	service := NewIngestionService(provider, tables, nil, IngestionConfig{}, nil)
	got, err := service.SyncBootstrap(ctx)
	if err != nil {
		t.Fatalf("sync bootstrap: %v", err)
	}
	if got.Players != 2 || got.Teams != 1 || got.Events != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestIngestionService_SyncBootstrap_SaveFailureStopsSync(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tables := rawtablemock.NewRepository(t)
	provider := &fakeProvider{
		bootstrap: ExternalBootstrap{Players: []map[string]any{{"id": 1}}},
	}
	tables.On("Save", ctx, rawtable.BootstrapPlayers, mock.Anything).Return(errors.New("disk full")).Once()

	service := NewIngestionService(provider, tables, nil, IngestionConfig{}, nil)
	_, err := service.SyncBootstrap(ctx)
	if err == nil || !strings.Contains(err.Error(), "save table raw/bootstrap_players") {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
}

func TestIngestionService_SyncFixtures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tables := rawtablemock.NewRepository(t)
	provider := &fakeProvider{
		fixtures: ExternalRecords{Records: []map[string]any{
			{"team_a": 11, "team_h": 10, "event": 1, "id": 1, "kickoff_time": "2024-08-16T19:00:00Z"},
			{"team_a": 10, "team_h": 11, "event": nil, "id": 2},
		}},
	}
	tables.On("Save", ctx, rawtable.Fixtures, framesWith(2, "id", "event", "team_h", "team_a", "kickoff_time")).Return(nil).Once()

	service := NewIngestionService(provider, tables, nil, IngestionConfig{}, nil)
	rows, err := service.SyncFixtures(ctx)
	if err != nil {
		t.Fatalf("sync fixtures: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 rows, got=%d", rows)
	}
}

func TestIngestionService_SyncEventLive_RejectsGameweekOutsideSeason(t *testing.T) {
	t.Parallel()

	tables := rawtablemock.NewRepository(t)
	service := NewIngestionService(&fakeProvider{}, tables, nil, IngestionConfig{}, nil)

	for _, gw := range []int{-1, 0, 39} {
		if _, err := service.SyncEventLive(context.Background(), gw); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("gameweek %d: expected ErrInvalidInput, got %v", gw, err)
		}
	}
}

func TestIngestionService_SyncEventLive_SavesAndArchives(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tables := rawtablemock.NewRepository(t)
	rawRepo := rawdatamock.NewRepository(t)

	body := `{"elements":[{"id":100,"stats":{"minutes":90}}]}`
	gw := 7
	provider := &fakeProvider{
		live: map[int]ExternalRecords{
			7: {
				Records: []map[string]any{{"minutes": 90, "player_id": int64(100), "round": 7}},
				RawPayloads: []rawdata.Payload{{
					Source:      "FPL",
					EntityType:  rawdata.EntityEventLive,
					EntityKey:   "/event/7/live/",
					Gameweek:    &gw,
					PayloadJSON: body,
				}},
			},
		},
	}

	sum := sha256.Sum256([]byte(body))
	wantHash := hex.EncodeToString(sum[:])
	rawRepo.
		On("UpsertMany", ctx, mock.MatchedBy(func(items []rawdata.Payload) bool {
			if len(items) != 1 {
				return false
			}
			item := items[0]
			return item.Source == "fpl" &&
				item.PayloadHash == wantHash &&
				item.Gameweek != nil && *item.Gameweek == 7 &&
				!item.FetchedAt.IsZero()
		})).
		Return(nil).
		Once()
	tables.On("Save", ctx, rawtable.EventLive(7), framesWith(1, "player_id", "round", "minutes")).Return(nil).Once()

	service := NewIngestionService(provider, tables, rawRepo, IngestionConfig{}, nil)
	rows, err := service.SyncEventLive(ctx, 7)
	if err != nil {
		t.Fatalf("sync event live: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row, got=%d", rows)
	}
}

func TestIngestionService_ArchiveFailureDoesNotFailSync(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tables := rawtablemock.NewRepository(t)
	rawRepo := rawdatamock.NewRepository(t)
	provider := &fakeProvider{
		fixtures: ExternalRecords{
			Records: []map[string]any{{"id": 1}},
			RawPayloads: []rawdata.Payload{{
				EntityType:  rawdata.EntityFixtures,
				EntityKey:   "/fixtures/",
				PayloadJSON: `[{"id":1}]`,
			}},
		},
	}
	rawRepo.On("UpsertMany", ctx, mock.Anything).Return(errors.New("connection refused")).Once()
	tables.On("Save", ctx, rawtable.Fixtures, mock.Anything).Return(nil).Once()

	service := NewIngestionService(provider, tables, rawRepo, IngestionConfig{}, nil)
	if _, err := service.SyncFixtures(ctx); err != nil {
		t.Fatalf("expected archive failure to be tolerated, got %v", err)
	}
}

func TestIngestionService_UpsertRawPayloads(t *testing.T) {
	t.Parallel()

	t.Run("no repository is a no-op", func(t *testing.T) {
		service := NewIngestionService(&fakeProvider{}, nil, nil, IngestionConfig{}, nil)
		err := service.UpsertRawPayloads(context.Background(), "fpl", []rawdata.Payload{{EntityType: "x"}})
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})

	t.Run("rejects incomplete payloads", func(t *testing.T) {
		rawRepo := rawdatamock.NewRepository(t)
		service := NewIngestionService(&fakeProvider{}, nil, rawRepo, IngestionConfig{}, nil)
		err := service.UpsertRawPayloads(context.Background(), "fpl", []rawdata.Payload{
			{EntityType: rawdata.EntityFixtures, EntityKey: "/fixtures/", PayloadJSON: "  "},
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("normalizes and keeps fetch time", func(t *testing.T) {
		ctx := context.Background()
		fetchedAt := time.Date(2024, 8, 17, 10, 0, 0, 0, time.UTC)
		rawRepo := rawdatamock.NewRepository(t)
		rawRepo.
			On("UpsertMany", ctx, mock.MatchedBy(func(items []rawdata.Payload) bool {
				return len(items) == 1 &&
					items[0].Source == "fpl" &&
					items[0].EntityType == "fixtures" &&
					items[0].EntityKey == "/fixtures/" &&
					items[0].FetchedAt.Equal(fetchedAt)
			})).
			Return(nil).
			Once()

		service := NewIngestionService(&fakeProvider{}, nil, rawRepo, IngestionConfig{}, nil)
		err := service.UpsertRawPayloads(ctx, "  ", []rawdata.Payload{
			{EntityType: " Fixtures ", EntityKey: " /fixtures/ ", PayloadJSON: "[]", FetchedAt: fetchedAt},
		})
		if err != nil {
			t.Fatalf("upsert raw payloads: %v", err)
		}
	})
}
