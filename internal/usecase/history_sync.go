package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawdata"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/time/rate"
)

const maxHistoryWorkers = 32

type HistoryResult struct {
	Players      int
	Failed       int
	WorkerCount  int
	GameweekRows int
	SeasonRows   int
	Duration     time.Duration
}

// SyncPlayerHistories fetches every bootstrap player's element summary and
// stores the concatenated current-season history and past-season aggregates.
// Players whose fetch fails are logged and skipped. Rows are ordered by the
// bootstrap player order regardless of worker count.
func (s *IngestionService) SyncPlayerHistories(ctx context.Context) (HistoryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncPlayerHistories")
	defer span.End()

	start := time.Now()
	bootstrap, err := s.provider.FetchBootstrap(ctx)
	if err != nil {
		return HistoryResult{}, err
	}
	s.archive(ctx, bootstrap.RawPayloads)

	ids := playerIDs(bootstrap.Players)
	workerCount := normalizeHistoryWorkerCount(s.cfg.HistoryMaxWorkers, len(ids))
	result := HistoryResult{
		Players:     len(ids),
		WorkerCount: workerCount,
	}

	summaries := make([]*ExternalPlayerSummary, len(ids))
	if len(ids) > 0 {
		failed, err := s.fetchSummaries(ctx, ids, workerCount, summaries)
		if err != nil {
			return HistoryResult{}, err
		}
		result.Failed = failed
	}

	history := make([]*frame.Frame, 0, len(summaries))
	past := make([]*frame.Frame, 0, len(summaries))
	payloads := make([]rawdata.Payload, 0, len(summaries))
	for _, summary := range summaries {
		if summary == nil {
			continue
		}
		history = append(history, frame.FromRecords(summary.History, fpl.ColPlayerID, fpl.ColRound))
		past = append(past, frame.FromRecords(summary.HistoryPast, fpl.ColPlayerID, "season_name"))
		payloads = append(payloads, summary.RawPayloads...)
	}
	s.archive(ctx, payloads)

	gameweeks := frame.Concat(history...)
	seasons := frame.Concat(past...)
	if err := s.save(ctx, rawtable.Gameweeks, gameweeks); err != nil {
		return HistoryResult{}, err
	}
	if err := s.save(ctx, rawtable.Seasons, seasons); err != nil {
		return HistoryResult{}, err
	}

	result.GameweekRows = gameweeks.Len()
	result.SeasonRows = seasons.Len()
	result.Duration = time.Since(start)
	s.logger.InfoContext(ctx, "player histories synced",
		"players", result.Players,
		"failed", result.Failed,
		"workers", result.WorkerCount,
		"gameweek_rows", result.GameweekRows,
		"season_rows", result.SeasonRows,
		"duration", result.Duration,
	)
	return result, nil
}

func (s *IngestionService) fetchSummaries(
	ctx context.Context,
	ids []int64,
	workerCount int,
	out []*ExternalPlayerSummary,
) (int, error) {
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	limiter := newRequestLimiter(s.cfg.HistoryRequestInterval)

	var failed atomic.Int32
	var workers sync.WaitGroup
	for idx, playerID := range ids {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			summary, err := s.fetchSummary(ctx, limiter, playerID)
			if err != nil {
				failed.Add(1)
				if ctx.Err() == nil {
					s.logger.WarnContext(ctx, "player history fetch failed, skipping", "player_id", playerID, "error", err)
				}
				return
			}
			out[idx] = &summary
		}); err != nil {
			workers.Done()
			workers.Wait()
			return 0, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int(failed.Load()), nil
}

func (s *IngestionService) fetchSummary(ctx context.Context, limiter *rate.Limiter, playerID int64) (summary ExternalPlayerSummary, err error) {
	if err := limiter.Wait(ctx); err != nil {
		return ExternalPlayerSummary{}, err
	}

	var catcher panics.Catcher
	catcher.Try(func() {
		summary, err = s.provider.FetchPlayerSummary(ctx, playerID)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return ExternalPlayerSummary{}, fmt.Errorf("fetch player %d: %w", playerID, recovered.AsError())
	}
	return summary, err
}

func newRequestLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func normalizeHistoryWorkerCount(value int, taskCount int) int {
	if value <= 0 {
		value = 1
	}
	if value > maxHistoryWorkers {
		value = maxHistoryWorkers
	}
	if taskCount > 0 && value > taskCount {
		value = taskCount
	}
	return value
}

func playerIDs(players []map[string]any) []int64 {
	out := make([]int64, 0, len(players))
	for _, player := range players {
		id, ok := frame.ToInt(frame.Normalize(player[fpl.ColID]))
		if !ok || id <= 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}
