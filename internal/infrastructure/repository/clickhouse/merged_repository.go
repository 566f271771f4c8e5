package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
)

const insertMergedQuery = `INSERT INTO merged_gameweeks (
	run_id, loaded_at,
	player_id, first_name, second_name, team_name, round,
	minutes, goals_scored, assists, clean_sheets, total_points, now_cost,
	transfers_in, transfers_out, selected_by_percent,
	opponent_team, opponent_difficulty, was_home,
	strength_overall_home, strength_overall_away
)`

// batchConn is the part of driver.Conn the repository uses.
type batchConn interface {
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
}

// MergedRepository appends each merged dataset to merged_gameweeks as a new
// run. Rows of one export share a run_id, so consumers pick the latest run.
type MergedRepository struct {
	conn  batchConn
	now   func() time.Time
	newID func() string
}

func NewMergedRepository(conn driver.Conn) *MergedRepository {
	return newMergedRepository(conn)
}

func newMergedRepository(conn batchConn) *MergedRepository {
	return &MergedRepository{
		conn:  conn,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func (r *MergedRepository) Name() string {
	return "clickhouse"
}

func (r *MergedRepository) WriteMerged(ctx context.Context, rows []fpl.MergedRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertMergedQuery)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	runID := r.newID()
	loadedAt := r.now().UTC()
	for i, row := range rows {
		err = batch.Append(
			runID, loadedAt,
			toNullableInt64(row.PlayerID), row.FirstName, row.SecondName, row.TeamName, toNullableInt32(row.Round),
			toNullableInt32(row.Minutes), toNullableInt32(row.GoalsScored), toNullableInt32(row.Assists),
			toNullableInt32(row.CleanSheets), toNullableInt32(row.TotalPoints), toNullableInt32(row.NowCost),
			toNullableInt64(row.TransfersIn), toNullableInt64(row.TransfersOut), row.SelectedByPercent,
			toNullableInt32(row.OpponentTeam), toNullableInt32(row.OpponentDifficulty), row.WasHome,
			toNullableInt32(row.StrengthOverallHome), toNullableInt32(row.StrengthOverallAway),
		)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append merged row %d: %w", i, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func toNullableInt32(v *int) *int32 {
	if v == nil {
		return nil
	}
	out := int32(*v)
	return &out
}

func toNullableInt64(v *int) *int64 {
	if v == nil {
		return nil
	}
	out := int64(*v)
	return &out
}
