package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	qb "github.com/riskibarqy/fpl-dataset/internal/platform/querybuilder"
)

const mergedTable = fpl.TableMerged

// MergedRepository exports the merged dataset into merged_gameweeks.
type MergedRepository struct {
	db *sqlx.DB
}

func NewMergedRepository(db *sqlx.DB) *MergedRepository {
	return &MergedRepository{db: db}
}

func (r *MergedRepository) Name() string {
	return "postgres"
}

// WriteMerged replaces the table contents in one transaction: the old rows are
// deleted and the new ones streamed with COPY. Readers see either the previous
// dataset or the new one.
func (r *MergedRepository) WriteMerged(ctx context.Context, rows []fpl.MergedRow) error {
	columns, _, err := qb.ColumnsAndValues(mergedGameweekModel{})
	if err != nil {
		return fmt.Errorf("merged model columns: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx write merged: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+mergedTable); err != nil {
		return fmt.Errorf("clear %s: %w", mergedTable, hintMissingSchema(err))
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(mergedTable, columns...))
	if err != nil {
		return fmt.Errorf("prepare copy into %s: %w", mergedTable, hintMissingSchema(err))
	}
	for i, row := range rows {
		_, values, err := qb.ColumnsAndValues(mergedModelFromRow(row))
		if err != nil {
			_ = stmt.Close()
			return fmt.Errorf("merged row %d values: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy merged row %d: %w", i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy into %s: %w", mergedTable, err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy into %s: %w", mergedTable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write merged tx: %w", err)
	}
	return nil
}
