package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawdata"
	qb "github.com/riskibarqy/fpl-dataset/internal/platform/querybuilder"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(errors.New("connection refused")) {
		t.Fatalf("expected unrelated error to be found")
	}
}

func TestHintMissingSchema(t *testing.T) {
	t.Run("adds hint for undefined table", func(t *testing.T) {
		err := hintMissingSchema(&pq.Error{Code: "42P01", Message: `relation "merged_gameweeks" does not exist`})
		if !strings.Contains(err.Error(), "migration up") {
			t.Fatalf("expected migration hint, got %v", err)
		}
		var pqErr *pq.Error
		if !errors.As(err, &pqErr) {
			t.Fatalf("expected pq error to stay unwrappable")
		}
	})

	t.Run("keeps other errors", func(t *testing.T) {
		in := &pq.Error{Code: "23505", Message: "duplicate key"}
		if got := hintMissingSchema(in); got != error(in) {
			t.Fatalf("expected error unchanged, got %v", got)
		}
	})
}

func TestRawDataInsertModels_LastItemWins(t *testing.T) {
	first := time.Date(2024, 8, 16, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	got := rawDataInsertModels([]rawdata.Payload{
		{Source: "fpl", EntityType: "fixtures", EntityKey: "/fixtures/", PayloadHash: "a", FetchedAt: first},
		{Source: "fpl", EntityType: "bootstrap_static", EntityKey: "/bootstrap-static/", PayloadHash: "b", FetchedAt: first},
		{Source: "fpl", EntityType: "fixtures", EntityKey: "/fixtures/", PayloadHash: "c", FetchedAt: second},
	})

	if len(got) != 2 {
		t.Fatalf("expected duplicate key to collapse, got %d models", len(got))
	}
	if got[0].PayloadHash != "c" || !got[0].FetchedAt.Equal(second) {
		t.Fatalf("expected later payload to replace earlier one in place, got %+v", got[0])
	}
	if got[1].EntityKey != "/bootstrap-static/" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestRawDataColumnCountMatchesModel(t *testing.T) {
	cols, _, err := qb.ColumnsAndValues(rawDataPayloadInsertModel{})
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if len(cols) != rawDataColumnCount {
		t.Fatalf("rawDataColumnCount=%d but model has %d columns", rawDataColumnCount, len(cols))
	}
}

func TestChunkModels(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	chunks := chunkModels(items, 2)
	if len(chunks) != 3 || len(chunks[2]) != 1 || chunks[2][0] != 5 {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
	if got := chunkModels([]int{}, 2); len(got) != 0 {
		t.Fatalf("expected no chunks, got %v", got)
	}
}

func TestMergedModelColumnsMatchDataset(t *testing.T) {
	cols, _, err := qb.ColumnsAndValues(mergedGameweekModel{})
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if strings.Join(cols, ",") != strings.Join(fpl.MergedColumns, ",") {
		t.Fatalf("merged model columns drifted:\nmodel:   %v\ndataset: %v", cols, fpl.MergedColumns)
	}
}
