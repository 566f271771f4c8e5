package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
)

func TestTableRepository_SaveLoadCopiesData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewTableRepository()

	table := frame.MustNew("id", "name")
	if err := table.Append(int64(10), "Liverpool"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Save(ctx, rawtable.BootstrapTeams, table); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := table.Append(int64(11), "Man City"); err != nil {
		t.Fatalf("append: %v", err)
	}

	loaded, err := repo.Load(ctx, rawtable.BootstrapTeams)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("expected stored snapshot to be unaffected by later appends, got %d rows", loaded.Len())
	}
	if v, _ := loaded.Value(0, "id"); v != "10" {
		t.Fatalf("expected CSV text cell, got %#v", v)
	}
}

func TestTableRepository_LoadMissing(t *testing.T) {
	t.Parallel()

	_, err := NewTableRepository().Load(context.Background(), rawtable.Merged)
	if !errors.Is(err, rawtable.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}

func TestTableRepository_Refs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewTableRepository()
	for _, ref := range []rawtable.Ref{rawtable.Merged, rawtable.Fixtures, rawtable.BootstrapPlayers} {
		if err := repo.Save(ctx, ref, frame.MustNew("id")); err != nil {
			t.Fatalf("save %s: %v", ref, err)
		}
	}

	refs := repo.Refs()
	want := []string{"processed/merged_gameweeks", "raw/bootstrap_players", "raw/fixtures"}
	if len(refs) != len(want) {
		t.Fatalf("unexpected refs: %v", refs)
	}
	for i, ref := range refs {
		if ref.String() != want[i] {
			t.Fatalf("ref %d: got %s want %s", i, ref, want[i])
		}
	}
}
