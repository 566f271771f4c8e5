package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
)

// TableRepository keeps each table as <root>/<stage>/<name>.csv.
type TableRepository struct {
	root string
}

func NewTableRepository(root string) *TableRepository {
	return &TableRepository{root: filepath.Clean(root)}
}

func (r *TableRepository) Path(ref rawtable.Ref) string {
	return filepath.Join(r.root, string(ref.Stage), ref.Name+".csv")
}

func (r *TableRepository) Load(ctx context.Context, ref rawtable.Ref) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ref.Valid() {
		return nil, fmt.Errorf("invalid table ref %q", ref)
	}

	file, err := os.Open(r.Path(ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", rawtable.ErrTableNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", ref, err)
	}
	defer file.Close()

	table, err := frame.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", ref, err)
	}
	return table, nil
}

// Save replaces the table file. The CSV is written to a temp file in the same
// directory and renamed over the target, so readers never see a partial file.
func (r *TableRepository) Save(ctx context.Context, ref rawtable.Ref, table *frame.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ref.Valid() {
		return fmt.Errorf("invalid table ref %q", ref)
	}

	target := r.Path(ref)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create table dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+ref.Name+"-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", ref, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if err := frame.WriteCSV(tmp, table); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write table %s: %w", ref, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", ref, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("replace table %s: %w", ref, err)
	}
	return nil
}
