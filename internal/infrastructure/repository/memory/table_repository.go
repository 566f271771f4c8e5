package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
)

// TableRepository keeps tables in their CSV form, so a load goes through the
// same decoding as the disk and bucket stores.
type TableRepository struct {
	mu     sync.RWMutex
	tables map[rawtable.Ref][]byte
}

func NewTableRepository() *TableRepository {
	return &TableRepository{tables: make(map[rawtable.Ref][]byte)}
}

func (r *TableRepository) Load(_ context.Context, ref rawtable.Ref) (*frame.Frame, error) {
	r.mu.RLock()
	raw, ok := r.tables[ref]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", rawtable.ErrTableNotFound, ref)
	}

	table, err := frame.ReadCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", ref, err)
	}
	return table, nil
}

func (r *TableRepository) Save(_ context.Context, ref rawtable.Ref, table *frame.Frame) error {
	if !ref.Valid() {
		return fmt.Errorf("invalid table ref %q", ref)
	}
	raw, err := frame.EncodeCSV(table)
	if err != nil {
		return fmt.Errorf("encode table %s: %w", ref, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[ref] = raw
	return nil
}

// Refs lists stored tables ordered by stage then name.
func (r *TableRepository) Refs() []rawtable.Ref {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]rawtable.Ref, 0, len(r.tables))
	for ref := range r.tables {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
