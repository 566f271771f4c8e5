package frame

import (
	"fmt"
	"strings"
)

// Frame is an ordered, column-named table. Cells hold nil (null), int64,
// float64, string or bool. Operations never mutate the receiver.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

func New(columns ...string) (*Frame, error) {
	names := make([]string, len(columns))
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		col = strings.TrimSpace(col)
		if col == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[col]; dup {
			return nil, fmt.Errorf("duplicate column %q", col)
		}
		index[col] = i
		names[i] = col
	}

	return &Frame{
		columns: names,
		index:   index,
	}, nil
}

// MustNew is New for statically known column lists.
func MustNew(columns ...string) *Frame {
	f, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Frame) Columns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.columns...)
}

func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rows)
}

func (f *Frame) Has(column string) bool {
	if f == nil {
		return false
	}
	_, ok := f.index[column]
	return ok
}

// Append adds one row. Values are normalized to the frame cell types.
func (f *Frame) Append(values ...any) error {
	if len(values) != len(f.columns) {
		return fmt.Errorf("row has %d values, expected %d", len(values), len(f.columns))
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = Normalize(v)
	}
	f.rows = append(f.rows, row)
	return nil
}

// Value returns the cell at row i for column. Absent columns report false.
func (f *Frame) Value(i int, column string) (any, bool) {
	if f == nil || i < 0 || i >= len(f.rows) {
		return nil, false
	}
	idx, ok := f.index[column]
	if !ok {
		return nil, false
	}
	return f.rows[i][idx], true
}

// Row returns a copy of row i keyed by column name.
func (f *Frame) Row(i int) map[string]any {
	if f == nil || i < 0 || i >= len(f.rows) {
		return nil
	}
	out := make(map[string]any, len(f.columns))
	for idx, col := range f.columns {
		out[col] = f.rows[i][idx]
	}
	return out
}

// Select keeps the listed columns in the listed order. Columns missing from
// the frame are skipped.
func (f *Frame) Select(columns ...string) *Frame {
	picked := make([]int, 0, len(columns))
	names := make([]string, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		idx, ok := f.index[col]
		if !ok {
			continue
		}
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}
		picked = append(picked, idx)
		names = append(names, col)
	}

	out := MustNew(names...)
	out.rows = make([][]any, 0, len(f.rows))
	for _, row := range f.rows {
		next := make([]any, len(picked))
		for i, idx := range picked {
			next[i] = row[idx]
		}
		out.rows = append(out.rows, next)
	}
	return out
}

// Drop removes the listed columns. Absent columns are ignored.
func (f *Frame) Drop(columns ...string) *Frame {
	drop := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		drop[col] = struct{}{}
	}
	keep := make([]string, 0, len(f.columns))
	for _, col := range f.columns {
		if _, ok := drop[col]; !ok {
			keep = append(keep, col)
		}
	}
	return f.Select(keep...)
}

// Rename renames columns by old->new mapping. Absent columns are ignored.
func (f *Frame) Rename(mapping map[string]string) (*Frame, error) {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		if next, ok := mapping[col]; ok {
			names[i] = next
			continue
		}
		names[i] = col
	}

	out, err := New(names...)
	if err != nil {
		return nil, fmt.Errorf("rename columns: %w", err)
	}
	out.rows = cloneRows(f.rows)
	return out, nil
}

// Map rewrites every cell of column with fn. The frame is returned unchanged
// when the column is absent.
func (f *Frame) Map(column string, fn func(any) any) *Frame {
	out := &Frame{
		columns: f.columns,
		index:   f.index,
		rows:    cloneRows(f.rows),
	}
	idx, ok := f.index[column]
	if !ok {
		return out
	}
	for _, row := range out.rows {
		row[idx] = Normalize(fn(row[idx]))
	}
	return out
}

// WithColumn appends (or replaces) a column with a constant value.
func (f *Frame) WithColumn(column string, value any) *Frame {
	if f.Has(column) {
		return f.Map(column, func(any) any { return value })
	}

	out := MustNew(append(f.Columns(), column)...)
	value = Normalize(value)
	out.rows = make([][]any, 0, len(f.rows))
	for _, row := range f.rows {
		next := make([]any, 0, len(row)+1)
		next = append(next, row...)
		next = append(next, value)
		out.rows = append(out.rows, next)
	}
	return out
}

// Concat stacks frames vertically. The result carries the union of columns in
// order of first appearance; cells for columns a frame lacks are null.
func Concat(frames ...*Frame) *Frame {
	columns := make([]string, 0)
	seen := make(map[string]struct{})
	total := 0
	for _, f := range frames {
		if f == nil {
			continue
		}
		total += len(f.rows)
		for _, col := range f.columns {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			columns = append(columns, col)
		}
	}

	out := MustNew(columns...)
	out.rows = make([][]any, 0, total)
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, row := range f.rows {
			next := make([]any, len(columns))
			for i, col := range columns {
				if idx, ok := f.index[col]; ok {
					next[i] = row[idx]
				}
			}
			out.rows = append(out.rows, next)
		}
	}
	return out
}

func cloneRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}
