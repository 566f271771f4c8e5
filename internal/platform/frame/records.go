package frame

import (
	"sort"
	"strings"
)

// FromRecords builds a frame from decoded JSON objects. Columns listed in
// leading come first (when present), the rest follow in lexical order so the
// layout does not depend on map iteration.
func FromRecords(records []map[string]any, leading ...string) *Frame {
	keys := make(map[string]struct{})
	for _, record := range records {
		for key := range record {
			if strings.TrimSpace(key) == "" {
				continue
			}
			keys[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(keys))
	for _, key := range leading {
		if _, ok := keys[key]; !ok {
			continue
		}
		columns = append(columns, key)
		delete(keys, key)
	}
	rest := make([]string, 0, len(keys))
	for key := range keys {
		rest = append(rest, key)
	}
	sort.Strings(rest)
	columns = append(columns, rest...)

	out := MustNew(columns...)
	out.rows = make([][]any, 0, len(records))
	for _, record := range records {
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = Normalize(record[col])
		}
		out.rows = append(out.rows, row)
	}
	return out
}
