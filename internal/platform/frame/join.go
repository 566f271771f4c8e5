package frame

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
)

// JoinSpec describes an equi-join. Keys on both sides are coerced with ToInt
// before comparison, and a null key never matches. When the right side holds
// several rows for one key, the first one wins.
//
// Non-key columns present on both sides get Suffixes[0] (left) and
// Suffixes[1] (right) appended. A right key column named like its left
// counterpart is folded into the left one.
type JoinSpec struct {
	LeftOn   []string
	RightOn  []string
	How      JoinType
	Suffixes [2]string
}

type JoinStats struct {
	Matched            int
	Unmatched          int
	DuplicateRightKeys int
}

func Join(left, right *Frame, spec JoinSpec) (*Frame, JoinStats, error) {
	var stats JoinStats
	if left == nil || right == nil {
		return nil, stats, fmt.Errorf("join requires both frames")
	}
	if len(spec.LeftOn) == 0 || len(spec.LeftOn) != len(spec.RightOn) {
		return nil, stats, fmt.Errorf("join keys mismatch: left=%v right=%v", spec.LeftOn, spec.RightOn)
	}

	leftKeys := make([]int, len(spec.LeftOn))
	rightKeys := make([]int, len(spec.RightOn))
	folded := make(map[int]struct{}, len(spec.RightOn))
	for i := range spec.LeftOn {
		li, ok := left.index[spec.LeftOn[i]]
		if !ok {
			return nil, stats, fmt.Errorf("left join key %q not found", spec.LeftOn[i])
		}
		ri, ok := right.index[spec.RightOn[i]]
		if !ok {
			return nil, stats, fmt.Errorf("right join key %q not found", spec.RightOn[i])
		}
		leftKeys[i] = li
		rightKeys[i] = ri
		if spec.LeftOn[i] == spec.RightOn[i] {
			folded[ri] = struct{}{}
		}
	}

	rightCols := make([]int, 0, len(right.columns))
	for idx := range right.columns {
		if _, skip := folded[idx]; skip {
			continue
		}
		rightCols = append(rightCols, idx)
	}

	clash := make(map[string]struct{})
	for _, idx := range rightCols {
		if _, ok := left.index[right.columns[idx]]; ok {
			clash[right.columns[idx]] = struct{}{}
		}
	}
	if len(clash) > 0 && spec.Suffixes[0] == spec.Suffixes[1] {
		return nil, stats, fmt.Errorf("columns overlap but suffixes are identical: %v", sortedKeys(clash))
	}

	names := make([]string, 0, len(left.columns)+len(rightCols))
	for _, col := range left.columns {
		if _, ok := clash[col]; ok {
			col += spec.Suffixes[0]
		}
		names = append(names, col)
	}
	for _, idx := range rightCols {
		col := right.columns[idx]
		if _, ok := clash[col]; ok {
			col += spec.Suffixes[1]
		}
		names = append(names, col)
	}
	out, err := New(names...)
	if err != nil {
		return nil, stats, fmt.Errorf("build joined columns: %w", err)
	}

	lookup := make(map[string]int, len(right.rows))
	for i, row := range right.rows {
		key, ok := compositeKey(row, rightKeys)
		if !ok {
			continue
		}
		if _, exists := lookup[key]; exists {
			stats.DuplicateRightKeys++
			continue
		}
		lookup[key] = i
	}

	out.rows = make([][]any, 0, len(left.rows))
	for _, row := range left.rows {
		match := -1
		if key, ok := compositeKey(row, leftKeys); ok {
			if i, found := lookup[key]; found {
				match = i
			}
		}
		if match < 0 {
			stats.Unmatched++
			if spec.How == InnerJoin {
				continue
			}
		} else {
			stats.Matched++
		}

		next := make([]any, 0, len(names))
		next = append(next, row...)
		for _, idx := range rightCols {
			if match < 0 {
				next = append(next, nil)
				continue
			}
			next = append(next, right.rows[match][idx])
		}
		out.rows = append(out.rows, next)
	}

	return out, stats, nil
}

func compositeKey(row []any, keys []int) (string, bool) {
	var buf []byte
	for i, idx := range keys {
		n, ok := ToInt(row[idx])
		if !ok {
			return "", false
		}
		if i > 0 {
			buf = append(buf, '|')
		}
		buf = strconv.AppendInt(buf, n, 10)
	}
	return string(buf), true
}

func sortedKeys(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
