// Package join merges two row sets on equality of key columns.
package join

import (
	"fmt"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// Stats counts what a join matched and what it left unmatched.
type Stats struct {
	Matched        int
	UnmatchedLeft  int
	UnmatchedRight int
}

// Run joins left and right on keys. Right-side columns win on name
// collision. Rows missing a key column never match.
func Run(left, right []record.Row, keys []string, joinType domain.JoinType) ([]record.Row, Stats, error) {
	if len(keys) == 0 {
		return nil, Stats{}, fmt.Errorf("join: no keys")
	}
	if !joinType.Valid() {
		return nil, Stats{}, fmt.Errorf("join: unknown type %q", joinType)
	}

	index := map[string][]int{}
	for i, row := range right {
		if key, ok := keyOf(row, keys); ok {
			index[key] = append(index[key], i)
		}
	}

	out := []record.Row{}
	stats := Stats{}
	rightMatched := make([]bool, len(right))

	for _, lrow := range left {
		key, ok := keyOf(lrow, keys)
		matches := []int{}
		if ok {
			matches = index[key]
		}
		if len(matches) == 0 {
			stats.UnmatchedLeft++
			if joinType == domain.JoinLeft || joinType == domain.JoinFull {
				out = append(out, clone(lrow))
			}
			continue
		}
		for _, ri := range matches {
			rightMatched[ri] = true
			stats.Matched++
			merged := clone(lrow)
			for name, value := range right[ri] {
				merged[name] = value
			}
			out = append(out, merged)
		}
	}

	for i, row := range right {
		if rightMatched[i] {
			continue
		}
		stats.UnmatchedRight++
		if joinType == domain.JoinRight || joinType == domain.JoinFull {
			out = append(out, clone(row))
		}
	}

	return out, stats, nil
}

func keyOf(row record.Row, keys []string) (string, bool) {
	key := ""
	for _, name := range keys {
		value, ok := row[name]
		if !ok || value == nil {
			return "", false
		}
		key += fmt.Sprintf("%v\x00", value)
	}
	return key, true
}

func clone(row record.Row) record.Row {
	next := make(record.Row, len(row))
	for name, value := range row {
		next[name] = value
	}
	return next
}
