// Package aggregate groups rows and reduces columns.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aiverse/datafabric/pkg/engine/record"
)

// Func enumerates supported reductions.
type Func string

const (
	Count Func = "count"
	Sum   Func = "sum"
	Min   Func = "min"
	Max   Func = "max"
	Avg   Func = "avg"
)

func (f Func) Valid() bool {
	switch f {
	case Count, Sum, Min, Max, Avg:
		return true
	}
	return false
}

// Run groups rows by groupBy and computes one output column per
// aggregation entry (column name to function). Output columns are named
// "{func}_{column}". With empty groupBy everything falls into a single
// group. Non-numeric values are skipped by numeric reductions.
func Run(rows []record.Row, groupBy []string, aggregations map[string]Func) ([]record.Row, error) {
	for column, fn := range aggregations {
		if !fn.Valid() {
			return nil, fmt.Errorf("aggregate: unknown function %q for column %q", fn, column)
		}
	}

	groups := map[string][]record.Row{}
	order := []string{}
	for _, row := range rows {
		key := groupKey(row, groupBy)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}
	sort.Strings(order)

	out := make([]record.Row, 0, len(order))
	for _, key := range order {
		members := groups[key]
		result := record.Row{}
		for _, name := range groupBy {
			result[name] = members[0][name]
		}
		for column, fn := range aggregations {
			result[fmt.Sprintf("%s_%s", fn, column)] = reduce(members, column, fn)
		}
		out = append(out, result)
	}
	return out, nil
}

func groupKey(row record.Row, groupBy []string) string {
	parts := make([]string, 0, len(groupBy))
	for _, name := range groupBy {
		parts = append(parts, fmt.Sprintf("%v", row[name]))
	}
	return strings.Join(parts, "\x00")
}

func reduce(members []record.Row, column string, fn Func) any {
	if fn == Count {
		count := 0
		for _, row := range members {
			if v, ok := row[column]; ok && v != nil {
				count++
			}
		}
		return count
	}

	values := []float64{}
	for _, row := range members {
		if n, ok := record.Number(row[column]); ok {
			values = append(values, n)
		}
	}
	if len(values) == 0 {
		return nil
	}

	switch fn {
	case Sum, Avg:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		if fn == Avg {
			return sum / float64(len(values))
		}
		return sum
	case Min:
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	case Max:
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	}
	return nil
}
