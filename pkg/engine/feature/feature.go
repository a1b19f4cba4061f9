// Package feature computes feature values per entity over a time window.
//
// A feature definition is a JSON document:
//
//	{
//	    "timestamp_column": "event_time",
//	    "features": [
//	        {"name": "total_amount", "column": "amount", "function": "sum"},
//	        {"name": "order_count", "column": "order_id", "function": "count"}
//	    ]
//	}
package feature

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aiverse/datafabric/pkg/engine/aggregate"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// Definition declares the features of a feature set.
type Definition struct {
	TimestampColumn string        `json:"timestamp_column"`
	Features        []FeatureSpec `json:"features"`
}

type FeatureSpec struct {
	Name     string         `json:"name"`
	Column   string         `json:"column"`
	Function aggregate.Func `json:"function"`
}

// Parse decodes and checks a definition.
func Parse(raw []byte) (Definition, error) {
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return Definition{}, fmt.Errorf("feature definition: %w", err)
	}
	if len(def.Features) == 0 {
		return Definition{}, fmt.Errorf("feature definition: no features")
	}
	for _, spec := range def.Features {
		if spec.Name == "" || spec.Column == "" {
			return Definition{}, fmt.Errorf("feature definition: feature needs name and column")
		}
		if !spec.Function.Valid() {
			return Definition{}, fmt.Errorf("feature definition: unknown function %q", spec.Function)
		}
	}
	return def, nil
}

// Computed is one entity's feature vector for the window.
type Computed struct {
	EntityKey map[string]any
	Features  map[string]any
}

// Run computes def over rows for the window [start, end). Rows outside
// the window, and rows missing an entity key column, are ignored.
// Entities come back in deterministic key order.
func Run(rows []record.Row, def Definition, entityKeyColumns []string, start, end time.Time) ([]Computed, error) {
	if len(entityKeyColumns) == 0 {
		return nil, fmt.Errorf("feature: no entity key columns")
	}

	groups := map[string][]record.Row{}
	entities := map[string]map[string]any{}
	for _, row := range rows {
		if !inWindow(row, def.TimestampColumn, start, end) {
			continue
		}
		entity := map[string]any{}
		complete := true
		for _, name := range entityKeyColumns {
			value, ok := row[name]
			if !ok || value == nil {
				complete = false
				break
			}
			entity[name] = value
		}
		if !complete {
			continue
		}
		key := fmt.Sprintf("%v", entity)
		groups[key] = append(groups[key], row)
		entities[key] = entity
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Computed, 0, len(keys))
	for _, key := range keys {
		members := groups[key]
		features := map[string]any{}
		for _, spec := range def.Features {
			aggregations := map[string]aggregate.Func{spec.Column: spec.Function}
			reduced, err := aggregate.Run(members, nil, aggregations)
			if err != nil {
				return nil, err
			}
			features[spec.Name] = reduced[0][fmt.Sprintf("%s_%s", spec.Function, spec.Column)]
		}
		out = append(out, Computed{EntityKey: entities[key], Features: features})
	}
	return out, nil
}

func inWindow(row record.Row, timestampColumn string, start, end time.Time) bool {
	if timestampColumn == "" {
		return true
	}
	raw, ok := row[timestampColumn].(string)
	if !ok {
		return false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return false
	}
	return !ts.Before(start) && ts.Before(end)
}
