// Package merge computes three-way merges of JSON dataset snapshots.
package merge

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/aiverse/datafabric/pkg/domain"
)

// Run merges source and target against their common ancestor. All
// three are JSON object documents. A path changed on both sides to
// different values is a conflict; otherwise the changed side wins.
// Returns the merged document (nil when conflicted) and the conflicts.
func Run(ancestor, source, target []byte) ([]byte, []domain.MergeConflictDetail, error) {
	ancestorDoc, err := decode(ancestor, "ancestor")
	if err != nil {
		return nil, nil, err
	}
	sourceDoc, err := decode(source, "source")
	if err != nil {
		return nil, nil, err
	}
	targetDoc, err := decode(target, "target")
	if err != nil {
		return nil, nil, err
	}

	sourceChanges := diff("", ancestorDoc, sourceDoc)
	targetChanges := diff("", ancestorDoc, targetDoc)

	conflicts := []domain.MergeConflictDetail{}
	paths := make([]string, 0, len(sourceChanges))
	for path := range sourceChanges {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		sv := sourceChanges[path]
		tv, also := targetChanges[path]
		if also && !reflect.DeepEqual(sv, tv) {
			conflicts = append(conflicts, domain.MergeConflictDetail{
				Path:        path,
				SourceValue: sv,
				TargetValue: tv,
			})
		}
	}
	if len(conflicts) != 0 {
		return nil, conflicts, nil
	}

	// target first, then source on top; identical double-changes agree
	merged := deepCopy(ancestorDoc)
	for path, value := range targetChanges {
		apply(merged, path, value)
	}
	for path, value := range sourceChanges {
		apply(merged, path, value)
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}

func decode(raw []byte, side string) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s snapshot: %w", side, err)
	}
	return doc, nil
}

// diff flattens the changes from base to next as path -> new value.
// A nil value records a deletion.
func diff(prefix string, base, next map[string]any) map[string]any {
	changes := map[string]any{}
	for key, nextValue := range next {
		path := join(prefix, key)
		baseValue, existed := base[key]
		if !existed {
			changes[path] = nextValue
			continue
		}
		baseMap, baseIsMap := baseValue.(map[string]any)
		nextMap, nextIsMap := nextValue.(map[string]any)
		if baseIsMap && nextIsMap {
			for p, v := range diff(path, baseMap, nextMap) {
				changes[p] = v
			}
			continue
		}
		if !reflect.DeepEqual(baseValue, nextValue) {
			changes[path] = nextValue
		}
	}
	for key := range base {
		if _, still := next[key]; !still {
			changes[join(prefix, key)] = nil
		}
	}
	return changes
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func apply(doc map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		child, ok := doc[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			doc[part] = child
		}
		doc = child
	}
	last := parts[len(parts)-1]
	if value == nil {
		delete(doc, last)
		return
	}
	doc[last] = value
}

func deepCopy(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		if child, ok := value.(map[string]any); ok {
			out[key] = deepCopy(child)
			continue
		}
		out[key] = value
	}
	return out
}
