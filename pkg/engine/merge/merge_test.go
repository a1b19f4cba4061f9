package merge_test

import (
	"encoding/json"
	"testing"

	"github.com/aiverse/datafabric/pkg/engine/merge"
)

func TestRun(t *testing.T) {
	ancestor := []byte(`{"meta": {"rows": 100, "owner": "ana"}, "tag": "v1"}`)

	t.Run("non-overlapping changes merge cleanly", func(t *testing.T) {
		source := []byte(`{"meta": {"rows": 150, "owner": "ana"}, "tag": "v1"}`)
		target := []byte(`{"meta": {"rows": 100, "owner": "bo"}, "tag": "v1"}`)

		merged, conflicts, err := merge.Run(ancestor, source, target)
		if err != nil {
			t.Fatal(err)
		}
		if len(conflicts) != 0 {
			t.Fatalf("conflicts: %+v", conflicts)
		}

		var doc map[string]any
		if err := json.Unmarshal(merged, &doc); err != nil {
			t.Fatal(err)
		}
		meta := doc["meta"].(map[string]any)
		if meta["rows"] != 150.0 || meta["owner"] != "bo" {
			t.Errorf("merged: %+v", doc)
		}
	})

	t.Run("the same path changed to different values conflicts", func(t *testing.T) {
		source := []byte(`{"meta": {"rows": 150, "owner": "ana"}, "tag": "v1"}`)
		target := []byte(`{"meta": {"rows": 200, "owner": "ana"}, "tag": "v1"}`)

		merged, conflicts, err := merge.Run(ancestor, source, target)
		if err != nil {
			t.Fatal(err)
		}
		if merged != nil {
			t.Error("merged: got document, want nil on conflict")
		}
		if len(conflicts) != 1 {
			t.Fatalf("conflicts: %+v", conflicts)
		}
		c := conflicts[0]
		if c.Path != "meta.rows" || c.SourceValue != 150.0 || c.TargetValue != 200.0 {
			t.Errorf("conflict: %+v", c)
		}
	})

	t.Run("both sides making the same change is not a conflict", func(t *testing.T) {
		changed := []byte(`{"meta": {"rows": 150, "owner": "ana"}, "tag": "v1"}`)

		merged, conflicts, err := merge.Run(ancestor, changed, changed)
		if err != nil {
			t.Fatal(err)
		}
		if len(conflicts) != 0 {
			t.Fatalf("conflicts: %+v", conflicts)
		}
		var doc map[string]any
		if err := json.Unmarshal(merged, &doc); err != nil {
			t.Fatal(err)
		}
		if doc["meta"].(map[string]any)["rows"] != 150.0 {
			t.Errorf("merged: %+v", doc)
		}
	})

	t.Run("a deletion on one side carries into the merge", func(t *testing.T) {
		source := []byte(`{"meta": {"rows": 100, "owner": "ana"}}`)
		target := []byte(`{"meta": {"rows": 100, "owner": "ana"}, "tag": "v2"}`)

		merged, conflicts, err := merge.Run(ancestor, source, target)
		if err != nil {
			t.Fatal(err)
		}
		// source deleted "tag", target rewrote it: that is a conflict
		if len(conflicts) != 1 || conflicts[0].Path != "tag" {
			t.Fatalf("conflicts: %+v", conflicts)
		}
		if merged != nil {
			t.Error("merged: got document, want nil")
		}
	})
}
