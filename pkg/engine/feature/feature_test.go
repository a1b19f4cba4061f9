package feature_test

import (
	"testing"
	"time"

	"github.com/aiverse/datafabric/pkg/engine/aggregate"
	"github.com/aiverse/datafabric/pkg/engine/feature"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/utils/cmp"
	"github.com/aiverse/datafabric/pkg/utils/try"
)

func TestParse(t *testing.T) {
	t.Run("it rejects a definition without features", func(t *testing.T) {
		if _, err := feature.Parse([]byte(`{"timestamp_column": "ts"}`)); err == nil {
			t.Error("err: got nil, want error")
		}
	})

	t.Run("it rejects an unknown aggregation function", func(t *testing.T) {
		raw := []byte(`{"features": [{"name": "f", "column": "c", "function": "median"}]}`)
		if _, err := feature.Parse(raw); err == nil {
			t.Error("err: got nil, want error")
		}
	})
}

func TestRun(t *testing.T) {
	def := feature.Definition{
		TimestampColumn: "ts",
		Features: []feature.FeatureSpec{
			{Name: "total_amount", Column: "amount", Function: aggregate.Sum},
			{Name: "order_count", Column: "order_id", Function: aggregate.Count},
		},
	}
	rows := []record.Row{
		{"customer": "c1", "order_id": "o1", "amount": 10.0, "ts": "2026-08-01T10:00:00Z"},
		{"customer": "c1", "order_id": "o2", "amount": 15.0, "ts": "2026-08-02T10:00:00Z"},
		{"customer": "c2", "order_id": "o3", "amount": 7.0, "ts": "2026-08-02T12:00:00Z"},
		{"customer": "c1", "order_id": "o4", "amount": 99.0, "ts": "2026-09-01T10:00:00Z"},
		{"order_id": "o5", "amount": 1.0, "ts": "2026-08-03T10:00:00Z"},
	}

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("it computes features per entity within the window", func(t *testing.T) {
		computed := try.To(feature.Run(rows, def, []string{"customer"}, start, end)).OrFatal(t)

		if len(computed) != 2 {
			t.Fatalf("entities: got %d, want 2", len(computed))
		}
		c1 := computed[0]
		if !cmp.MapEq(c1.EntityKey, map[string]any{"customer": "c1"}) {
			t.Fatalf("entity: %+v", c1.EntityKey)
		}
		// the september row is outside the window
		if c1.Features["total_amount"] != 25.0 {
			t.Errorf("total_amount: got %v, want 25", c1.Features["total_amount"])
		}
		if c1.Features["order_count"] != 2 {
			t.Errorf("order_count: got %v, want 2", c1.Features["order_count"])
		}
	})

	t.Run("it rejects a run without entity key columns", func(t *testing.T) {
		if _, err := feature.Run(rows, def, nil, start, end); err == nil {
			t.Error("err: got nil, want error")
		}
	})
}
