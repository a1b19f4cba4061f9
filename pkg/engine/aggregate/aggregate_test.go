package aggregate_test

import (
	"testing"

	"github.com/aiverse/datafabric/pkg/engine/aggregate"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/utils/try"
)

func TestRun(t *testing.T) {
	rows := []record.Row{
		{"region": "eu", "amount": 10.0},
		{"region": "eu", "amount": 30.0},
		{"region": "us", "amount": 5.0},
		{"region": "us", "amount": nil},
	}

	t.Run("it groups by columns and reduces", func(t *testing.T) {
		out := try.To(aggregate.Run(
			rows,
			[]string{"region"},
			map[string]aggregate.Func{"amount": aggregate.Sum},
		)).OrFatal(t)

		if len(out) != 2 {
			t.Fatalf("groups: got %d, want 2", len(out))
		}
		// groups come back sorted by key
		if out[0]["region"] != "eu" || out[0]["sum_amount"] != 40.0 {
			t.Errorf("eu group: %+v", out[0])
		}
		if out[1]["region"] != "us" || out[1]["sum_amount"] != 5.0 {
			t.Errorf("us group: %+v", out[1])
		}
	})

	t.Run("count skips nulls, avg skips non-numbers", func(t *testing.T) {
		out := try.To(aggregate.Run(
			rows,
			nil,
			map[string]aggregate.Func{"amount": aggregate.Count},
		)).OrFatal(t)

		if len(out) != 1 {
			t.Fatalf("groups: got %d, want 1", len(out))
		}
		if out[0]["count_amount"] != 3 {
			t.Errorf("count: got %v, want 3", out[0]["count_amount"])
		}

		avg := try.To(aggregate.Run(
			rows,
			nil,
			map[string]aggregate.Func{"amount": aggregate.Avg},
		)).OrFatal(t)
		if avg[0]["avg_amount"] != 15.0 {
			t.Errorf("avg: got %v, want 15", avg[0]["avg_amount"])
		}
	})

	t.Run("it rejects an unknown function", func(t *testing.T) {
		if _, err := aggregate.Run(rows, nil, map[string]aggregate.Func{"amount": "median"}); err == nil {
			t.Error("err: got nil, want error")
		}
	})
}
