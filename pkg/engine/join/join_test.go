package join_test

import (
	"testing"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/engine/join"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

func TestRun(t *testing.T) {
	left := []record.Row{
		{"id": "a", "l": 1.0},
		{"id": "b", "l": 2.0},
		{"id": "x", "l": 3.0},
	}
	right := []record.Row{
		{"id": "a", "r": 10.0},
		{"id": "b", "r": 20.0},
		{"id": "y", "r": 30.0},
	}

	t.Run("inner join keeps matched rows only", func(t *testing.T) {
		out, stats, err := join.Run(left, right, []string{"id"}, domain.JoinInner)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 2 {
			t.Fatalf("rows: got %d, want 2", len(out))
		}
		if stats.Matched != 2 || stats.UnmatchedLeft != 1 || stats.UnmatchedRight != 1 {
			t.Errorf("stats: %+v", stats)
		}
		if out[0]["l"] != 1.0 || out[0]["r"] != 10.0 {
			t.Errorf("merged row: %+v", out[0])
		}
	})

	t.Run("left join keeps unmatched left rows", func(t *testing.T) {
		out, _, err := join.Run(left, right, []string{"id"}, domain.JoinLeft)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 3 {
			t.Fatalf("rows: got %d, want 3", len(out))
		}
	})

	t.Run("full join keeps unmatched rows of both sides", func(t *testing.T) {
		out, _, err := join.Run(left, right, []string{"id"}, domain.JoinFull)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 4 {
			t.Fatalf("rows: got %d, want 4", len(out))
		}
	})

	t.Run("rows with a null key never match", func(t *testing.T) {
		out, stats, err := join.Run(
			[]record.Row{{"id": nil, "l": 1.0}},
			[]record.Row{{"id": nil, "r": 2.0}},
			[]string{"id"}, domain.JoinInner,
		)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 0 || stats.Matched != 0 {
			t.Errorf("null keys matched: %+v %+v", out, stats)
		}
	})

	t.Run("it rejects a join without keys", func(t *testing.T) {
		if _, _, err := join.Run(left, right, nil, domain.JoinInner); err == nil {
			t.Error("err: got nil, want error")
		}
	})
}
