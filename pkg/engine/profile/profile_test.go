package profile_test

import (
	"testing"

	"github.com/aiverse/datafabric/pkg/engine/profile"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/utils/cmp"
)

func TestRun(t *testing.T) {
	rows := []record.Row{
		{"email": "a@example.com", "amount": 10.0},
		{"email": "b@example.com", "amount": 20.0},
		{"email": "c@example.com", "amount": nil},
		{"email": "a@example.com", "amount": 30.0},
	}

	t.Run("it computes per-column statistics", func(t *testing.T) {
		stats, _, _, _ := profile.Run(rows, 0)

		if len(stats) != 2 {
			t.Fatalf("columns: got %d, want 2", len(stats))
		}
		amount := stats[0]
		if amount.ColumnName != "amount" {
			t.Fatalf("column order: %+v", stats)
		}
		if amount.NullCount != 1 || amount.DistinctCount != 3 {
			t.Errorf("amount stats: %+v", amount)
		}
		if amount.MinValue != 10.0 || amount.MaxValue != 30.0 {
			t.Errorf("amount range: %+v", amount)
		}
		if amount.MeanValue == nil || *amount.MeanValue != 20.0 {
			t.Errorf("amount mean: %v", amount.MeanValue)
		}

		email := stats[1]
		if email.NullCount != 0 || email.DistinctCount != 3 {
			t.Errorf("email stats: %+v", email)
		}
	})

	t.Run("it scores completeness and detects patterns", func(t *testing.T) {
		_, scores, detected, _ := profile.Run(rows, 0)

		if scores["completeness"] != 1-1.0/8.0 {
			t.Errorf("completeness: got %v", scores["completeness"])
		}
		if !cmp.SliceContentEq(detected, []string{"email:email"}) {
			t.Errorf("patterns: %v", detected)
		}
	})

	t.Run("the sample size bounds the profiled rows", func(t *testing.T) {
		stats, _, _, _ := profile.Run(rows, 2)
		for _, cs := range stats {
			if cs.NullCount != 0 {
				t.Errorf("saw rows beyond the sample: %+v", cs)
			}
		}
	})

	t.Run("a small sample is marked low confidence", func(t *testing.T) {
		_, _, _, lowConfidence := profile.Run(rows, 0)
		if !lowConfidence {
			t.Errorf("4 rows should be low confidence")
		}

		wide := make([]record.Row, 30)
		for i := range wide {
			wide[i] = record.Row{"amount": float64(i)}
		}
		if _, _, _, lowConfidence := profile.Run(wide, 0); lowConfidence {
			t.Errorf("30 rows should not be low confidence")
		}
	})
}
