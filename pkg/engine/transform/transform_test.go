package transform_test

import (
	"encoding/json"
	"testing"

	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/engine/transform"
	"github.com/aiverse/datafabric/pkg/utils/try"
)

func TestParse(t *testing.T) {
	t.Run("it rejects an empty definition", func(t *testing.T) {
		if _, err := transform.Parse(json.RawMessage(`{}`)); err == nil {
			t.Error("err: got nil, want error")
		}
	})

	t.Run("it rejects a filter that is not an expression", func(t *testing.T) {
		if _, err := transform.Parse(json.RawMessage(`{"filter": "amount >"}`)); err == nil {
			t.Error("err: got nil, want error")
		}
	})

	t.Run("the hash is stable for the same definition", func(t *testing.T) {
		raw := json.RawMessage(`{"filter": "amount > 0"}`)
		a := try.To(transform.Parse(raw)).OrFatal(t)
		b := try.To(transform.Parse(raw)).OrFatal(t)
		if a.Hash() != b.Hash() {
			t.Errorf("hash: %s != %s", a.Hash(), b.Hash())
		}
		if a.Hash() == "" {
			t.Error("hash: empty")
		}
	})
}

func TestApply(t *testing.T) {
	rows := []record.Row{
		{"id": "a", "amount": 10.0, "rate": 2.0},
		{"id": "b", "amount": -3.0, "rate": 2.0},
		{"id": "c", "amount": 5.0, "rate": 3.0},
	}

	t.Run("it filters rows, computes columns and drops columns", func(t *testing.T) {
		compiled := try.To(transform.Parse(json.RawMessage(`{
			"filter": "amount > 0",
			"columns": {"scaled": "amount * rate * params.factor"},
			"drop": ["rate"]
		}`))).OrFatal(t)

		out := try.To(compiled.Apply(rows, map[string]any{"factor": 10.0})).OrFatal(t)

		if len(out) != 2 {
			t.Fatalf("rows: got %d, want 2", len(out))
		}
		if out[0]["scaled"] != 200.0 || out[1]["scaled"] != 150.0 {
			t.Errorf("scaled: got %v and %v", out[0]["scaled"], out[1]["scaled"])
		}
		if _, dropped := out[0]["rate"]; dropped {
			t.Error("rate: not dropped")
		}
	})

	t.Run("it leaves input rows untouched", func(t *testing.T) {
		compiled := try.To(transform.Parse(json.RawMessage(`{
			"columns": {"amount": "amount * 2"}
		}`))).OrFatal(t)

		try.To(compiled.Apply(rows, nil)).OrFatal(t)

		if rows[0]["amount"] != 10.0 {
			t.Errorf("input mutated: %v", rows[0]["amount"])
		}
	})
}
