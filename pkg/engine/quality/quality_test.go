package quality_test

import (
	"testing"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/engine/quality"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/utils/try"
)

func TestParseRules(t *testing.T) {
	t.Run("it rejects an empty rule set", func(t *testing.T) {
		if _, err := quality.ParseRules([]byte(`{"rules": []}`)); err == nil {
			t.Error("err: got nil, want error")
		}
	})

	t.Run("it rejects a broken check expression", func(t *testing.T) {
		raw := []byte(`{"rules": [{"name": "r", "check": "amount >"}]}`)
		if _, err := quality.ParseRules(raw); err == nil {
			t.Error("err: got nil, want error")
		}
	})
}

func TestEvaluate(t *testing.T) {
	rules := try.To(quality.ParseRules([]byte(`{"rules": [
		{"name": "amount_positive", "check": "amount > 0"},
		{"name": "id_present", "check": "id != nil"}
	]}`))).OrFatal(t)

	rows := []record.Row{
		{"id": "a", "amount": 10.0},
		{"id": "b", "amount": -1.0},
		{"id": nil, "amount": 5.0},
		{"id": "d", "amount": 2.0},
	}

	t.Run("it passes when every metric clears its threshold", func(t *testing.T) {
		outcome, metrics, violations := quality.Evaluate(rows, rules, map[string]float64{
			"amount_positive": 0.5,
			"id_present":      0.5,
		})
		if outcome != domain.GatePass {
			t.Errorf("outcome: got %s, want pass", outcome)
		}
		if metrics["amount_positive"] != 0.75 || metrics["id_present"] != 0.75 {
			t.Errorf("metrics: %+v", metrics)
		}
		if len(violations) != 0 {
			t.Errorf("violations: %+v", violations)
		}
	})

	t.Run("it fails with violations when a metric falls short", func(t *testing.T) {
		outcome, _, violations := quality.Evaluate(rows, rules, map[string]float64{
			"amount_positive": 0.9,
			"id_present":      0.5,
		})
		if outcome != domain.GateFail {
			t.Errorf("outcome: got %s, want fail", outcome)
		}
		if len(violations) != 1 {
			t.Fatalf("violations: %+v", violations)
		}
		v := violations[0]
		if v.RuleName != "amount_positive" || v.Expected != 0.9 || v.Actual != 0.75 {
			t.Errorf("violation: %+v", v)
		}
	})

	t.Run("it is inconclusive without rows or without a threshold", func(t *testing.T) {
		if outcome, _, _ := quality.Evaluate(nil, rules, nil); outcome != domain.GateInconclusive {
			t.Errorf("no rows: got %s", outcome)
		}
		outcome, _, _ := quality.Evaluate(rows, rules, map[string]float64{"amount_positive": 0.5})
		if outcome != domain.GateInconclusive {
			t.Errorf("missing threshold: got %s", outcome)
		}
	})
}
