// Package quality evaluates rule sets against row samples.
//
// A rule document is JSON:
//
//	{"rules": [{"name": "amount_positive", "check": "amount > 0"}]}
//
// Each check runs per row; a rule's metric value is the fraction of
// rows passing it. The gate compares metrics against thresholds.
package quality

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

type Rule struct {
	Name  string `json:"name"`
	Check string `json:"check"`
}

// ParseRules decodes and compiles a rule document.
func ParseRules(raw []byte) ([]CompiledRule, error) {
	var doc struct {
		Rules []Rule `json:"rules"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("quality rules: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("quality rules: no rules")
	}

	compiled := make([]CompiledRule, 0, len(doc.Rules))
	for _, rule := range doc.Rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("quality rules: rule without name")
		}
		program, err := expr.Compile(rule.Check, expr.AllowUndefinedVariables(), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		compiled = append(compiled, CompiledRule{name: rule.Name, program: program})
	}
	return compiled, nil
}

type CompiledRule struct {
	name    string
	program *vm.Program
}

func (r CompiledRule) Name() string {
	return r.name
}

// Evaluate runs rules over rows and applies thresholds.
//
// The outcome is inconclusive when there are no rows, or when a rule
// has no threshold to compare against. A rule whose check errors on a
// row counts that row as failing.
func Evaluate(rows []record.Row, rules []CompiledRule, thresholds map[string]float64) (domain.GateOutcome, map[string]float64, []domain.QualityViolation) {
	metrics := map[string]float64{}
	violations := []domain.QualityViolation{}

	if len(rows) == 0 {
		return domain.GateInconclusive, metrics, violations
	}

	inconclusive := false
	for _, rule := range rules {
		passed := 0
		for _, row := range rows {
			env := map[string]any{}
			for name, value := range row {
				env[name] = value
			}
			ok, err := expr.Run(rule.program, env)
			if err == nil && ok.(bool) {
				passed++
			}
		}
		actual := float64(passed) / float64(len(rows))
		metrics[rule.name] = actual

		threshold, ok := thresholds[rule.name]
		if !ok {
			inconclusive = true
			continue
		}
		if actual < threshold {
			violations = append(violations, domain.QualityViolation{
				RuleName: rule.name,
				Expected: threshold,
				Actual:   actual,
			})
		}
	}

	switch {
	case len(violations) != 0:
		return domain.GateFail, metrics, violations
	case inconclusive:
		return domain.GateInconclusive, metrics, violations
	}
	return domain.GatePass, metrics, violations
}
