package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/domain/staging"
	"github.com/aiverse/datafabric/pkg/engine/quality"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// QualityGateEvaluator runs a rule set against a dataset and verdicts
// pass, fail or inconclusive. A failing gate is a result, not a unit
// failure.
type QualityGateEvaluator struct {
	Staging staging.Store
}

func (QualityGateEvaluator) Name() string {
	return "QualityGateEvaluator"
}

func (u QualityGateEvaluator) Execute(ctx context.Context, tenant domain.TenantContext, in domain.QualityGateInput) (domain.QualityGateResult, error) {
	if in.DatasetRef == "" || in.QualityRulesRef == "" {
		return domain.QualityGateResult{}, Errorf("VALIDATION_FAILED", "dataset_ref and quality_rules_ref are required")
	}

	rulesBlob, err := u.Staging.Read(ctx, tenant, in.QualityRulesRef)
	if err != nil {
		return domain.QualityGateResult{}, coded(err, "RULES_INVALID")
	}
	rules, err := quality.ParseRules(rulesBlob)
	if err != nil {
		return domain.QualityGateResult{}, coded(err, "RULES_INVALID")
	}

	// the gate cannot verdict a dataset it could not read; such
	// failures are inconclusive rather than a fail
	blob, err := u.Staging.Read(ctx, tenant, in.DatasetRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.QualityGateResult{}, Errorf("DATASET_NOT_FOUND", "dataset not found: %s", in.DatasetRef)
	case err != nil:
		return domain.QualityGateResult{}, Inconclusive(err, "DATASET_READ_FAILURE")
	}
	rows, err := record.Decode(blob)
	if err != nil {
		return domain.QualityGateResult{}, Inconclusive(err, "INVALID_DATASET")
	}

	outcome, metrics, violations := quality.Evaluate(rows, rules, in.Thresholds)
	return domain.QualityGateResult{
		Outcome:      outcome,
		MetricValues: metrics,
		Violations:   violations,
		EvaluatedAt:  time.Now().UTC(),
	}, nil
}

func (u QualityGateEvaluator) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.QualityGateInput](inputs, "gate_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
