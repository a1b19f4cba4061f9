package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/domain/staging"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/engine/schema"
)

// SchemaValidator diffs the inferred schema of a dataset against a
// declared one. Discrepancies are a result, not a unit failure.
type SchemaValidator struct {
	Staging staging.Store
}

func (SchemaValidator) Name() string {
	return "SchemaValidator"
}

func (u SchemaValidator) Execute(ctx context.Context, tenant domain.TenantContext, in domain.SchemaValidationInput) (domain.SchemaValidationResult, error) {
	if !in.ValidationMode.Valid() {
		return domain.SchemaValidationResult{}, Errorf("VALIDATION_FAILED", "unknown validation mode %q", in.ValidationMode)
	}

	declBlob, err := u.Staging.Read(ctx, tenant, in.ExpectedSchemaRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.SchemaValidationResult{}, Errorf("SCHEMA_UNAVAILABLE", "expected schema not found: %s", in.ExpectedSchemaRef)
	case err != nil:
		return domain.SchemaValidationResult{}, coded(err, "SCHEMA_UNAVAILABLE")
	}
	expected, err := schema.ParseDeclaration(declBlob)
	if err != nil {
		return domain.SchemaValidationResult{}, coded(err, "SCHEMA_UNAVAILABLE")
	}

	// a dataset that cannot be read or decoded leaves the verdict
	// open, unlike a schema mismatch
	blob, err := u.Staging.Read(ctx, tenant, in.DatasetRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.SchemaValidationResult{}, Errorf("DATASET_NOT_FOUND", "dataset not found: %s", in.DatasetRef)
	case err != nil:
		return domain.SchemaValidationResult{}, Inconclusive(err, "DATASET_READ_FAILURE")
	}
	rows, err := record.Decode(blob)
	if err != nil {
		return domain.SchemaValidationResult{}, Inconclusive(err, "INVALID_DATASET")
	}

	discrepancies := schema.Compare(expected, schema.Infer(rows), in.ValidationMode)
	return domain.SchemaValidationResult{
		IsValid:       len(discrepancies) == 0,
		Discrepancies: discrepancies,
		ValidatedAt:   time.Now().UTC(),
	}, nil
}

func (u SchemaValidator) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.SchemaValidationInput](inputs, "validation_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
