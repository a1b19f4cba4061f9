package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
)

// SchemaIntrospector discovers the schema of an external source.
type SchemaIntrospector struct {
	Schemas SchemaReader
}

// Sources wider than this are cut to the first fields, whatever the
// reader behind the unit. The result carries a truncation mark.
const maxIntrospectedFields = 1000

func (SchemaIntrospector) Name() string {
	return "SchemaIntrospector"
}

func (u SchemaIntrospector) Execute(ctx context.Context, tenant domain.TenantContext, in domain.SchemaIntrospectionInput) (domain.SchemaIntrospectionResult, error) {
	if in.ConnectionRef == "" || in.SourcePath == "" {
		return domain.SchemaIntrospectionResult{}, Errorf("VALIDATION_FAILED", "connection_ref and source_path are required")
	}

	fields, primaryKeys, rowCount, samples, err := u.Schemas.ReadSchema(
		ctx, tenant, in.ConnectionRef, in.SourcePath, in.SampleSize,
	)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.SchemaIntrospectionResult{}, Errorf("SOURCE_NOT_FOUND", "source not found: %s", in.SourcePath)
	case errors.Is(err, domerr.ErrDenied):
		return domain.SchemaIntrospectionResult{}, Errorf("ACCESS_DENIED", "access denied to %s", in.SourcePath)
	case errors.Is(err, domerr.ErrUnavailable):
		return domain.SchemaIntrospectionResult{}, Errorf("CONNECTION_FAILURE", "connection failed: %s", err)
	case err != nil:
		return domain.SchemaIntrospectionResult{}, coded(err, "CONNECTION_FAILURE")
	}

	if len(fields) == 0 {
		return domain.SchemaIntrospectionResult{}, Errorf("TYPE_INFERENCE_FAILURE", "no fields inferred from %s", in.SourcePath)
	}

	isTruncated := len(fields) > maxIntrospectedFields
	if isTruncated {
		fields = fields[:maxIntrospectedFields]
	}

	return domain.SchemaIntrospectionResult{
		Fields:           fields,
		PrimaryKeys:      primaryKeys,
		RowCountEstimate: rowCount,
		SampleValues:     samples,
		IsTruncated:      isTruncated,
		IntrospectedAt:   time.Now().UTC(),
	}, nil
}

func (u SchemaIntrospector) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.SchemaIntrospectionInput](inputs, "introspection_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
