package unit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/staging"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/engine/transform"
)

// TransformExecutor applies a declarative transformation to staged
// rows and stages the output.
type TransformExecutor struct {
	Staging staging.Store
}

func (TransformExecutor) Name() string {
	return "TransformExecutor"
}

func (u TransformExecutor) Execute(ctx context.Context, tenant domain.TenantContext, in domain.TransformInput) (domain.TransformResult, error) {
	if in.InputDataRef == "" || in.OutputStagingRef == "" {
		return domain.TransformResult{}, Errorf("VALIDATION_FAILED", "input_data_ref and output_staging_ref are required")
	}

	compiled, err := transform.Parse(in.Definition)
	if err != nil {
		return domain.TransformResult{}, coded(err, "TRANSFORM_ERROR")
	}

	blob, err := u.Staging.Read(ctx, tenant, in.InputDataRef)
	if err != nil {
		return domain.TransformResult{}, coded(err, "INPUT_READ_FAILURE")
	}
	rows, err := record.Decode(blob)
	if err != nil {
		return domain.TransformResult{}, coded(err, "INPUT_READ_FAILURE")
	}

	out, err := compiled.Apply(rows, in.Parameters)
	if err != nil {
		return domain.TransformResult{}, coded(err, "TRANSFORM_ERROR")
	}

	outBlob, err := record.Encode(out)
	if err != nil {
		return domain.TransformResult{}, coded(err, "TRANSFORM_ERROR")
	}
	if err := u.Staging.Write(ctx, tenant, in.OutputStagingRef, outBlob); err != nil {
		return domain.TransformResult{}, coded(err, "OUTPUT_WRITE_FAILURE")
	}

	return domain.TransformResult{
		RowsProcessed:    len(rows),
		RowsOutput:       len(out),
		OutputStagingRef: in.OutputStagingRef,
		TransformHash:    compiled.Hash(),
		TransformedAt:    time.Now().UTC(),
	}, nil
}

func (u TransformExecutor) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.TransformInput](inputs, "transform_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
