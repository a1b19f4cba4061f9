package unit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/staging"
	"github.com/aiverse/datafabric/pkg/engine/aggregate"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// AggregationComputer groups staged rows and reduces columns.
type AggregationComputer struct {
	Staging staging.Store
}

func (AggregationComputer) Name() string {
	return "AggregationComputer"
}

func (u AggregationComputer) Execute(ctx context.Context, tenant domain.TenantContext, in domain.AggregationInput) (domain.AggregationResult, error) {
	if len(in.Aggregations) == 0 {
		return domain.AggregationResult{}, Errorf("INVALID_AGGREGATION", "aggregations must not be empty")
	}
	aggregations := map[string]aggregate.Func{}
	for column, fn := range in.Aggregations {
		if !aggregate.Func(fn).Valid() {
			return domain.AggregationResult{}, Errorf("INVALID_AGGREGATION", "unknown function %q for column %q", fn, column)
		}
		aggregations[column] = aggregate.Func(fn)
	}

	blob, err := u.Staging.Read(ctx, tenant, in.InputDataRef)
	if err != nil {
		return domain.AggregationResult{}, coded(err, "INPUT_READ_FAILURE")
	}
	rows, err := record.Decode(blob)
	if err != nil {
		return domain.AggregationResult{}, coded(err, "INPUT_READ_FAILURE")
	}

	out, err := aggregate.Run(rows, in.GroupByColumns, aggregations)
	if err != nil {
		return domain.AggregationResult{}, coded(err, "INVALID_AGGREGATION")
	}

	outBlob, err := record.Encode(out)
	if err != nil {
		return domain.AggregationResult{}, coded(err, "OUTPUT_WRITE_FAILURE")
	}
	if err := u.Staging.Write(ctx, tenant, in.OutputStagingRef, outBlob); err != nil {
		return domain.AggregationResult{}, coded(err, "OUTPUT_WRITE_FAILURE")
	}

	return domain.AggregationResult{
		GroupsComputed:   len(out),
		OutputStagingRef: in.OutputStagingRef,
		AggregatedAt:     time.Now().UTC(),
	}, nil
}

func (u AggregationComputer) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.AggregationInput](inputs, "aggregation_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
