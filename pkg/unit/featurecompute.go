package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/domain/feature/store"
	"github.com/aiverse/datafabric/pkg/domain/staging"
	"github.com/aiverse/datafabric/pkg/engine/feature"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// FeatureComputer computes feature values per entity over a time
// window and stages them for materialization.
type FeatureComputer struct {
	Staging staging.Store
}

func (FeatureComputer) Name() string {
	return "FeatureComputer"
}

func (u FeatureComputer) Execute(ctx context.Context, tenant domain.TenantContext, in domain.FeatureComputeInput) (domain.FeatureComputeResult, error) {
	if len(in.EntityKeyColumns) == 0 {
		return domain.FeatureComputeResult{}, Errorf("ENTITY_KEY_MISSING", "entity_key_columns must not be empty")
	}
	if !in.TimeEnd.After(in.TimeStart) {
		return domain.FeatureComputeResult{}, Errorf("VALIDATION_FAILED", "time_end must be after time_start")
	}

	defBlob, err := u.Staging.Read(ctx, tenant, in.FeatureDefinitionRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.FeatureComputeResult{}, Errorf("DEFINITION_NOT_FOUND", "feature definition not found: %s", in.FeatureDefinitionRef)
	case err != nil:
		return domain.FeatureComputeResult{}, coded(err, "INPUT_READ_FAILURE")
	}
	def, err := feature.Parse(defBlob)
	if err != nil {
		return domain.FeatureComputeResult{}, coded(err, "COMPUTATION_ERROR")
	}

	blob, err := u.Staging.Read(ctx, tenant, in.SourceDataRef)
	if err != nil {
		return domain.FeatureComputeResult{}, coded(err, "INPUT_READ_FAILURE")
	}
	rows, err := record.Decode(blob)
	if err != nil {
		return domain.FeatureComputeResult{}, coded(err, "INPUT_READ_FAILURE")
	}

	computed, err := feature.Run(rows, def, in.EntityKeyColumns, in.TimeStart, in.TimeEnd)
	if err != nil {
		return domain.FeatureComputeResult{}, coded(err, "COMPUTATION_ERROR")
	}

	out := make([]record.Row, 0, len(computed))
	valueCount := 0
	for _, c := range computed {
		out = append(out, record.Row{
			"entity_key": c.EntityKey,
			"features":   c.Features,
			"event_time": in.TimeEnd.Format(time.RFC3339),
		})
		valueCount += len(c.Features)
	}
	outBlob, err := record.Encode(out)
	if err != nil {
		return domain.FeatureComputeResult{}, coded(err, "OUTPUT_WRITE_FAILURE")
	}
	if err := u.Staging.Write(ctx, tenant, in.OutputStagingRef, outBlob); err != nil {
		return domain.FeatureComputeResult{}, coded(err, "OUTPUT_WRITE_FAILURE")
	}

	return domain.FeatureComputeResult{
		EntitiesComputed:  len(computed),
		FeatureValueCount: valueCount,
		OutputStagingRef:  in.OutputStagingRef,
		ComputedAt:        time.Now().UTC(),
	}, nil
}

func (u FeatureComputer) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.FeatureComputeInput](inputs, "compute_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}

// decodeFeatureRecords turns staged feature rows back into records.
func decodeFeatureRecords(blob []byte) ([]store.Record, error) {
	rows, err := record.Decode(blob)
	if err != nil {
		return nil, err
	}
	recs := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		rec := store.Record{}
		if entity, ok := row["entity_key"].(map[string]any); ok {
			rec.EntityKey = entity
		}
		if features, ok := row["features"].(map[string]any); ok {
			rec.Features = features
		}
		if raw, ok := row["event_time"].(string); ok {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				rec.EventTime = ts
			}
		}
		if len(rec.EntityKey) == 0 || len(rec.Features) == 0 {
			return nil, errors.New("staged feature record needs entity_key and features")
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
