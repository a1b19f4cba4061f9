package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/domain/staging"
	"github.com/aiverse/datafabric/pkg/engine/profile"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// DataProfiler computes statistics and quality scores over a dataset
// sample.
type DataProfiler struct {
	Staging staging.Store
}

func (DataProfiler) Name() string {
	return "DataProfiler"
}

func (u DataProfiler) Execute(ctx context.Context, tenant domain.TenantContext, in domain.ProfileInput) (domain.ProfileResult, error) {
	if in.DatasetRef == "" {
		return domain.ProfileResult{}, Errorf("VALIDATION_FAILED", "dataset_ref is required")
	}

	blob, err := u.Staging.Read(ctx, tenant, in.DatasetRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.ProfileResult{}, Errorf("DATASET_NOT_FOUND", "dataset not found: %s", in.DatasetRef)
	case err != nil:
		return domain.ProfileResult{}, coded(err, "DATASET_READ_FAILURE")
	}
	rows, err := record.Decode(blob)
	if err != nil {
		return domain.ProfileResult{}, coded(err, "INVALID_DATASET")
	}

	stats, scores, patterns, lowConfidence := profile.Run(rows, in.SampleSize)
	return domain.ProfileResult{
		ColumnStats:      stats,
		QualityScores:    scores,
		DetectedPatterns: patterns,
		LowConfidence:    lowConfidence,
		ProfiledAt:       time.Now().UTC(),
	}, nil
}

func (u DataProfiler) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.ProfileInput](inputs, "profile_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
