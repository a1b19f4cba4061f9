package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/staging"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// DataExtractor pulls bounded row sets from external sources into the
// staging area.
type DataExtractor struct {
	Source  SourceReader
	Staging staging.Store
}

func (DataExtractor) Name() string {
	return "DataExtractor"
}

func (u DataExtractor) Execute(ctx context.Context, tenant domain.TenantContext, in domain.DataExtractionInput) (domain.DataExtractionResult, error) {
	if in.SourceConnectionRef == "" || in.TargetStagingRef == "" {
		return domain.DataExtractionResult{}, Errorf("VALIDATION_FAILED", "source_connection_ref and target_staging_ref are required")
	}
	if in.OutputFormat != "" && !in.OutputFormat.Valid() {
		return domain.DataExtractionResult{}, Errorf("FORMAT_ERROR", "unknown output format %q", in.OutputFormat)
	}

	rows, watermark, err := u.Source.Read(
		ctx, tenant, in.SourceConnectionRef, in.SourceQueryOrPath, in.ExtractionOffset, in.ExtractionLimit,
	)
	if err != nil {
		return domain.DataExtractionResult{}, coded(err, "SOURCE_READ_FAILURE")
	}

	blob, err := record.Encode(rows)
	if err != nil {
		return domain.DataExtractionResult{}, coded(err, "FORMAT_ERROR")
	}

	err = u.Staging.Write(ctx, tenant, in.TargetStagingRef, blob)
	switch {
	case errors.Is(err, staging.ErrQuotaExceeded):
		return domain.DataExtractionResult{}, Errorf(
			"QUOTA_EXCEEDED", "extraction of %d bytes exceeds the staging quota", len(blob),
		)
	case err != nil:
		return domain.DataExtractionResult{}, coded(err, "TARGET_WRITE_FAILURE")
	}

	return domain.DataExtractionResult{
		BytesExtracted: len(blob),
		RowsExtracted:  len(rows),
		StagingRef:     in.TargetStagingRef,
		WatermarkValue: watermark,
		ExtractedAt:    time.Now().UTC(),
	}, nil
}

func (u DataExtractor) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.DataExtractionInput](inputs, "extraction_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
