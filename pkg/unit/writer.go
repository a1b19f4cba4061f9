package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	registrydb "github.com/aiverse/datafabric/pkg/domain/registry/db"
	"github.com/aiverse/datafabric/pkg/domain/staging"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/engine/schema"
)

// DataWriter lands staged data in a registered dataset. The staged
// rows must fit the dataset's declared schema.
type DataWriter struct {
	Staging  staging.Store
	Registry registrydb.Interface
	Storage  DatasetStorage
}

func (DataWriter) Name() string {
	return "DataWriter"
}

func (u DataWriter) Execute(ctx context.Context, tenant domain.TenantContext, in domain.DataWriteInput) (domain.DataWriteResult, error) {
	if in.StagingRef == "" || in.TargetDatasetRef == "" {
		return domain.DataWriteResult{}, Errorf("VALIDATION_FAILED", "staging_ref and target_dataset_ref are required")
	}
	if !in.WriteMode.Valid() {
		return domain.DataWriteResult{}, Errorf("VALIDATION_FAILED", "unknown write mode %q", in.WriteMode)
	}

	blob, err := u.Staging.Read(ctx, tenant, in.StagingRef)
	if err != nil {
		return domain.DataWriteResult{}, coded(err, "STAGING_READ_FAILURE")
	}
	rows, err := record.Decode(blob)
	if err != nil {
		return domain.DataWriteResult{}, coded(err, "STAGING_READ_FAILURE")
	}

	asset, err := u.Registry.Get(ctx, tenant, in.TargetDatasetRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.DataWriteResult{}, Errorf("TARGET_NOT_FOUND", "dataset not found: %s", in.TargetDatasetRef)
	case err != nil:
		return domain.DataWriteResult{}, coded(err, "TARGET_WRITE_FAILURE")
	}

	if len(asset.Schema) != 0 {
		declared, err := schema.ParseDeclaration(asset.Schema)
		if err == nil {
			inferred := schema.Infer(rows)
			if d := schema.Compare(declared, inferred, domain.ValidateCompatible); len(d) != 0 {
				return domain.DataWriteResult{}, Errorf(
					"SCHEMA_MISMATCH", "staged rows do not fit the declared schema of %s: %d discrepancies",
					in.TargetDatasetRef, len(d),
				)
			}
		}
	}

	if len(asset.StorageLocations) == 0 {
		return domain.DataWriteResult{}, Errorf("TARGET_WRITE_FAILURE", "dataset %s has no storage location", in.TargetDatasetRef)
	}
	location, err := u.Storage.WriteLocation(ctx, tenant, asset.StorageLocations[0], blob, in.WriteMode)
	switch {
	case errors.Is(err, staging.ErrQuotaExceeded):
		return domain.DataWriteResult{}, Errorf("QUOTA_EXCEEDED", "write of %d bytes exceeds the dataset quota", len(blob))
	case err != nil:
		return domain.DataWriteResult{}, coded(err, "TARGET_WRITE_FAILURE")
	}

	return domain.DataWriteResult{
		BytesWritten:   len(blob),
		RowsWritten:    len(rows),
		TargetLocation: location,
		WrittenAt:      time.Now().UTC(),
	}, nil
}

func (u DataWriter) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.DataWriteInput](inputs, "write_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
