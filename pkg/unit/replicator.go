package unit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
)

// DataReplicator copies data between storage locations, verifying the
// copy by checksum when strong consistency is asked for.
type DataReplicator struct {
	Storage DatasetStorage
}

func (DataReplicator) Name() string {
	return "DataReplicator"
}

func (u DataReplicator) Execute(ctx context.Context, tenant domain.TenantContext, in domain.ReplicationInput) (domain.ReplicationResult, error) {
	if in.SourceLocationRef == "" || in.TargetLocationRef == "" {
		return domain.ReplicationResult{}, Errorf("VALIDATION_FAILED", "source_location_ref and target_location_ref are required")
	}
	if !in.ConsistencyMode.Valid() {
		return domain.ReplicationResult{}, Errorf("VALIDATION_FAILED", "unknown consistency mode %q", in.ConsistencyMode)
	}

	data, err := u.Storage.ReadLocation(ctx, tenant, in.SourceLocationRef)
	switch {
	case errors.Is(err, domerr.ErrUnavailable):
		return domain.ReplicationResult{}, Errorf("NETWORK_FAILURE", "network error reading %s", in.SourceLocationRef)
	case err != nil:
		return domain.ReplicationResult{}, coded(err, "SOURCE_READ_FAILURE")
	}
	sourceSum := sha256.Sum256(data)

	confirmed, err := u.Storage.WriteLocation(ctx, tenant, in.TargetLocationRef, data, domain.WriteOverwrite)
	switch {
	case errors.Is(err, domerr.ErrUnavailable):
		return domain.ReplicationResult{}, Errorf("NETWORK_FAILURE", "network error writing %s", in.TargetLocationRef)
	case err != nil:
		return domain.ReplicationResult{}, coded(err, "TARGET_WRITE_FAILURE")
	}

	checksumMatch := true
	if in.ConsistencyMode == domain.ConsistencyStrong {
		written, err := u.Storage.ReadLocation(ctx, tenant, in.TargetLocationRef)
		if err != nil {
			return domain.ReplicationResult{}, coded(err, "TARGET_WRITE_FAILURE")
		}
		targetSum := sha256.Sum256(written)
		if hex.EncodeToString(sourceSum[:]) != hex.EncodeToString(targetSum[:]) {
			return domain.ReplicationResult{}, Errorf(
				"CHECKSUM_MISMATCH", "target %s does not match the source after write", in.TargetLocationRef,
			)
		}
	}

	return domain.ReplicationResult{
		BytesReplicated: len(data),
		TargetConfirmed: confirmed,
		ChecksumMatch:   checksumMatch,
		ReplicatedAt:    time.Now().UTC(),
	}, nil
}

func (u DataReplicator) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.ReplicationInput](inputs, "replication_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
