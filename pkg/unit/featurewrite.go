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
)

// FeatureStoreWriter materializes staged feature records into the
// online or offline store.
type FeatureStoreWriter struct {
	Staging staging.Store
	Online  store.Store
	Offline store.Store
}

// TTL bounds of materialized features: one minute to one year.
const (
	minTTLSeconds = 60
	maxTTLSeconds = 31536000
)

func (FeatureStoreWriter) Name() string {
	return "FeatureStoreWriter"
}

func (u FeatureStoreWriter) Execute(ctx context.Context, tenant domain.TenantContext, in domain.FeatureStoreWriteInput) (domain.FeatureStoreWriteResult, error) {
	if in.FeatureSetRef == "" {
		return domain.FeatureStoreWriteResult{}, Errorf("VALIDATION_FAILED", "feature_set_ref is required")
	}
	if !in.StoreType.Valid() {
		return domain.FeatureStoreWriteResult{}, Errorf("VALIDATION_FAILED", "unknown store type %q", in.StoreType)
	}
	if in.TTLSeconds < minTTLSeconds || in.TTLSeconds > maxTTLSeconds {
		return domain.FeatureStoreWriteResult{}, Errorf(
			"TTL_INVALID", "ttl_seconds must be between %d and %d", minTTLSeconds, maxTTLSeconds,
		)
	}

	blob, err := u.Staging.Read(ctx, tenant, in.StagingRef)
	if err != nil {
		return domain.FeatureStoreWriteResult{}, coded(err, "STAGING_READ_FAILURE")
	}
	recs, err := decodeFeatureRecords(blob)
	if err != nil {
		return domain.FeatureStoreWriteResult{}, coded(err, "STAGING_READ_FAILURE")
	}

	target := u.Offline
	if in.StoreType == domain.StoreOnline {
		target = u.Online
	}
	entities, location, err := target.Write(
		ctx, tenant, in.FeatureSetRef, recs, time.Duration(in.TTLSeconds)*time.Second,
	)
	switch {
	case errors.Is(err, domerr.ErrUnavailable):
		return domain.FeatureStoreWriteResult{}, Errorf("STORE_UNAVAILABLE", "feature store is unavailable")
	case err != nil:
		return domain.FeatureStoreWriteResult{}, coded(err, "STORE_WRITE_FAILURE")
	}

	return domain.FeatureStoreWriteResult{
		EntitiesWritten: entities,
		StoreLocation:   location,
		WrittenAt:       time.Now().UTC(),
	}, nil
}

func (u FeatureStoreWriter) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.FeatureStoreWriteInput](inputs, "write_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
