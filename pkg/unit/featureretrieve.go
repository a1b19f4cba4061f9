package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/domain/feature/store"
)

// FeatureRetriever reads feature values for entities, preferring the
// requested store side. Missing entities and features come back with
// the missing indicator, never as errors.
type FeatureRetriever struct {
	Online  store.Store
	Offline store.Store
}

func (FeatureRetriever) Name() string {
	return "FeatureRetriever"
}

func (u FeatureRetriever) Execute(ctx context.Context, tenant domain.TenantContext, in domain.FeatureRetrieveInput) (domain.FeatureRetrieveResult, error) {
	if in.FeatureSetRef == "" || len(in.EntityKeys) == 0 || len(in.FeatureNames) == 0 {
		return domain.FeatureRetrieveResult{}, Errorf(
			"VALIDATION_FAILED", "feature_set_ref, entity_keys and feature_names are required",
		)
	}
	if !in.StorePreference.Valid() {
		return domain.FeatureRetrieveResult{}, Errorf("VALIDATION_FAILED", "unknown store preference %q", in.StorePreference)
	}

	source := u.Offline
	if in.StorePreference == domain.StoreOnline {
		source = u.Online
	}
	values, err := source.Read(ctx, tenant, in.FeatureSetRef, in.EntityKeys, in.FeatureNames, in.PointInTime)
	switch {
	case errors.Is(err, domerr.ErrUnavailable):
		return domain.FeatureRetrieveResult{}, Errorf("STORE_UNAVAILABLE", "feature store is unavailable")
	case err != nil:
		return domain.FeatureRetrieveResult{}, coded(err, "STORE_READ_FAILURE")
	}

	return domain.FeatureRetrieveResult{
		Values:      values,
		RetrievedAt: time.Now().UTC(),
	}, nil
}

func (u FeatureRetriever) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.FeatureRetrieveInput](inputs, "retrieve_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
