package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	registrydb "github.com/aiverse/datafabric/pkg/domain/registry/db"
)

// LocalitySignalGenerator estimates, per execution environment, how
// costly it is to reach an asset's storage. Unreachable environments
// come back as unavailable signals rather than failing the unit.
type LocalitySignalGenerator struct {
	Registry     registrydb.Interface
	Environments EnvironmentDiscovery
	Prober       LocalityProber
}

func (LocalitySignalGenerator) Name() string {
	return "LocalitySignalGenerator"
}

func (u LocalitySignalGenerator) Execute(ctx context.Context, tenant domain.TenantContext, assetRef string) (domain.LocalityResult, error) {
	if assetRef == "" {
		return domain.LocalityResult{}, Errorf("VALIDATION_FAILED", "asset_ref is required")
	}

	asset, err := u.Registry.Get(ctx, tenant, assetRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.LocalityResult{}, Errorf("ASSET_NOT_FOUND", "asset not found: %s", assetRef)
	case err != nil:
		return domain.LocalityResult{}, coded(err, "REGISTRY_FAILURE")
	}

	environments, err := u.Environments.Environments(ctx, tenant)
	if err != nil {
		return domain.LocalityResult{}, coded(err, "REGISTRY_FAILURE")
	}

	signals, err := u.Prober.Probe(ctx, asset.StorageLocations, environments)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.LocalityResult{}, Errorf("PROBE_TIMEOUT", "locality probe timed out")
	case err != nil:
		return domain.LocalityResult{}, coded(err, "PROBE_TIMEOUT")
	}

	// every known environment reports, unavailable where the probe
	// had nothing to say
	seen := map[string]bool{}
	for _, signal := range signals {
		seen[signal.EnvironmentID] = true
	}
	for _, environment := range environments {
		if !seen[environment] {
			signals = append(signals, domain.LocalitySignal{
				EnvironmentID:        environment,
				LocalityType:         domain.LocalityUnavailable,
				TransferCostEstimate: -1,
			})
		}
	}

	// a signal below half confidence is stale for placement purposes
	hasStale := false
	for _, signal := range signals {
		if signal.Confidence < 0.5 {
			hasStale = true
			break
		}
	}

	return domain.LocalityResult{
		Signals:         signals,
		HasStaleSignals: hasStale,
		SignalFreshness: time.Now().UTC(),
	}, nil
}

func (u LocalitySignalGenerator) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	assetRef, err := inputField[string](inputs, "asset_ref")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, assetRef)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
