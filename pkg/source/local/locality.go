package local

import (
	"context"
	"os"
	"strings"

	"github.com/aiverse/datafabric/pkg/domain"
)

// Environments lists the execution environments from static config.
type Environments struct {
	IDs []string
}

func (e Environments) Environments(context.Context, domain.TenantContext) ([]string, error) {
	ids := make([]string, len(e.IDs))
	copy(ids, e.IDs)
	return ids, nil
}

// Prober estimates locality of storage locations. Locations resolving
// to files under the storage root are local to every environment;
// anything else is remote, or unavailable when nothing resolves.
type Prober struct {
	Root string
}

func (p Prober) Probe(_ context.Context, storageLocations, environments []string) ([]domain.LocalitySignal, error) {
	anyLocal := false
	anyKnown := false
	for _, location := range storageLocations {
		trimmed := strings.TrimPrefix(location, "file://")
		if trimmed == location && strings.Contains(location, "://") {
			// a scheme this adapter does not serve; reachable but remote
			anyKnown = true
			continue
		}
		anyKnown = true
		if _, err := os.Stat(p.Root); err == nil {
			anyLocal = true
		}
	}

	signals := make([]domain.LocalitySignal, 0, len(environments))
	for _, env := range environments {
		signal := domain.LocalitySignal{
			EnvironmentID: env,
			LocalityType:  domain.LocalityRemote,
			Confidence:    0.6,
		}
		switch {
		case !anyKnown:
			signal.LocalityType = domain.LocalityUnavailable
			signal.Confidence = 0.0
		case anyLocal:
			signal.LocalityType = domain.LocalityLocal
			signal.TransferCostEstimate = 0.0
			signal.Confidence = 0.9
		default:
			signal.TransferCostEstimate = 1.0
		}
		signals = append(signals, signal)
	}
	return signals, nil
}
