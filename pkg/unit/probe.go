package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
)

// degradedLatency is the probe latency above which an answering source
// counts as degraded rather than healthy.
const degradedLatency = time.Second

// ConnectionProbe tests connectivity and health of external sources.
type ConnectionProbe struct {
	Credentials CredentialResolver
	Driver      ConnectionDriver
}

func (ConnectionProbe) Name() string {
	return "ConnectionProbe"
}

func (u ConnectionProbe) Execute(ctx context.Context, tenant domain.TenantContext, in domain.ConnectionProbeInput) (domain.ConnectionProbeResult, error) {
	if in.ConnectionRef == "" {
		return domain.ConnectionProbeResult{}, Errorf("VALIDATION_FAILED", "connection_ref is required")
	}
	timeout := time.Duration(in.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	credentials, err := u.Credentials.Resolve(ctx, tenant, in.CredentialRef)
	if err != nil {
		// cannot even start the probe
		return domain.ConnectionProbeResult{}, Errorf(
			"CREDENTIAL_UNAVAILABLE", "cannot resolve credential reference %q", in.CredentialRef,
		)
	}

	ok, latency, detail, err := u.Driver.Test(ctx, in.ConnectionRef, credentials, timeout)
	probedAt := time.Now().UTC()

	// a source that fails to answer is an unhealthy result, not a
	// unit failure
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domerr.ErrUnavailable):
		return domain.ConnectionProbeResult{
			HealthStatus: domain.Unhealthy,
			LatencyMilli: int(timeout.Milliseconds()),
			ErrorDetails: "connection timeout",
			ProbedAt:     probedAt,
		}, nil
	case err != nil:
		return domain.ConnectionProbeResult{
			HealthStatus: domain.Unhealthy,
			ErrorDetails: err.Error(),
			ProbedAt:     probedAt,
		}, nil
	}

	health := domain.Unhealthy
	if ok {
		health = domain.Healthy
		if latency >= degradedLatency {
			health = domain.Degraded
		}
	}
	return domain.ConnectionProbeResult{
		HealthStatus: health,
		LatencyMilli: int(latency.Milliseconds()),
		ErrorDetails: detail,
		ProbedAt:     probedAt,
	}, nil
}

func (u ConnectionProbe) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.ConnectionProbeInput](inputs, "probe_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
