package unit

import (
	"context"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// Ports to systems outside this domain. The control plane wires real
// implementations; tests wire fakes.

// CredentialResolver resolves credential references to secrets.
type CredentialResolver interface {
	Resolve(ctx context.Context, tenant domain.TenantContext, credentialRef string) (map[string]string, error)
}

// ConnectionDriver tests reachability of an external source.
type ConnectionDriver interface {
	// Test returns whether the source answered and how long it took.
	// detail carries the source's error text when it answered badly.
	Test(ctx context.Context, connectionRef string, credentials map[string]string, timeout time.Duration) (ok bool, latency time.Duration, detail string, err error)
}

// SchemaReader introspects the schema of an external source.
type SchemaReader interface {
	ReadSchema(ctx context.Context, tenant domain.TenantContext, connectionRef, sourcePath string, sampleSize int) ([]domain.FieldDefinition, []string, int, map[string][]any, error)
}

// SourceReader pulls rows out of an external source.
type SourceReader interface {
	Read(ctx context.Context, tenant domain.TenantContext, connectionRef, queryOrPath string, offset, limit int) ([]record.Row, string, error)
}

// DatasetStorage reads and writes dataset storage locations.
type DatasetStorage interface {
	ReadLocation(ctx context.Context, tenant domain.TenantContext, locationRef string) ([]byte, error)
	WriteLocation(ctx context.Context, tenant domain.TenantContext, locationRef string, data []byte, mode domain.WriteMode) (string, error)
}

// EnvironmentDiscovery lists the execution environments of a tenant.
type EnvironmentDiscovery interface {
	Environments(ctx context.Context, tenant domain.TenantContext) ([]string, error)
}

// LocalityProber estimates access cost of storage locations from
// execution environments.
type LocalityProber interface {
	Probe(ctx context.Context, storageLocations, environments []string) ([]domain.LocalitySignal, error)
}

// SampleSelector picks sample ids of a dataset matching criteria.
type SampleSelector interface {
	Select(ctx context.Context, tenant domain.TenantContext, datasetRef string, criteria map[string]any) ([]string, error)
}

// LabelSchemaValidator checks label schemas and label values against
// them.
type LabelSchemaValidator interface {
	ValidateSchema(ctx context.Context, tenant domain.TenantContext, schemaRef string) error
	ValidateLabel(ctx context.Context, tenant domain.TenantContext, schemaRef string, label any) error
}
