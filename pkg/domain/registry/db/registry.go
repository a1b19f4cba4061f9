// Package db defines the asset registry interface: the durable catalog
// of data assets this domain owns.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
)

// DataAsset is a registered asset card.
type DataAsset struct {
	AssetID          uuid.UUID
	AssetType        domain.AssetType
	Name             string
	Version          string
	Schema           json.RawMessage
	StorageLocations []string
	Classification   domain.DataClassification
	Format           domain.DataFormat
	OwnerRef         uuid.UUID
	Tags             map[string]string
	CardRef          string
	RegisteredAt     time.Time
}

// CardRefOf derives the registry card reference for an asset.
func CardRefOf(assetType domain.AssetType, name, version string) string {
	return fmt.Sprintf("registry://%s/%s/%s@%s", domain.Domain, assetType, name, version)
}

// Interface is the asset registry.
type Interface interface {
	// Register writes a new asset card.
	//
	// Returns ErrConflict when (type, name, version) is already
	// registered in the tenant's workspace.
	Register(ctx context.Context, tenant domain.TenantContext, decl domain.AssetDeclaration) (DataAsset, error)

	// Get resolves an asset by its card reference, or by "name@version".
	//
	// Returns ErrMissing when the asset is not registered.
	Get(ctx context.Context, tenant domain.TenantContext, assetRef string) (DataAsset, error)

	// Find lists assets of the tenant, optionally filtered by type.
	Find(ctx context.Context, tenant domain.TenantContext, assetType *domain.AssetType) ([]DataAsset, error)
}
