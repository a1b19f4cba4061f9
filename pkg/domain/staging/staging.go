// Package staging defines the tenant-scoped staging area where
// execution units exchange intermediate data by reference.
package staging

import (
	"context"
	"errors"

	"github.com/aiverse/datafabric/pkg/domain"
)

// ErrQuotaExceeded: the write would exceed the tenant's staging quota.
var ErrQuotaExceeded = errors.New("staging quota exceeded")

// ErrBadRef: the staging reference is malformed.
var ErrBadRef = errors.New("malformed staging reference")

// Store reads and writes opaque blobs addressed by staging references.
//
// Refs are tenant-scoped: two tenants never see each other's blobs.
type Store interface {
	Read(ctx context.Context, tenant domain.TenantContext, ref string) ([]byte, error)
	Write(ctx context.Context, tenant domain.TenantContext, ref string, data []byte) error
}
