// Package local implements the external-source ports of the execution
// units against the local filesystem: connection refs and storage
// locations resolve to files under a configured root.
//
// This is the adapter set fabricd ships with; deployments fronting
// real warehouses or object stores swap these for their own.
package local

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
)

// refPath maps a tenant-scoped reference to a path under root,
// rejecting refs that would escape the tenant's directory. The
// "file://" prefix of location refs is accepted and stripped.
func refPath(root string, tenant domain.TenantContext, ref string) (string, error) {
	trimmed := strings.TrimPrefix(ref, "file://")
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty reference", domerr.ErrMissing)
	}
	clean := filepath.Clean(trimmed)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("reference escapes the source root: %s", ref)
	}
	return filepath.Join(
		root,
		tenant.OrganizationID.String(),
		tenant.WorkspaceID.String(),
		clean,
	), nil
}
