// Package fs is the filesystem implementation of the staging store.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/domain/staging"
)

type store struct {
	root     string
	maxBytes int64
}

type Option func(*store) *store

// WithQuota bounds the size of a single staged blob.
// Zero or negative means unbounded.
func WithQuota(maxBytes int64) Option {
	return func(s *store) *store {
		s.maxBytes = maxBytes
		return s
	}
}

// New returns a staging store rooted at dir.
// Blobs land at {dir}/{org}/{workspace}/{ref}.
func New(dir string, options ...Option) staging.Store {
	s := &store{root: dir}
	for _, opt := range options {
		s = opt(s)
	}
	return s
}

var _ staging.Store = &store{}

func (s *store) Read(ctx context.Context, tenant domain.TenantContext, ref string) ([]byte, error) {
	path, err := s.resolve(tenant, ref)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, domerr.Missing{Table: "staging", Identity: ref}
	}
	return content, err
}

func (s *store) Write(ctx context.Context, tenant domain.TenantContext, ref string, data []byte) error {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return fmt.Errorf("%w: %d bytes > %d", staging.ErrQuotaExceeded, len(data), s.maxBytes)
	}
	path, err := s.resolve(tenant, ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o640)
}

// resolve maps (tenant, ref) to a path under the store root, rejecting
// refs that would escape the tenant's directory.
func (s *store) resolve(tenant domain.TenantContext, ref string) (string, error) {
	if ref == "" {
		return "", staging.ErrBadRef
	}
	clean := filepath.Clean(ref)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %s", staging.ErrBadRef, ref)
	}
	return filepath.Join(
		s.root,
		tenant.OrganizationID.String(),
		tenant.WorkspaceID.String(),
		clean,
	), nil
}
