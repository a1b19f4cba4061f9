package local

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
)

// Storage reads and writes dataset storage locations as files under
// the storage root, tenant-scoped like the staging area.
type Storage struct {
	Root string
}

func (s Storage) ReadLocation(_ context.Context, tenant domain.TenantContext, locationRef string) ([]byte, error) {
	path, err := refPath(s.Root, tenant, locationRef)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, domerr.Missing{Table: "storage", Identity: locationRef}
	}
	return data, err
}

func (s Storage) WriteLocation(_ context.Context, tenant domain.TenantContext, locationRef string, data []byte, mode domain.WriteMode) (string, error) {
	path, err := refPath(s.Root, tenant, locationRef)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}

	if mode == domain.WriteAppend {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
		if err != nil {
			return "", err
		}
		defer f.Close()
		if _, err := f.Write(data); err != nil {
			return "", err
		}
		return locationRef, nil
	}

	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", err
	}
	return locationRef, nil
}
