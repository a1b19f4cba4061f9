package local

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aiverse/datafabric/pkg/domain"
)

// Credentials resolves credential references from a YAML file mapping
// ref to key/value pairs. The file is re-read on every resolve so
// rotated credentials take effect without a restart.
type Credentials struct {
	Path string
}

func (c Credentials) Resolve(_ context.Context, _ domain.TenantContext, credentialRef string) (map[string]string, error) {
	if credentialRef == "" {
		return map[string]string{}, nil
	}
	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("credential file %s: %w", c.Path, err)
	}
	var all map[string]map[string]string
	if err := yaml.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("credential file %s: %w", c.Path, err)
	}
	secret, ok := all[credentialRef]
	if !ok {
		return nil, fmt.Errorf("no credential registered as %q", credentialRef)
	}
	return secret, nil
}
