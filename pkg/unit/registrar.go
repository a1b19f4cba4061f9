package unit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/aiverse/datafabric/pkg/catalog/tags"
	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	registrydb "github.com/aiverse/datafabric/pkg/domain/registry/db"
)

// DataAssetRegistrar writes asset cards to the registry. With a tag
// schema wired, declared tags are defaulted and validated first; a
// nil schema skips tag governance.
type DataAssetRegistrar struct {
	Registry registrydb.Interface
	Tags     *tags.Schema
}

func (DataAssetRegistrar) Name() string {
	return "DataAssetRegistrar"
}

func (u DataAssetRegistrar) Execute(ctx context.Context, tenant domain.TenantContext, decl domain.AssetDeclaration) (domain.RegistrationResult, error) {
	if decl.Name == "" || decl.Version == "" {
		return domain.RegistrationResult{}, Errorf("INVALID_DECLARATION", "asset name and version are required")
	}
	if !decl.AssetType.Valid() {
		return domain.RegistrationResult{}, Errorf("INVALID_DECLARATION", "unknown asset type %q", decl.AssetType)
	}
	if !decl.Format.Valid() {
		return domain.RegistrationResult{}, Errorf("INVALID_DECLARATION", "unknown data format %q", decl.Format)
	}
	if !decl.Classification.Valid() {
		return domain.RegistrationResult{}, Errorf("INVALID_DECLARATION", "unknown classification %q", decl.Classification)
	}
	if u.Tags != nil {
		decl.Tags = u.Tags.ApplyDefaults(decl.Tags)
		if report := u.Tags.Validate(decl.Tags); !report.Valid {
			return domain.RegistrationResult{}, Errorf("TAG_INVALID", "%s", strings.Join(report.Errors, "; "))
		}
	}

	asset, err := u.Registry.Register(ctx, tenant, decl)
	switch {
	case errors.Is(err, domerr.ErrConflict):
		return domain.RegistrationResult{}, Errorf(
			"DUPLICATE_CONFLICT", "asset %s:%s already exists", decl.Name, decl.Version,
		)
	case errors.Is(err, domerr.ErrDenied):
		return domain.RegistrationResult{}, Errorf(
			"AUTHORIZATION_DENIED", "not authorized to register assets in this workspace",
		)
	case errors.Is(err, domerr.ErrUnavailable):
		return domain.RegistrationResult{}, Errorf("REGISTRY_UNAVAILABLE", "registry is unavailable")
	case err != nil:
		return domain.RegistrationResult{}, coded(err, "REGISTRY_FAILURE")
	}

	return domain.RegistrationResult{
		AssetID:      asset.AssetID,
		CardRef:      asset.CardRef,
		RegisteredAt: asset.RegisteredAt,
	}, nil
}

func (u DataAssetRegistrar) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	decl, err := inputField[domain.AssetDeclaration](inputs, "asset_declaration")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, decl)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
