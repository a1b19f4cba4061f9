package mock

import (
	"context"
	"errors"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/registry/db"
)

type Registry struct {
	Impl struct {
		Register func(context.Context, domain.TenantContext, domain.AssetDeclaration) (db.DataAsset, error)
		Get      func(context.Context, domain.TenantContext, string) (db.DataAsset, error)
		Find     func(context.Context, domain.TenantContext, *domain.AssetType) ([]db.DataAsset, error)
	}
	Calls struct {
		Register []struct {
			Tenant      domain.TenantContext
			Declaration domain.AssetDeclaration
		}
		Get []struct {
			Tenant   domain.TenantContext
			AssetRef string
		}
		Find []struct {
			Tenant    domain.TenantContext
			AssetType *domain.AssetType
		}
	}
}

func New() *Registry {
	return &Registry{}
}

var _ db.Interface = &Registry{}

func (r *Registry) Register(ctx context.Context, tenant domain.TenantContext, decl domain.AssetDeclaration) (db.DataAsset, error) {
	r.Calls.Register = append(r.Calls.Register, struct {
		Tenant      domain.TenantContext
		Declaration domain.AssetDeclaration
	}{tenant, decl})
	if r.Impl.Register != nil {
		return r.Impl.Register(ctx, tenant, decl)
	}
	panic(errors.New("registry mock: Register should not be called"))
}

func (r *Registry) Get(ctx context.Context, tenant domain.TenantContext, assetRef string) (db.DataAsset, error) {
	r.Calls.Get = append(r.Calls.Get, struct {
		Tenant   domain.TenantContext
		AssetRef string
	}{tenant, assetRef})
	if r.Impl.Get != nil {
		return r.Impl.Get(ctx, tenant, assetRef)
	}
	panic(errors.New("registry mock: Get should not be called"))
}

func (r *Registry) Find(ctx context.Context, tenant domain.TenantContext, assetType *domain.AssetType) ([]db.DataAsset, error) {
	r.Calls.Find = append(r.Calls.Find, struct {
		Tenant    domain.TenantContext
		AssetType *domain.AssetType
	}{tenant, assetType})
	if r.Impl.Find != nil {
		return r.Impl.Find(ctx, tenant, assetType)
	}
	panic(errors.New("registry mock: Find should not be called"))
}
