package mock

import (
	"context"
	"errors"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/lineage/db"
)

type Lineage struct {
	Impl struct {
		CreateEdge   func(context.Context, domain.TenantContext, domain.LineageEdgeInput) (db.Edge, error)
		ListForAsset func(context.Context, domain.TenantContext, string) ([]db.Edge, error)
	}
	Calls struct {
		CreateEdge []struct {
			Tenant domain.TenantContext
			Input  domain.LineageEdgeInput
		}
		ListForAsset []struct {
			Tenant   domain.TenantContext
			AssetRef string
		}
	}
}

func New() *Lineage {
	return &Lineage{}
}

var _ db.Interface = &Lineage{}

func (m *Lineage) CreateEdge(ctx context.Context, tenant domain.TenantContext, in domain.LineageEdgeInput) (db.Edge, error) {
	m.Calls.CreateEdge = append(m.Calls.CreateEdge, struct {
		Tenant domain.TenantContext
		Input  domain.LineageEdgeInput
	}{tenant, in})
	if m.Impl.CreateEdge != nil {
		return m.Impl.CreateEdge(ctx, tenant, in)
	}
	panic(errors.New("lineage mock: CreateEdge should not be called"))
}

func (m *Lineage) ListForAsset(ctx context.Context, tenant domain.TenantContext, assetRef string) ([]db.Edge, error) {
	m.Calls.ListForAsset = append(m.Calls.ListForAsset, struct {
		Tenant   domain.TenantContext
		AssetRef string
	}{tenant, assetRef})
	if m.Impl.ListForAsset != nil {
		return m.Impl.ListForAsset(ctx, tenant, assetRef)
	}
	panic(errors.New("lineage mock: ListForAsset should not be called"))
}
