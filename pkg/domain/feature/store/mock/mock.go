package mock

import (
	"context"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/feature/store"
)

type Store struct {
	Impl struct {
		Write func(context.Context, domain.TenantContext, string, []store.Record, time.Duration) (int, string, error)
		Read  func(context.Context, domain.TenantContext, string, []map[string]any, []string, *time.Time) ([]domain.FeatureValue, error)
	}
	Calls struct {
		Write []struct {
			Tenant        domain.TenantContext
			FeatureSetRef string
			Records       []store.Record
			TTL           time.Duration
		}
		Read []struct {
			Tenant        domain.TenantContext
			FeatureSetRef string
			EntityKeys    []map[string]any
			FeatureNames  []string
			PointInTime   *time.Time
		}
	}
}

func New() *Store {
	return &Store{}
}

var _ store.Store = &Store{}

func (m *Store) Write(ctx context.Context, tenant domain.TenantContext, featureSetRef string, recs []store.Record, ttl time.Duration) (int, string, error) {
	m.Calls.Write = append(m.Calls.Write, struct {
		Tenant        domain.TenantContext
		FeatureSetRef string
		Records       []store.Record
		TTL           time.Duration
	}{tenant, featureSetRef, recs, ttl})
	if m.Impl.Write != nil {
		return m.Impl.Write(ctx, tenant, featureSetRef, recs, ttl)
	}
	panic(errors.New("feature store mock: Write should not be called"))
}

func (m *Store) Read(ctx context.Context, tenant domain.TenantContext, featureSetRef string, entityKeys []map[string]any, featureNames []string, pointInTime *time.Time) ([]domain.FeatureValue, error) {
	m.Calls.Read = append(m.Calls.Read, struct {
		Tenant        domain.TenantContext
		FeatureSetRef string
		EntityKeys    []map[string]any
		FeatureNames  []string
		PointInTime   *time.Time
	}{tenant, featureSetRef, entityKeys, featureNames, pointInTime})
	if m.Impl.Read != nil {
		return m.Impl.Read(ctx, tenant, featureSetRef, entityKeys, featureNames, pointInTime)
	}
	panic(errors.New("feature store mock: Read should not be called"))
}
