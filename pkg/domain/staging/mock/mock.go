package mock

import (
	"context"
	"errors"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/staging"
)

type Store struct {
	Impl struct {
		Read  func(context.Context, domain.TenantContext, string) ([]byte, error)
		Write func(context.Context, domain.TenantContext, string, []byte) error
	}
	Calls struct {
		Read []struct {
			Tenant domain.TenantContext
			Ref    string
		}
		Write []struct {
			Tenant domain.TenantContext
			Ref    string
			Data   []byte
		}
	}
}

func New() *Store {
	return &Store{}
}

var _ staging.Store = &Store{}

func (s *Store) Read(ctx context.Context, tenant domain.TenantContext, ref string) ([]byte, error) {
	s.Calls.Read = append(s.Calls.Read, struct {
		Tenant domain.TenantContext
		Ref    string
	}{tenant, ref})
	if s.Impl.Read != nil {
		return s.Impl.Read(ctx, tenant, ref)
	}
	panic(errors.New("staging mock: Read should not be called"))
}

func (s *Store) Write(ctx context.Context, tenant domain.TenantContext, ref string, data []byte) error {
	s.Calls.Write = append(s.Calls.Write, struct {
		Tenant domain.TenantContext
		Ref    string
		Data   []byte
	}{tenant, ref, data})
	if s.Impl.Write != nil {
		return s.Impl.Write(ctx, tenant, ref, data)
	}
	panic(errors.New("staging mock: Write should not be called"))
}
