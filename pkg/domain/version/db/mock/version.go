package mock

import (
	"context"
	"errors"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/version/db"
)

type Versions struct {
	Impl struct {
		CreateCommit func(context.Context, domain.TenantContext, db.Commit, []byte) (db.Commit, error)
		GetCommit    func(context.Context, domain.TenantContext, string) (db.Commit, error)
		GetContent   func(context.Context, domain.TenantContext, string) ([]byte, error)
		CreateBranch func(context.Context, domain.TenantContext, string, string, string) (db.Branch, error)
		GetBranch    func(context.Context, domain.TenantContext, string, string) (db.Branch, error)
	}
	Calls struct {
		CreateCommit []struct {
			Tenant  domain.TenantContext
			Commit  db.Commit
			Content []byte
		}
		GetCommit []struct {
			Tenant    domain.TenantContext
			CommitRef string
		}
		GetContent []struct {
			Tenant    domain.TenantContext
			CommitRef string
		}
		CreateBranch []struct {
			Tenant          domain.TenantContext
			DatasetRef      string
			Name            string
			SourceCommitRef string
		}
		GetBranch []struct {
			Tenant     domain.TenantContext
			DatasetRef string
			Name       string
		}
	}
}

func New() *Versions {
	return &Versions{}
}

var _ db.Interface = &Versions{}

func (m *Versions) CreateCommit(ctx context.Context, tenant domain.TenantContext, commit db.Commit, content []byte) (db.Commit, error) {
	m.Calls.CreateCommit = append(m.Calls.CreateCommit, struct {
		Tenant  domain.TenantContext
		Commit  db.Commit
		Content []byte
	}{tenant, commit, content})
	if m.Impl.CreateCommit != nil {
		return m.Impl.CreateCommit(ctx, tenant, commit, content)
	}
	panic(errors.New("version mock: CreateCommit should not be called"))
}

func (m *Versions) GetCommit(ctx context.Context, tenant domain.TenantContext, commitRef string) (db.Commit, error) {
	m.Calls.GetCommit = append(m.Calls.GetCommit, struct {
		Tenant    domain.TenantContext
		CommitRef string
	}{tenant, commitRef})
	if m.Impl.GetCommit != nil {
		return m.Impl.GetCommit(ctx, tenant, commitRef)
	}
	panic(errors.New("version mock: GetCommit should not be called"))
}

func (m *Versions) GetContent(ctx context.Context, tenant domain.TenantContext, commitRef string) ([]byte, error) {
	m.Calls.GetContent = append(m.Calls.GetContent, struct {
		Tenant    domain.TenantContext
		CommitRef string
	}{tenant, commitRef})
	if m.Impl.GetContent != nil {
		return m.Impl.GetContent(ctx, tenant, commitRef)
	}
	panic(errors.New("version mock: GetContent should not be called"))
}

func (m *Versions) CreateBranch(ctx context.Context, tenant domain.TenantContext, datasetRef, name, sourceCommitRef string) (db.Branch, error) {
	m.Calls.CreateBranch = append(m.Calls.CreateBranch, struct {
		Tenant          domain.TenantContext
		DatasetRef      string
		Name            string
		SourceCommitRef string
	}{tenant, datasetRef, name, sourceCommitRef})
	if m.Impl.CreateBranch != nil {
		return m.Impl.CreateBranch(ctx, tenant, datasetRef, name, sourceCommitRef)
	}
	panic(errors.New("version mock: CreateBranch should not be called"))
}

func (m *Versions) GetBranch(ctx context.Context, tenant domain.TenantContext, datasetRef, name string) (db.Branch, error) {
	m.Calls.GetBranch = append(m.Calls.GetBranch, struct {
		Tenant     domain.TenantContext
		DatasetRef string
		Name       string
	}{tenant, datasetRef, name})
	if m.Impl.GetBranch != nil {
		return m.Impl.GetBranch(ctx, tenant, datasetRef, name)
	}
	panic(errors.New("version mock: GetBranch should not be called"))
}
