package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	kpool "github.com/aiverse/datafabric/pkg/conn/postgres"
	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	pgclass "github.com/aiverse/datafabric/pkg/domain/errors/postgres"
	"github.com/aiverse/datafabric/pkg/domain/version/db"
)

type versionPG struct { // implements db.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) db.Interface {
	return &versionPG{pool: pool}
}

var _ db.Interface = &versionPG{}

func (v *versionPG) CreateCommit(ctx context.Context, tenant domain.TenantContext, commit db.Commit, content []byte) (db.Commit, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return db.Commit{}, pgclass.Classify(err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return db.Commit{}, pgclass.Classify(err)
	}
	defer tx.Rollback(ctx)

	if commit.ParentCommitRef != "" {
		var found bool
		err := tx.QueryRow(
			ctx,
			`
			select exists (
				select 1 from "data_commit"
				where "commit_id" = $1 and "org_id" = $2 and "workspace_id" = $3
			)
			`,
			commit.ParentCommitRef, tenant.OrganizationID, tenant.WorkspaceID,
		).Scan(&found)
		if err != nil {
			return db.Commit{}, pgclass.Classify(err)
		}
		if !found {
			return db.Commit{}, domerr.Missing{Table: "data_commit", Identity: commit.ParentCommitRef}
		}
	}

	commit.CommittedAt = time.Now().UTC()
	_, err = tx.Exec(
		ctx,
		`
		insert into "data_commit" (
			"commit_id", "org_id", "workspace_id",
			"dataset_ref", "parent_commit_ref", "message",
			"author_ref", "content_hash", "content", "committed_at"
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
		commit.CommitID, tenant.OrganizationID, tenant.WorkspaceID,
		commit.DatasetRef, commit.ParentCommitRef, commit.Message,
		commit.AuthorRef, commit.ContentHash, content, commit.CommittedAt,
	)
	if err != nil {
		return db.Commit{}, pgclass.Classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return db.Commit{}, pgclass.Classify(err)
	}
	return commit, nil
}

func (v *versionPG) GetCommit(ctx context.Context, tenant domain.TenantContext, commitRef string) (db.Commit, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return db.Commit{}, pgclass.Classify(err)
	}
	defer conn.Release()

	var commit db.Commit
	err = conn.QueryRow(
		ctx,
		`
		select
			"commit_id", "dataset_ref", "parent_commit_ref",
			"message", "author_ref", "content_hash", "committed_at"
		from "data_commit"
		where "commit_id" = $1 and "org_id" = $2 and "workspace_id" = $3
		`,
		commitRef, tenant.OrganizationID, tenant.WorkspaceID,
	).Scan(
		&commit.CommitID, &commit.DatasetRef, &commit.ParentCommitRef,
		&commit.Message, &commit.AuthorRef, &commit.ContentHash, &commit.CommittedAt,
	)
	if err == pgx.ErrNoRows {
		return db.Commit{}, domerr.Missing{Table: "data_commit", Identity: commitRef}
	}
	if err != nil {
		return db.Commit{}, pgclass.Classify(err)
	}
	return commit, nil
}

func (v *versionPG) GetContent(ctx context.Context, tenant domain.TenantContext, commitRef string) ([]byte, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return nil, pgclass.Classify(err)
	}
	defer conn.Release()

	var content []byte
	err = conn.QueryRow(
		ctx,
		`
		select "content" from "data_commit"
		where "commit_id" = $1 and "org_id" = $2 and "workspace_id" = $3
		`,
		commitRef, tenant.OrganizationID, tenant.WorkspaceID,
	).Scan(&content)
	if err == pgx.ErrNoRows {
		return nil, domerr.Missing{Table: "data_commit", Identity: commitRef}
	}
	if err != nil {
		return nil, pgclass.Classify(err)
	}
	return content, nil
}

func (v *versionPG) CreateBranch(ctx context.Context, tenant domain.TenantContext, datasetRef, name, sourceCommitRef string) (db.Branch, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return db.Branch{}, pgclass.Classify(err)
	}
	defer conn.Release()

	if _, err := v.GetCommit(ctx, tenant, sourceCommitRef); err != nil {
		return db.Branch{}, err
	}

	branch := db.Branch{
		BranchID:      uuid.New(),
		DatasetRef:    datasetRef,
		Name:          name,
		HeadCommitRef: sourceCommitRef,
		CreatedAt:     time.Now().UTC(),
	}
	_, err = conn.Exec(
		ctx,
		`
		insert into "data_branch" (
			"branch_id", "org_id", "workspace_id",
			"dataset_ref", "name", "head_commit_ref", "created_at"
		) values ($1, $2, $3, $4, $5, $6, $7)
		`,
		branch.BranchID, tenant.OrganizationID, tenant.WorkspaceID,
		branch.DatasetRef, branch.Name, branch.HeadCommitRef, branch.CreatedAt,
	)
	if err != nil {
		return db.Branch{}, pgclass.Classify(err)
	}
	return branch, nil
}

func (v *versionPG) GetBranch(ctx context.Context, tenant domain.TenantContext, datasetRef, name string) (db.Branch, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return db.Branch{}, pgclass.Classify(err)
	}
	defer conn.Release()

	var branch db.Branch
	err = conn.QueryRow(
		ctx,
		`
		select
			"branch_id", "dataset_ref", "name", "head_commit_ref", "created_at"
		from "data_branch"
		where "org_id" = $1 and "workspace_id" = $2
			and "dataset_ref" = $3 and "name" = $4
		`,
		tenant.OrganizationID, tenant.WorkspaceID, datasetRef, name,
	).Scan(
		&branch.BranchID, &branch.DatasetRef, &branch.Name,
		&branch.HeadCommitRef, &branch.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return db.Branch{}, domerr.Missing{Table: "data_branch", Identity: datasetRef + "/" + name}
	}
	if err != nil {
		return db.Branch{}, pgclass.Classify(err)
	}
	return branch, nil
}
