package unit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	versiondb "github.com/aiverse/datafabric/pkg/domain/version/db"
)

// BranchCreator points a new branch at an existing commit.
type BranchCreator struct {
	Versions versiondb.Interface
}

func (BranchCreator) Name() string {
	return "BranchCreator"
}

func (u BranchCreator) Execute(ctx context.Context, tenant domain.TenantContext, in domain.BranchInput) (domain.BranchResult, error) {
	if in.DatasetRef == "" || in.BranchName == "" || in.SourceCommitRef == "" {
		return domain.BranchResult{}, Errorf("VALIDATION_FAILED", "dataset_ref, branch_name and source_commit_ref are required")
	}

	branch, err := u.Versions.CreateBranch(ctx, tenant, in.DatasetRef, in.BranchName, in.SourceCommitRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.BranchResult{}, Errorf("COMMIT_NOT_FOUND", "source commit not found: %s", in.SourceCommitRef)
	case errors.Is(err, domerr.ErrConflict):
		return domain.BranchResult{}, Errorf("NAME_CONFLICT", "branch %q already exists on %s", in.BranchName, in.DatasetRef)
	case err != nil:
		return domain.BranchResult{}, coded(err, "STORAGE_FAILURE")
	}

	return domain.BranchResult{
		BranchID:      branch.BranchID,
		HeadCommitRef: branch.HeadCommitRef,
		CreatedAt:     branch.CreatedAt,
	}, nil
}

func (u BranchCreator) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.BranchInput](inputs, "branch_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
