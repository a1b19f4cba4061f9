package unit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	versiondb "github.com/aiverse/datafabric/pkg/domain/version/db"
	"github.com/aiverse/datafabric/pkg/engine/merge"
)

// MergeComputer computes a three-way merge between two commits.
// Conflicts are a result, not a unit failure.
type MergeComputer struct {
	Versions versiondb.Interface
}

func (MergeComputer) Name() string {
	return "MergeComputer"
}

func (u MergeComputer) Execute(ctx context.Context, tenant domain.TenantContext, in domain.MergeInput) (domain.MergeComputeResult, error) {
	if in.SourceCommitRef == "" || in.TargetCommitRef == "" {
		return domain.MergeComputeResult{}, Errorf("VALIDATION_FAILED", "source_commit_ref and target_commit_ref are required")
	}
	if in.CommonAncestorRef == "" {
		return domain.MergeComputeResult{}, Errorf("NO_COMMON_ANCESTOR", "common_ancestor_ref is required")
	}

	source, err := u.readContent(ctx, tenant, in.SourceCommitRef, "SOURCE_NOT_FOUND")
	if err != nil {
		return domain.MergeComputeResult{}, err
	}
	target, err := u.readContent(ctx, tenant, in.TargetCommitRef, "TARGET_NOT_FOUND")
	if err != nil {
		return domain.MergeComputeResult{}, err
	}
	ancestor, err := u.readContent(ctx, tenant, in.CommonAncestorRef, "NO_COMMON_ANCESTOR")
	if err != nil {
		return domain.MergeComputeResult{}, err
	}

	merged, conflicts, err := merge.Run(ancestor, source, target)
	if err != nil {
		return domain.MergeComputeResult{}, coded(err, "COMMIT_READ_FAILURE")
	}

	result := domain.MergeComputeResult{
		Outcome:    domain.MergeSuccess,
		Conflicts:  conflicts,
		ComputedAt: time.Now().UTC(),
	}
	if len(conflicts) != 0 {
		result.Outcome = domain.MergeConflict
		return result, nil
	}
	result.MergedChangeset = merged
	return result, nil
}

func (u MergeComputer) readContent(ctx context.Context, tenant domain.TenantContext, commitRef, missingCode string) ([]byte, error) {
	content, err := u.Versions.GetContent(ctx, tenant, commitRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return nil, Errorf(missingCode, "commit not found: %s", commitRef)
	case err != nil:
		return nil, coded(err, "COMMIT_READ_FAILURE")
	}
	return content, nil
}

func (u MergeComputer) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.MergeInput](inputs, "merge_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
