package unit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	registrydb "github.com/aiverse/datafabric/pkg/domain/registry/db"
	versiondb "github.com/aiverse/datafabric/pkg/domain/version/db"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// DataCommitter snapshots the current state of a dataset as an
// immutable commit.
type DataCommitter struct {
	Registry registrydb.Interface
	Storage  DatasetStorage
	Versions versiondb.Interface
}

func (DataCommitter) Name() string {
	return "DataCommitter"
}

func (u DataCommitter) Execute(ctx context.Context, tenant domain.TenantContext, in domain.CommitInput) (domain.CommitResult, error) {
	if in.DatasetRef == "" || in.CommitMessage == "" {
		return domain.CommitResult{}, Errorf("VALIDATION_FAILED", "dataset_ref and commit_message are required")
	}

	if in.ParentCommitRef != "" {
		_, err := u.Versions.GetCommit(ctx, tenant, in.ParentCommitRef)
		switch {
		case errors.Is(err, domerr.ErrMissing):
			return domain.CommitResult{}, Errorf("PARENT_NOT_FOUND", "parent commit not found: %s", in.ParentCommitRef)
		case err != nil:
			return domain.CommitResult{}, coded(err, "COMMIT_STORAGE_FAILURE")
		}
	}

	asset, err := u.Registry.Get(ctx, tenant, in.DatasetRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.CommitResult{}, Errorf("DATASET_NOT_FOUND", "dataset not found: %s", in.DatasetRef)
	case err != nil:
		return domain.CommitResult{}, coded(err, "DATASET_READ_FAILURE")
	}
	if len(asset.StorageLocations) == 0 {
		return domain.CommitResult{}, Errorf("DATASET_READ_FAILURE", "dataset %s has no storage location", in.DatasetRef)
	}

	content, err := u.Storage.ReadLocation(ctx, tenant, asset.StorageLocations[0])
	if err != nil {
		return domain.CommitResult{}, coded(err, "DATASET_READ_FAILURE")
	}
	changeset := summarize(content)

	contentHash := sha256.Sum256(content)
	commit := versiondb.Commit{
		CommitID:        versiondb.CommitIDOf(in.DatasetRef, in.ParentCommitRef, content),
		DatasetRef:      in.DatasetRef,
		ParentCommitRef: in.ParentCommitRef,
		Message:         in.CommitMessage,
		AuthorRef:       in.AuthorRef,
		ContentHash:     hex.EncodeToString(contentHash[:]),
	}
	created, err := u.Versions.CreateCommit(ctx, tenant, commit, content)
	switch {
	case errors.Is(err, domerr.ErrConflict):
		// the same content on the same parent is already committed
		existing, err := u.Versions.GetCommit(ctx, tenant, commit.CommitID)
		if err != nil {
			return domain.CommitResult{}, coded(err, "COMMIT_STORAGE_FAILURE")
		}
		return domain.CommitResult{
			CommitID:         existing.CommitID,
			ChangesetSummary: changeset,
			CommittedAt:      existing.CommittedAt,
		}, nil
	case err != nil:
		return domain.CommitResult{}, coded(err, "COMMIT_STORAGE_FAILURE")
	}

	return domain.CommitResult{
		CommitID:         created.CommitID,
		ChangesetSummary: changeset,
		CommittedAt:      created.CommittedAt,
	}, nil
}

// summarize counts what the snapshot holds.
func summarize(content []byte) map[string]int {
	summary := map[string]int{"bytes_total": len(content)}
	if rows, err := record.Decode(content); err == nil {
		summary["rows_total"] = len(rows)
		summary["columns_total"] = len(record.Columns(rows))
	}
	return summary
}

func (u DataCommitter) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.CommitInput](inputs, "commit_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
