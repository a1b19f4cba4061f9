// Package db defines the version store: immutable dataset commits and
// the branches that point at them.
package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
)

// Commit is an immutable snapshot of a dataset's content.
type Commit struct {
	CommitID        string
	DatasetRef      string
	ParentCommitRef string
	Message         string
	AuthorRef       uuid.UUID
	ContentHash     string
	CommittedAt     time.Time
}

// Branch is a movable pointer into the commit history of a dataset.
type Branch struct {
	BranchID      uuid.UUID
	DatasetRef    string
	Name          string
	HeadCommitRef string
	CreatedAt     time.Time
}

// CommitIDOf derives a content-addressed commit id.
func CommitIDOf(datasetRef, parentCommitRef string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(datasetRef))
	h.Write([]byte{0})
	h.Write([]byte(parentCommitRef))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Interface is the version store.
type Interface interface {
	// CreateCommit records a commit and its content. Returns
	// ErrConflict when the commit id already exists, ErrMissing when
	// the named parent commit does not.
	CreateCommit(ctx context.Context, tenant domain.TenantContext, commit Commit, content []byte) (Commit, error)

	// GetCommit fetches a commit by id. Returns ErrMissing when the
	// tenant has no such commit.
	GetCommit(ctx context.Context, tenant domain.TenantContext, commitRef string) (Commit, error)

	// GetContent fetches the content snapshot of a commit.
	GetContent(ctx context.Context, tenant domain.TenantContext, commitRef string) ([]byte, error)

	// CreateBranch records a branch pointing at sourceCommitRef.
	// Returns ErrConflict when (dataset, name) already exists and
	// ErrMissing when the source commit does not.
	CreateBranch(ctx context.Context, tenant domain.TenantContext, datasetRef, name, sourceCommitRef string) (Branch, error)

	// GetBranch fetches a branch by dataset and name.
	GetBranch(ctx context.Context, tenant domain.TenantContext, datasetRef, name string) (Branch, error)
}
