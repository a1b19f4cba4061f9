// Package db defines the lineage store: directed edges between assets
// recorded as executions produce and consume data.
package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
)

// Edge is a directed relationship from a source asset to a target asset.
type Edge struct {
	EdgeID           uuid.UUID
	SourceAssetRef   string
	TargetAssetRef   string
	RelationshipType string
	ExecutionRef     string
	CreatedAt        time.Time
}

// Interface is the lineage store.
type Interface interface {
	// CreateEdge records an edge. Returns ErrConflict when the same
	// (source, target, relationship, execution) edge already exists.
	CreateEdge(ctx context.Context, tenant domain.TenantContext, in domain.LineageEdgeInput) (Edge, error)

	// ListForAsset fetches all edges touching assetRef, as source or
	// target, newest first.
	ListForAsset(ctx context.Context, tenant domain.TenantContext, assetRef string) ([]Edge, error)
}
