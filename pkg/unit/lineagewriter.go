package unit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	lineagedb "github.com/aiverse/datafabric/pkg/domain/lineage/db"
)

// LineageEdgeWriter records a directed relationship between two assets.
type LineageEdgeWriter struct {
	Lineage lineagedb.Interface
}

func (LineageEdgeWriter) Name() string {
	return "LineageEdgeWriter"
}

func (u LineageEdgeWriter) Execute(ctx context.Context, tenant domain.TenantContext, in domain.LineageEdgeInput) (domain.LineageEdgeResult, error) {
	if in.SourceAssetRef == "" || in.TargetAssetRef == "" || in.RelationshipType == "" {
		return domain.LineageEdgeResult{}, Errorf(
			"VALIDATION_FAILED", "source_asset_ref, target_asset_ref and relationship_type are required",
		)
	}
	if in.SourceAssetRef == in.TargetAssetRef {
		return domain.LineageEdgeResult{}, Errorf("VALIDATION_FAILED", "an asset cannot be its own lineage source")
	}

	edge, err := u.Lineage.CreateEdge(ctx, tenant, in)
	switch {
	case errors.Is(err, domerr.ErrConflict):
		return domain.LineageEdgeResult{}, Errorf("DUPLICATE_CONFLICT", "lineage edge already recorded")
	case errors.Is(err, domerr.ErrMissing):
		return domain.LineageEdgeResult{}, Errorf("ASSET_NOT_FOUND", "an endpoint of the edge is not registered")
	case err != nil:
		return domain.LineageEdgeResult{}, coded(err, "REGISTRY_WRITE_FAILURE")
	}

	return domain.LineageEdgeResult{
		EdgeID:    edge.EdgeID,
		CreatedAt: edge.CreatedAt,
	}, nil
}

func (u LineageEdgeWriter) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.LineageEdgeInput](inputs, "edge_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
