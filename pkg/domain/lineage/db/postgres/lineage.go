package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	kpool "github.com/aiverse/datafabric/pkg/conn/postgres"
	"github.com/aiverse/datafabric/pkg/domain"
	pgclass "github.com/aiverse/datafabric/pkg/domain/errors/postgres"
	"github.com/aiverse/datafabric/pkg/domain/lineage/db"
)

type lineagePG struct { // implements db.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) db.Interface {
	return &lineagePG{pool: pool}
}

var _ db.Interface = &lineagePG{}

func (l *lineagePG) CreateEdge(ctx context.Context, tenant domain.TenantContext, in domain.LineageEdgeInput) (db.Edge, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return db.Edge{}, pgclass.Classify(err)
	}
	defer conn.Release()

	edge := db.Edge{
		EdgeID:           uuid.New(),
		SourceAssetRef:   in.SourceAssetRef,
		TargetAssetRef:   in.TargetAssetRef,
		RelationshipType: in.RelationshipType,
		ExecutionRef:     in.ExecutionRef,
		CreatedAt:        time.Now().UTC(),
	}
	_, err = conn.Exec(
		ctx,
		`
		insert into "lineage_edge" (
			"edge_id", "org_id", "workspace_id",
			"source_asset_ref", "target_asset_ref",
			"relationship_type", "execution_ref", "created_at"
		) values ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
		edge.EdgeID, tenant.OrganizationID, tenant.WorkspaceID,
		edge.SourceAssetRef, edge.TargetAssetRef,
		edge.RelationshipType, edge.ExecutionRef, edge.CreatedAt,
	)
	if err != nil {
		return db.Edge{}, pgclass.Classify(err)
	}
	return edge, nil
}

func (l *lineagePG) ListForAsset(ctx context.Context, tenant domain.TenantContext, assetRef string) ([]db.Edge, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, pgclass.Classify(err)
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx,
		`
		select
			"edge_id", "source_asset_ref", "target_asset_ref",
			"relationship_type", "execution_ref", "created_at"
		from "lineage_edge"
		where "org_id" = $1 and "workspace_id" = $2
			and ("source_asset_ref" = $3 or "target_asset_ref" = $3)
		order by "created_at" desc
		`,
		tenant.OrganizationID, tenant.WorkspaceID, assetRef,
	)
	if err != nil {
		return nil, pgclass.Classify(err)
	}
	defer rows.Close()

	edges := []db.Edge{}
	for rows.Next() {
		var edge db.Edge
		if err := rows.Scan(
			&edge.EdgeID, &edge.SourceAssetRef, &edge.TargetAssetRef,
			&edge.RelationshipType, &edge.ExecutionRef, &edge.CreatedAt,
		); err != nil {
			return nil, pgclass.Classify(err)
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}
