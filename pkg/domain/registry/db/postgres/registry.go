package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	kpool "github.com/aiverse/datafabric/pkg/conn/postgres"
	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	pgclass "github.com/aiverse/datafabric/pkg/domain/errors/postgres"
	"github.com/aiverse/datafabric/pkg/domain/registry/db"
)

type registryPG struct { // implements db.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) db.Interface {
	return &registryPG{pool: pool}
}

var _ db.Interface = &registryPG{}

func (r *registryPG) Register(ctx context.Context, tenant domain.TenantContext, decl domain.AssetDeclaration) (db.DataAsset, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return db.DataAsset{}, pgclass.Classify(err)
	}
	defer conn.Release()

	asset := db.DataAsset{
		AssetID:          uuid.New(),
		AssetType:        decl.AssetType,
		Name:             decl.Name,
		Version:          decl.Version,
		Schema:           decl.Schema,
		StorageLocations: []string{decl.StorageLocationRef},
		Classification:   decl.Classification,
		Format:           decl.Format,
		OwnerRef:         decl.OwnerRef,
		Tags:             decl.Tags,
		CardRef:          db.CardRefOf(decl.AssetType, decl.Name, decl.Version),
		RegisteredAt:     time.Now().UTC(),
	}

	_, err = conn.Exec(
		ctx,
		`
		insert into "data_asset" (
			"asset_id", "org_id", "workspace_id",
			"asset_type", "name", "version",
			"schema", "storage_locations",
			"classification", "format", "owner_ref",
			"tags", "card_ref", "registered_at"
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
		asset.AssetID, tenant.OrganizationID, tenant.WorkspaceID,
		string(asset.AssetType), asset.Name, asset.Version,
		asset.Schema, asset.StorageLocations,
		string(asset.Classification), string(asset.Format), asset.OwnerRef,
		asset.Tags, asset.CardRef, asset.RegisteredAt,
	)
	if err != nil {
		return db.DataAsset{}, pgclass.Classify(err)
	}
	return asset, nil
}

func (r *registryPG) Get(ctx context.Context, tenant domain.TenantContext, assetRef string) (db.DataAsset, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return db.DataAsset{}, pgclass.Classify(err)
	}
	defer conn.Release()

	// assetRef is either a card reference or "name@version"
	// ("name" alone resolves to the most recently registered version).
	name, version, versioned := strings.Cut(assetRef, "@")

	row := conn.QueryRow(
		ctx,
		`
		select
			"asset_id", "asset_type", "name", "version",
			"schema", "storage_locations",
			"classification", "format", "owner_ref",
			"tags", "card_ref", "registered_at"
		from "data_asset"
		where "org_id" = $1 and "workspace_id" = $2
			and (
				"card_ref" = $3
				or ("name" = $4 and ($5 or "version" = $6))
			)
		order by "registered_at" desc
		limit 1
		`,
		tenant.OrganizationID, tenant.WorkspaceID,
		assetRef, name, !versioned, version,
	)

	asset, err := scanAsset(row)
	if err == pgx.ErrNoRows {
		return db.DataAsset{}, domerr.Missing{Table: "data_asset", Identity: assetRef}
	}
	if err != nil {
		return db.DataAsset{}, pgclass.Classify(err)
	}
	return asset, nil
}

func (r *registryPG) Find(ctx context.Context, tenant domain.TenantContext, assetType *domain.AssetType) ([]db.DataAsset, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, pgclass.Classify(err)
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx,
		`
		select
			"asset_id", "asset_type", "name", "version",
			"schema", "storage_locations",
			"classification", "format", "owner_ref",
			"tags", "card_ref", "registered_at"
		from "data_asset"
		where "org_id" = $1 and "workspace_id" = $2
			and ($3::varchar is null or "asset_type" = $3)
		order by "registered_at"
		`,
		tenant.OrganizationID, tenant.WorkspaceID, (*string)(assetType),
	)
	if err != nil {
		return nil, pgclass.Classify(err)
	}
	defer rows.Close()

	found := []db.DataAsset{}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, pgclass.Classify(err)
		}
		found = append(found, asset)
	}
	return found, rows.Err()
}

func scanAsset(row pgx.Row) (db.DataAsset, error) {
	var (
		asset                      db.DataAsset
		assetType, classif, format string
	)
	err := row.Scan(
		&asset.AssetID, &assetType, &asset.Name, &asset.Version,
		&asset.Schema, &asset.StorageLocations,
		&classif, &format, &asset.OwnerRef,
		&asset.Tags, &asset.CardRef, &asset.RegisteredAt,
	)
	if err != nil {
		return db.DataAsset{}, err
	}
	asset.AssetType = domain.AssetType(assetType)
	asset.Classification = domain.DataClassification(classif)
	asset.Format = domain.DataFormat(format)
	return asset, nil
}
