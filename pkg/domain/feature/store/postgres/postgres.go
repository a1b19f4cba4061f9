// Package postgres is the offline feature store backend. It keeps the
// full value history, so it can answer point-in-time reads.
package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v4"

	kpool "github.com/aiverse/datafabric/pkg/conn/postgres"
	"github.com/aiverse/datafabric/pkg/domain"
	pgclass "github.com/aiverse/datafabric/pkg/domain/errors/postgres"
	"github.com/aiverse/datafabric/pkg/domain/feature/store"
)

type offlineStore struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) store.Store {
	return &offlineStore{pool: pool}
}

var _ store.Store = &offlineStore{}

func (s *offlineStore) Write(ctx context.Context, tenant domain.TenantContext, featureSetRef string, recs []store.Record, _ time.Duration) (int, string, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, "", pgclass.Classify(err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, "", pgclass.Classify(err)
	}
	defer tx.Rollback(ctx)

	entities := map[string]struct{}{}
	for _, rec := range recs {
		entity := store.EncodeEntityKey(rec.EntityKey)
		entities[entity] = struct{}{}
		entityJSON, err := json.Marshal(rec.EntityKey)
		if err != nil {
			return 0, "", err
		}
		for name, value := range rec.Features {
			valueJSON, err := json.Marshal(value)
			if err != nil {
				return 0, "", err
			}
			if _, err := tx.Exec(
				ctx,
				`
				insert into "feature_value" (
					"org_id", "workspace_id", "feature_set_ref",
					"entity", "entity_key", "feature_name",
					"value", "event_time"
				) values ($1, $2, $3, $4, $5, $6, $7, $8)
				on conflict ("org_id", "workspace_id", "feature_set_ref", "entity", "feature_name", "event_time")
					do update set "value" = excluded."value"
				`,
				tenant.OrganizationID, tenant.WorkspaceID, featureSetRef,
				entity, entityJSON, name,
				valueJSON, rec.EventTime,
			); err != nil {
				return 0, "", pgclass.Classify(err)
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, "", pgclass.Classify(err)
	}
	return len(entities), "offline://" + featureSetRef, nil
}

func (s *offlineStore) Read(ctx context.Context, tenant domain.TenantContext, featureSetRef string, entityKeys []map[string]any, featureNames []string, pointInTime *time.Time) ([]domain.FeatureValue, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, pgclass.Classify(err)
	}
	defer conn.Release()

	asOf := time.Now().UTC()
	if pointInTime != nil {
		asOf = *pointInTime
	}

	values := make([]domain.FeatureValue, 0, len(entityKeys)*len(featureNames))
	for _, entityKey := range entityKeys {
		entity := store.EncodeEntityKey(entityKey)
		for _, name := range featureNames {
			var (
				valueJSON []byte
				eventTime time.Time
			)
			err := conn.QueryRow(
				ctx,
				`
				select "value", "event_time" from "feature_value"
				where "org_id" = $1 and "workspace_id" = $2
					and "feature_set_ref" = $3 and "entity" = $4
					and "feature_name" = $5 and "event_time" <= $6
				order by "event_time" desc
				limit 1
				`,
				tenant.OrganizationID, tenant.WorkspaceID,
				featureSetRef, entity, name, asOf,
			).Scan(&valueJSON, &eventTime)

			fv := domain.FeatureValue{EntityKey: entityKey, FeatureName: name}
			switch {
			case err == pgx.ErrNoRows:
				fv.IsMissing = true
			case err != nil:
				return nil, pgclass.Classify(err)
			default:
				if err := json.Unmarshal(valueJSON, &fv.Value); err != nil {
					return nil, err
				}
				fv.StalenessSeconds = int(asOf.Sub(eventTime).Seconds())
			}
			values = append(values, fv)
		}
	}
	return values, nil
}
