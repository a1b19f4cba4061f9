// Package redis is the online feature store backend. Values live under
// feature:{org}:{workspace}:{feature_set}:{entity}:{name} keys with an
// optional expiry.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/feature/store"
)

type onlineStore struct {
	client redis.UniversalClient
}

func New(client redis.UniversalClient) store.Store {
	return &onlineStore{client: client}
}

var _ store.Store = &onlineStore{}

type storedValue struct {
	Value     any       `json:"value"`
	EventTime time.Time `json:"event_time"`
}

func keyOf(tenant domain.TenantContext, featureSetRef, entity, name string) string {
	return fmt.Sprintf(
		"feature:%s:%s:%s:%s:%s",
		tenant.OrganizationID, tenant.WorkspaceID, featureSetRef, entity, name,
	)
}

func (s *onlineStore) Write(ctx context.Context, tenant domain.TenantContext, featureSetRef string, recs []store.Record, ttl time.Duration) (int, string, error) {
	pipe := s.client.Pipeline()
	entities := map[string]struct{}{}
	for _, rec := range recs {
		entity := store.EncodeEntityKey(rec.EntityKey)
		entities[entity] = struct{}{}
		for name, value := range rec.Features {
			payload, err := json.Marshal(storedValue{Value: value, EventTime: rec.EventTime})
			if err != nil {
				return 0, "", err
			}
			pipe.Set(ctx, keyOf(tenant, featureSetRef, entity, name), payload, ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, "", err
	}
	return len(entities), "redis://" + featureSetRef, nil
}

func (s *onlineStore) Read(ctx context.Context, tenant domain.TenantContext, featureSetRef string, entityKeys []map[string]any, featureNames []string, _ *time.Time) ([]domain.FeatureValue, error) {
	// The online store holds current values only; point-in-time reads
	// are the offline backend's job.
	keys := make([]string, 0, len(entityKeys)*len(featureNames))
	for _, entityKey := range entityKeys {
		entity := store.EncodeEntityKey(entityKey)
		for _, name := range featureNames {
			keys = append(keys, keyOf(tenant, featureSetRef, entity, name))
		}
	}
	if len(keys) == 0 {
		return []domain.FeatureValue{}, nil
	}

	payloads, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	values := make([]domain.FeatureValue, 0, len(keys))
	i := 0
	for _, entityKey := range entityKeys {
		for _, name := range featureNames {
			fv := domain.FeatureValue{EntityKey: entityKey, FeatureName: name}
			if raw, ok := payloads[i].(string); ok {
				var stored storedValue
				if err := json.Unmarshal([]byte(raw), &stored); err != nil {
					return nil, err
				}
				fv.Value = stored.Value
				fv.StalenessSeconds = int(now.Sub(stored.EventTime).Seconds())
			} else {
				fv.IsMissing = true
			}
			values = append(values, fv)
			i++
		}
	}
	return values, nil
}
