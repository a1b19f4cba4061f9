// Package store defines the feature store interface, implemented by an
// online (redis) and an offline (postgres) backend.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
)

// Record is one materialized row of a feature set: the entity it keys
// on, the feature values, and the event time they were computed for.
type Record struct {
	EntityKey map[string]any `json:"entity_key"`
	Features  map[string]any `json:"features"`
	EventTime time.Time      `json:"event_time"`
}

// EncodeEntityKey flattens an entity key to a canonical string, with
// members in name order, so the same entity always encodes the same.
func EncodeEntityKey(key map[string]any) string {
	names := make([]string, 0, len(key))
	for name := range key {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, key[name]))
	}
	return strings.Join(parts, ",")
}

// Store reads and writes materialized feature values.
type Store interface {
	// Write stores the records of a feature set. ttl bounds value
	// lifetime where the backend supports expiry; zero means no expiry.
	// Returns the count of distinct entities written and the backend's
	// location string.
	Write(ctx context.Context, tenant domain.TenantContext, featureSetRef string, recs []Record, ttl time.Duration) (int, string, error)

	// Read fetches the named features for each entity key. Entities or
	// features that are not materialized come back with IsMissing set
	// rather than an error. pointInTime, when non-nil, asks for the
	// latest value at or before that instant (backends without history
	// ignore it).
	Read(ctx context.Context, tenant domain.TenantContext, featureSetRef string, entityKeys []map[string]any, featureNames []string, pointInTime *time.Time) ([]domain.FeatureValue, error)
}
