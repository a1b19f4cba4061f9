package unit_test

import (
	"context"
	"testing"
	"time"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	"github.com/aiverse/datafabric/pkg/domain/feature/store"
	storemock "github.com/aiverse/datafabric/pkg/domain/feature/store/mock"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/unit"
	"github.com/aiverse/datafabric/pkg/utils/try"
)

func TestFeatureStoreWriter(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	stagedRecords := try.To(record.Encode([]record.Row{
		{
			"entity_key": map[string]any{"customer": "c1"},
			"features":   map[string]any{"total": 25.0},
			"event_time": "2026-08-20T00:00:00Z",
		},
	})).OrFatal(t)

	t.Run("it materializes staged records into the selected store", func(t *testing.T) {
		blobs := map[string][]byte{"staged": stagedRecords}
		online := storemock.New()
		online.Impl.Write = func(_ context.Context, _ domain.TenantContext, featureSetRef string, recs []store.Record, ttl time.Duration) (int, string, error) {
			if len(recs) != 1 || recs[0].Features["total"] != 25.0 {
				t.Errorf("records: %+v", recs)
			}
			if ttl != 600*time.Second {
				t.Errorf("ttl: %s", ttl)
			}
			return 1, "redis://" + featureSetRef, nil
		}

		testee := unit.FeatureStoreWriter{
			Staging: stagingFixture(blobs),
			Online:  online,
			Offline: storemock.New(),
		}
		result := try.To(testee.Execute(ctx, tenant, domain.FeatureStoreWriteInput{
			StagingRef:    "staged",
			FeatureSetRef: "customer_features@1",
			StoreType:     domain.StoreOnline,
			TTLSeconds:    600,
		})).OrFatal(t)

		if result.EntitiesWritten != 1 || result.StoreLocation != "redis://customer_features@1" {
			t.Errorf("result: %+v", result)
		}
	})

	t.Run("a ttl outside one minute to one year is rejected before anything is read", func(t *testing.T) {
		testee := unit.FeatureStoreWriter{
			Staging: stagingFixture(map[string][]byte{}),
			Online:  storemock.New(),
			Offline: storemock.New(),
		}
		for _, ttl := range []int{-1, 0, 10, 59, 31536001} {
			_, err := testee.Execute(ctx, tenant, domain.FeatureStoreWriteInput{
				StagingRef:    "staged",
				FeatureSetRef: "customer_features@1",
				StoreType:     domain.StoreOnline,
				TTLSeconds:    ttl,
			})
			if unit.CodeOf(err) != "TTL_INVALID" {
				t.Errorf("ttl %d: code: got %s", ttl, unit.CodeOf(err))
			}
		}
	})

	t.Run("the ttl bounds themselves are accepted", func(t *testing.T) {
		for _, ttl := range []int{60, 31536000} {
			online := storemock.New()
			online.Impl.Write = func(_ context.Context, _ domain.TenantContext, featureSetRef string, _ []store.Record, _ time.Duration) (int, string, error) {
				return 1, "redis://" + featureSetRef, nil
			}
			testee := unit.FeatureStoreWriter{
				Staging: stagingFixture(map[string][]byte{"staged": stagedRecords}),
				Online:  online,
				Offline: storemock.New(),
			}
			if _, err := testee.Execute(ctx, tenant, domain.FeatureStoreWriteInput{
				StagingRef:    "staged",
				FeatureSetRef: "customer_features@1",
				StoreType:     domain.StoreOnline,
				TTLSeconds:    ttl,
			}); err != nil {
				t.Errorf("ttl %d: %s", ttl, err)
			}
		}
	})
}

func TestFeatureRetriever(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	t.Run("missing features come back marked, not as errors", func(t *testing.T) {
		offline := storemock.New()
		offline.Impl.Read = func(_ context.Context, _ domain.TenantContext, _ string, entityKeys []map[string]any, featureNames []string, _ *time.Time) ([]domain.FeatureValue, error) {
			return []domain.FeatureValue{
				{EntityKey: entityKeys[0], FeatureName: featureNames[0], Value: 25.0},
				{EntityKey: entityKeys[0], FeatureName: featureNames[1], IsMissing: true},
			}, nil
		}

		testee := unit.FeatureRetriever{Online: storemock.New(), Offline: offline}
		result := try.To(testee.Execute(ctx, tenant, domain.FeatureRetrieveInput{
			FeatureSetRef:   "customer_features@1",
			EntityKeys:      []map[string]any{{"customer": "c1"}},
			FeatureNames:    []string{"total", "rank"},
			StorePreference: domain.StoreOffline,
		})).OrFatal(t)

		if len(result.Values) != 2 {
			t.Fatalf("values: %+v", result.Values)
		}
		if result.Values[1].IsMissing != true {
			t.Errorf("missing flag not carried: %+v", result.Values[1])
		}
	})

	t.Run("an unavailable store is STORE_UNAVAILABLE", func(t *testing.T) {
		online := storemock.New()
		online.Impl.Read = func(context.Context, domain.TenantContext, string, []map[string]any, []string, *time.Time) ([]domain.FeatureValue, error) {
			return nil, domerr.ErrUnavailable
		}

		testee := unit.FeatureRetriever{Online: online, Offline: storemock.New()}
		_, err := testee.Execute(ctx, tenant, domain.FeatureRetrieveInput{
			FeatureSetRef:   "customer_features@1",
			EntityKeys:      []map[string]any{{"customer": "c1"}},
			FeatureNames:    []string{"total"},
			StorePreference: domain.StoreOnline,
		})
		if unit.CodeOf(err) != "STORE_UNAVAILABLE" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
	})
}
