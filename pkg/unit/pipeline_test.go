package unit_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	stagingmock "github.com/aiverse/datafabric/pkg/domain/staging/mock"
	"github.com/aiverse/datafabric/pkg/engine/record"
	"github.com/aiverse/datafabric/pkg/unit"
	"github.com/aiverse/datafabric/pkg/utils/try"
)

// stagingFixture is a staging mock backed by an in-memory map.
func stagingFixture(blobs map[string][]byte) *stagingmock.Store {
	staged := stagingmock.New()
	staged.Impl.Read = func(_ context.Context, _ domain.TenantContext, ref string) ([]byte, error) {
		blob, ok := blobs[ref]
		if !ok {
			return nil, domerr.Missing{Table: "staging", Identity: ref}
		}
		return blob, nil
	}
	staged.Impl.Write = func(_ context.Context, _ domain.TenantContext, ref string, data []byte) error {
		blobs[ref] = data
		return nil
	}
	return staged
}

func TestTransformExecutor(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	t.Run("it transforms staged rows and stages the output", func(t *testing.T) {
		input := try.To(record.Encode([]record.Row{
			{"id": "a", "amount": 10.0},
			{"id": "b", "amount": -1.0},
		})).OrFatal(t)
		blobs := map[string][]byte{"in": input}

		testee := unit.TransformExecutor{Staging: stagingFixture(blobs)}
		result := try.To(testee.Execute(ctx, tenant, domain.TransformInput{
			InputDataRef:     "in",
			Definition:       json.RawMessage(`{"filter": "amount > 0", "columns": {"doubled": "amount * 2"}}`),
			OutputStagingRef: "out",
		})).OrFatal(t)

		if result.RowsProcessed != 2 || result.RowsOutput != 1 {
			t.Errorf("counts: %+v", result)
		}
		if result.TransformHash == "" {
			t.Error("transformation hash: empty")
		}
		out := try.To(record.Decode(blobs["out"])).OrFatal(t)
		if len(out) != 1 || out[0]["doubled"] != 20.0 {
			t.Errorf("staged output: %+v", out)
		}
	})

	t.Run("a missing input is an input read failure and nothing is staged", func(t *testing.T) {
		blobs := map[string][]byte{}

		testee := unit.TransformExecutor{Staging: stagingFixture(blobs)}
		_, err := testee.Execute(ctx, tenant, domain.TransformInput{
			InputDataRef:     "nope",
			Definition:       json.RawMessage(`{"filter": "true"}`),
			OutputStagingRef: "out",
		})

		if unit.CodeOf(err) != "INPUT_READ_FAILURE" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
		if _, staged := blobs["out"]; staged {
			t.Error("output was staged on failure")
		}
	})

	t.Run("a broken definition is a transform error", func(t *testing.T) {
		testee := unit.TransformExecutor{Staging: stagingFixture(map[string][]byte{})}
		_, err := testee.Execute(ctx, tenant, domain.TransformInput{
			InputDataRef:     "in",
			Definition:       json.RawMessage(`{"filter": "amount >"}`),
			OutputStagingRef: "out",
		})
		if unit.CodeOf(err) != "TRANSFORM_ERROR" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
	})
}

func TestDataJoiner(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	left := try.To(record.Encode([]record.Row{
		{"id": "a", "l": 1.0}, {"id": "b", "l": 2.0},
	})).OrFatal(t)
	right := try.To(record.Encode([]record.Row{
		{"id": "a", "r": 10.0},
	})).OrFatal(t)

	t.Run("it joins two staged inputs and stages the result", func(t *testing.T) {
		blobs := map[string][]byte{"left": left, "right": right}

		testee := unit.DataJoiner{Staging: stagingFixture(blobs)}
		result := try.To(testee.Execute(ctx, tenant, domain.JoinInput{
			LeftInputRef:     "left",
			RightInputRef:    "right",
			JoinKeys:         []string{"id"},
			JoinType:         domain.JoinInner,
			OutputStagingRef: "joined",
		})).OrFatal(t)

		if result.MatchedCount != 1 || result.UnmatchedLeft != 1 || result.RowsOutput != 1 {
			t.Errorf("result: %+v", result)
		}
	})

	t.Run("a key absent from one side is a key mismatch", func(t *testing.T) {
		blobs := map[string][]byte{"left": left, "right": right}

		testee := unit.DataJoiner{Staging: stagingFixture(blobs)}
		_, err := testee.Execute(ctx, tenant, domain.JoinInput{
			LeftInputRef:     "left",
			RightInputRef:    "right",
			JoinKeys:         []string{"customer_id"},
			JoinType:         domain.JoinInner,
			OutputStagingRef: "joined",
		})
		if unit.CodeOf(err) != "KEY_MISMATCH" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
	})

	t.Run("the failing side names itself in the failure code", func(t *testing.T) {
		blobs := map[string][]byte{"left": left}

		testee := unit.DataJoiner{Staging: stagingFixture(blobs)}
		_, err := testee.Execute(ctx, tenant, domain.JoinInput{
			LeftInputRef:     "left",
			RightInputRef:    "missing",
			JoinKeys:         []string{"id"},
			JoinType:         domain.JoinInner,
			OutputStagingRef: "joined",
		})
		if unit.CodeOf(err) != "RIGHT_INPUT_READ_FAILURE" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
	})
}

func TestAggregationComputer(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	t.Run("it aggregates staged rows per group", func(t *testing.T) {
		input := try.To(record.Encode([]record.Row{
			{"region": "eu", "amount": 10.0},
			{"region": "eu", "amount": 20.0},
			{"region": "us", "amount": 5.0},
		})).OrFatal(t)
		blobs := map[string][]byte{"in": input}

		testee := unit.AggregationComputer{Staging: stagingFixture(blobs)}
		result := try.To(testee.Execute(ctx, tenant, domain.AggregationInput{
			InputDataRef:     "in",
			GroupByColumns:   []string{"region"},
			Aggregations:     map[string]string{"amount": "sum"},
			OutputStagingRef: "out",
		})).OrFatal(t)

		if result.GroupsComputed != 2 {
			t.Errorf("groups: got %d, want 2", result.GroupsComputed)
		}
	})

	t.Run("an unknown aggregation function is rejected", func(t *testing.T) {
		testee := unit.AggregationComputer{Staging: stagingFixture(map[string][]byte{})}
		_, err := testee.Execute(ctx, tenant, domain.AggregationInput{
			InputDataRef:     "in",
			Aggregations:     map[string]string{"amount": "median"},
			OutputStagingRef: "out",
		})
		if unit.CodeOf(err) != "INVALID_AGGREGATION" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
	})
}
