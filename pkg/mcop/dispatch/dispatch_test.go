package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
	intentdb "github.com/aiverse/datafabric/pkg/domain/intent/db"
	intentmock "github.com/aiverse/datafabric/pkg/domain/intent/db/mock"
	"github.com/aiverse/datafabric/pkg/mcop/dispatch"
	"github.com/aiverse/datafabric/pkg/unit"
)

type fakeRunner struct {
	name   string
	result json.RawMessage
	err    error
}

func (f fakeRunner) Name() string { return f.name }

func (f fakeRunner) Run(context.Context, domain.TenantContext, json.RawMessage) (json.RawMessage, error) {
	return f.result, f.err
}

func tenantFixture() domain.TenantContext {
	return domain.TenantContext{
		OrganizationID: uuid.MustParse("9bb9dfae-07b5-4b21-9e3c-68e8a9e70001"),
		WorkspaceID:    uuid.MustParse("9bb9dfae-07b5-4b21-9e3c-68e8a9e70002"),
		UserID:         uuid.MustParse("9bb9dfae-07b5-4b21-9e3c-68e8a9e70003"),
	}
}

func queuedExecution(unit string) (intentdb.Execution, intentdb.Intent) {
	intentID := uuid.New()
	execution := intentdb.Execution{
		ExecutionID: uuid.New(),
		IntentID:    intentID,
		Unit:        unit,
		Status:      intentdb.Running,
		Tenant:      tenantFixture(),
		TraceID:     "trace-d",
	}
	intent := intentdb.Intent{
		IntentID: intentID,
		Name:     "ProfileData",
		Inputs:   json.RawMessage(`{"profile_input": {"dataset_ref": "ds"}}`),
		Tenant:   tenantFixture(),
		Status:   intentdb.Running,
	}
	return execution, intent
}

func TestDispatcherStep(t *testing.T) {
	ctx := context.Background()

	t.Run("a succeeding unit finishes its execution with the result", func(t *testing.T) {
		execution, intent := queuedExecution("DataProfiler")
		store := intentmock.New()
		store.Impl.PickQueued = func(context.Context) (intentdb.Execution, intentdb.Intent, bool, error) {
			return execution, intent, true, nil
		}
		store.Impl.Finish = func(_ context.Context, executionID uuid.UUID, result json.RawMessage, failure *intentdb.Failure) error {
			if executionID != execution.ExecutionID {
				t.Errorf("execution id: got %s", executionID)
			}
			if failure != nil {
				t.Errorf("failure: %+v", failure)
			}
			if string(result) != `{"rows": 3}` {
				t.Errorf("result: %s", result)
			}
			return nil
		}

		testee := &dispatch.Dispatcher{
			Intents: store,
			Units: unit.NewRegistry(
				fakeRunner{name: "DataProfiler", result: json.RawMessage(`{"rows": 3}`)},
			),
		}
		busy, err := testee.Step(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !busy {
			t.Error("step should report work done")
		}
		if len(store.Calls.Finish) != 1 {
			t.Errorf("finish calls: %d", len(store.Calls.Finish))
		}
	})

	t.Run("a failing unit records its coded failure", func(t *testing.T) {
		execution, intent := queuedExecution("DataProfiler")
		store := intentmock.New()
		store.Impl.PickQueued = func(context.Context) (intentdb.Execution, intentdb.Intent, bool, error) {
			return execution, intent, true, nil
		}
		store.Impl.Finish = func(_ context.Context, _ uuid.UUID, result json.RawMessage, failure *intentdb.Failure) error {
			if failure == nil || failure.Code != "DATASET_NOT_FOUND" {
				t.Errorf("failure: %+v", failure)
			}
			if result != nil {
				t.Errorf("result: %s", result)
			}
			return nil
		}

		testee := &dispatch.Dispatcher{
			Intents: store,
			Units: unit.NewRegistry(
				fakeRunner{name: "DataProfiler", err: unit.Errorf("DATASET_NOT_FOUND", "dataset not found")},
			),
		}
		if _, err := testee.Step(ctx); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("an inconclusive unit failure keeps its mark in the record", func(t *testing.T) {
		execution, intent := queuedExecution("QualityGateEvaluator")
		store := intentmock.New()
		store.Impl.PickQueued = func(context.Context) (intentdb.Execution, intentdb.Intent, bool, error) {
			return execution, intent, true, nil
		}
		store.Impl.Finish = func(_ context.Context, _ uuid.UUID, _ json.RawMessage, failure *intentdb.Failure) error {
			if failure == nil || failure.Code != "DATASET_READ_FAILURE" || !failure.Inconclusive {
				t.Errorf("failure: %+v", failure)
			}
			return nil
		}

		testee := &dispatch.Dispatcher{
			Intents: store,
			Units: unit.NewRegistry(
				fakeRunner{
					name: "QualityGateEvaluator",
					err:  unit.Inconclusive(errors.New("read: connection reset"), "DATASET_READ_FAILURE"),
				},
			),
		}
		if _, err := testee.Step(ctx); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("an execution naming no registered unit fails instead of crashing", func(t *testing.T) {
		execution, intent := queuedExecution("GhostUnit")
		store := intentmock.New()
		store.Impl.PickQueued = func(context.Context) (intentdb.Execution, intentdb.Intent, bool, error) {
			return execution, intent, true, nil
		}
		store.Impl.Finish = func(_ context.Context, _ uuid.UUID, _ json.RawMessage, failure *intentdb.Failure) error {
			if failure == nil || failure.Code != "EXECUTION_FAILED" {
				t.Errorf("failure: %+v", failure)
			}
			return nil
		}

		testee := &dispatch.Dispatcher{Intents: store, Units: unit.NewRegistry()}
		if _, err := testee.Step(ctx); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("an empty queue is not busy", func(t *testing.T) {
		store := intentmock.New()
		store.Impl.PickQueued = func(context.Context) (intentdb.Execution, intentdb.Intent, bool, error) {
			return intentdb.Execution{}, intentdb.Intent{}, false, nil
		}

		testee := &dispatch.Dispatcher{Intents: store, Units: unit.NewRegistry()}
		busy, err := testee.Step(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if busy {
			t.Error("step should report idle")
		}
	})
}
