package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	apiintents "github.com/aiverse/datafabric/pkg/api/types/intents"
	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	intentdb "github.com/aiverse/datafabric/pkg/domain/intent/db"
	intentmock "github.com/aiverse/datafabric/pkg/domain/intent/db/mock"
	"github.com/aiverse/datafabric/pkg/utils/try"

	"github.com/aiverse/datafabric/cmd/fabricd/handlers"
)

func TestGetExecutionHandler(t *testing.T) {
	executionID := uuid.New()
	intentID := uuid.New()

	t.Run("a failed execution carries the envelope code and the unit code", func(t *testing.T) {
		store := intentmock.New()
		store.Impl.GetExecution = func(_ context.Context, _ domain.TenantContext, got uuid.UUID) (intentdb.Execution, error) {
			if got != executionID {
				t.Errorf("execution id: got %s", got)
			}
			return intentdb.Execution{
				ExecutionID: executionID,
				IntentID:    intentID,
				Unit:        "DataWriter",
				Seq:         1,
				Status:      intentdb.Failed,
				Failure:     &intentdb.Failure{Code: "TARGET_NOT_FOUND", Message: "dataset not found"},
				TraceID:     "trace-9",
				UpdatedAt:   time.Now().UTC(),
			}, nil
		}

		testee := handlers.GetExecutionHandler(store, "executionId")
		req := httptest.NewRequest(http.MethodGet, "/api/mcop/executions/"+executionID.String()+"/", nil)
		rec := invoke(t, testee, req, map[string]string{"executionId": executionID.String()})

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, body: %s", rec.Code, rec.Body)
		}
		var detail apiintents.ExecutionDetail
		try.To(0, json.Unmarshal(rec.Body.Bytes(), &detail)).OrFatal(t)
		if detail.Status != "failed" || detail.Error == nil {
			t.Fatalf("detail: %+v", detail)
		}
		if detail.Error.Code != "DATA_NOT_FOUND" || detail.Error.UnitCode != "TARGET_NOT_FOUND" {
			t.Errorf("error: %+v", detail.Error)
		}
	})

	t.Run("another tenant's execution does not exist", func(t *testing.T) {
		store := intentmock.New()
		store.Impl.GetExecution = func(_ context.Context, _ domain.TenantContext, got uuid.UUID) (intentdb.Execution, error) {
			return intentdb.Execution{}, domerr.Missing{Table: "execution", Identity: got.String()}
		}

		testee := handlers.GetExecutionHandler(store, "executionId")
		req := httptest.NewRequest(http.MethodGet, "/api/mcop/executions/"+executionID.String()+"/", nil)
		rec := invoke(t, testee, req, map[string]string{"executionId": executionID.String()})

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status: got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "DATA_NOT_FOUND") {
			t.Errorf("body: %s", rec.Body)
		}
	})

	t.Run("a non-uuid execution id is a validation failure", func(t *testing.T) {
		testee := handlers.GetExecutionHandler(intentmock.New(), "executionId")
		req := httptest.NewRequest(http.MethodGet, "/api/mcop/executions/not-a-uuid/", nil)
		rec := invoke(t, testee, req, map[string]string{"executionId": "not-a-uuid"})

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d", rec.Code)
		}
	})
}

func TestGetIntentHandler(t *testing.T) {
	intentID := uuid.New()

	t.Run("an intent comes back with its executions in order", func(t *testing.T) {
		store := intentmock.New()
		store.Impl.GetIntent = func(_ context.Context, tenant domain.TenantContext, got uuid.UUID) (intentdb.Intent, error) {
			return intentdb.Intent{
				IntentID: intentID, Name: "MaterializeFeatures",
				Inputs: json.RawMessage(`{}`), Tenant: tenant,
				Status: intentdb.Running, SubmittedAt: time.Now().UTC(),
			}, nil
		}
		store.Impl.ListExecutions = func(context.Context, domain.TenantContext, uuid.UUID) ([]intentdb.Execution, error) {
			return []intentdb.Execution{
				{ExecutionID: uuid.New(), IntentID: intentID, Unit: "FeatureComputer", Seq: 0, Status: intentdb.Succeeded},
				{ExecutionID: uuid.New(), IntentID: intentID, Unit: "FeatureStoreWriter", Seq: 1, Status: intentdb.Running},
			}, nil
		}

		testee := handlers.GetIntentHandler(store, "intentId")
		req := httptest.NewRequest(http.MethodGet, "/api/mcop/intents/"+intentID.String()+"/", nil)
		rec := invoke(t, testee, req, map[string]string{"intentId": intentID.String()})

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, body: %s", rec.Code, rec.Body)
		}
		var view struct {
			Intent     string                       `json:"intent"`
			Status     string                       `json:"status"`
			Executions []apiintents.ExecutionDetail `json:"executions"`
		}
		try.To(0, json.Unmarshal(rec.Body.Bytes(), &view)).OrFatal(t)
		if view.Intent != "MaterializeFeatures" || view.Status != "running" {
			t.Errorf("view: %+v", view)
		}
		if len(view.Executions) != 2 || view.Executions[0].Unit != "FeatureComputer" {
			t.Errorf("executions: %+v", view.Executions)
		}
	})
}
