package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apierr "github.com/aiverse/datafabric/pkg/api/types/errors"
	apiintents "github.com/aiverse/datafabric/pkg/api/types/intents"
	"github.com/aiverse/datafabric/pkg/auth"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	intentdb "github.com/aiverse/datafabric/pkg/domain/intent/db"
)

// GetExecutionHandler serves the status of a single execution.
func GetExecutionHandler(store intentdb.Interface, paramName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		tenant, ok := auth.Tenant(c)
		if !ok {
			return apierr.Unauthorized("bearer token is required")
		}

		executionID, err := uuid.Parse(c.Param(paramName))
		if err != nil {
			return apierr.BadRequest("execution id should be a UUID", err)
		}

		execution, err := store.GetExecution(ctx, tenant, executionID)
		switch {
		case errors.Is(err, domerr.ErrMissing):
			return apierr.NotFound("no such execution: " + executionID.String())
		case err != nil:
			return apierr.InternalServerError(err)
		}

		return c.JSON(
			http.StatusOK,
			apiintents.ComposeDetail(execution, apierr.EnvelopeCode),
		)
	}
}

// intentView is the body of GET /api/mcop/intents/:intentId.
type intentView struct {
	IntentID    uuid.UUID                   `json:"intent_id"`
	Intent      string                      `json:"intent"`
	Inputs      json.RawMessage             `json:"inputs"`
	Status      string                      `json:"status"`
	TraceID     string                      `json:"trace_id,omitempty"`
	SubmittedAt time.Time                   `json:"submitted_at"`
	Executions  []apiintents.ExecutionDetail `json:"executions"`
}

// GetIntentHandler serves an intent with all of its executions.
func GetIntentHandler(store intentdb.Interface, paramName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		tenant, ok := auth.Tenant(c)
		if !ok {
			return apierr.Unauthorized("bearer token is required")
		}

		intentID, err := uuid.Parse(c.Param(paramName))
		if err != nil {
			return apierr.BadRequest("intent id should be a UUID", err)
		}

		intent, err := store.GetIntent(ctx, tenant, intentID)
		switch {
		case errors.Is(err, domerr.ErrMissing):
			return apierr.NotFound("no such intent: " + intentID.String())
		case err != nil:
			return apierr.InternalServerError(err)
		}

		executions, err := store.ListExecutions(ctx, tenant, intentID)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		view := intentView{
			IntentID:    intent.IntentID,
			Intent:      intent.Name,
			Inputs:      intent.Inputs,
			Status:      string(intent.Status),
			TraceID:     intent.TraceID,
			SubmittedAt: intent.SubmittedAt,
			Executions:  make([]apiintents.ExecutionDetail, 0, len(executions)),
		}
		for _, execution := range executions {
			view.Executions = append(view.Executions, apiintents.ComposeDetail(execution, apierr.EnvelopeCode))
		}
		return c.JSON(http.StatusOK, view)
	}
}
