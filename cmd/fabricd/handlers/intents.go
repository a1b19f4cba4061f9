package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/aiverse/datafabric/pkg/api/types/errors"
	apiintents "github.com/aiverse/datafabric/pkg/api/types/intents"
	"github.com/aiverse/datafabric/pkg/auth"
	"github.com/aiverse/datafabric/pkg/domain"
	intentdb "github.com/aiverse/datafabric/pkg/domain/intent/db"
	"github.com/aiverse/datafabric/pkg/mcop/intents"
	"github.com/aiverse/datafabric/pkg/ratelimit"
)

// computeIntents consume the compute budget; read-only intents the
// read budget; everything else counts as a write.
var computeIntents = map[string]bool{
	"TransformData":       true,
	"MaterializeFeatures": true,
	"ProfileData":         true,
	"MergeDataBranches":   true,
	"ValidateSchema":      true,
}

var readIntents = map[string]bool{
	"RetrieveFeatures": true,
	"TestConnection":   true,
	"DiscoverSchema":   true,
	"QueryLocality":    true,
}

func classOf(intent string) ratelimit.Class {
	switch {
	case computeIntents[intent]:
		return ratelimit.Compute
	case readIntents[intent]:
		return ratelimit.Read
	}
	return ratelimit.Write
}

// PostIntentHandler accepts an intent, decomposes it into its unit
// plan and queues the executions.
//
// The rate-limit class of the request depends on the intent, so the
// budget check happens here rather than in route middleware.
func PostIntentHandler(store intentdb.Interface, limiter *ratelimit.Limiter) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		tenant, ok := auth.Tenant(c)
		if !ok {
			return apierr.Unauthorized("bearer token is required")
		}

		var req apiintents.Request
		if err := c.Bind(&req); err != nil {
			return apierr.BadRequest("request body should be a JSON intent", err)
		}
		if req.Domain != domain.Domain {
			return apierr.BadRequest("intent is not addressed to the data-fabric domain", nil)
		}
		if req.Intent == "" {
			return apierr.BadRequest("intent name is required", nil)
		}

		// the body may restate the tenant, but the token decides
		if (req.Tenant != domain.TenantContext{}) && req.Tenant != tenant {
			return apierr.AccessDenied("tenant_context does not match the bearer token")
		}

		units, known := intents.Decompose(req.Intent)
		if !known {
			return apierr.BadRequest("unknown intent: "+req.Intent, nil)
		}

		class := classOf(req.Intent)
		if limiter != nil && !limiter.Allow(tenant, class) {
			return apierr.TooManyRequests(string(class))
		}

		inputs := req.Inputs
		if len(inputs) == 0 {
			inputs = json.RawMessage(`{}`)
		}

		intent, executions, err := store.Submit(ctx, tenant, req.Intent, inputs, req.TraceID, units)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusAccepted, apiintents.Response{
			IntentID:    intent.IntentID,
			Status:      string(intent.Status),
			ExecutionID: executions[0].ExecutionID,
			TraceID:     intent.TraceID,
		})
	}
}
