// Package intents holds the wire types of the intent endpoints.
package intents

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
	intentdb "github.com/aiverse/datafabric/pkg/domain/intent/db"
)

// Request is the body of POST /api/mcop/intents.
type Request struct {
	Domain  string               `json:"domain"`
	Intent  string               `json:"intent"`
	Inputs  json.RawMessage      `json:"inputs"`
	Tenant  domain.TenantContext `json:"tenant_context"`
	TraceID string               `json:"trace_id,omitempty"`
}

// Response acknowledges an accepted intent. ExecutionID is the first
// execution of the plan; the rest are reachable via the intent.
type Response struct {
	IntentID    uuid.UUID `json:"intent_id"`
	Status      string    `json:"status"`
	ExecutionID uuid.UUID `json:"execution_id"`
	TraceID     string    `json:"trace_id,omitempty"`
}

// ExecutionError is a failed execution's error on the wire.
type ExecutionError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	UnitCode     string `json:"unit_code,omitempty"`
	Inconclusive bool   `json:"inconclusive,omitempty"`
}

// ExecutionDetail is the body of GET /api/mcop/executions/:executionId.
type ExecutionDetail struct {
	ExecutionID uuid.UUID       `json:"execution_id"`
	IntentID    uuid.UUID       `json:"intent_id"`
	Unit        string          `json:"unit"`
	Seq         int             `json:"seq"`
	Status      string          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *ExecutionError `json:"error,omitempty"`
	TraceID     string          `json:"trace_id,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ComposeDetail builds the wire view of a stored execution.
//
// The error code is translated into the envelope vocabulary; the raw
// unit code rides along in unit_code.
func ComposeDetail(execution intentdb.Execution, envelopeCode func(string) string) ExecutionDetail {
	detail := ExecutionDetail{
		ExecutionID: execution.ExecutionID,
		IntentID:    execution.IntentID,
		Unit:        execution.Unit,
		Seq:         execution.Seq,
		Status:      string(execution.Status),
		Result:      execution.Result,
		TraceID:     execution.TraceID,
		UpdatedAt:   execution.UpdatedAt,
	}
	if failure := execution.Failure; failure != nil {
		detail.Error = &ExecutionError{
			Code:         envelopeCode(failure.Code),
			Message:      failure.Message,
			UnitCode:     failure.Code,
			Inconclusive: failure.Inconclusive,
		}
	}
	return detail
}
