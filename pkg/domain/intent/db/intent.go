// Package db defines the intent store: submitted intents and the
// execution units they decompose into.
package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
)

type Status string

const (
	Queued    Status = "queued"
	Running   Status = "running"
	Succeeded Status = "succeeded"
	Failed    Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case Queued, Running, Succeeded, Failed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Intent is a submitted request, decomposed into one or more executions.
type Intent struct {
	IntentID    uuid.UUID
	Name        string
	Inputs      json.RawMessage
	Tenant      domain.TenantContext
	TraceID     string
	Status      Status
	SubmittedAt time.Time
}

// Execution is one unit invocation of an intent. Executions of an
// intent run in Seq order; a failed execution fails the whole intent
// and no later execution of it runs.
type Execution struct {
	ExecutionID uuid.UUID
	IntentID    uuid.UUID
	Unit        string
	Seq         int
	Status      Status
	Result      json.RawMessage
	Failure     *Failure
	TraceID     string
	Tenant      domain.TenantContext
	UpdatedAt   time.Time
}

// Failure is the coded error a unit reported. Inconclusive marks
// failures where the unit reached no verdict.
type Failure struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Inconclusive bool   `json:"inconclusive,omitempty"`
}

// Interface is the intent store.
type Interface interface {
	// Submit records an intent and one queued execution per unit,
	// in the given order. units must not be empty.
	Submit(ctx context.Context, tenant domain.TenantContext, name string, inputs json.RawMessage, traceID string, units []string) (Intent, []Execution, error)

	// GetIntent fetches an intent by id. Returns ErrMissing when the
	// tenant has no such intent.
	GetIntent(ctx context.Context, tenant domain.TenantContext, intentID uuid.UUID) (Intent, error)

	// GetExecution fetches an execution by id. Returns ErrMissing when
	// the tenant has no such execution.
	GetExecution(ctx context.Context, tenant domain.TenantContext, executionID uuid.UUID) (Execution, error)

	// ListExecutions fetches the executions of an intent in Seq order.
	ListExecutions(ctx context.Context, tenant domain.TenantContext, intentID uuid.UUID) ([]Execution, error)

	// PickQueued claims the next runnable execution and marks it (and
	// its intent, if still queued) running. An execution is runnable
	// when it is queued and every lower-Seq execution of its intent has
	// succeeded. Returns ok = false when nothing is runnable.
	PickQueued(ctx context.Context) (Execution, Intent, bool, error)

	// Finish moves a running execution to succeeded or failed.
	//
	// On success of the last execution the intent succeeds. On failure
	// the intent fails and its remaining queued executions fail with
	// the same failure.
	Finish(ctx context.Context, executionID uuid.UUID, result json.RawMessage, failure *Failure) error
}
