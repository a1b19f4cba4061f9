package mock

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/intent/db"
)

type Intents struct {
	Impl struct {
		Submit         func(context.Context, domain.TenantContext, string, json.RawMessage, string, []string) (db.Intent, []db.Execution, error)
		GetIntent      func(context.Context, domain.TenantContext, uuid.UUID) (db.Intent, error)
		GetExecution   func(context.Context, domain.TenantContext, uuid.UUID) (db.Execution, error)
		ListExecutions func(context.Context, domain.TenantContext, uuid.UUID) ([]db.Execution, error)
		PickQueued     func(context.Context) (db.Execution, db.Intent, bool, error)
		Finish         func(context.Context, uuid.UUID, json.RawMessage, *db.Failure) error
	}
	Calls struct {
		Submit []struct {
			Tenant  domain.TenantContext
			Name    string
			Inputs  json.RawMessage
			TraceID string
			Units   []string
		}
		GetIntent []struct {
			Tenant   domain.TenantContext
			IntentID uuid.UUID
		}
		GetExecution []struct {
			Tenant      domain.TenantContext
			ExecutionID uuid.UUID
		}
		ListExecutions []struct {
			Tenant   domain.TenantContext
			IntentID uuid.UUID
		}
		PickQueued []struct{}
		Finish     []struct {
			ExecutionID uuid.UUID
			Result      json.RawMessage
			Failure     *db.Failure
		}
	}
}

func New() *Intents {
	return &Intents{}
}

var _ db.Interface = &Intents{}

func (m *Intents) Submit(ctx context.Context, tenant domain.TenantContext, name string, inputs json.RawMessage, traceID string, units []string) (db.Intent, []db.Execution, error) {
	m.Calls.Submit = append(m.Calls.Submit, struct {
		Tenant  domain.TenantContext
		Name    string
		Inputs  json.RawMessage
		TraceID string
		Units   []string
	}{tenant, name, inputs, traceID, units})
	if m.Impl.Submit != nil {
		return m.Impl.Submit(ctx, tenant, name, inputs, traceID, units)
	}
	panic(errors.New("intent mock: Submit should not be called"))
}

func (m *Intents) GetIntent(ctx context.Context, tenant domain.TenantContext, intentID uuid.UUID) (db.Intent, error) {
	m.Calls.GetIntent = append(m.Calls.GetIntent, struct {
		Tenant   domain.TenantContext
		IntentID uuid.UUID
	}{tenant, intentID})
	if m.Impl.GetIntent != nil {
		return m.Impl.GetIntent(ctx, tenant, intentID)
	}
	panic(errors.New("intent mock: GetIntent should not be called"))
}

func (m *Intents) GetExecution(ctx context.Context, tenant domain.TenantContext, executionID uuid.UUID) (db.Execution, error) {
	m.Calls.GetExecution = append(m.Calls.GetExecution, struct {
		Tenant      domain.TenantContext
		ExecutionID uuid.UUID
	}{tenant, executionID})
	if m.Impl.GetExecution != nil {
		return m.Impl.GetExecution(ctx, tenant, executionID)
	}
	panic(errors.New("intent mock: GetExecution should not be called"))
}

func (m *Intents) ListExecutions(ctx context.Context, tenant domain.TenantContext, intentID uuid.UUID) ([]db.Execution, error) {
	m.Calls.ListExecutions = append(m.Calls.ListExecutions, struct {
		Tenant   domain.TenantContext
		IntentID uuid.UUID
	}{tenant, intentID})
	if m.Impl.ListExecutions != nil {
		return m.Impl.ListExecutions(ctx, tenant, intentID)
	}
	panic(errors.New("intent mock: ListExecutions should not be called"))
}

func (m *Intents) PickQueued(ctx context.Context) (db.Execution, db.Intent, bool, error) {
	m.Calls.PickQueued = append(m.Calls.PickQueued, struct{}{})
	if m.Impl.PickQueued != nil {
		return m.Impl.PickQueued(ctx)
	}
	panic(errors.New("intent mock: PickQueued should not be called"))
}

func (m *Intents) Finish(ctx context.Context, executionID uuid.UUID, result json.RawMessage, failure *db.Failure) error {
	m.Calls.Finish = append(m.Calls.Finish, struct {
		ExecutionID uuid.UUID
		Result      json.RawMessage
		Failure     *db.Failure
	}{executionID, result, failure})
	if m.Impl.Finish != nil {
		return m.Impl.Finish(ctx, executionID, result, failure)
	}
	panic(errors.New("intent mock: Finish should not be called"))
}
