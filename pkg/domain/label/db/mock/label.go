package mock

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/domain/label/db"
)

type Labels struct {
	Impl struct {
		CreateTask      func(context.Context, domain.TenantContext, db.Task) (db.Task, error)
		GetTask         func(context.Context, domain.TenantContext, uuid.UUID) (db.Task, error)
		StoreAnnotation func(context.Context, domain.TenantContext, db.Annotation) (db.Annotation, error)
	}
	Calls struct {
		CreateTask []struct {
			Tenant domain.TenantContext
			Task   db.Task
		}
		GetTask []struct {
			Tenant domain.TenantContext
			TaskID uuid.UUID
		}
		StoreAnnotation []struct {
			Tenant     domain.TenantContext
			Annotation db.Annotation
		}
	}
}

func New() *Labels {
	return &Labels{}
}

var _ db.Interface = &Labels{}

func (m *Labels) CreateTask(ctx context.Context, tenant domain.TenantContext, task db.Task) (db.Task, error) {
	m.Calls.CreateTask = append(m.Calls.CreateTask, struct {
		Tenant domain.TenantContext
		Task   db.Task
	}{tenant, task})
	if m.Impl.CreateTask != nil {
		return m.Impl.CreateTask(ctx, tenant, task)
	}
	panic(errors.New("label mock: CreateTask should not be called"))
}

func (m *Labels) GetTask(ctx context.Context, tenant domain.TenantContext, taskID uuid.UUID) (db.Task, error) {
	m.Calls.GetTask = append(m.Calls.GetTask, struct {
		Tenant domain.TenantContext
		TaskID uuid.UUID
	}{tenant, taskID})
	if m.Impl.GetTask != nil {
		return m.Impl.GetTask(ctx, tenant, taskID)
	}
	panic(errors.New("label mock: GetTask should not be called"))
}

func (m *Labels) StoreAnnotation(ctx context.Context, tenant domain.TenantContext, a db.Annotation) (db.Annotation, error) {
	m.Calls.StoreAnnotation = append(m.Calls.StoreAnnotation, struct {
		Tenant     domain.TenantContext
		Annotation db.Annotation
	}{tenant, a})
	if m.Impl.StoreAnnotation != nil {
		return m.Impl.StoreAnnotation(ctx, tenant, a)
	}
	panic(errors.New("label mock: StoreAnnotation should not be called"))
}
