// Package db defines the labeling store: annotation tasks and the
// labels recorded against their samples.
package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
)

type TaskStatus string

const (
	TaskOpen      TaskStatus = "open"
	TaskCompleted TaskStatus = "completed"
)

// Task is an annotation task over a sample of a source dataset.
type Task struct {
	TaskID              uuid.UUID
	SourceDatasetRef    string
	LabelSchemaRef      string
	SampleIDs           []string
	QualityRequirements map[string]float64
	Status              TaskStatus
	CreatedAt           time.Time
}

// Annotation is one recorded label.
type Annotation struct {
	AnnotationID uuid.UUID
	TaskID       uuid.UUID
	SampleID     string
	LabelValue   []byte
	AnnotatorRef uuid.UUID
	RecordedAt   time.Time
}

// Interface is the labeling store.
type Interface interface {
	// CreateTask records a new open task with its selected samples.
	CreateTask(ctx context.Context, tenant domain.TenantContext, task Task) (Task, error)

	// GetTask fetches a task by id. Returns ErrMissing when the tenant
	// has no such task.
	GetTask(ctx context.Context, tenant domain.TenantContext, taskID uuid.UUID) (Task, error)

	// StoreAnnotation records one label for a sample of a task.
	// Returns ErrConflict when the (task, sample, annotator) triple is
	// already labeled.
	StoreAnnotation(ctx context.Context, tenant domain.TenantContext, a Annotation) (Annotation, error)
}
