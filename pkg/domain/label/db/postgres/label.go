package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	kpool "github.com/aiverse/datafabric/pkg/conn/postgres"
	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	pgclass "github.com/aiverse/datafabric/pkg/domain/errors/postgres"
	"github.com/aiverse/datafabric/pkg/domain/label/db"
)

type labelPG struct { // implements db.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) db.Interface {
	return &labelPG{pool: pool}
}

var _ db.Interface = &labelPG{}

func (l *labelPG) CreateTask(ctx context.Context, tenant domain.TenantContext, task db.Task) (db.Task, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return db.Task{}, pgclass.Classify(err)
	}
	defer conn.Release()

	task.TaskID = uuid.New()
	task.Status = db.TaskOpen
	task.CreatedAt = time.Now().UTC()

	requirements, err := json.Marshal(task.QualityRequirements)
	if err != nil {
		return db.Task{}, err
	}

	_, err = conn.Exec(
		ctx,
		`
		insert into "label_task" (
			"task_id", "org_id", "workspace_id",
			"source_dataset_ref", "label_schema_ref", "sample_ids",
			"quality_requirements", "status", "created_at"
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
		task.TaskID, tenant.OrganizationID, tenant.WorkspaceID,
		task.SourceDatasetRef, task.LabelSchemaRef, task.SampleIDs,
		requirements, string(task.Status), task.CreatedAt,
	)
	if err != nil {
		return db.Task{}, pgclass.Classify(err)
	}
	return task, nil
}

func (l *labelPG) GetTask(ctx context.Context, tenant domain.TenantContext, taskID uuid.UUID) (db.Task, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return db.Task{}, pgclass.Classify(err)
	}
	defer conn.Release()

	var (
		task         db.Task
		status       string
		requirements []byte
	)
	err = conn.QueryRow(
		ctx,
		`
		select
			"task_id", "source_dataset_ref", "label_schema_ref",
			"sample_ids", "quality_requirements", "status", "created_at"
		from "label_task"
		where "task_id" = $1 and "org_id" = $2 and "workspace_id" = $3
		`,
		taskID, tenant.OrganizationID, tenant.WorkspaceID,
	).Scan(
		&task.TaskID, &task.SourceDatasetRef, &task.LabelSchemaRef,
		&task.SampleIDs, &requirements, &status, &task.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return db.Task{}, domerr.Missing{Table: "label_task", Identity: taskID.String()}
	}
	if err != nil {
		return db.Task{}, pgclass.Classify(err)
	}
	task.Status = db.TaskStatus(status)
	if len(requirements) != 0 {
		if err := json.Unmarshal(requirements, &task.QualityRequirements); err != nil {
			return db.Task{}, err
		}
	}
	return task, nil
}

func (l *labelPG) StoreAnnotation(ctx context.Context, tenant domain.TenantContext, a db.Annotation) (db.Annotation, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return db.Annotation{}, pgclass.Classify(err)
	}
	defer conn.Release()

	a.AnnotationID = uuid.New()
	a.RecordedAt = time.Now().UTC()

	_, err = conn.Exec(
		ctx,
		`
		insert into "label_annotation" (
			"annotation_id", "org_id", "workspace_id",
			"task_id", "sample_id", "label_value",
			"annotator_ref", "recorded_at"
		) values ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
		a.AnnotationID, tenant.OrganizationID, tenant.WorkspaceID,
		a.TaskID, a.SampleID, a.LabelValue,
		a.AnnotatorRef, a.RecordedAt,
	)
	if err != nil {
		return db.Annotation{}, pgclass.Classify(err)
	}
	return a, nil
}
