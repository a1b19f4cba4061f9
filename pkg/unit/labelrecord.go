package unit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	labeldb "github.com/aiverse/datafabric/pkg/domain/label/db"
)

// LabelRecorder stores one annotation against a sample of an open
// labeling task.
type LabelRecorder struct {
	Labels  labeldb.Interface
	Schemas LabelSchemaValidator
}

func (LabelRecorder) Name() string {
	return "LabelRecorder"
}

func (u LabelRecorder) Execute(ctx context.Context, tenant domain.TenantContext, in domain.LabelRecordInput) (domain.LabelRecordResult, error) {
	taskID, err := uuid.Parse(in.TaskRef)
	if err != nil {
		return domain.LabelRecordResult{}, Errorf("VALIDATION_FAILED", "task_ref is not a task id: %s", in.TaskRef)
	}

	task, err := u.Labels.GetTask(ctx, tenant, taskID)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.LabelRecordResult{}, Errorf("TASK_NOT_FOUND", "task not found: %s", in.TaskRef)
	case err != nil:
		return domain.LabelRecordResult{}, coded(err, "STORAGE_FAILURE")
	}

	inTask := false
	for _, sampleID := range task.SampleIDs {
		if sampleID == in.SampleID {
			inTask = true
			break
		}
	}
	if !inTask {
		return domain.LabelRecordResult{}, Errorf("SAMPLE_NOT_IN_TASK", "sample not in task: %s", in.SampleID)
	}

	if err := u.Schemas.ValidateLabel(ctx, tenant, task.LabelSchemaRef, in.LabelValue); err != nil {
		return domain.LabelRecordResult{}, Errorf("SCHEMA_VIOLATION", "label violates schema: %s", err)
	}

	labelValue, err := json.Marshal(in.LabelValue)
	if err != nil {
		return domain.LabelRecordResult{}, Errorf("VALIDATION_FAILED", "label value: %s", err)
	}
	annotation, err := u.Labels.StoreAnnotation(ctx, tenant, labeldb.Annotation{
		TaskID:       task.TaskID,
		SampleID:     in.SampleID,
		LabelValue:   labelValue,
		AnnotatorRef: in.AnnotatorRef,
	})
	switch {
	case errors.Is(err, domerr.ErrConflict):
		return domain.LabelRecordResult{}, Errorf(
			"DUPLICATE_CONFLICT", "sample %s already labeled by this annotator", in.SampleID,
		)
	case err != nil:
		return domain.LabelRecordResult{}, coded(err, "STORAGE_FAILURE")
	}

	return domain.LabelRecordResult{
		AnnotationID: annotation.AnnotationID,
		RecordedAt:   annotation.RecordedAt,
	}, nil
}

func (u LabelRecorder) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.LabelRecordInput](inputs, "record_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
