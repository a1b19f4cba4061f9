package unit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	labeldb "github.com/aiverse/datafabric/pkg/domain/label/db"
	registrydb "github.com/aiverse/datafabric/pkg/domain/registry/db"
)

// LabelTaskCreator opens an annotation task over a sample of a
// registered dataset.
type LabelTaskCreator struct {
	Registry registrydb.Interface
	Schemas  LabelSchemaValidator
	Samples  SampleSelector
	Labels   labeldb.Interface
}

func (LabelTaskCreator) Name() string {
	return "LabelTaskCreator"
}

func (u LabelTaskCreator) Execute(ctx context.Context, tenant domain.TenantContext, in domain.LabelTaskInput) (domain.LabelTaskResult, error) {
	if in.SourceDatasetRef == "" || in.LabelSchemaRef == "" {
		return domain.LabelTaskResult{}, Errorf("VALIDATION_FAILED", "source_dataset_ref and label_schema_ref are required")
	}

	_, err := u.Registry.Get(ctx, tenant, in.SourceDatasetRef)
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return domain.LabelTaskResult{}, Errorf("DATASET_NOT_FOUND", "dataset not found: %s", in.SourceDatasetRef)
	case err != nil:
		return domain.LabelTaskResult{}, coded(err, "REGISTRY_FAILURE")
	}

	if err := u.Schemas.ValidateSchema(ctx, tenant, in.LabelSchemaRef); err != nil {
		return domain.LabelTaskResult{}, Errorf("SCHEMA_INVALID", "invalid label schema %s: %s", in.LabelSchemaRef, err)
	}

	sampleIDs, err := u.Samples.Select(ctx, tenant, in.SourceDatasetRef, in.SampleCriteria)
	if err != nil {
		return domain.LabelTaskResult{}, coded(err, "DATASET_READ_FAILURE")
	}
	if len(sampleIDs) == 0 {
		return domain.LabelTaskResult{}, Errorf("EMPTY_SELECTION", "sample criteria matched no records")
	}

	task, err := u.Labels.CreateTask(ctx, tenant, labeldb.Task{
		SourceDatasetRef:    in.SourceDatasetRef,
		LabelSchemaRef:      in.LabelSchemaRef,
		SampleIDs:           sampleIDs,
		QualityRequirements: in.QualityRequirements,
	})
	if err != nil {
		return domain.LabelTaskResult{}, coded(err, "STORAGE_FAILURE")
	}

	return domain.LabelTaskResult{
		TaskID:      task.TaskID,
		SampleCount: len(task.SampleIDs),
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
	}, nil
}

func (u LabelTaskCreator) Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error) {
	in, err := inputField[domain.LabelTaskInput](inputs, "task_input")
	if err != nil {
		return nil, err
	}
	result, err := u.Execute(ctx, tenant, in)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
