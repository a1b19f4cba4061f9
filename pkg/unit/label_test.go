package unit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
	labeldb "github.com/aiverse/datafabric/pkg/domain/label/db"
	labelmock "github.com/aiverse/datafabric/pkg/domain/label/db/mock"
	registrydb "github.com/aiverse/datafabric/pkg/domain/registry/db"
	registrymock "github.com/aiverse/datafabric/pkg/domain/registry/db/mock"
	"github.com/aiverse/datafabric/pkg/unit"
	"github.com/aiverse/datafabric/pkg/utils/try"
)

type fakeLabelSchemas struct {
	schemaErr error
	labelErr  error
}

func (f fakeLabelSchemas) ValidateSchema(context.Context, domain.TenantContext, string) error {
	return f.schemaErr
}

func (f fakeLabelSchemas) ValidateLabel(context.Context, domain.TenantContext, string, any) error {
	return f.labelErr
}

type fakeSamples struct {
	ids []string
}

func (f fakeSamples) Select(context.Context, domain.TenantContext, string, map[string]any) ([]string, error) {
	return f.ids, nil
}

func TestLabelTaskCreator(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()

	registry := registrymock.New()
	registry.Impl.Get = func(_ context.Context, _ domain.TenantContext, ref string) (registrydb.DataAsset, error) {
		return registrydb.DataAsset{CardRef: ref}, nil
	}

	t.Run("it opens a task over the selected samples", func(t *testing.T) {
		labels := labelmock.New()
		labels.Impl.CreateTask = func(_ context.Context, _ domain.TenantContext, task labeldb.Task) (labeldb.Task, error) {
			task.TaskID = uuid.New()
			task.Status = labeldb.TaskOpen
			task.CreatedAt = time.Now().UTC()
			return task, nil
		}

		testee := unit.LabelTaskCreator{
			Registry: registry,
			Schemas:  fakeLabelSchemas{},
			Samples:  fakeSamples{ids: []string{"s1", "s2", "s3"}},
			Labels:   labels,
		}
		result := try.To(testee.Execute(ctx, tenant, domain.LabelTaskInput{
			SourceDatasetRef: "orders@1.0.0",
			LabelSchemaRef:   "schemas/sentiment",
		})).OrFatal(t)

		if result.SampleCount != 3 || result.Status != "open" {
			t.Errorf("result: %+v", result)
		}
	})

	t.Run("criteria matching nothing is an empty selection", func(t *testing.T) {
		testee := unit.LabelTaskCreator{
			Registry: registry,
			Schemas:  fakeLabelSchemas{},
			Samples:  fakeSamples{},
			Labels:   labelmock.New(),
		}
		_, err := testee.Execute(ctx, tenant, domain.LabelTaskInput{
			SourceDatasetRef: "orders@1.0.0",
			LabelSchemaRef:   "schemas/sentiment",
		})
		if unit.CodeOf(err) != "EMPTY_SELECTION" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
	})

	t.Run("an invalid label schema is rejected", func(t *testing.T) {
		testee := unit.LabelTaskCreator{
			Registry: registry,
			Schemas:  fakeLabelSchemas{schemaErr: errors.New("unknown field kind")},
			Samples:  fakeSamples{ids: []string{"s1"}},
			Labels:   labelmock.New(),
		}
		_, err := testee.Execute(ctx, tenant, domain.LabelTaskInput{
			SourceDatasetRef: "orders@1.0.0",
			LabelSchemaRef:   "schemas/broken",
		})
		if unit.CodeOf(err) != "SCHEMA_INVALID" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
	})
}

func TestLabelRecorder(t *testing.T) {
	ctx := context.Background()
	tenant := tenantFixture()
	taskID := uuid.New()

	labelsWithTask := func() *labelmock.Labels {
		labels := labelmock.New()
		labels.Impl.GetTask = func(context.Context, domain.TenantContext, uuid.UUID) (labeldb.Task, error) {
			return labeldb.Task{
				TaskID:         taskID,
				LabelSchemaRef: "schemas/sentiment",
				SampleIDs:      []string{"s1", "s2"},
				Status:         labeldb.TaskOpen,
			}, nil
		}
		return labels
	}

	t.Run("it records a label for a sample of the task", func(t *testing.T) {
		labels := labelsWithTask()
		labels.Impl.StoreAnnotation = func(_ context.Context, _ domain.TenantContext, a labeldb.Annotation) (labeldb.Annotation, error) {
			a.AnnotationID = uuid.New()
			a.RecordedAt = time.Now().UTC()
			return a, nil
		}

		testee := unit.LabelRecorder{Labels: labels, Schemas: fakeLabelSchemas{}}
		result := try.To(testee.Execute(ctx, tenant, domain.LabelRecordInput{
			TaskRef:      taskID.String(),
			SampleID:     "s1",
			LabelValue:   "positive",
			AnnotatorRef: uuid.New(),
		})).OrFatal(t)

		if result.AnnotationID == uuid.Nil {
			t.Error("annotation id: zero")
		}
	})

	t.Run("a sample outside the task is rejected", func(t *testing.T) {
		testee := unit.LabelRecorder{Labels: labelsWithTask(), Schemas: fakeLabelSchemas{}}
		_, err := testee.Execute(ctx, tenant, domain.LabelRecordInput{
			TaskRef:    taskID.String(),
			SampleID:   "s99",
			LabelValue: "positive",
		})
		if unit.CodeOf(err) != "SAMPLE_NOT_IN_TASK" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
	})

	t.Run("a double label by the same annotator is a conflict", func(t *testing.T) {
		labels := labelsWithTask()
		labels.Impl.StoreAnnotation = func(context.Context, domain.TenantContext, labeldb.Annotation) (labeldb.Annotation, error) {
			return labeldb.Annotation{}, domerr.Conflict{Table: "label_annotation", Identity: "s1"}
		}

		testee := unit.LabelRecorder{Labels: labels, Schemas: fakeLabelSchemas{}}
		_, err := testee.Execute(ctx, tenant, domain.LabelRecordInput{
			TaskRef:    taskID.String(),
			SampleID:   "s1",
			LabelValue: "positive",
		})
		if unit.CodeOf(err) != "DUPLICATE_CONFLICT" {
			t.Errorf("code: got %s", unit.CodeOf(err))
		}
	})
}
