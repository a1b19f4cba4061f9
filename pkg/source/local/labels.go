package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aiverse/datafabric/pkg/domain"
)

// LabelSchemas validates label schemas and label values. A schema ref
// names a JSON file under the root:
//
//	{"kind": "classification", "classes": ["positive", "negative"]}
//	{"kind": "numeric", "min": 0, "max": 5}
//	{"kind": "free_text"}
type LabelSchemas struct {
	Root string
}

type labelSchema struct {
	Kind    string   `json:"kind"`
	Classes []string `json:"classes"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
}

func (l LabelSchemas) load(tenant domain.TenantContext, schemaRef string) (labelSchema, error) {
	path, err := refPath(l.Root, tenant, schemaRef)
	if err != nil {
		return labelSchema{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return labelSchema{}, fmt.Errorf("label schema %s: %w", schemaRef, err)
	}
	var schema labelSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return labelSchema{}, fmt.Errorf("label schema %s: %w", schemaRef, err)
	}
	return schema, nil
}

func (l LabelSchemas) ValidateSchema(_ context.Context, tenant domain.TenantContext, schemaRef string) error {
	schema, err := l.load(tenant, schemaRef)
	if err != nil {
		return err
	}
	switch schema.Kind {
	case "classification":
		if len(schema.Classes) == 0 {
			return fmt.Errorf("label schema %s: classification needs classes", schemaRef)
		}
	case "numeric", "free_text":
	default:
		return fmt.Errorf("label schema %s: unknown kind %q", schemaRef, schema.Kind)
	}
	return nil
}

func (l LabelSchemas) ValidateLabel(_ context.Context, tenant domain.TenantContext, schemaRef string, label any) error {
	schema, err := l.load(tenant, schemaRef)
	if err != nil {
		return err
	}

	switch schema.Kind {
	case "classification":
		text, ok := label.(string)
		if !ok {
			return fmt.Errorf("classification label must be a string, got %T", label)
		}
		for _, class := range schema.Classes {
			if class == text {
				return nil
			}
		}
		return fmt.Errorf("label %q is not one of the schema classes", text)

	case "numeric":
		number, ok := label.(float64)
		if !ok {
			return fmt.Errorf("numeric label must be a number, got %T", label)
		}
		if schema.Min != nil && number < *schema.Min {
			return fmt.Errorf("label %v is below the schema minimum %v", number, *schema.Min)
		}
		if schema.Max != nil && number > *schema.Max {
			return fmt.Errorf("label %v is above the schema maximum %v", number, *schema.Max)
		}
		return nil

	case "free_text":
		if _, ok := label.(string); !ok {
			return fmt.Errorf("free text label must be a string, got %T", label)
		}
		return nil
	}
	return fmt.Errorf("label schema %s: unknown kind %q", schemaRef, schema.Kind)
}
