// Package schema infers record schemas and diffs them against
// declarations.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

// Infer derives field definitions from rows. A field is nullable when
// any row misses it or holds null. Integer-valued numbers infer as
// "integer", others as "number".
func Infer(rows []record.Row) []domain.FieldDefinition {
	columns := record.Columns(rows)
	fields := make([]domain.FieldDefinition, 0, len(columns))
	for _, column := range columns {
		field := domain.FieldDefinition{Name: column}
		seen := ""
		for _, row := range rows {
			value, ok := row[column]
			if !ok || value == nil {
				field.Nullable = true
				continue
			}
			t := typeOf(value)
			switch {
			case seen == "" || seen == t:
				seen = t
			case (seen == "integer" && t == "number") || (seen == "number" && t == "integer"):
				seen = "number"
			default:
				seen = "string"
			}
		}
		if seen == "" {
			seen = "null"
			field.Nullable = true
		}
		field.DataType = seen
		fields = append(fields, field)
	}
	return fields
}

func typeOf(value any) string {
	switch v := value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if v == float64(int64(v)) {
			return "integer"
		}
		return "number"
	case int, int64:
		return "integer"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return "string"
}

// ParseDeclaration decodes a schema declaration document:
//
//	{"fields": [{"name": "id", "data_type": "string", "nullable": false, "is_key": true}]}
func ParseDeclaration(raw json.RawMessage) ([]domain.FieldDefinition, error) {
	var doc struct {
		Fields []domain.FieldDefinition `json:"fields"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("schema declaration: %w", err)
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("schema declaration: no fields")
	}
	return doc.Fields, nil
}

// Compare diffs actual against expected under the given mode.
//
//   - exact: same field set, same types, same nullability
//   - compatible: every expected field present with a compatible type;
//     extra actual fields are fine
//   - subset: every expected field present by name; types are not checked
func Compare(expected, actual []domain.FieldDefinition, mode domain.ValidationMode) []domain.SchemaDiscrepancy {
	actualByName := map[string]domain.FieldDefinition{}
	for _, field := range actual {
		actualByName[field.Name] = field
	}

	discrepancies := []domain.SchemaDiscrepancy{}
	for _, want := range expected {
		got, ok := actualByName[want.Name]
		if !ok {
			discrepancies = append(discrepancies, domain.SchemaDiscrepancy{
				FieldName:    want.Name,
				ExpectedType: want.DataType,
				Issue:        "missing",
			})
			continue
		}
		if mode == domain.ValidateSubset {
			continue
		}
		if !typesMatch(want.DataType, got.DataType, mode) {
			discrepancies = append(discrepancies, domain.SchemaDiscrepancy{
				FieldName:    want.Name,
				ExpectedType: want.DataType,
				ActualType:   got.DataType,
				Issue:        "type_mismatch",
			})
		}
		if mode == domain.ValidateExact && want.Nullable != got.Nullable {
			discrepancies = append(discrepancies, domain.SchemaDiscrepancy{
				FieldName:    want.Name,
				ExpectedType: want.DataType,
				ActualType:   got.DataType,
				Issue:        "nullability_mismatch",
			})
		}
	}

	if mode == domain.ValidateExact {
		expectedNames := map[string]bool{}
		for _, field := range expected {
			expectedNames[field.Name] = true
		}
		extra := []string{}
		for name := range actualByName {
			if !expectedNames[name] {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		for _, name := range extra {
			discrepancies = append(discrepancies, domain.SchemaDiscrepancy{
				FieldName:  name,
				ActualType: actualByName[name].DataType,
				Issue:      "unexpected",
			})
		}
	}

	return discrepancies
}

func typesMatch(expected, actual string, mode domain.ValidationMode) bool {
	if expected == actual {
		return true
	}
	if mode == domain.ValidateCompatible {
		// integers fit where numbers are expected
		return expected == "number" && actual == "integer"
	}
	return false
}
