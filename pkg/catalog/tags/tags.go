// Package tags governs the tags attached to registered data assets:
// the known keys with their accepted values, and the required set
// every asset must carry.
package tags

import "fmt"

// Category groups tag keys by what they describe.
type Category string

const (
	CategoryClassification Category = "classification"
	CategoryDomain         Category = "domain"
	CategoryQuality        Category = "quality"
	CategoryLifecycle      Category = "lifecycle"
	CategoryCompliance     Category = "compliance"
	CategoryOwnership      Category = "ownership"
	CategoryTechnical      Category = "technical"
)

// GovernanceLevel states how tightly a tag's changes are controlled.
type GovernanceLevel string

const (
	GovernanceStandard   GovernanceLevel = "standard"
	GovernanceRestricted GovernanceLevel = "restricted"
	GovernanceAudit      GovernanceLevel = "audit"
)

// Definition describes one tag key. A nil AllowedValues list means
// the value is freeform.
type Definition struct {
	Key           string          `json:"key"`
	Category      Category        `json:"category"`
	Description   string          `json:"description,omitempty"`
	AllowedValues []string        `json:"allowed_values,omitempty"`
	Required      bool            `json:"required"`
	DefaultValue  string          `json:"default_value,omitempty"`
	Governance    GovernanceLevel `json:"governance_level"`
}

// Allows reports whether value is acceptable for this tag.
func (d Definition) Allows(value string) bool {
	if d.AllowedValues == nil {
		return true
	}
	for _, allowed := range d.AllowedValues {
		if value == allowed {
			return true
		}
	}
	return false
}

// Schema is a set of tag definitions to validate asset tags against.
type Schema struct {
	definitions map[string]Definition
	order       []string
}

func NewSchema(definitions ...Definition) *Schema {
	schema := &Schema{definitions: map[string]Definition{}}
	for _, definition := range definitions {
		schema.Register(definition)
	}
	return schema
}

// Register adds or replaces a tag definition.
func (s *Schema) Register(definition Definition) {
	if _, known := s.definitions[definition.Key]; !known {
		s.order = append(s.order, definition.Key)
	}
	s.definitions[definition.Key] = definition
}

// Definitions lists the registered definitions in registration order.
func (s *Schema) Definitions() []Definition {
	definitions := make([]Definition, 0, len(s.order))
	for _, key := range s.order {
		definitions = append(definitions, s.definitions[key])
	}
	return definitions
}

// Required lists the keys every tagged asset must carry.
func (s *Schema) Required() []string {
	required := []string{}
	for _, key := range s.order {
		if s.definitions[key].Required {
			required = append(required, key)
		}
	}
	return required
}

// ByCategory lists the definitions of one category.
func (s *Schema) ByCategory(category Category) []Definition {
	matched := []Definition{}
	for _, key := range s.order {
		if s.definitions[key].Category == category {
			matched = append(matched, s.definitions[key])
		}
	}
	return matched
}

// Report is the outcome of validating a tag set. Unknown keys are
// warnings, not errors; they pass validation.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks a tag set for missing required keys and values
// outside a definition's allowed list.
func (s *Schema) Validate(tags map[string]string) Report {
	report := Report{Valid: true, Errors: []string{}, Warnings: []string{}}

	for _, key := range s.order {
		definition := s.definitions[key]
		if !definition.Required {
			continue
		}
		if _, present := tags[key]; !present {
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf("missing required tag: %s", key))
		}
	}

	for _, key := range s.order {
		value, present := tags[key]
		if !present {
			continue
		}
		if definition := s.definitions[key]; !definition.Allows(value) {
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf(
				"invalid value %q for tag %q, allowed: %v", value, key, definition.AllowedValues,
			))
		}
	}
	for key := range tags {
		if _, known := s.definitions[key]; !known {
			report.Warnings = append(report.Warnings, fmt.Sprintf("unknown tag: %s", key))
		}
	}

	return report
}

// ApplyDefaults fills in absent tags that have a default value. The
// input map is not modified.
func (s *Schema) ApplyDefaults(tags map[string]string) map[string]string {
	applied := map[string]string{}
	for key, value := range tags {
		applied[key] = value
	}
	for _, key := range s.order {
		definition := s.definitions[key]
		if definition.DefaultValue == "" {
			continue
		}
		if _, present := applied[key]; !present {
			applied[key] = definition.DefaultValue
		}
	}
	return applied
}

// Standard builds the tag schema every fabric deployment starts from.
func Standard() *Schema {
	return NewSchema(
		Definition{
			Key:           "data_classification",
			Category:      CategoryClassification,
			Description:   "Data sensitivity classification",
			AllowedValues: []string{"public", "internal", "confidential", "restricted", "pii", "phi"},
			Required:      true,
			Governance:    GovernanceAudit,
		},
		Definition{
			Key:           "business_domain",
			Category:      CategoryDomain,
			Description:   "Business domain ownership",
			AllowedValues: []string{"finance", "hr", "sales", "marketing", "operations", "product", "engineering"},
			Required:      true,
			Governance:    GovernanceStandard,
		},
		Definition{
			Key:           "data_quality",
			Category:      CategoryQuality,
			Description:   "Data quality tier",
			AllowedValues: []string{"gold", "silver", "bronze", "raw"},
			DefaultValue:  "bronze",
			Governance:    GovernanceStandard,
		},
		Definition{
			Key:           "environment",
			Category:      CategoryLifecycle,
			Description:   "Environment tier",
			AllowedValues: []string{"production", "staging", "development", "sandbox"},
			Required:      true,
			Governance:    GovernanceRestricted,
		},
		Definition{
			Key:           "compliance_scope",
			Category:      CategoryCompliance,
			Description:   "Compliance requirements",
			AllowedValues: []string{"gdpr", "hipaa", "sox", "pci", "none"},
			Governance:    GovernanceAudit,
		},
		Definition{
			Key:         "cost_center",
			Category:    CategoryOwnership,
			Description: "Cost allocation center",
			Governance:  GovernanceStandard,
		},
		Definition{
			Key:         "owner_team",
			Category:    CategoryOwnership,
			Description: "Owning team",
			Required:    true,
			Governance:  GovernanceStandard,
		},
		Definition{
			Key:           "storage_format",
			Category:      CategoryTechnical,
			Description:   "Data storage format",
			AllowedValues: []string{"parquet", "delta", "iceberg", "json", "csv", "avro"},
			Governance:    GovernanceStandard,
		},
		Definition{
			Key:         "retention_days",
			Category:    CategoryTechnical,
			Description: "Data retention period in days",
			Governance:  GovernanceRestricted,
		},
	)
}
