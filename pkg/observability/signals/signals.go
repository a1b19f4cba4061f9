// Package signals implements the feedback-signal side of the domain:
// a registry of signal definitions, an emitter stamping and validating
// emissions, and an in-process broker fanning them out to subscribers.
package signals

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Condition tells when a signal fires relative to a unit execution.
type Condition string

const (
	Always    Condition = "always"
	OnSuccess Condition = "on_success"
	OnFailure Condition = "on_failure"
)

func (c Condition) Valid() bool {
	switch c {
	case Always, OnSuccess, OnFailure:
		return true
	}
	return false
}

// Matches reports whether the condition fires for an execution that
// succeeded or not.
func (c Condition) Matches(succeeded bool) bool {
	switch c {
	case OnSuccess:
		return succeeded
	case OnFailure:
		return !succeeded
	}
	return true
}

// Metadata identifies a signal definition.
type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Domain  string `json:"domain"`
}

// Trigger binds a definition to execution units and a condition.
type Trigger struct {
	ExecutionUnits []string  `json:"execution_units"`
	Condition      Condition `json:"condition"`
}

// Definition is one feedback-signal definition, read from a JSON
// document.
type Definition struct {
	Metadata          Metadata        `json:"metadata"`
	SignalType        string          `json:"signal_type"`
	Description       string          `json:"description"`
	EmissionTrigger   Trigger         `json:"emission_trigger"`
	Schema            json.RawMessage `json:"schema,omitempty"`
	IntendedConsumers []string        `json:"intended_consumers,omitempty"`
}

// Registry indexes signal definitions by name and by execution unit.
type Registry struct {
	byName map[string]Definition
	byUnit map[string][]Definition
}

// LoadRegistry reads every *.json definition in dir.
func LoadRegistry(dir string) (*Registry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	registry := &Registry{
		byName: map[string]Definition{},
		byUnit: map[string][]Definition{},
	}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("signal definition %s: %w", path, err)
		}
		var def Definition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("signal definition %s: %w", path, err)
		}
		if def.Metadata.Name == "" {
			return nil, fmt.Errorf("signal definition %s: metadata.name is required", path)
		}
		if !def.EmissionTrigger.Condition.Valid() {
			return nil, fmt.Errorf(
				"signal definition %s: unknown condition %q",
				path, def.EmissionTrigger.Condition,
			)
		}
		if _, dup := registry.byName[def.Metadata.Name]; dup {
			return nil, fmt.Errorf("signal definition %s: duplicate name %q", path, def.Metadata.Name)
		}
		registry.byName[def.Metadata.Name] = def
		for _, eu := range def.EmissionTrigger.ExecutionUnits {
			registry.byUnit[eu] = append(registry.byUnit[eu], def)
		}
	}
	return registry, nil
}

// Find returns a definition by name.
func (r *Registry) Find(name string) (Definition, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// ForUnit returns the definitions triggered by an execution unit.
func (r *Registry) ForUnit(unit string) []Definition {
	return r.byUnit[unit]
}

// Names lists the registered signal names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
