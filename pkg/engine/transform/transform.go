// Package transform evaluates declarative row transformations.
//
// A definition is a JSON document:
//
//	{
//	    "filter": "amount > 0",
//	    "columns": {"amount_usd": "amount * rate"},
//	    "drop": ["rate"]
//	}
//
// Expressions see the columns of the row plus a "params" map.
package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aiverse/datafabric/pkg/engine/record"
)

// Definition is a parsed transformation.
type Definition struct {
	Filter  string            `json:"filter,omitempty"`
	Columns map[string]string `json:"columns,omitempty"`
	Drop    []string          `json:"drop,omitempty"`
}

// Parse decodes and compiles a definition. A definition with no
// filter, no columns and no drops is rejected.
func Parse(raw json.RawMessage) (*Compiled, error) {
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("transformation definition: %w", err)
	}
	if def.Filter == "" && len(def.Columns) == 0 && len(def.Drop) == 0 {
		return nil, fmt.Errorf("transformation definition: empty")
	}

	c := &Compiled{def: def, columns: map[string]*vm.Program{}}
	if def.Filter != "" {
		program, err := expr.Compile(def.Filter, expr.AllowUndefinedVariables(), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", def.Filter, err)
		}
		c.filter = program
	}
	for name, code := range def.Columns {
		program, err := expr.Compile(code, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		c.columns[name] = program
	}

	h := sha256.Sum256(raw)
	c.hash = hex.EncodeToString(h[:])
	return c, nil
}

// Compiled is a definition ready to run.
type Compiled struct {
	def     Definition
	filter  *vm.Program
	columns map[string]*vm.Program
	hash    string
}

// Hash is the content hash of the definition, for lineage and caching.
func (c *Compiled) Hash() string {
	return c.hash
}

// Apply runs the transformation over rows. Returns the output rows;
// rows filtered out are dropped, not errors.
func (c *Compiled) Apply(rows []record.Row, params map[string]any) ([]record.Row, error) {
	out := []record.Row{}
	for i, row := range rows {
		env := map[string]any{"params": params}
		for name, value := range row {
			env[name] = value
		}

		if c.filter != nil {
			keep, err := expr.Run(c.filter, env)
			if err != nil {
				return nil, fmt.Errorf("filter at row %d: %w", i, err)
			}
			if !keep.(bool) {
				continue
			}
		}

		next := record.Row{}
		for name, value := range row {
			next[name] = value
		}
		for name, program := range c.columns {
			value, err := expr.Run(program, env)
			if err != nil {
				return nil, fmt.Errorf("column %q at row %d: %w", name, i, err)
			}
			next[name] = value
		}
		for _, name := range c.def.Drop {
			delete(next, name)
		}
		out = append(out, next)
	}
	return out, nil
}
