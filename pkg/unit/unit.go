// Package unit holds the execution units of the Data Fabric domain.
//
// Each unit is stateless: one capability, all inputs explicit, no
// side effects on failure, no calls to other units. Orchestration is
// the dispatcher's job.
package unit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aiverse/datafabric/pkg/domain"
	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
)

// Error is a coded unit failure. The code travels to the intent store
// and into feedback signals unchanged. Inconclusive marks failures
// where the unit could not reach a verdict at all, as opposed to
// reaching a negative one.
type Error struct {
	Code         string
	Message      string
	Inconclusive bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds a coded failure.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the failure code of err, or "EXECUTION_FAILED" for
// errors no unit coded.
func CodeOf(err error) string {
	uerr := &Error{}
	if errors.As(err, &uerr) {
		return uerr.Code
	}
	return "EXECUTION_FAILED"
}

// Inconclusive marks err as an inconclusive failure, coding it with
// code when it is not coded yet.
func Inconclusive(err error, code string) error {
	if err == nil {
		return nil
	}
	uerr := &Error{}
	if errors.As(err, &uerr) {
		return &Error{Code: uerr.Code, Message: uerr.Message, Inconclusive: true}
	}
	return &Error{Code: code, Message: err.Error(), Inconclusive: true}
}

// IsInconclusive reports whether err carries the inconclusive mark.
func IsInconclusive(err error) bool {
	uerr := &Error{}
	return errors.As(err, &uerr) && uerr.Inconclusive
}

// coded wraps a store error with the unit's code for it, passing
// through errors that are already coded.
func coded(err error, code string) error {
	if err == nil {
		return nil
	}
	uerr := &Error{}
	if errors.As(err, &uerr) {
		return err
	}
	return &Error{Code: code, Message: err.Error()}
}

// storeCode picks a failure code for a storage error by its kind.
func storeCode(err error, onConflict, onMissing, onOther string) string {
	switch {
	case errors.Is(err, domerr.ErrConflict):
		return onConflict
	case errors.Is(err, domerr.ErrMissing):
		return onMissing
	}
	return onOther
}

// Runner is the uniform face of a unit towards the dispatcher: decode
// the intent's inputs, execute, encode the result.
type Runner interface {
	Name() string
	Run(ctx context.Context, tenant domain.TenantContext, inputs json.RawMessage) (json.RawMessage, error)
}

// Registry indexes runners by unit name.
type Registry map[string]Runner

// NewRegistry builds a registry. Duplicate names panic; that is a
// wiring bug, not a runtime condition.
func NewRegistry(runners ...Runner) Registry {
	registry := Registry{}
	for _, runner := range runners {
		if _, dup := registry[runner.Name()]; dup {
			panic(fmt.Sprintf("unit %q registered twice", runner.Name()))
		}
		registry[runner.Name()] = runner
	}
	return registry
}

// inputField decodes one named field of an intent's inputs document.
func inputField[T any](inputs json.RawMessage, field string) (T, error) {
	var doc map[string]json.RawMessage
	target := new(T)
	if err := json.Unmarshal(inputs, &doc); err != nil {
		return *target, Errorf("VALIDATION_FAILED", "intent inputs: %s", err)
	}
	raw, ok := doc[field]
	if !ok {
		return *target, Errorf("VALIDATION_FAILED", "intent inputs: missing %q", field)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return *target, Errorf("VALIDATION_FAILED", "intent inputs %q: %s", field, err)
	}
	return *target, nil
}

func encodeResult(result any) (json.RawMessage, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, Errorf("EXECUTION_FAILED", "encode result: %s", err)
	}
	return raw, nil
}
