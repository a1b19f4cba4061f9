// Package dispatch runs the execution queue: it claims runnable
// executions, invokes the mapped unit and records the outcome.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	intentdb "github.com/aiverse/datafabric/pkg/domain/intent/db"
	"github.com/aiverse/datafabric/pkg/loop"
	"github.com/aiverse/datafabric/pkg/observability/signals"
	"github.com/aiverse/datafabric/pkg/unit"
)

// Dispatcher polls the intent store for runnable executions.
type Dispatcher struct {
	Intents intentdb.Interface
	Units   unit.Registry
	Signals *signals.Emitter

	// PollInterval is the idle sleep between passes that found
	// nothing runnable. Zero means a second.
	PollInterval time.Duration

	// Timeout bounds one unit execution. Zero means no bound.
	Timeout time.Duration

	Logger *log.Logger
}

func (d *Dispatcher) interval() time.Duration {
	if d.PollInterval <= 0 {
		return time.Second
	}
	return d.PollInterval
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}

// Run processes executions until ctx is done. Store errors during a
// pass are logged and retried after the poll interval; they do not
// stop the worker.
func (d *Dispatcher) Run(ctx context.Context) error {
	_, err := loop.Start(ctx, struct{}{}, func(ctx context.Context, _ struct{}) (struct{}, loop.Next) {
		busy, err := d.Step(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return struct{}{}, loop.Break(nil)
			}
			d.logf("dispatch: %s", err)
			return struct{}{}, loop.Continue(d.interval())
		}
		if !busy {
			return struct{}{}, loop.Continue(d.interval())
		}
		return struct{}{}, loop.Continue(0)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Step claims and runs at most one execution. busy reports whether
// there was one.
func (d *Dispatcher) Step(ctx context.Context) (busy bool, err error) {
	execution, intent, ok, err := d.Intents.PickQueued(ctx)
	if err != nil || !ok {
		return false, err
	}

	result, runErr := d.runUnit(ctx, execution, intent)

	var failure *intentdb.Failure
	if runErr != nil {
		failure = &intentdb.Failure{
			Code:         unit.CodeOf(runErr),
			Message:      runErr.Error(),
			Inconclusive: unit.IsInconclusive(runErr),
		}
		d.logf(
			"dispatch: execution %s (%s, intent %s) failed: %s",
			execution.ExecutionID, execution.Unit, intent.Name, runErr,
		)
	}
	if err := d.Intents.Finish(ctx, execution.ExecutionID, result, failure); err != nil {
		return true, err
	}

	if d.Signals != nil {
		payload := result
		if failure != nil {
			payload, _ = json.Marshal(failure)
		}
		d.Signals.EmitForExecution(signals.Execution{
			Tenant:      execution.Tenant,
			IntentID:    intent.IntentID,
			ExecutionID: execution.ExecutionID,
			Unit:        execution.Unit,
			TraceID:     execution.TraceID,
			Succeeded:   runErr == nil,
			Payload:     payload,
		})
	}
	return true, nil
}

func (d *Dispatcher) runUnit(ctx context.Context, execution intentdb.Execution, intent intentdb.Intent) (json.RawMessage, error) {
	runner, ok := d.Units[execution.Unit]
	if !ok {
		return nil, unit.Errorf("EXECUTION_FAILED", "no unit registered as %q", execution.Unit)
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	result, err := runner.Run(ctx, execution.Tenant, intent.Inputs)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		// a timed-out unit reached no verdict
		return nil, unit.Inconclusive(
			unit.Errorf("TIMEOUT", "unit %s exceeded %s", execution.Unit, d.Timeout), "TIMEOUT",
		)
	}
	return result, err
}
