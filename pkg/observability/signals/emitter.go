package signals

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
)

// Execution carries the context of a finished unit execution into an
// emission.
type Execution struct {
	Tenant      domain.TenantContext
	IntentID    uuid.UUID
	ExecutionID uuid.UUID
	Unit        string
	TraceID     string
	Succeeded   bool
	Payload     json.RawMessage
}

// Emitter validates and publishes feedback signals.
type Emitter struct {
	registry *Registry
	broker   *Broker

	failed atomic.Int64
}

func NewEmitter(registry *Registry, broker *Broker) *Emitter {
	return &Emitter{registry: registry, broker: broker}
}

// Emit publishes one named signal. An unknown name is a failed
// emission: it is counted and reported, never dropped silently.
func (e *Emitter) Emit(name string, exec Execution) error {
	def, ok := e.registry.Find(name)
	if !ok {
		e.failed.Add(1)
		return fmt.Errorf("unknown signal %q from unit %s", name, exec.Unit)
	}
	e.broker.Publish(Event{
		Signal:      def.Metadata.Name,
		SignalType:  def.SignalType,
		Domain:      def.Metadata.Domain,
		Tenant:      exec.Tenant,
		IntentID:    exec.IntentID,
		ExecutionID: exec.ExecutionID,
		Unit:        exec.Unit,
		TraceID:     exec.TraceID,
		Payload:     exec.Payload,
		EmittedAt:   time.Now().UTC(),
	})
	return nil
}

// EmitForExecution publishes every signal whose trigger names the
// execution's unit and whose condition matches the outcome.
func (e *Emitter) EmitForExecution(exec Execution) int {
	emitted := 0
	for _, def := range e.registry.ForUnit(exec.Unit) {
		if !def.EmissionTrigger.Condition.Matches(exec.Succeeded) {
			continue
		}
		if err := e.Emit(def.Metadata.Name, exec); err == nil {
			emitted++
		}
	}
	return emitted
}

// FailedEmissions is the count of emissions rejected so far.
func (e *Emitter) FailedEmissions() int64 {
	return e.failed.Load()
}
