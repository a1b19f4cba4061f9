package signals_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/observability/signals"
	"github.com/aiverse/datafabric/pkg/utils/try"
)

func writeDefinition(t *testing.T, dir, name, signalType, condition string, units ...string) {
	t.Helper()
	def := map[string]any{
		"metadata":    map[string]string{"name": name, "version": "1.0.0", "domain": "data-fabric"},
		"signal_type": signalType,
		"description": "test definition",
		"emission_trigger": map[string]any{
			"execution_units": units,
			"condition":       condition,
		},
	}
	raw := try.To(json.Marshal(def)).OrFatal(t)
	try.To(0, os.WriteFile(filepath.Join(dir, name+".json"), raw, 0o644)).OrFatal(t)
}

func tenantFixture() domain.TenantContext {
	return domain.TenantContext{
		OrganizationID: uuid.MustParse("52b62799-5f12-42f5-9f70-6c5c33aa0001"),
		WorkspaceID:    uuid.MustParse("52b62799-5f12-42f5-9f70-6c5c33aa0002"),
		UserID:         uuid.MustParse("52b62799-5f12-42f5-9f70-6c5c33aa0003"),
	}
}

func TestRegistry(t *testing.T) {
	t.Run("definitions index by name and by unit", func(t *testing.T) {
		dir := t.TempDir()
		writeDefinition(t, dir, "profile_completed", "outcome", "on_success", "DataProfiler")
		writeDefinition(t, dir, "unit_failed", "metric", "on_failure", "DataProfiler", "DataWriter")

		registry := try.To(signals.LoadRegistry(dir)).OrFatal(t)

		if _, ok := registry.Find("profile_completed"); !ok {
			t.Error("profile_completed not found")
		}
		if defs := registry.ForUnit("DataProfiler"); len(defs) != 2 {
			t.Errorf("DataProfiler definitions: %+v", defs)
		}
		if defs := registry.ForUnit("DataWriter"); len(defs) != 1 {
			t.Errorf("DataWriter definitions: %+v", defs)
		}
	})

	t.Run("an unknown condition fails the load", func(t *testing.T) {
		dir := t.TempDir()
		writeDefinition(t, dir, "broken", "metric", "sometimes", "DataProfiler")

		if _, err := signals.LoadRegistry(dir); err == nil {
			t.Error("load should fail")
		}
	})

	t.Run("duplicate names fail the load", func(t *testing.T) {
		dir := t.TempDir()
		writeDefinition(t, dir, "dup", "metric", "always", "DataProfiler")

		raw := try.To(os.ReadFile(filepath.Join(dir, "dup.json"))).OrFatal(t)
		try.To(0, os.WriteFile(filepath.Join(dir, "dup2.json"), raw, 0o644)).OrFatal(t)

		if _, err := signals.LoadRegistry(dir); err == nil {
			t.Error("load should fail")
		}
	})
}

func TestBroker(t *testing.T) {
	t.Run("subscribers see only events matching their filter", func(t *testing.T) {
		broker := signals.NewBroker()
		tenant := tenantFixture()
		other := domain.TenantContext{
			OrganizationID: uuid.New(), WorkspaceID: uuid.New(), UserID: uuid.New(),
		}

		events, cancel := broker.Subscribe(signals.Filter{
			SignalTypes: []string{"outcome"},
			Tenant:      &tenant,
		}, 4)
		defer cancel()

		broker.Publish(signals.Event{Signal: "a", SignalType: "outcome", Tenant: tenant})
		broker.Publish(signals.Event{Signal: "b", SignalType: "metric", Tenant: tenant})
		broker.Publish(signals.Event{Signal: "c", SignalType: "outcome", Tenant: other})

		got := <-events
		if got.Signal != "a" {
			t.Errorf("event: %+v", got)
		}
		select {
		case unexpected := <-events:
			t.Errorf("unexpected event: %+v", unexpected)
		default:
		}
	})

	t.Run("cancel closes the subscription", func(t *testing.T) {
		broker := signals.NewBroker()
		events, cancel := broker.Subscribe(signals.Filter{}, 1)
		cancel()
		if _, open := <-events; open {
			t.Error("channel should be closed")
		}
	})
}

func TestEmitter(t *testing.T) {
	tenant := tenantFixture()

	t.Run("conditions gate emissions on the outcome", func(t *testing.T) {
		dir := t.TempDir()
		writeDefinition(t, dir, "profile_completed", "outcome", "on_success", "DataProfiler")
		writeDefinition(t, dir, "profile_failed", "outcome", "on_failure", "DataProfiler")
		writeDefinition(t, dir, "profile_observed", "metric", "always", "DataProfiler")

		registry := try.To(signals.LoadRegistry(dir)).OrFatal(t)
		broker := signals.NewBroker()
		events, cancel := broker.Subscribe(signals.Filter{}, 8)
		defer cancel()

		emitter := signals.NewEmitter(registry, broker)
		emitted := emitter.EmitForExecution(signals.Execution{
			Tenant: tenant, Unit: "DataProfiler", Succeeded: true,
		})

		if emitted != 2 {
			t.Fatalf("emitted: got %d, want 2", emitted)
		}
		seen := map[string]bool{}
		for i := 0; i < 2; i++ {
			seen[(<-events).Signal] = true
		}
		if !seen["profile_completed"] || !seen["profile_observed"] {
			t.Errorf("signals: %+v", seen)
		}
	})

	t.Run("an unknown signal name is a counted failure", func(t *testing.T) {
		registry := try.To(signals.LoadRegistry(t.TempDir())).OrFatal(t)
		emitter := signals.NewEmitter(registry, signals.NewBroker())

		if err := emitter.Emit("no_such_signal", signals.Execution{Tenant: tenant}); err == nil {
			t.Error("emit should fail")
		}
		if emitter.FailedEmissions() != 1 {
			t.Errorf("failed emissions: got %d", emitter.FailedEmissions())
		}
	})
}
