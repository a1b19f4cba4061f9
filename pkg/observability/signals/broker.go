package signals

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aiverse/datafabric/pkg/domain"
)

// Event is one emitted signal as subscribers see it.
type Event struct {
	Signal      string               `json:"signal"`
	SignalType  string               `json:"signal_type"`
	Domain      string               `json:"domain"`
	Tenant      domain.TenantContext `json:"tenant_context"`
	IntentID    uuid.UUID            `json:"intent_id"`
	ExecutionID uuid.UUID            `json:"execution_id"`
	Unit        string               `json:"execution_unit"`
	TraceID     string               `json:"trace_id,omitempty"`
	Payload     json.RawMessage      `json:"payload,omitempty"`
	EmittedAt   time.Time            `json:"emitted_at"`
}

// Filter restricts a subscription. Zero fields match everything.
type Filter struct {
	Domain      string
	SignalTypes []string
	Tenant      *domain.TenantContext
}

func (f Filter) matches(ev Event) bool {
	if f.Domain != "" && ev.Domain != f.Domain {
		return false
	}
	if f.Tenant != nil && *f.Tenant != ev.Tenant {
		return false
	}
	if len(f.SignalTypes) == 0 {
		return true
	}
	for _, st := range f.SignalTypes {
		if ev.SignalType == st {
			return true
		}
	}
	return false
}

type subscriber struct {
	filter Filter
	ch     chan Event
}

// Broker fans out events to subscribers in-process.
//
// Publishing never blocks: a subscriber that cannot keep up loses
// events rather than stalling the dispatcher.
type Broker struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[*subscriber]struct{}{}}
}

// Subscribe registers a filtered subscription. The returned cancel
// function closes the channel and must be called exactly once.
func (b *Broker) Subscribe(filter Filter, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &subscriber{filter: filter, ch: make(chan Event, buffer)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub.ch)
		}
	}
	return sub.ch, cancel
}

// Publish delivers ev to every matching subscriber.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if !sub.filter.matches(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}
