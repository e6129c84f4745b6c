package router

import (
	"sync"

	"llmrouter/pkg/types"
)

// Event names published by the router.
const (
	EventFallback           = "fallback"
	EventBackendUnreachable = "backend_unreachable"
)

// Event is a routing decision worth observing: a fallback hop or an
// unreachable backend found during discovery.
type Event struct {
	Name     string
	Provider types.Provider
	Fields   map[string]any
}

// EventPublisher receives router events. Publish is called inline on the
// request path, so implementations must be quick and must not panic.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher records events in memory. Useful in tests and for the
// command surface's diagnostics.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
