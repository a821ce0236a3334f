package server

import (
	"net"
	"sync"
)

// EventType enumerates the dispatcher-level events spec.md §6 requires a
// Server expose to its embedder: "Events emitted: Connected(addr),
// Disconnected(addr, reason), Received(addr, bytes)". Adapted from the
// teacher's core/events/events.go EventManager (register/trigger over a
// map of handler slices), generalized from SA-MP player events to RakNet
// connection lifecycle events.
type EventType int

const (
	EventConnected EventType = iota
	EventDisconnected
	EventReceived
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventReceived:
		return "received"
	default:
		return "unknown"
	}
}

// Event is one occurrence reported to registered handlers.
type Event struct {
	Type   EventType
	Addr   *net.UDPAddr
	Reason string // populated for EventDisconnected
	Bytes  []byte // populated for EventReceived
}

// EventHandler consumes one Event.
type EventHandler func(Event)

// EventManager is a simple synchronous pub/sub bus: handlers run on the
// caller's goroutine, so a slow handler delays whichever loop triggered the
// event (callers should hand off to their own queue for expensive work, the
// same non-suspension discipline the core's user-payload callback follows).
type EventManager struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewEventManager returns an EventManager with no handlers registered.
func NewEventManager() *EventManager {
	return &EventManager{handlers: make(map[EventType][]EventHandler)}
}

// On registers handler for every occurrence of t.
func (em *EventManager) On(t EventType, handler EventHandler) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.handlers[t] = append(em.handlers[t], handler)
}

// Trigger invokes every handler registered for ev.Type, in registration
// order.
func (em *EventManager) Trigger(ev Event) {
	em.mu.RLock()
	handlers := append([]EventHandler(nil), em.handlers[ev.Type]...)
	em.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}
