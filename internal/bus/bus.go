package bus

import (
	"sync"
)

// Event names shared with the native-host side of the channel. Both
// directions are fire-and-forget; pairing happens by request_id only.
const (
	EventHostRequest    = "host-request"
	EventBridgeResponse = "bridge-response"
	EventBridgeStatus   = "bridge-status"
)

// Handler receives one serialized event payload.
type Handler func(payload string)

// Bus is a one-directional fire-and-forget event channel in each
// direction. There is no built-in request/response pairing.
type Bus interface {
	Emit(event, payload string)
	Subscribe(event string, h Handler) (cancel func())
}

// Local is the in-process Bus. An optional mirror forwards selected
// events to the UI runtime so the webview observes the same traffic.
type Local struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
	mirror func(event, payload string)
}

// NewLocal creates an empty bus.
func NewLocal() *Local {
	return &Local{subs: make(map[string]map[int]Handler)}
}

// SetMirror installs a forwarding hook. Pass nil to clear it.
func (b *Local) SetMirror(fn func(event, payload string)) {
	b.mu.Lock()
	b.mirror = fn
	b.mu.Unlock()
}

// Emit delivers payload to every subscriber of event. Delivery is
// asynchronous; emitters never block on slow handlers.
func (b *Local) Emit(event, payload string) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[event]))
	for _, h := range b.subs[event] {
		handlers = append(handlers, h)
	}
	mirror := b.mirror
	b.mu.RUnlock()

	for _, h := range handlers {
		go h(payload)
	}
	if mirror != nil {
		mirror(event, payload)
	}
}

// Subscribe registers h for event and returns its cancel func.
func (b *Local) Subscribe(event string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[event] == nil {
		b.subs[event] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.subs[event][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[event], id)
	}
}
