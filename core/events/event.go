package events

// Event represents a structured state change emitted by the ledger.
type Event struct {
	Type       string
	Attributes map[string]string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(*Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(*Event) {}

// Buffer collects events during an operation so the ledger can publish them
// only after the operation's writes have committed. A failed operation's
// buffer is simply dropped.
type Buffer struct {
	events []*Event
}

// Emit implements the Emitter interface.
func (b *Buffer) Emit(evt *Event) {
	if b == nil || evt == nil {
		return
	}
	b.events = append(b.events, evt)
}

// Drain returns the buffered events and resets the buffer.
func (b *Buffer) Drain() []*Event {
	if b == nil {
		return nil
	}
	out := b.events
	b.events = nil
	return out
}
