package emit

// NullEmitter implements Emitter by discarding all events.
//
// The engine uses it as the default when no emitter is configured, so
// callers never have to nil-check before emitting.
type NullEmitter struct{}

// NewNullEmitter creates a new NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}
