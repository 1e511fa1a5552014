package emit

import "testing"

// TestNullEmitter verifies NullEmitter silently accepts events.
func TestNullEmitter(t *testing.T) {
	emitter := NewNullEmitter()

	// Must not panic, even with a zero-valued event.
	emitter.Emit(Event{})
	emitter.Emit(Event{
		RunID:  "run-001",
		Seq:    1,
		StepID: "parse-data",
		Msg:    EventStepStart,
		Meta:   map[string]interface{}{"agent_id": "data-parser-agent"},
	})

	var _ Emitter = emitter
}
