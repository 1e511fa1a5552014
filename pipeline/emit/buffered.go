package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory,
// keyed by run ID.
//
// Useful for:
//   - Testing: Verify the engine emitted what you expected
//   - Debugging: Inspect the full event history of a run
//   - Building dashboards or UIs that replay run activity
//
// All methods are safe for concurrent use.
//
// Example:
//
//	buffered := emit.NewBufferedEmitter()
//	orch := pipeline.New(pipeline.WithEmitter(buffered))
//	orch.ExecutePipeline(ctx, input)
//
//	for _, ev := range buffered.History("run-001") {
//	    fmt.Printf("%d: %s %s\n", ev.Seq, ev.Msg, ev.StepID)
//	}
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // keyed by run ID
}

// NewBufferedEmitter creates a new BufferedEmitter with an empty buffer.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores the event in the buffer under its run ID.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// History returns all events recorded for the given run ID, in the
// order they were emitted.
//
// Returns a copy; mutating the result does not affect the buffer.
// Returns an empty slice for unknown run IDs.
func (b *BufferedEmitter) History(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// HistoryFilter selects a subset of a run's events. Zero-valued fields
// match everything; set fields are combined with AND.
type HistoryFilter struct {
	// StepID matches events emitted for this step only.
	StepID string

	// Msg matches events with this exact event name.
	Msg string

	// MinSeq matches events with Seq >= *MinSeq.
	MinSeq *int

	// MaxSeq matches events with Seq <= *MaxSeq.
	MaxSeq *int
}

// HistoryFiltered returns the events for a run that match the filter.
//
// Example:
//
//	// All failures for one step
//	failed := buffered.HistoryFiltered(runID, emit.HistoryFilter{
//	    StepID: "parse-data",
//	    Msg:    emit.EventStepFailed,
//	})
func (b *BufferedEmitter) HistoryFiltered(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, ev := range b.events[runID] {
		if filter.StepID != "" && ev.StepID != filter.StepID {
			continue
		}
		if filter.Msg != "" && ev.Msg != filter.Msg {
			continue
		}
		if filter.MinSeq != nil && ev.Seq < *filter.MinSeq {
			continue
		}
		if filter.MaxSeq != nil && ev.Seq > *filter.MaxSeq {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// RunIDs returns the run IDs with buffered events, in no particular
// order.
func (b *BufferedEmitter) RunIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.events))
	for id := range b.events {
		ids = append(ids, id)
	}
	return ids
}

// Clear removes buffered events for the given run ID. Passing an empty
// string clears the whole buffer.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if runID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, runID)
}
