package emit

import "time"

// Event names emitted by the pipeline engine.
const (
	// EventRunStart marks the start of a pipeline run.
	EventRunStart = "run_start"

	// EventStepStart marks the start of one step execution.
	EventStepStart = "step_start"

	// EventStepCompleted marks a step that finished successfully.
	EventStepCompleted = "step_completed"

	// EventStepFailed marks a step whose agent rejected its input or
	// returned an error.
	EventStepFailed = "step_failed"

	// EventAgentMissing marks a step that referenced an unregistered
	// agent id. The step fails immediately.
	EventAgentMissing = "agent_missing"

	// EventPipelineStalled marks a run that stopped with pending steps
	// left over: no step was runnable, nothing had failed. Usually a
	// topology bug (a dependency id that resolves to no step).
	EventPipelineStalled = "pipeline_stalled"

	// EventRunEnd marks the end of a pipeline run, successful or not.
	EventRunEnd = "run_end"
)

// Event represents an observability event emitted during pipeline
// execution.
//
// Events provide detailed insight into run behavior:
//   - Step execution start/complete/fail
//   - Ready-batch scheduling decisions
//   - Stalls and missing agents
//   - Run boundaries
//
// Events are emitted to an Emitter which can:
//   - Log to stdout/stderr
//   - Send to OpenTelemetry
//   - Publish to a message broker
//   - Buffer in memory for inspection
type Event struct {
	// RunID identifies the pipeline execution that emitted this event.
	RunID string

	// Seq is the sequential event number within the run (1-indexed).
	// Zero for events emitted outside a run.
	Seq int

	// StepID identifies which pipeline step emitted this event.
	// Empty string for run-level events (run_start, run_end, stalls).
	StepID string

	// Msg names the event. One of the Event* constants for engine
	// events; agents may emit their own names.
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "agent_id": Agent bound to the step
	//   - "duration_ms": Step execution duration in milliseconds
	//   - "error": Failure message
	//   - "output_key": Context key the step's result was stored under
	//   - "pending": Step ids left pending after a stall
	Meta map[string]interface{}

	// At is the time the event was produced.
	At time.Time
}
