package pipeline

import "errors"

// Sentinel errors for programmatic handling with errors.Is.
var (
	// ErrAgentNotFound indicates a step referenced an agent id that was
	// never registered with the orchestrator.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrInvalidInput indicates an agent rejected the input handed to it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateStep indicates a step id was added to a pipeline twice.
	ErrDuplicateStep = errors.New("duplicate step id")

	// ErrUnknownDependency indicates a step depends on an id that matches
	// no step in the pipeline. At run time such a dependency is never
	// satisfied and the run stalls; Validate surfaces it up front.
	ErrUnknownDependency = errors.New("unknown dependency id")

	// ErrCyclicDependency indicates the dependency graph contains a cycle,
	// so some steps can never become ready.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrPipelineStalled indicates a run stopped with pending steps that
	// can never become ready.
	ErrPipelineStalled = errors.New("pipeline stalled")
)

// Machine-readable error codes carried by PipelineError and StepError.
const (
	CodeAgentNotFound     = "AGENT_NOT_FOUND"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeDuplicateStep     = "DUPLICATE_STEP"
	CodeUnknownDependency = "UNKNOWN_DEPENDENCY"
	CodeCyclicDependency  = "CYCLIC_DEPENDENCY"
	CodePipelineStalled   = "PIPELINE_STALLED"
	CodeExecutionFailed   = "EXECUTION_FAILED"
	CodeResolveFailed     = "RESOLVE_FAILED"
)

// PipelineError represents an error in pipeline assembly or run-level
// execution.
type PipelineError struct {
	// Message is the human-readable error description.
	Message string

	// Code is a machine-readable error code for programmatic handling.
	Code string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause error for error wrapping support.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// StepError represents a failure local to one step's execution.
//
// Step failures never abort the run; they surface through the step's
// FAILED status, the run log, and emitted events. StepError is the
// value recorded there.
type StepError struct {
	// StepID identifies which step produced this error.
	StepID string

	// AgentID identifies the agent bound to the step, if any.
	AgentID string

	// Code is a machine-readable error code for programmatic handling.
	Code string

	// Message is the human-readable error description.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.StepID != "" {
		return "step " + e.StepID + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause error for error wrapping support.
func (e *StepError) Unwrap() error {
	return e.Cause
}
