package pipeline

import (
	"sync"
	"time"
)

// Step is one unit of work in a pipeline: an agent binding plus the
// dependency and data-flow wiring around it.
//
// Topology fields (ID, AgentID, DependsOn, InputKey, OutputKey) are set
// when the step is built and read-only afterwards. Runtime state
// (status, result, error, timestamps) is guarded by a mutex because
// parallel ready batches mutate steps from worker goroutines.
//
// Example:
//
//	step := &pipeline.Step{
//	    ID:        "generate-faq",
//	    Name:      "Generate FAQ Page",
//	    AgentID:   "faq-page-agent",
//	    DependsOn: []string{"generate-questions"},
//	    InputKey:  "product",
//	    OutputKey: "faq_page",
//	}
type Step struct {
	// ID uniquely identifies the step within its pipeline.
	ID string

	// Name is the human-readable step name.
	Name string

	// Description explains what the step produces.
	Description string

	// AgentID names the registered agent that executes this step.
	AgentID string

	// DependsOn lists step ids that must complete before this step
	// becomes ready. An id that matches no step is never satisfied.
	DependsOn []string

	// InputKey is the context key whose value is handed to the agent
	// as input. Empty means the agent receives nil.
	InputKey string

	// OutputKey is the context key the step's result is stored under.
	// Empty means the result is not stored.
	OutputKey string

	mu         sync.Mutex
	status     Status
	result     interface{}
	errMsg     string
	startedAt  *time.Time
	finishedAt *time.Time
}

// NewStep creates a pending step with the given identity and agent
// binding. Dependency and key wiring can be assigned on the returned
// value before the step is added to a pipeline.
func NewStep(id, name, agentID string) *Step {
	return &Step{
		ID:      id,
		Name:    name,
		AgentID: agentID,
		status:  StatusPending,
	}
}

// Status returns the step's current lifecycle status.
func (s *Step) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == "" {
		return StatusPending
	}
	return s.status
}

// Result returns the value the step produced, or nil before completion.
func (s *Step) Result() interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Err returns the failure message, or empty if the step hasn't failed.
func (s *Step) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// StartedAt returns when the step began running, or nil.
func (s *Step) StartedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTime(s.startedAt)
}

// FinishedAt returns when the step reached a terminal status, or nil.
func (s *Step) FinishedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTime(s.finishedAt)
}

// Duration returns how long the step ran, or zero if it hasn't
// finished.
func (s *Step) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startedAt == nil || s.finishedAt == nil {
		return 0
	}
	return s.finishedAt.Sub(*s.startedAt)
}

// MarkRunning transitions the step from PENDING to RUNNING and records
// the start timestamp. Reports whether the transition applied.
func (s *Step) MarkRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentStatus() != StatusPending {
		return false
	}
	now := time.Now()
	s.status = StatusRunning
	s.startedAt = &now
	return true
}

// MarkCompleted transitions the step from RUNNING to COMPLETED,
// recording the result and end timestamp. Reports whether the
// transition applied.
func (s *Step) MarkCompleted(result interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentStatus() != StatusRunning {
		return false
	}
	now := time.Now()
	s.status = StatusCompleted
	s.result = result
	s.finishedAt = &now
	return true
}

// MarkFailed transitions the step from RUNNING to FAILED, recording
// the failure message and end timestamp. Reports whether the
// transition applied.
func (s *Step) MarkFailed(message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentStatus() != StatusRunning {
		return false
	}
	now := time.Now()
	s.status = StatusFailed
	s.errMsg = message
	s.finishedAt = &now
	return true
}

// MarkSkipped transitions the step from PENDING to SKIPPED. Reports
// whether the transition applied.
func (s *Step) MarkSkipped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentStatus() != StatusPending {
		return false
	}
	now := time.Now()
	s.status = StatusSkipped
	s.finishedAt = &now
	return true
}

// reset returns the step to PENDING and clears runtime state. Called
// by the pipeline before a fresh run reuses cached topology.
func (s *Step) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusPending
	s.result = nil
	s.errMsg = ""
	s.startedAt = nil
	s.finishedAt = nil
}

// currentStatus normalizes the zero value to PENDING. Callers must
// hold s.mu.
func (s *Step) currentStatus() Status {
	if s.status == "" {
		return StatusPending
	}
	return s.status
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
