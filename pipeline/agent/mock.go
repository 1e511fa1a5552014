package agent

import (
	"context"
	"sync"

	"github.com/kasparro/contentpipe-go/pipeline"
)

// Mock is a test implementation of pipeline.Agent.
//
// Use Mock in tests to exercise pipelines and orchestration without
// real content generation. It provides:
//   - Configurable results
//   - Call history tracking
//   - Error injection
//   - Thread-safe operation
//
// Example usage:
//
//	mock := &Mock{
//	    AgentID: "parse-agent",
//	    Results: []interface{}{"first", "second"},
//	}
//	out, err := mock.Execute(ctx, input, rc)
//	// Returns "first", then "second" on subsequent calls
//
// Example with error injection:
//
//	mock := &Mock{
//	    AgentID: "parse-agent",
//	    Err:     errors.New("parse failure"),
//	}
//	_, err := mock.Execute(ctx, input, rc)
//	// Returns the configured error
type Mock struct {
	// AgentID is the agent identifier. Defaults to "mock-agent".
	AgentID string

	// AgentName is the display name. Defaults to the agent id.
	AgentName string

	// Deps lists the agent ids this agent declares as dependencies.
	Deps []string

	// Results contains the sequence of results to return.
	// Each call to Execute() returns the next result in order.
	// If all results are consumed, the last result repeats.
	Results []interface{}

	// Err, if set, will be returned by Execute() instead of a result.
	Err error

	// ValidateOK, if set, decides what Validate() accepts.
	// When nil, every input validates.
	ValidateOK func(input interface{}) bool

	// Calls tracks the history of all Execute() invocations.
	// Useful for verifying that steps fed agents the expected inputs.
	Calls []MockCall

	mu        sync.Mutex // Protects Calls, status, and the result index
	callIndex int        // Tracks which result to return next
	status    pipeline.AgentStatus
}

// MockCall records a single invocation of Execute().
type MockCall struct {
	Input interface{}
}

// ID returns the configured agent id, or "mock-agent".
func (m *Mock) ID() string {
	if m.AgentID != "" {
		return m.AgentID
	}
	return "mock-agent"
}

// Name returns the configured name, falling back to the agent id.
func (m *Mock) Name() string {
	if m.AgentName != "" {
		return m.AgentName
	}
	return m.ID()
}

// Dependencies returns the configured dependency list.
func (m *Mock) Dependencies() []string { return m.Deps }

// Validate defers to ValidateOK, accepting everything when it is nil.
func (m *Mock) Validate(input interface{}) bool {
	if m.ValidateOK == nil {
		return true
	}
	return m.ValidateOK(input)
}

// Execute implements the Agent interface.
//
// Returns:
//   - The next result from Results (or repeats the last result)
//   - Or Err if configured
//
// Always records the call in Calls history regardless of success/failure.
func (m *Mock) Execute(ctx context.Context, input interface{}, rc *pipeline.Context) (interface{}, error) {
	// Check context cancellation first (before acquiring lock)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Record the call
	m.Calls = append(m.Calls, MockCall{Input: input})

	// Return error if configured
	if m.Err != nil {
		return nil, m.Err
	}

	// Return nil if no results configured
	if len(m.Results) == 0 {
		return nil, nil
	}

	// Get the current result
	idx := m.callIndex
	if idx >= len(m.Results) {
		idx = len(m.Results) - 1 // Repeat last result
	} else {
		m.callIndex++ // Advance to next result
	}

	return m.Results[idx], nil
}

// Status returns the agent's lifecycle status, idle until set.
func (m *Mock) Status() pipeline.AgentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == "" {
		return pipeline.AgentIdle
	}
	return m.status
}

// SetStatus records a new lifecycle status.
func (m *Mock) SetStatus(status pipeline.AgentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status = status
}

// Reset clears the call history and resets the result index.
//
// Useful when reusing the same mock across multiple test cases:
//
//	mock := &Mock{Results: []interface{}{"OK"}}
//	// ... run test 1 ...
//	mock.Reset()
//	// ... run test 2 with clean state ...
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
	m.callIndex = 0
	m.status = ""
}

// CallCount returns the number of times Execute() has been called.
//
// Thread-safe convenience method:
//
//	if mock.CallCount() != 3 {
//	    t.Errorf("expected 3 calls, got %d", mock.CallCount())
//	}
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Calls)
}
