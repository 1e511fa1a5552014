package pipeline

import (
	"context"
)

// Agent is a processing unit the orchestrator can bind to pipeline
// steps. An agent validates its input, executes against the shared run
// context, and returns a result value.
//
// Implementations must be safe for sequential reuse: the orchestrator
// caches pipeline topology and runs it repeatedly, invoking the same
// agent instance once per run (or more, if several steps bind it).
type Agent interface {
	// ID returns the unique agent identifier steps reference.
	ID() string

	// Name returns the human-readable agent name.
	Name() string

	// Validate reports whether the agent can process the given input.
	// Called before Execute; a false return fails the step without
	// executing it.
	Validate(input interface{}) bool

	// Execute processes the input and returns the result value.
	//
	// The run context carries shared state: agents read upstream
	// results from it and may log entries or send messages. The
	// returned value is stored under the step's OutputKey by the
	// orchestrator; agents don't write their own primary output.
	Execute(ctx context.Context, input interface{}, rc *Context) (interface{}, error)
}

// StatusTracker is an optional capability: agents that implement it
// have their lifecycle status maintained by RunAgent.
type StatusTracker interface {
	// Status returns the agent's current lifecycle status.
	Status() AgentStatus

	// SetStatus records a new lifecycle status.
	SetStatus(status AgentStatus)
}

// DependencyLister is an optional capability: agents that implement it
// declare which agent ids they expect to run after, letting tooling
// cross-check step wiring against agent expectations.
type DependencyLister interface {
	// Dependencies returns the agent ids this agent depends on.
	Dependencies() []string
}

// AgentFunc adapts plain functions into Agents, for inline agents in
// tests and examples.
//
// Example:
//
//	upper := &pipeline.AgentFunc{
//	    AgentID:   "uppercase-agent",
//	    AgentName: "Uppercase",
//	    ExecuteFunc: func(ctx context.Context, input interface{}, rc *pipeline.Context) (interface{}, error) {
//	        return strings.ToUpper(input.(string)), nil
//	    },
//	}
type AgentFunc struct {
	// AgentID is the unique agent identifier.
	AgentID string

	// AgentName is the human-readable name. Defaults to AgentID.
	AgentName string

	// ValidateFunc, if set, decides input validity. Nil accepts any
	// input.
	ValidateFunc func(input interface{}) bool

	// ExecuteFunc processes the input.
	ExecuteFunc func(ctx context.Context, input interface{}, rc *Context) (interface{}, error)
}

// ID implements Agent.
func (a *AgentFunc) ID() string { return a.AgentID }

// Name implements Agent.
func (a *AgentFunc) Name() string {
	if a.AgentName != "" {
		return a.AgentName
	}
	return a.AgentID
}

// Validate implements Agent.
func (a *AgentFunc) Validate(input interface{}) bool {
	if a.ValidateFunc == nil {
		return true
	}
	return a.ValidateFunc(input)
}

// Execute implements Agent.
func (a *AgentFunc) Execute(ctx context.Context, input interface{}, rc *Context) (interface{}, error) {
	if a.ExecuteFunc == nil {
		return nil, &StepError{
			AgentID: a.AgentID,
			Code:    CodeExecutionFailed,
			Message: "agent " + a.AgentID + " has no execute function",
		}
	}
	return a.ExecuteFunc(ctx, input, rc)
}

// RunAgent drives one agent through its execution lifecycle against
// the shared run context:
//
//  1. Mark the agent running and log execution_started.
//  2. Validate the input; rejection fails with ErrInvalidInput.
//  3. Execute.
//  4. Record completed/failed status and the matching log entry.
//
// Status bookkeeping applies only to agents implementing
// StatusTracker. The error return is the agent's own error, or a
// StepError wrapping ErrInvalidInput when validation rejects.
func RunAgent(ctx context.Context, agent Agent, input interface{}, rc *Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	setAgentStatus(agent, AgentRunning)
	rc.Log(agent.ID(), "execution_started", nil)

	if !agent.Validate(input) {
		setAgentStatus(agent, AgentFailed)
		err := &StepError{
			AgentID: agent.ID(),
			Code:    CodeInvalidInput,
			Message: "invalid input for agent " + agent.ID(),
			Cause:   ErrInvalidInput,
		}
		rc.Log(agent.ID(), "execution_failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	result, err := agent.Execute(ctx, input, rc)
	if err != nil {
		setAgentStatus(agent, AgentFailed)
		rc.Log(agent.ID(), "execution_failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	setAgentStatus(agent, AgentCompleted)
	rc.Log(agent.ID(), "execution_completed", nil)
	return result, nil
}

func setAgentStatus(agent Agent, status AgentStatus) {
	if tracker, ok := agent.(StatusTracker); ok {
		tracker.SetStatus(status)
	}
}
