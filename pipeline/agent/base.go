// Package agent provides the processing units that turn structured
// product data into content: a parser that normalizes raw input, a
// question generator, and three page generators (FAQ, product
// description, comparison).
//
// Every agent implements pipeline.Agent and embeds Base, which carries
// identity, advisory dependencies, and lifecycle status. Agents hold no
// per-run state of their own; everything a run produces flows through
// the shared pipeline.Context, so one agent instance can serve run
// after run.
package agent

import (
	"sync"

	"github.com/kasparro/contentpipe-go/pipeline"
)

// Base carries the identity and bookkeeping shared by all agents: id,
// name, advisory dependencies, and the lifecycle status the engine
// updates as the agent runs.
//
// Embed Base and implement Validate and Execute:
//
//	type Reverser struct {
//	    agent.Base
//	}
//
//	func NewReverser() *Reverser {
//	    return &Reverser{Base: agent.NewBase("reverser-agent", "Reverser")}
//	}
type Base struct {
	id   string
	name string
	deps []string

	mu     sync.Mutex
	status pipeline.AgentStatus
}

// NewBase builds a Base with the given identity. Deps list the agent
// ids this agent expects to run after. The engine does not enforce
// them; they let tooling cross-check step wiring against what the
// agent assumes is already in the run context.
func NewBase(id, name string, deps ...string) Base {
	return Base{id: id, name: name, deps: deps, status: pipeline.AgentIdle}
}

// ID implements pipeline.Agent.
func (b *Base) ID() string { return b.id }

// Name implements pipeline.Agent.
func (b *Base) Name() string { return b.name }

// Dependencies implements pipeline.DependencyLister.
func (b *Base) Dependencies() []string { return b.deps }

// Status implements pipeline.StatusTracker.
func (b *Base) Status() pipeline.AgentStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// SetStatus implements pipeline.StatusTracker.
func (b *Base) SetStatus(status pipeline.AgentStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// Send posts a message from this agent to another on the run context.
func (b *Base) Send(rc *pipeline.Context, receiver, msgType string, payload map[string]interface{}) {
	rc.AddMessage(pipeline.NewMessage(b.id, receiver, msgType, payload))
}

// Inbox returns the run context messages addressed to this agent.
func (b *Base) Inbox(rc *pipeline.Context) []pipeline.Message {
	return rc.MessagesFor(b.id)
}

// invalidInput builds the error an agent returns when Execute receives
// an input type it cannot process. RunAgent normally screens inputs
// through Validate first; this covers direct Execute calls.
func invalidInput(agentID, message string) error {
	return &pipeline.StepError{
		AgentID: agentID,
		Code:    pipeline.CodeInvalidInput,
		Message: message,
		Cause:   pipeline.ErrInvalidInput,
	}
}
