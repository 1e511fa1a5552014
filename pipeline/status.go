package pipeline

// Status represents the lifecycle state of a pipeline step.
//
// Transitions:
//
//	PENDING -> RUNNING -> COMPLETED
//	PENDING -> RUNNING -> FAILED
//	PENDING -> SKIPPED
//
// Terminal statuses (COMPLETED, FAILED, SKIPPED) are never left.
type Status string

const (
	// StatusPending means the step has not started yet.
	StatusPending Status = "pending"

	// StatusRunning means the step's agent is currently executing.
	StatusRunning Status = "running"

	// StatusCompleted means the step finished successfully.
	StatusCompleted Status = "completed"

	// StatusFailed means the step's agent rejected its input, returned
	// an error, or was never registered.
	StatusFailed Status = "failed"

	// StatusSkipped means the step was excluded from the run before it
	// started.
	StatusSkipped Status = "skipped"
)

// IsTerminal reports whether the status can no longer change.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// AgentStatus represents the lifecycle state of a processing agent,
// independent of any particular step.
type AgentStatus string

const (
	// AgentIdle means the agent is registered but not executing.
	AgentIdle AgentStatus = "idle"

	// AgentRunning means the agent is executing.
	AgentRunning AgentStatus = "running"

	// AgentCompleted means the agent's last execution succeeded.
	AgentCompleted AgentStatus = "completed"

	// AgentFailed means the agent's last execution failed.
	AgentFailed AgentStatus = "failed"
)
