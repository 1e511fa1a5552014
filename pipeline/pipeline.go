package pipeline

import (
	"errors"
	"sync"
	"time"

	"github.com/dominikbraun/graph"
)

// Pipeline is an ordered collection of steps connected by dependency
// ids. It owns no execution logic; the orchestrator repeatedly asks it
// which steps are ready and drives them.
//
// Topology (AddStep) is assembled up front; at run time the pipeline
// only answers readiness and completion queries. All methods are safe
// for concurrent use.
type Pipeline struct {
	// ID uniquely identifies the pipeline.
	ID string

	// Name is the human-readable pipeline name.
	Name string

	// CreatedAt is when the pipeline was built.
	CreatedAt time.Time

	mu          sync.RWMutex
	steps       []*Step
	byID        map[string]*Step
	completedAt *time.Time
}

// NewPipeline creates an empty pipeline.
func NewPipeline(id, name string) *Pipeline {
	return &Pipeline{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
		byID:      make(map[string]*Step),
	}
}

// AddStep appends a step to the pipeline.
//
// Returns a PipelineError wrapping ErrDuplicateStep if a step with the
// same id was already added. Declaration order is preserved; it decides
// the order steps appear in ready batches and summaries.
func (p *Pipeline) AddStep(step *Step) error {
	if step == nil {
		return &PipelineError{Message: "step cannot be nil"}
	}
	if step.ID == "" {
		return &PipelineError{Message: "step ID cannot be empty"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byID[step.ID]; exists {
		return &PipelineError{
			Message: "step already exists: " + step.ID,
			Code:    CodeDuplicateStep,
			Cause:   ErrDuplicateStep,
		}
	}

	p.steps = append(p.steps, step)
	p.byID[step.ID] = step
	return nil
}

// Step retrieves a step by id.
func (p *Pipeline) Step(id string) (*Step, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	step, ok := p.byID[id]
	return step, ok
}

// Steps returns the pipeline's steps in declaration order. The slice
// is a copy; the steps themselves are shared.
func (p *Pipeline) Steps() []*Step {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.steps)
}

// NextExecutableSteps returns every PENDING step whose dependencies
// are all COMPLETED, in declaration order.
//
// The ready set is recomputed from scratch on each call. A dependency
// id that matches no step is never satisfied, so a step carrying one
// stays pending forever; Validate catches that topology bug up front.
func (p *Pipeline) NextExecutableSteps() []*Step {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var ready []*Step
	for _, step := range p.steps {
		if step.Status() != StatusPending {
			continue
		}
		if p.dependenciesSatisfied(step) {
			ready = append(ready, step)
		}
	}
	return ready
}

// dependenciesSatisfied reports whether every dependency of the step
// is COMPLETED. Callers must hold p.mu.
func (p *Pipeline) dependenciesSatisfied(step *Step) bool {
	for _, dep := range step.DependsOn {
		depStep, ok := p.byID[dep]
		if !ok {
			return false
		}
		if depStep.Status() != StatusCompleted {
			return false
		}
	}
	return true
}

// IsComplete reports whether every step finished successfully
// (COMPLETED, or deliberately SKIPPED before the run).
func (p *Pipeline) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, step := range p.steps {
		switch step.Status() {
		case StatusCompleted, StatusSkipped:
		default:
			return false
		}
	}
	return true
}

// HasFailures reports whether any step is FAILED.
func (p *Pipeline) HasFailures() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, step := range p.steps {
		if step.Status() == StatusFailed {
			return true
		}
	}
	return false
}

// Validate checks the pipeline topology without executing anything.
//
// It reports, as a PipelineError:
//   - dependencies on ids that match no step (ErrUnknownDependency)
//   - dependency cycles, including self-dependencies (ErrCyclicDependency)
//
// Run this after assembly; the execution loop treats an invalid
// topology as a stall rather than an error.
func (p *Pipeline) Validate() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, step := range p.steps {
		for _, dep := range step.DependsOn {
			if _, ok := p.byID[dep]; !ok {
				return &PipelineError{
					Message: "step " + step.ID + " depends on unknown step " + dep,
					Code:    CodeUnknownDependency,
					Cause:   ErrUnknownDependency,
				}
			}
		}
	}

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, step := range p.steps {
		if err := g.AddVertex(step.ID); err != nil {
			return &PipelineError{
				Message: "failed to build dependency graph: " + err.Error(),
				Cause:   err,
			}
		}
	}
	for _, step := range p.steps {
		for _, dep := range step.DependsOn {
			err := g.AddEdge(dep, step.ID)
			if errors.Is(err, graph.ErrEdgeCreatesCycle) {
				return &PipelineError{
					Message: "dependency cycle through step " + step.ID,
					Code:    CodeCyclicDependency,
					Cause:   ErrCyclicDependency,
				}
			}
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return &PipelineError{
					Message: "failed to build dependency graph: " + err.Error(),
					Cause:   err,
				}
			}
		}
	}

	return nil
}

// Reset returns every step to PENDING and clears the completion stamp
// so cached topology can serve a fresh run.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, step := range p.steps {
		step.reset()
	}
	p.completedAt = nil
}

// CompletedAt returns when the pipeline finished all steps, or nil.
func (p *Pipeline) CompletedAt() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyTime(p.completedAt)
}

// setCompletedAt stamps the pipeline's completion time.
func (p *Pipeline) setCompletedAt(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completedAt = &t
}

// Summary is a point-in-time aggregate of pipeline state, suitable for
// JSON export.
type Summary struct {
	PipelineID   string         `json:"pipeline_id"`
	PipelineName string         `json:"pipeline_name"`
	TotalSteps   int            `json:"total_steps"`
	StatusCounts map[Status]int `json:"status_counts"`
	Complete     bool           `json:"complete"`
	HasFailures  bool           `json:"has_failures"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// ExecutionSummary returns the current aggregate state of the pipeline.
func (p *Pipeline) ExecutionSummary() Summary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	counts := make(map[Status]int)
	complete := true
	failed := false
	for _, step := range p.steps {
		status := step.Status()
		counts[status]++
		switch status {
		case StatusCompleted, StatusSkipped:
		default:
			complete = false
		}
		if status == StatusFailed {
			failed = true
		}
	}
	if len(p.steps) == 0 {
		complete = true
	}

	return Summary{
		PipelineID:   p.ID,
		PipelineName: p.Name,
		TotalSteps:   len(p.steps),
		StatusCounts: counts,
		Complete:     complete,
		HasFailures:  failed,
		CreatedAt:    p.CreatedAt,
		CompletedAt:  copyTime(p.completedAt),
	}
}
