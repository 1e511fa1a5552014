// Package pipeline implements a dependency-ordered task scheduler for
// content generation workflows.
//
// A Pipeline is a static collection of Steps connected by dependency
// ids. The Orchestrator owns the pipeline and a registry of Agents,
// repeatedly asks the pipeline which steps are ready, executes them
// against a shared per-run Context, and decides when the run can make
// no further progress.
//
// Execution is fail-soft: a failing step blocks only the steps that
// depend on it, and ExecutePipeline returns whatever outputs were
// produced rather than an error.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kasparro/contentpipe-go/pipeline/emit"
	"github.com/kasparro/contentpipe-go/pipeline/store"
)

// actorOrchestrator is the actor id the engine logs under, as opposed
// to entries logged by agents.
const actorOrchestrator = "orchestrator"

// Orchestrator drives pipeline execution end to end.
//
// Responsibilities:
//   - Register and look up agents by id
//   - Build (or accept) the pipeline topology and cache it across runs
//   - Create a fresh shared Context per run
//   - Execute ready steps, sequentially or in parallel
//   - Surface results, summaries, and the execution log
//
// The pipeline topology is built once and reused: each ExecutePipeline
// call resets step statuses and starts from a clean Context, so no
// state leaks between runs.
//
// An Orchestrator executes one run at a time; concurrent
// ExecutePipeline calls on the same instance are serialized.
//
// Example:
//
//	orch := pipeline.New(
//	    pipeline.WithEmitter(emit.NewLogEmitter(os.Stdout, false)),
//	)
//	for _, a := range agent.Defaults() {
//	    orch.RegisterAgent(a)
//	}
//
//	outputs, err := orch.ExecutePipeline(ctx, rawProduct)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(outputs["faq_page"])
type Orchestrator struct {
	mu       sync.RWMutex
	agents   map[string]Agent
	pipeline *Pipeline
	lastRun  *Context

	// runMu serializes ExecutePipeline calls; step statuses live on
	// the shared cached topology.
	runMu sync.Mutex

	opts Options
}

// New creates an Orchestrator with the given options.
//
// Defaults: no-op emitter, no store, no metrics, sequential batch
// execution, no step timeout, context-key input resolution.
func New(opts ...Option) *Orchestrator {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	options.normalize()

	return &Orchestrator{
		agents: make(map[string]Agent),
		opts:   options,
	}
}

// RegisterAgent adds an agent to the registry. Registering an agent
// with an id already present replaces the previous one.
func (o *Orchestrator) RegisterAgent(a Agent) {
	if a == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.agents[a.ID()] = a
}

// Agent returns the registered agent with the given id.
func (o *Orchestrator) Agent(id string) (Agent, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	a, ok := o.agents[id]
	return a, ok
}

// AgentIDs returns the ids of all registered agents in sorted order.
func (o *Orchestrator) AgentIDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	ids := make([]string, 0, len(o.agents))
	for id := range o.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuildPipeline constructs the content generation topology and caches
// it. Subsequent calls return the cached pipeline unchanged.
//
// Topology: one parsing root feeding three independent branches, one
// of which has a dependent step.
//
//	parse-data ─┬─> generate-questions ──> generate-faq
//	            ├─> generate-product-page
//	            └─> generate-comparison
//
// Each step declares the context key its agent reads (InputKey) and
// the key its result is stored under (OutputKey); the parse step reads
// the reserved raw input key.
func (o *Orchestrator) BuildPipeline() *Pipeline {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeline != nil {
		return o.pipeline
	}

	p := NewPipeline("content-generation-pipeline", "Content Generation Pipeline")

	steps := []*Step{
		{
			ID:          "parse-data",
			AgentID:     "data-parser-agent",
			Name:        "Parse Product Data",
			Description: "Convert raw product data into internal model",
			InputKey:    RawInputKey,
			OutputKey:   "product",
		},
		{
			ID:          "generate-questions",
			AgentID:     "question-generator-agent",
			Name:        "Generate Questions",
			Description: "Generate categorized user questions",
			DependsOn:   []string{"parse-data"},
			InputKey:    "product",
			OutputKey:   "question_set",
		},
		{
			ID:          "generate-faq",
			AgentID:     "faq-page-agent",
			Name:        "Generate FAQ Page",
			Description: "Generate FAQ page from questions and content blocks",
			DependsOn:   []string{"generate-questions"},
			InputKey:    "product",
			OutputKey:   "faq_page",
		},
		{
			ID:          "generate-product-page",
			AgentID:     "product-page-agent",
			Name:        "Generate Product Page",
			Description: "Generate product description page",
			DependsOn:   []string{"parse-data"},
			InputKey:    "product",
			OutputKey:   "product_page",
		},
		{
			ID:          "generate-comparison",
			AgentID:     "comparison-page-agent",
			Name:        "Generate Comparison Page",
			Description: "Generate product comparison page",
			DependsOn:   []string{"parse-data"},
			InputKey:    "product",
			OutputKey:   "comparison_page",
		},
	}
	for _, step := range steps {
		step.status = StatusPending
		// Ids are fixed above; AddStep cannot reject them.
		_ = p.AddStep(step)
	}

	o.pipeline = p
	return p
}

// SetPipeline replaces the cached topology with a custom pipeline.
// The next ExecutePipeline call runs it. Passing nil clears the cache
// so BuildPipeline reconstructs the default topology.
func (o *Orchestrator) SetPipeline(p *Pipeline) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pipeline = p
}

// ExecutePipeline runs the pipeline against the given raw input and
// returns the outputs of every completed step, keyed by OutputKey.
//
// Each run:
//  1. Builds the pipeline if absent (the default content topology),
//     resets step statuses on the cached topology otherwise.
//  2. Creates a fresh Context seeded with rawInput under RawInputKey.
//  3. Loops: fetch ready steps; execute the batch; repeat.
//  4. Stops when no step is ready: the run is complete, something
//     failed, or the remaining steps can never become ready (a stall;
//     logged and emitted, not an error).
//  5. Saves artifacts and the run report to the configured store.
//
// Failure semantics are fail-soft. A failing step blocks only its
// dependents, which stay PENDING forever. ExecutePipeline still
// returns the outputs that were produced; callers judge overall
// success via PipelineSummary. The error return is reserved for
// engine-level faults (today that is context cancellation), and a
// non-nil output map is returned even then.
//
// Parameters:
//   - ctx: Context for cancellation and per-step deadlines
//   - rawInput: The run input, stored under RawInputKey
//
// Returns:
//   - Map of OutputKey to result for every COMPLETED step that
//     declared one. Never nil.
//   - Error only when ctx was cancelled mid-run.
func (o *Orchestrator) ExecutePipeline(ctx context.Context, rawInput interface{}) (map[string]interface{}, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	p := o.BuildPipeline()
	p.Reset()

	rc := NewContext()
	rc.Set(RawInputKey, rawInput)

	o.mu.Lock()
	o.lastRun = rc
	o.mu.Unlock()

	run := &runScope{
		id:      uuid.NewString(),
		rc:      rc,
		started: o.opts.Clock(),
	}

	rc.Log(actorOrchestrator, "pipeline_start", map[string]interface{}{
		"pipeline_id": p.ID,
		"steps_count": p.Len(),
	})
	o.emit(run, "", emit.EventRunStart, map[string]interface{}{
		"pipeline_id": p.ID,
		"steps":       p.Len(),
	})
	o.opts.Metrics.RecordRun()

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		batch := p.NextExecutableSteps()
		if len(batch) == 0 {
			if p.HasFailures() {
				break
			}
			if !p.IsComplete() {
				o.recordStall(run, p)
			}
			break
		}

		o.executeBatch(ctx, run, batch)
	}

	if p.IsComplete() {
		p.setCompletedAt(o.opts.Clock())
	}

	summary := p.ExecutionSummary()
	rc.Log(actorOrchestrator, "pipeline_complete", map[string]interface{}{
		"summary": summary,
	})

	outputs := collectOutputs(p, rc)
	storeErr := o.persistRun(ctx, run, p, summary)

	endMeta := map[string]interface{}{
		"complete": summary.Complete,
		"failed":   summary.HasFailures,
		"outputs":  len(outputs),
	}
	if storeErr != nil {
		endMeta["store_error"] = storeErr.Error()
	}
	o.emit(run, "", emit.EventRunEnd, endMeta)

	return outputs, runErr
}

// PipelineSummary returns the aggregate state of the cached pipeline.
// Returns an error before the first BuildPipeline/ExecutePipeline
// call.
func (o *Orchestrator) PipelineSummary() (Summary, error) {
	o.mu.RLock()
	p := o.pipeline
	o.mu.RUnlock()

	if p == nil {
		return Summary{}, &PipelineError{Message: "pipeline not built"}
	}
	return p.ExecutionSummary(), nil
}

// ExecutionLog returns the activity log of the most recent run, or nil
// before the first run.
func (o *Orchestrator) ExecutionLog() []LogEntry {
	o.mu.RLock()
	rc := o.lastRun
	o.mu.RUnlock()

	if rc == nil {
		return nil
	}
	return rc.LogEntries()
}

// Context returns the shared context of the most recent run, or nil
// before the first run. Useful for inspecting intermediate values and
// inter-agent messages after a run.
func (o *Orchestrator) Context() *Context {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastRun
}

// runScope carries the identity and event counter of one
// ExecutePipeline call.
type runScope struct {
	id      string
	rc      *Context
	started time.Time

	mu  sync.Mutex
	seq int
}

// nextSeq returns the next event sequence number. Parallel steps emit
// concurrently, so the counter is guarded.
func (r *runScope) nextSeq() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	return r.seq
}

// emit sends one run event to the configured emitter.
func (o *Orchestrator) emit(run *runScope, stepID, msg string, meta map[string]interface{}) {
	o.opts.Emitter.Emit(emit.Event{
		RunID:  run.id,
		Seq:    run.nextSeq(),
		StepID: stepID,
		Msg:    msg,
		Meta:   meta,
		At:     o.opts.Clock(),
	})
}

// executeBatch runs every step of one ready batch. Steps in a batch
// have no dependencies on each other; with MaxConcurrent > 1 they run
// on worker goroutines, otherwise sequentially in batch order.
func (o *Orchestrator) executeBatch(ctx context.Context, run *runScope, batch []*Step) {
	if o.opts.MaxConcurrent <= 1 || len(batch) == 1 {
		for _, step := range batch {
			o.executeStep(ctx, run, step)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(o.opts.MaxConcurrent)
	for _, step := range batch {
		step := step
		g.Go(func() error {
			o.executeStep(ctx, run, step)
			return nil
		})
	}
	// Step failures land on the steps themselves, never here.
	_ = g.Wait()
}

// executeStep drives one step: resolve the agent and input, run the
// agent lifecycle, record the outcome. Failures are captured on the
// step and never propagate.
func (o *Orchestrator) executeStep(ctx context.Context, run *runScope, step *Step) {
	if !step.MarkRunning() {
		return
	}

	o.opts.Metrics.IncInflightSteps()
	defer o.opts.Metrics.DecInflightSteps()

	agent, ok := o.Agent(step.AgentID)
	if !ok {
		msg := fmt.Sprintf("agent %q not found", step.AgentID)
		step.MarkFailed(msg)
		run.rc.Log(actorOrchestrator, "step_error", map[string]interface{}{
			"step_id": step.ID,
			"error":   msg,
		})
		o.emit(run, step.ID, emit.EventAgentMissing, map[string]interface{}{
			"agent_id": step.AgentID,
		})
		o.opts.Metrics.RecordStep(step.ID, 0, StatusFailed)
		return
	}

	o.emit(run, step.ID, emit.EventStepStart, map[string]interface{}{
		"agent_id": step.AgentID,
	})

	input, err := o.opts.Resolver.Resolve(step, run.rc)
	if err != nil {
		o.failStep(run, step, err.Error())
		return
	}

	stepCtx := ctx
	if o.opts.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, o.opts.StepTimeout)
		defer cancel()
	}

	result, err := RunAgent(stepCtx, agent, input, run.rc)
	if err != nil {
		o.failStep(run, step, err.Error())
		return
	}

	if step.OutputKey != "" {
		run.rc.Set(step.OutputKey, result)
	}
	step.MarkCompleted(result)

	o.emit(run, step.ID, emit.EventStepCompleted, map[string]interface{}{
		"agent_id":    step.AgentID,
		"duration_ms": step.Duration().Milliseconds(),
		"output_key":  step.OutputKey,
	})
	o.opts.Metrics.RecordStep(step.ID, step.Duration(), StatusCompleted)
}

// failStep records a step failure in the step, the run log, the event
// stream, and metrics.
func (o *Orchestrator) failStep(run *runScope, step *Step, msg string) {
	step.MarkFailed(msg)
	run.rc.Log(actorOrchestrator, "step_error", map[string]interface{}{
		"step_id": step.ID,
		"error":   msg,
	})
	o.emit(run, step.ID, emit.EventStepFailed, map[string]interface{}{
		"agent_id":    step.AgentID,
		"error":       msg,
		"duration_ms": step.Duration().Milliseconds(),
	})
	o.opts.Metrics.RecordStep(step.ID, step.Duration(), StatusFailed)
}

// recordStall logs and emits the no-progress condition: nothing is
// ready, nothing failed, yet pending steps remain. Their dependencies
// can never be satisfied (usually a dependency id that matches no
// step), so the run stops here; the pending steps stay PENDING and
// show up in the summary.
func (o *Orchestrator) recordStall(run *runScope, p *Pipeline) {
	var pending []string
	for _, step := range p.Steps() {
		if step.Status() == StatusPending {
			pending = append(pending, step.ID)
		}
	}

	run.rc.Log(actorOrchestrator, "warning", map[string]interface{}{
		"message": "No executable steps available",
		"pending": pending,
	})
	o.emit(run, "", emit.EventPipelineStalled, map[string]interface{}{
		"pending": pending,
	})
	o.opts.Metrics.RecordStall()
}

// collectOutputs gathers the context value of every completed step
// that declared an output key.
func collectOutputs(p *Pipeline, rc *Context) map[string]interface{} {
	outputs := make(map[string]interface{})
	for _, step := range p.Steps() {
		if step.Status() != StatusCompleted || step.OutputKey == "" {
			continue
		}
		if value, ok := rc.Get(step.OutputKey); ok {
			outputs[step.OutputKey] = value
		}
	}
	return outputs
}

// persistRun saves the run's artifacts and closing report to the
// configured store. Store failures never fail the run; the first one
// is returned so the run_end event can carry it.
func (o *Orchestrator) persistRun(ctx context.Context, run *runScope, p *Pipeline, summary Summary) error {
	if o.opts.Store == nil {
		return nil
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, step := range p.Steps() {
		if step.Status() != StatusCompleted || step.OutputKey == "" {
			continue
		}
		body, err := json.Marshal(step.Result())
		if err != nil {
			record(fmt.Errorf("marshal %s output: %w", step.ID, err))
			continue
		}
		record(o.opts.Store.SaveArtifact(ctx, store.Artifact{
			RunID:     run.id,
			Key:       step.OutputKey,
			StepID:    step.ID,
			Title:     step.Name,
			Body:      body,
			CreatedAt: o.opts.Clock(),
		}))
	}

	summaryJSON, err := json.Marshal(summary)
	record(err)
	logJSON, err := json.Marshal(run.rc.LogEntries())
	record(err)

	record(o.opts.Store.SaveRunReport(ctx, store.RunReport{
		RunID:        run.id,
		PipelineID:   p.ID,
		PipelineName: p.Name,
		Summary:      summaryJSON,
		Log:          logJSON,
		StartedAt:    run.started,
		FinishedAt:   o.opts.Clock(),
	}))

	return firstErr
}
