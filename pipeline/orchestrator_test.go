package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kasparro/contentpipe-go/pipeline/emit"
	"github.com/kasparro/contentpipe-go/pipeline/store"
)

// registerReferenceStubs registers a stub for each agent id of the
// default content topology. Every stub echoes a recognizable value.
func registerReferenceStubs(o *Orchestrator) map[string]*stubAgent {
	stubs := make(map[string]*stubAgent)
	for _, id := range []string{
		"data-parser-agent",
		"question-generator-agent",
		"faq-page-agent",
		"product-page-agent",
		"comparison-page-agent",
	} {
		stub := &stubAgent{id: id, result: "result of " + id}
		stubs[id] = stub
		o.RegisterAgent(stub)
	}
	return stubs
}

// TestOrchestrator_BuildPipeline verifies the default topology and its
// caching.
func TestOrchestrator_BuildPipeline(t *testing.T) {
	orch := New()

	p := orch.BuildPipeline()
	if p.Len() != 5 {
		t.Fatalf("expected 5 steps, got %d", p.Len())
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default topology should validate: %v", err)
	}

	wantDeps := map[string][]string{
		"parse-data":            nil,
		"generate-questions":    {"parse-data"},
		"generate-faq":          {"generate-questions"},
		"generate-product-page": {"parse-data"},
		"generate-comparison":   {"parse-data"},
	}
	for id, deps := range wantDeps {
		step, ok := p.Step(id)
		if !ok {
			t.Fatalf("missing step %s", id)
		}
		if len(step.DependsOn) != len(deps) {
			t.Errorf("step %s: expected deps %v, got %v", id, deps, step.DependsOn)
			continue
		}
		for i, dep := range deps {
			if step.DependsOn[i] != dep {
				t.Errorf("step %s: expected dep %s, got %s", id, dep, step.DependsOn[i])
			}
		}
	}

	root, _ := p.Step("parse-data")
	if root.InputKey != RawInputKey {
		t.Errorf("parse step should read %q, got %q", RawInputKey, root.InputKey)
	}

	if again := orch.BuildPipeline(); again != p {
		t.Error("BuildPipeline should return the cached instance")
	}
}

// TestOrchestrator_ExecutePipeline verifies a full run of the default
// topology with stub agents.
func TestOrchestrator_ExecutePipeline(t *testing.T) {
	orch := New()
	stubs := registerReferenceStubs(orch)

	outputs, err := orch.ExecutePipeline(context.Background(), map[string]interface{}{"product_name": "Test Serum"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKeys := []string{"product", "question_set", "faq_page", "product_page", "comparison_page"}
	if len(outputs) != len(wantKeys) {
		t.Fatalf("expected %d outputs, got %d: %v", len(wantKeys), len(outputs), outputs)
	}
	for _, key := range wantKeys {
		if _, ok := outputs[key]; !ok {
			t.Errorf("missing output %q", key)
		}
	}

	summary, err := orch.PipelineSummary()
	if err != nil {
		t.Fatalf("PipelineSummary: %v", err)
	}
	if !summary.Complete {
		t.Error("expected complete run")
	}
	if summary.HasFailures {
		t.Error("expected no failures")
	}
	if summary.StatusCounts[StatusCompleted] != 5 {
		t.Errorf("expected 5 completed steps, got %d", summary.StatusCounts[StatusCompleted])
	}
	if summary.CompletedAt == nil {
		t.Error("expected completion timestamp on a complete run")
	}

	// The parse stub receives the raw input; downstream stubs receive
	// the parse result via the "product" key.
	if input := stubs["data-parser-agent"].lastInput(); input == nil {
		t.Error("parser should receive the raw input")
	}
	if input := stubs["faq-page-agent"].lastInput(); input != "result of data-parser-agent" {
		t.Errorf("faq agent should receive the parsed product, got %v", input)
	}

	// Run log captures the lifecycle.
	log := orch.ExecutionLog()
	if len(log) == 0 {
		t.Fatal("expected execution log entries")
	}
	if log[0].Action != "pipeline_start" {
		t.Errorf("expected pipeline_start first, got %s", log[0].Action)
	}
	if log[len(log)-1].Action != "pipeline_complete" {
		t.Errorf("expected pipeline_complete last, got %s", log[len(log)-1].Action)
	}
}

// TestOrchestrator_RerunIsolation verifies repeated runs reuse the
// topology but never leak context between runs.
func TestOrchestrator_RerunIsolation(t *testing.T) {
	orch := New()
	registerReferenceStubs(orch)

	// Tag the first run's context with a marker no second run should
	// see.
	orch.RegisterAgent(&stubAgent{
		id: "data-parser-agent",
		execute: func(ctx context.Context, input interface{}, rc *Context) (interface{}, error) {
			if rc.Has("marker") {
				return nil, errors.New("context leaked from previous run")
			}
			rc.Set("marker", true)
			return "parsed", nil
		},
	})

	first := orch.BuildPipeline()

	if _, err := orch.ExecutePipeline(context.Background(), "run one"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstContext := orch.Context()

	if _, err := orch.ExecutePipeline(context.Background(), "run two"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	secondContext := orch.Context()

	if firstContext == secondContext {
		t.Error("each run should get a fresh context")
	}
	if orch.BuildPipeline() != first {
		t.Error("topology should be reused across runs")
	}

	summary, _ := orch.PipelineSummary()
	if summary.HasFailures {
		t.Error("second run saw first run's context")
	}
}

// TestOrchestrator_StepFailure verifies failure is local: the failed
// step carries the error, its dependents stay pending, siblings still
// run, and the output map has no entry for the failed branch.
func TestOrchestrator_StepFailure(t *testing.T) {
	orch := New()
	registerReferenceStubs(orch)
	orch.RegisterAgent(&stubAgent{id: "question-generator-agent", err: errors.New("generator exploded")})

	outputs, err := orch.ExecutePipeline(context.Background(), "input")
	if err != nil {
		t.Fatalf("step failure must not fail the run: %v", err)
	}

	p := orch.BuildPipeline()

	failed, _ := p.Step("generate-questions")
	if got := failed.Status(); got != StatusFailed {
		t.Errorf("expected generate-questions FAILED, got %s", got)
	}
	if failed.Err() == "" {
		t.Error("failed step should carry a non-empty error message")
	}
	if !strings.Contains(failed.Err(), "generator exploded") {
		t.Errorf("error should carry the agent's message, got %q", failed.Err())
	}

	// The dependent of the failed step never runs.
	blocked, _ := p.Step("generate-faq")
	if got := blocked.Status(); got != StatusPending {
		t.Errorf("expected generate-faq PENDING, got %s", got)
	}

	// Independent branches still complete.
	for _, id := range []string{"parse-data", "generate-product-page", "generate-comparison"} {
		step, _ := p.Step(id)
		if got := step.Status(); got != StatusCompleted {
			t.Errorf("expected %s COMPLETED, got %s", id, got)
		}
	}

	if _, ok := outputs["question_set"]; ok {
		t.Error("failed step must not contribute an output")
	}
	if _, ok := outputs["faq_page"]; ok {
		t.Error("blocked step must not contribute an output")
	}
	if _, ok := outputs["product_page"]; !ok {
		t.Error("sibling branch output missing")
	}

	if !p.HasFailures() {
		t.Error("expected HasFailures")
	}
	if p.IsComplete() {
		t.Error("failed run must not be complete")
	}
}

// TestOrchestrator_FailureChain verifies the chain scenario: E depends
// on D, D depends on A, A fails. D and E stay pending forever.
func TestOrchestrator_FailureChain(t *testing.T) {
	orch := New()
	orch.RegisterAgent(&stubAgent{id: "agent-a", err: errors.New("a failed")})
	orch.RegisterAgent(&stubAgent{id: "agent-d"})
	orch.RegisterAgent(&stubAgent{id: "agent-e"})

	p := NewPipeline("chain", "Chain")
	p.AddStep(&Step{ID: "A", AgentID: "agent-a", OutputKey: "a_out"})
	p.AddStep(&Step{ID: "D", AgentID: "agent-d", DependsOn: []string{"A"}, InputKey: "a_out"})
	p.AddStep(&Step{ID: "E", AgentID: "agent-e", DependsOn: []string{"D"}})
	orch.SetPipeline(p)

	if _, err := orch.ExecutePipeline(context.Background(), "input"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := p.Step("A")
	if got := a.Status(); got != StatusFailed {
		t.Errorf("expected A FAILED, got %s", got)
	}
	for _, id := range []string{"D", "E"} {
		step, _ := p.Step(id)
		if got := step.Status(); got != StatusPending {
			t.Errorf("expected %s PENDING, got %s", id, got)
		}
	}
	if !p.HasFailures() {
		t.Error("expected HasFailures true")
	}
	if p.IsComplete() {
		t.Error("expected IsComplete false")
	}
}

// TestOrchestrator_Stall verifies the silent fail-soft stop when a
// dependency id matches no step: the loop exits, the step stays
// pending, and the stall is observable via log, events, and summary.
func TestOrchestrator_Stall(t *testing.T) {
	buffered := emit.NewBufferedEmitter()
	orch := New(WithEmitter(buffered))
	orch.RegisterAgent(&stubAgent{id: "agent-a"})
	orch.RegisterAgent(&stubAgent{id: "agent-b"})

	p := NewPipeline("stall", "Stall")
	p.AddStep(&Step{ID: "A", AgentID: "agent-a", OutputKey: "a_out"})
	p.AddStep(&Step{ID: "B", AgentID: "agent-b", DependsOn: []string{"ghost-step"}})
	orch.SetPipeline(p)

	outputs, err := orch.ExecutePipeline(context.Background(), "input")
	if err != nil {
		t.Fatalf("a stall must not be an error: %v", err)
	}

	if _, ok := outputs["a_out"]; !ok {
		t.Error("completed step output missing from stalled run")
	}

	b, _ := p.Step("B")
	if got := b.Status(); got != StatusPending {
		t.Errorf("expected B PENDING, got %s", got)
	}
	if p.IsComplete() {
		t.Error("stalled run must not be complete")
	}
	if p.HasFailures() {
		t.Error("stall is not a failure")
	}

	// The stall is visible in the event stream and the run log.
	runIDs := buffered.RunIDs()
	if len(runIDs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runIDs))
	}
	stalls := buffered.HistoryFiltered(runIDs[0], emit.HistoryFilter{Msg: emit.EventPipelineStalled})
	if len(stalls) != 1 {
		t.Fatalf("expected 1 stall event, got %d", len(stalls))
	}
	pending, ok := stalls[0].Meta["pending"].([]string)
	if !ok || len(pending) != 1 || pending[0] != "B" {
		t.Errorf("stall event should name pending steps, got %v", stalls[0].Meta["pending"])
	}

	var warned bool
	for _, entry := range orch.ExecutionLog() {
		if entry.Action == "warning" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning log entry for the stall")
	}
}

// TestOrchestrator_MissingAgent verifies a step bound to an
// unregistered agent id fails immediately with a descriptive message.
func TestOrchestrator_MissingAgent(t *testing.T) {
	buffered := emit.NewBufferedEmitter()
	orch := New(WithEmitter(buffered))
	registerReferenceStubs(orch)

	p := NewPipeline("missing", "Missing Agent")
	p.AddStep(&Step{ID: "lost", AgentID: "never-registered", OutputKey: "out"})
	orch.SetPipeline(p)

	outputs, err := orch.ExecutePipeline(context.Background(), "input")
	if err != nil {
		t.Fatalf("missing agent must not fail the run: %v", err)
	}
	if len(outputs) != 0 {
		t.Errorf("expected no outputs, got %v", outputs)
	}

	step, _ := p.Step("lost")
	if got := step.Status(); got != StatusFailed {
		t.Errorf("expected FAILED, got %s", got)
	}
	if !strings.Contains(step.Err(), "never-registered") {
		t.Errorf("error should name the missing agent, got %q", step.Err())
	}

	runID := buffered.RunIDs()[0]
	missing := buffered.HistoryFiltered(runID, emit.HistoryFilter{Msg: emit.EventAgentMissing})
	if len(missing) != 1 {
		t.Errorf("expected 1 agent_missing event, got %d", len(missing))
	}
}

// TestOrchestrator_ParallelBatch verifies independent ready steps can
// run concurrently without corrupting shared state.
func TestOrchestrator_ParallelBatch(t *testing.T) {
	orch := New(WithMaxConcurrent(4))

	var mu sync.Mutex
	inflight, peak := 0, 0
	slowAgent := func(id string) Agent {
		return &stubAgent{
			id: id,
			execute: func(ctx context.Context, input interface{}, rc *Context) (interface{}, error) {
				mu.Lock()
				inflight++
				if inflight > peak {
					peak = inflight
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				inflight--
				mu.Unlock()
				return id + " done", nil
			},
		}
	}

	orch.RegisterAgent(&stubAgent{id: "root-agent", result: "rooted"})
	for _, id := range []string{"agent-b", "agent-c", "agent-d"} {
		orch.RegisterAgent(slowAgent(id))
	}

	p := NewPipeline("parallel", "Parallel")
	p.AddStep(&Step{ID: "A", AgentID: "root-agent", OutputKey: "root"})
	p.AddStep(&Step{ID: "B", AgentID: "agent-b", DependsOn: []string{"A"}, InputKey: "root", OutputKey: "b"})
	p.AddStep(&Step{ID: "C", AgentID: "agent-c", DependsOn: []string{"A"}, InputKey: "root", OutputKey: "c"})
	p.AddStep(&Step{ID: "D", AgentID: "agent-d", DependsOn: []string{"A"}, InputKey: "root", OutputKey: "d"})
	orch.SetPipeline(p)

	outputs, err := orch.ExecutePipeline(context.Background(), "input")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outputs) != 4 {
		t.Fatalf("expected 4 outputs, got %d", len(outputs))
	}
	if !p.IsComplete() {
		t.Error("expected complete run")
	}
	if peak < 2 {
		t.Errorf("expected parallel execution of the ready batch, peak inflight %d", peak)
	}
}

// TestOrchestrator_Events verifies the emitted event sequence for a
// clean run.
func TestOrchestrator_Events(t *testing.T) {
	buffered := emit.NewBufferedEmitter()
	orch := New(WithEmitter(buffered))
	registerReferenceStubs(orch)

	if _, err := orch.ExecutePipeline(context.Background(), "input"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runID := buffered.RunIDs()[0]
	history := buffered.History(runID)

	if history[0].Msg != emit.EventRunStart {
		t.Errorf("expected first event %s, got %s", emit.EventRunStart, history[0].Msg)
	}
	if last := history[len(history)-1]; last.Msg != emit.EventRunEnd {
		t.Errorf("expected last event %s, got %s", emit.EventRunEnd, last.Msg)
	}

	starts := buffered.HistoryFiltered(runID, emit.HistoryFilter{Msg: emit.EventStepStart})
	completions := buffered.HistoryFiltered(runID, emit.HistoryFilter{Msg: emit.EventStepCompleted})
	if len(starts) != 5 || len(completions) != 5 {
		t.Errorf("expected 5 starts and 5 completions, got %d and %d", len(starts), len(completions))
	}

	// Sequence numbers are strictly increasing.
	for i := 1; i < len(history); i++ {
		if history[i].Seq <= history[i-1].Seq {
			t.Fatalf("event %d: seq %d not after %d", i, history[i].Seq, history[i-1].Seq)
		}
	}
}

// TestOrchestrator_StorePersistence verifies artifacts and the run
// report land in the configured store.
func TestOrchestrator_StorePersistence(t *testing.T) {
	st := store.NewMemStore()
	buffered := emit.NewBufferedEmitter()
	orch := New(WithStore(st), WithEmitter(buffered))
	registerReferenceStubs(orch)

	if _, err := orch.ExecutePipeline(context.Background(), "input"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runID := buffered.RunIDs()[0]
	ctx := context.Background()

	artifacts, err := st.ListArtifacts(ctx, runID)
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(artifacts) != 5 {
		t.Fatalf("expected 5 artifacts, got %d", len(artifacts))
	}

	faq, err := st.Artifact(ctx, runID, "faq_page")
	if err != nil {
		t.Fatalf("Artifact(faq_page): %v", err)
	}
	if faq.StepID != "generate-faq" {
		t.Errorf("expected producing step generate-faq, got %s", faq.StepID)
	}

	report, err := st.RunReport(ctx, runID)
	if err != nil {
		t.Fatalf("RunReport: %v", err)
	}
	if report.PipelineID != "content-generation-pipeline" {
		t.Errorf("unexpected pipeline id %q", report.PipelineID)
	}
	if len(report.Summary) == 0 || len(report.Log) == 0 {
		t.Error("report should carry summary and log JSON")
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("report finished before it started")
	}
}

// TestOrchestrator_StepTimeout verifies the per-step deadline cancels
// a hung agent and fails only its step.
func TestOrchestrator_StepTimeout(t *testing.T) {
	orch := New(WithStepTimeout(30 * time.Millisecond))
	orch.RegisterAgent(&stubAgent{
		id: "hung-agent",
		execute: func(ctx context.Context, input interface{}, rc *Context) (interface{}, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return "too late", nil
			}
		},
	})
	orch.RegisterAgent(&stubAgent{id: "quick-agent", result: "quick"})

	p := NewPipeline("timeout", "Timeout")
	p.AddStep(&Step{ID: "hung", AgentID: "hung-agent", OutputKey: "hung_out"})
	p.AddStep(&Step{ID: "quick", AgentID: "quick-agent", OutputKey: "quick_out"})
	orch.SetPipeline(p)

	start := time.Now()
	outputs, err := orch.ExecutePipeline(context.Background(), "input")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout did not bound the run, took %v", elapsed)
	}

	hung, _ := p.Step("hung")
	if got := hung.Status(); got != StatusFailed {
		t.Errorf("expected hung step FAILED, got %s", got)
	}
	if _, ok := outputs["quick_out"]; !ok {
		t.Error("sibling step should still complete")
	}
}

// TestOrchestrator_Cancellation verifies a cancelled run context stops
// the loop and is the one case ExecutePipeline returns an error.
func TestOrchestrator_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	orch := New()
	orch.RegisterAgent(&stubAgent{
		id: "canceller",
		execute: func(ctx context.Context, input interface{}, rc *Context) (interface{}, error) {
			cancel()
			return "done before cancel landed", nil
		},
	})
	orch.RegisterAgent(&stubAgent{id: "after-agent"})

	p := NewPipeline("cancel", "Cancel")
	p.AddStep(&Step{ID: "first", AgentID: "canceller", OutputKey: "first_out"})
	p.AddStep(&Step{ID: "second", AgentID: "after-agent", DependsOn: []string{"first"}})
	orch.SetPipeline(p)

	outputs, err := orch.ExecutePipeline(ctx, "input")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if outputs == nil {
		t.Fatal("outputs must be non-nil even on cancellation")
	}
	if _, ok := outputs["first_out"]; !ok {
		t.Error("work finished before cancellation should be returned")
	}

	second, _ := p.Step("second")
	if got := second.Status(); got != StatusPending {
		t.Errorf("expected second step PENDING after cancellation, got %s", got)
	}
}

// TestOrchestrator_Accessors verifies summary and log behavior before
// any run.
func TestOrchestrator_Accessors(t *testing.T) {
	orch := New()

	if _, err := orch.PipelineSummary(); err == nil {
		t.Error("expected error before pipeline is built")
	}
	if log := orch.ExecutionLog(); log != nil {
		t.Errorf("expected nil log before first run, got %d entries", len(log))
	}
	if orch.Context() != nil {
		t.Error("expected nil context before first run")
	}
}

// TestOrchestrator_RegisterAgent verifies registry semantics.
func TestOrchestrator_RegisterAgent(t *testing.T) {
	orch := New()

	first := &stubAgent{id: "worker", result: "first"}
	second := &stubAgent{id: "worker", result: "second"}
	orch.RegisterAgent(first)
	orch.RegisterAgent(second)

	got, ok := orch.Agent("worker")
	if !ok {
		t.Fatal("expected agent to be registered")
	}
	if got != second {
		t.Error("re-registration should overwrite")
	}

	orch.RegisterAgent(nil)
	if len(orch.AgentIDs()) != 1 {
		t.Error("nil agent should be ignored")
	}
}

// TestOrchestrator_WithClock verifies a swapped time source feeds
// event timestamps.
func TestOrchestrator_WithClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	buffered := emit.NewBufferedEmitter()
	orch := New(
		WithClock(func() time.Time { return fixed }),
		WithEmitter(buffered),
	)
	registerReferenceStubs(orch)

	if _, err := orch.ExecutePipeline(context.Background(), "input"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ev := range buffered.History(buffered.RunIDs()[0]) {
		if !ev.At.Equal(fixed) {
			t.Fatalf("event timestamp %v should come from the injected clock", ev.At)
		}
	}
}
