package pipeline

import (
	"time"

	"github.com/kasparro/contentpipe-go/pipeline/emit"
	"github.com/kasparro/contentpipe-go/pipeline/store"
)

// Options collects orchestrator configuration. Zero values mean:
// no-op emitter, no store, no metrics, sequential execution, no step
// timeout, context-key input resolution, wall-clock time.
type Options struct {
	// Emitter receives run and step lifecycle events.
	Emitter emit.Emitter

	// Store persists artifacts and run reports after each run.
	Store store.Store

	// Metrics records Prometheus metrics. Nil disables recording.
	Metrics *PrometheusMetrics

	// MaxConcurrent caps how many steps of one ready batch execute in
	// parallel. Values below 2 mean sequential execution.
	MaxConcurrent int

	// StepTimeout bounds each step's agent execution. Zero means no
	// timeout.
	StepTimeout time.Duration

	// Resolver decides what input each step's agent receives.
	Resolver InputResolver

	// Clock supplies timestamps for events and reports. Swappable for
	// deterministic tests.
	Clock func() time.Time
}

// Option is a functional option for configuring an Orchestrator.
//
// Example:
//
//	orch := pipeline.New(
//	    pipeline.WithEmitter(emit.NewLogEmitter(os.Stdout, false)),
//	    pipeline.WithMaxConcurrent(4),
//	    pipeline.WithStepTimeout(30*time.Second),
//	)
type Option func(*Options)

// WithEmitter sets the emitter receiving run and step lifecycle
// events. Default: emit.NullEmitter.
func WithEmitter(emitter emit.Emitter) Option {
	return func(o *Options) {
		o.Emitter = emitter
	}
}

// WithStore sets the store that persists artifacts and run reports
// when a run finishes. Default: none (results live only in the run's
// output map and context).
func WithStore(s store.Store) Option {
	return func(o *Options) {
		o.Store = s
	}
}

// WithMetrics sets the Prometheus metrics collector. Default: none.
func WithMetrics(metrics *PrometheusMetrics) Option {
	return func(o *Options) {
		o.Metrics = metrics
	}
}

// WithMaxConcurrent caps how many steps of one ready batch execute in
// parallel.
//
// Default: 1 (sequential). Steps in a ready batch have no dependencies
// on each other, so parallel execution preserves run semantics; shared
// context access is already synchronized.
func WithMaxConcurrent(n int) Option {
	return func(o *Options) {
		o.MaxConcurrent = n
	}
}

// WithStepTimeout bounds each step's agent execution. The agent's
// context is cancelled at the deadline; agents honoring cancellation
// fail the step with the deadline error. Default: no timeout.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.StepTimeout = d
	}
}

// WithInputResolver replaces the default context-key input resolution.
func WithInputResolver(resolver InputResolver) Option {
	return func(o *Options) {
		o.Resolver = resolver
	}
}

// WithClock replaces the time source used for event timestamps and run
// reports. Default: time.Now.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

// defaultOptions returns the baseline configuration New starts from.
func defaultOptions() Options {
	return Options{
		Emitter:       emit.NewNullEmitter(),
		MaxConcurrent: 1,
		Resolver:      ContextKeyResolver{},
		Clock:         time.Now,
	}
}

// normalize fills nil fields a caller may have zeroed explicitly.
func (o *Options) normalize() {
	if o.Emitter == nil {
		o.Emitter = emit.NewNullEmitter()
	}
	if o.Resolver == nil {
		o.Resolver = ContextKeyResolver{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.MaxConcurrent < 1 {
		o.MaxConcurrent = 1
	}
}
