package pipeline

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics provides Prometheus-compatible metrics collection
// for pipeline execution monitoring.
//
// Metrics exposed (all namespaced with "contentpipe_"):
//
//  1. runs_total (counter): Pipeline runs started.
//  2. steps_total (counter): Step executions by terminal status.
//     Labels: status (completed/failed/skipped).
//  3. step_duration_seconds (histogram): Step execution duration.
//     Labels: step_id, status.
//  4. stalls_total (counter): Runs that stopped with unreachable
//     pending steps.
//  5. inflight_steps (gauge): Steps currently executing.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := pipeline.NewPrometheusMetrics(registry)
//	orch := pipeline.New(pipeline.WithMetrics(metrics))
//
//	// Expose via HTTP for Prometheus scraping:
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// All methods are safe on a nil receiver, so callers never need to
// nil-check before recording.
type PrometheusMetrics struct {
	runsTotal     prometheus.Counter
	stepsTotal    *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	stallsTotal   prometheus.Counter
	inflightSteps prometheus.Gauge

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics creates and registers all pipeline execution
// metrics with the provided registry.
//
// Parameters:
//   - registry: Prometheus registry to register with. Nil falls back
//     to prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	pm := &PrometheusMetrics{
		enabled: true,
	}

	pm.runsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "contentpipe",
		Name:      "runs_total",
		Help:      "Pipeline runs started",
	})

	pm.stepsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contentpipe",
		Name:      "steps_total",
		Help:      "Step executions by terminal status",
	}, []string{"status"})

	pm.stepDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "contentpipe",
		Name:      "step_duration_seconds",
		Help:      "Step execution duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"step_id", "status"})

	pm.stallsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "contentpipe",
		Name:      "stalls_total",
		Help:      "Runs that stopped with pending steps that could never become ready",
	})

	pm.inflightSteps = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "contentpipe",
		Name:      "inflight_steps",
		Help:      "Steps currently executing",
	})

	return pm
}

// RecordRun counts one pipeline run start.
func (pm *PrometheusMetrics) RecordRun() {
	if !pm.isEnabled() {
		return
	}
	pm.runsTotal.Inc()
}

// RecordStep counts one step reaching a terminal status and observes
// its duration.
func (pm *PrometheusMetrics) RecordStep(stepID string, duration time.Duration, status Status) {
	if !pm.isEnabled() {
		return
	}
	pm.stepsTotal.WithLabelValues(string(status)).Inc()
	pm.stepDuration.WithLabelValues(stepID, string(status)).Observe(duration.Seconds())
}

// RecordStall counts one stalled run.
func (pm *PrometheusMetrics) RecordStall() {
	if !pm.isEnabled() {
		return
	}
	pm.stallsTotal.Inc()
}

// IncInflightSteps records a step entering execution.
func (pm *PrometheusMetrics) IncInflightSteps() {
	if !pm.isEnabled() {
		return
	}
	pm.inflightSteps.Inc()
}

// DecInflightSteps records a step leaving execution.
func (pm *PrometheusMetrics) DecInflightSteps() {
	if !pm.isEnabled() {
		return
	}
	pm.inflightSteps.Dec()
}

// Disable stops metric recording without unregistering collectors.
func (pm *PrometheusMetrics) Disable() {
	if pm == nil {
		return
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable resumes metric recording.
func (pm *PrometheusMetrics) Enable() {
	if pm == nil {
		return
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}

func (pm *PrometheusMetrics) isEnabled() bool {
	if pm == nil {
		return false
	}
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}
