// Package emit provides the observability surface of the pipeline
// engine: an Event type describing run and step lifecycle moments, and
// pluggable Emitter backends that receive them.
package emit

// Emitter receives and processes observability events from pipeline
// execution.
//
// Emitters enable pluggable observability backends:
//   - Logging: stdout, files, syslog
//   - Distributed tracing: OpenTelemetry
//   - Message brokers: RabbitMQ
//   - In-memory capture for tests and dashboards
//
// Implementations should be:
//   - Non-blocking: Avoid slowing down pipeline execution
//   - Thread-safe: May be called concurrently from parallel steps
//   - Resilient: Handle backend failures gracefully (never crash a run)
type Emitter interface {
	// Emit sends an observability event to the configured backend.
	//
	// Implementations should not block pipeline execution. If the
	// backend is unavailable or slow, events should be buffered,
	// dropped with internal accounting, or sent asynchronously.
	//
	// Emit must not panic.
	Emit(event Event)
}
