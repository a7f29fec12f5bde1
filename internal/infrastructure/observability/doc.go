// Package observability provides the metrics and tracing plumbing of the
// boardroom backend.
//
// # Metrics (metrics.go)
//
// A Collector owns its own Prometheus registry, so tests can build as many
// as they like without duplicate registration. It records:
//   - HTTP request count and latency per route
//   - provider calls by outcome (ok, rejected, unavailable) and latency
//   - dispatches by routing (both, claude, chatgpt)
//   - store operations by operation and status
//
// The registry is served on /metrics through promhttp when metrics are
// enabled.
//
// # Tracing (tracing.go)
//
// InitTracing installs a global OpenTelemetry tracer provider exporting over
// OTLP gRPC. When tracing is disabled nothing is installed and the global
// no-op provider stays in place, so spans started by the orchestrator cost
// nothing.
//
// Integration example:
//
//	r := chi.NewRouter()
//	r.Use(observability.TracingMiddleware("boardroom"))
//	r.Use(observability.MetricsMiddleware(collector))
//
// # Store decorators (store.go)
//
// TraceStore and InstrumentStore wrap any repository.Store with spans and
// operation counters respectively.
package observability
