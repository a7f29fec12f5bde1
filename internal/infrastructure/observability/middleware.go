package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware starts a server span per request and propagates the
// incoming trace context.
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(
				ctx,
				r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
					attribute.String("http.host", r.Host),
					attribute.String("http.user_agent", r.UserAgent()),
					attribute.String("http.request_id", r.Header.Get("X-Request-ID")),
				),
			)
			defer span.End()

			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			if spanCtx := span.SpanContext(); spanCtx.HasTraceID() {
				w.Header().Set("X-Trace-ID", spanCtx.TraceID().String())
			}

			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			// The route pattern is only known once chi has routed the request.
			if route := routePattern(r); route != "" {
				span.SetName(r.Method + " " + route)
				span.SetAttributes(attribute.String("http.route", route))
			}
			span.SetAttributes(
				attribute.Int("http.status_code", ww.status),
				attribute.Int64("http.response_size", ww.bytesWritten),
				attribute.Float64("http.duration_ms", float64(time.Since(start).Milliseconds())),
			)

			if ww.status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(ww.status))
				span.RecordError(fmt.Errorf("HTTP %d: %s", ww.status, http.StatusText(ww.status)))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

// MetricsMiddleware adds Prometheus metrics to HTTP requests
func MetricsMiddleware(collector *Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			if route == "" {
				route = "unknown"
			}
			collector.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.status)).Inc()
			collector.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// responseWriter captures the status code and body size.
type responseWriter struct {
	http.ResponseWriter
	status        int
	bytesWritten  int64
	headerWritten bool
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.headerWritten {
		w.status = status
		w.headerWritten = true
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}
