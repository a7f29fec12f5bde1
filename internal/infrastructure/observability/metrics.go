package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Provider metrics
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec

	// Orchestration metrics
	Dispatches *prometheus.CounterVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
}

// NewCollector creates a metrics collector with its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	providerCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Total number of provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	providerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Provider call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider"},
	)

	dispatches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of orchestrated dispatches by routing",
		},
		[]string{"route"},
	)

	storeOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of store operations",
		},
		[]string{"operation", "status"},
	)

	storeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		providerCalls,
		providerDuration,
		dispatches,
		storeOperations,
		storeDuration,
	)

	return &Collector{
		registry:         registry,
		HTTPRequests:     httpRequests,
		HTTPDuration:     httpDuration,
		ProviderCalls:    providerCalls,
		ProviderDuration: providerDuration,
		Dispatches:       dispatches,
		StoreOperations:  storeOperations,
		StoreDuration:    storeDuration,
	}
}

// RecordProviderCall records one provider call. A nil collector is a no-op so
// services can run without metrics.
func (c *Collector) RecordProviderCall(provider, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.ProviderCalls.WithLabelValues(provider, outcome).Inc()
	c.ProviderDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordDispatch records an orchestrated dispatch.
func (c *Collector) RecordDispatch(route string) {
	if c == nil {
		return
	}
	c.Dispatches.WithLabelValues(route).Inc()
}

// RecordStoreOperation records a store call.
func (c *Collector) RecordStoreOperation(operation string, err error, d time.Duration) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.StoreOperations.WithLabelValues(operation, status).Inc()
	c.StoreDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
