package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Evaluations counts route evaluations by feasibility outcome.
	Evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_evaluations_total", Help: "Route evaluations by feasibility."},
		[]string{"feasible"},
	)
	// Violations counts constraint violations by kind.
	Violations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_violations_total", Help: "Constraint violations by kind."},
		[]string{"kind"},
	)
	// ScoreValues tracks the distribution of optimization scores.
	ScoreValues = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimization_score", Help: "Optimization scores (0-100).", Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}},
	)
	// Scenarios counts what-if analyses by resulting risk level.
	Scenarios = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scenarios_total", Help: "What-if scenario analyses by risk level."},
		[]string{"risk"},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status.
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
	// WebhookLatency tracks webhook delivery latencies in milliseconds.
	WebhookLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"event_type", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Evaluations)
		Registry.MustRegister(Violations)
		Registry.MustRegister(ScoreValues)
		Registry.MustRegister(Scenarios)
		Registry.MustRegister(WebhookDeliveries)
		Registry.MustRegister(WebhookLatency)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
