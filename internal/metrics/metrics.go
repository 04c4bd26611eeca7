package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tracks the number of outbound API calls to the Vertex gateway.
	VenueRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vertex_gateway_requests_total",
			Help: "Total number of Vertex gateway requests made (by endpoint and status).",
		},
		[]string{"endpoint", "status"},
	)

	// Measures duration of API requests to the Vertex gateway.
	VenueRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vertex_gateway_request_duration_seconds",
			Help:    "Duration of Vertex gateway requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"endpoint"},
	)

	RequestsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpty_requests_dispatched_total",
			Help: "Inbound protocol requests drained by the dispatcher loop.",
		},
		[]string{"type"},
	)

	BroadcastDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_dropped_messages_total",
			Help: "Messages dropped on lagging broadcast subscribers.",
		},
		[]string{"stream"},
	)

	NATSPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_publish_errors_total",
			Help: "Number of NATS publish failures",
		},
		[]string{"subject"},
	)
)

// ObserveDuration records the time taken since start on the given histogram.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// counters are not meant for duration tracking
	}
}

func IncVenueRequest(endpoint, status string) {
	VenueRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

func IncDispatched(requestType string) {
	RequestsDispatched.WithLabelValues(requestType).Inc()
}

func IncBroadcastDrop(stream string) {
	BroadcastDrops.WithLabelValues(stream).Inc()
}

func StartServer(addr string) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		http.ListenAndServe(addr, nil) //nolint:errcheck
	}()
}
