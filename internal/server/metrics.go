package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbbcode",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapbbcode",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
	}, []string{"method", "path"})

	codecObjectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbbcode",
		Subsystem: "codec",
		Name:      "objects_total",
		Help:      "Map objects parsed or serialized",
	}, []string{"op"})
)

var knownPaths = map[string]bool{
	"/api/validate":  true,
	"/api/parse":     true,
	"/api/serialize": true,
	"/api/geojson":   true,
	"/api/extract":   true,
	"/healthz":       true,
	"/metrics":       true,
}

func observeRequest(method, path string, status int, elapsed time.Duration) {
	// unknown paths share one label to bound cardinality
	if !knownPaths[path] {
		path = "other"
	}

	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func recordObjects(op string, n int) {
	codecObjectsTotal.WithLabelValues(op).Add(float64(n))
}
