// Package monitoring provides Prometheus metrics and health reporting.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// ServiceName is the service name reported by health checks
	ServiceName = "accessgap"
)

var (
	// MCP request metrics
	MCPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessgap_mcp_requests_total",
			Help: "Total number of MCP requests processed",
		},
		[]string{"tool", "status"},
	)

	MCPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accessgap_mcp_request_duration_seconds",
			Help:    "MCP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 90.0},
		},
		[]string{"tool"},
	)

	// Query building metrics
	QueriesBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessgap_queries_built_total",
			Help: "Total number of Overpass queries built, by filter mode",
		},
		[]string{"mode"},
	)

	QueryFragments = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "accessgap_query_fragments",
			Help:    "Number of tag filter fragments per built query",
			Buckets: []float64{1, 2, 3, 5, 9, 16, 32},
		},
	)

	FeaturesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "accessgap_features_returned",
			Help:    "Number of features returned per polygon extraction",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// External service metrics
	ExternalServiceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessgap_external_service_requests_total",
			Help: "Total number of external service requests",
		},
		[]string{"service", "operation", "status"},
	)

	ExternalServiceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accessgap_external_service_request_duration_seconds",
			Help:    "External service request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
		},
		[]string{"service", "operation"},
	)

	// Rate limiting metrics
	RateLimitWaitTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accessgap_rate_limit_wait_duration_seconds",
			Help:    "Time spent waiting for rate limits",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessgap_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessgap_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "accessgap_cache_size",
			Help: "Current number of items in cache",
		},
		[]string{"cache_type"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessgap_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "accessgap_system_info",
			Help: "System information",
		},
		[]string{"version", "go_version", "build_commit", "build_date"},
	)

	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "accessgap_goroutines",
			Help: "Number of goroutines",
		},
	)

	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "accessgap_memory_usage_bytes",
			Help: "Memory usage in bytes",
		},
	)
)

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordMCPRequest counts one tool call.
func RecordMCPRequest(tool string, duration time.Duration, success bool) {
	MCPRequestsTotal.WithLabelValues(tool, statusLabel(success)).Inc()
	MCPRequestDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordQueryBuilt counts one built query. mode is "quick_tag", "filter"
// or "none".
func RecordQueryBuilt(mode string, fragments int) {
	QueriesBuiltTotal.WithLabelValues(mode).Inc()
	QueryFragments.Observe(float64(fragments))
}

func RecordFeaturesReturned(n int) {
	FeaturesReturned.Observe(float64(n))
}

func RecordExternalServiceRequest(service, operation string, duration time.Duration, success bool) {
	ExternalServiceRequestsTotal.WithLabelValues(service, operation, statusLabel(success)).Inc()
	ExternalServiceRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordCacheLookup counts a hit or miss and updates the size gauge.
func RecordCacheLookup(cacheType string, hit bool, size int) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
	CacheSize.WithLabelValues(cacheType).Set(float64(size))
}

func RecordRateLimitWait(service string, duration time.Duration) {
	RateLimitWaitTime.WithLabelValues(service).Observe(duration.Seconds())
}

func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
