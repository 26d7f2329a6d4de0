package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telecom_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "telecom_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telecom_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	contractsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telecom_contracts_created_total",
		Help: "Count of contracts created by estado",
	}, []string{"estado"})

	contractsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telecom_contracts_deleted_total",
		Help: "Count of contracts deleted",
	})

	conflictErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telecom_conflict_errors_total",
		Help: "Count of uniqueness/referential conflicts by kind",
	}, []string{"kind"})

	statsCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telecom_stats_cache_lookups_total",
		Help: "Stats cache lookups by result (hit/miss)",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin increments the login attempt counter with a result label.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveContractCreated increments the contract creation counter.
func ObserveContractCreated(estado string) {
	contractsCreated.WithLabelValues(estado).Inc()
}

// ObserveContractDeleted increments the contract deletion counter.
func ObserveContractDeleted() {
	contractsDeleted.Inc()
}

// ObserveConflict increments the conflict counter for the given kind.
func ObserveConflict(kind string) {
	conflictErrors.WithLabelValues(kind).Inc()
}

// ObserveStatsCache records a stats cache lookup result.
func ObserveStatsCache(result string) {
	statsCacheLookups.WithLabelValues(result).Inc()
}
