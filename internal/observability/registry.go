package observability

import "time"

// MetricsRegistry records application metrics. Components take it by
// injection so tests can run against the no-op implementation.
type MetricsRegistry interface {
	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Recommendation pipeline metrics
	IncrementStrategyResults(strategy, outcome string)
	RecordCandidateCount(strategy string, count int)

	// Session and broker metrics
	IncrementBrokerExchanges(outcome string)
	SetActiveSessions(count int)

	// Upstream catalog metrics
	RecordCatalogCallLatency(operation string, duration time.Duration)

	// Playback dispatch metrics
	IncrementDispatches(outcome string)

	// Rate limiting metrics
	IncrementRateLimitRequests(connection string)
	IncrementRateLimitHits(connection string)
}

// PrometheusRegistry implements MetricsRegistry on the package-level
// Prometheus collectors.
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementStrategyResults(strategy, outcome string) {
	StrategyResults.WithLabelValues(strategy, outcome).Inc()
}

func (r *PrometheusRegistry) RecordCandidateCount(strategy string, count int) {
	CandidateCount.WithLabelValues(strategy).Observe(float64(count))
}

func (r *PrometheusRegistry) IncrementBrokerExchanges(outcome string) {
	BrokerExchanges.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) SetActiveSessions(count int) {
	ActiveSessions.Set(float64(count))
}

func (r *PrometheusRegistry) RecordCatalogCallLatency(operation string, duration time.Duration) {
	CatalogCallLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementDispatches(outcome string) {
	DispatchCount.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitRequests(connection string) {
	RateLimitRequests.WithLabelValues(connection).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitHits(connection string) {
	RateLimitHits.WithLabelValues(connection).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing.
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry.
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementStrategyResults(strategy, outcome string)                    {}
func (r *NoOpRegistry) RecordCandidateCount(strategy string, count int)                      {}
func (r *NoOpRegistry) IncrementBrokerExchanges(outcome string)                              {}
func (r *NoOpRegistry) SetActiveSessions(count int)                                          {}
func (r *NoOpRegistry) RecordCatalogCallLatency(operation string, duration time.Duration)    {}
func (r *NoOpRegistry) IncrementDispatches(outcome string)                                   {}
func (r *NoOpRegistry) IncrementRateLimitRequests(connection string)                         {}
func (r *NoOpRegistry) IncrementRateLimitHits(connection string)                             {}
