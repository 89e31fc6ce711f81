package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geotune_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geotune_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// recommendation strategy runs, labelled by strategy and outcome
	// (hit, empty, error)
	StrategyResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geotune_strategy_results_total",
			Help: "Recommendation strategy runs by outcome",
		},
		[]string{"strategy", "outcome"},
	)

	// candidate list sizes per strategy
	CandidateCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geotune_candidates",
			Help:    "Histogram of candidate list sizes",
			Buckets: prometheus.LinearBuckets(0, 1, 16),
		},
		[]string{"strategy"},
	)

	// credential exchanges against the auth broker (success, failure)
	BrokerExchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geotune_broker_exchanges_total",
			Help: "Credential exchanges against the auth broker",
		},
		[]string{"outcome"},
	)

	// latency of upstream catalog calls per operation
	CatalogCallLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geotune_catalog_call_duration_seconds",
			Help:    "Duration of upstream catalog calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// playback dispatch attempts (success, failure, no_candidates)
	DispatchCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geotune_dispatches_total",
			Help: "Playback dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)

	// rate limit requests per connection handle
	RateLimitRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geotune_ratelimit_requests_total",
			Help: "Total rate limit checks per connection",
		},
		[]string{"connection"},
	)

	// rate limit hits per connection handle
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geotune_ratelimit_hits_total",
			Help: "Total rate limit rejections per connection",
		},
		[]string{"connection"},
	)

	// connection sessions currently held in the registry
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "geotune_active_sessions",
			Help: "Connection sessions currently cached",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		StrategyResults,
		CandidateCount,
		BrokerExchanges,
		CatalogCallLatency,
		DispatchCount,
		RateLimitRequests,
		RateLimitHits,
		ActiveSessions,
	)
}
