package ratelimit

import (
	"fmt"
	"sync"

	"github.com/ewhitmore/geotune/internal/observability"
)

// ConnectionLimiter rate limits requests per connection handle. Each handle
// gets its own token bucket, created lazily on first access, so one noisy
// listener cannot exhaust the upstream catalog quota for everyone.
type ConnectionLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.RWMutex
	config  Config
	metrics observability.MetricsRegistry
}

// Config holds the configuration for rate limiting.
type Config struct {
	Capacity   int  // Token bucket capacity (burst allowance)
	RefillRate int  // Tokens added per second (sustained rate)
	Enabled    bool // Whether rate limiting is active
}

// NewConnectionLimiter creates a new per-connection rate limiter.
func NewConnectionLimiter(config Config, metrics observability.MetricsRegistry) *ConnectionLimiter {
	return &ConnectionLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		metrics: metrics,
	}
}

// Allow checks if a request for the given connection handle should proceed.
// When rate limiting is disabled via config it always returns true.
func (cl *ConnectionLimiter) Allow(handle string) bool {
	if !cl.config.Enabled {
		return true
	}

	cl.metrics.IncrementRateLimitRequests(handle)

	cl.mu.RLock()
	bucket, exists := cl.buckets[handle]
	cl.mu.RUnlock()

	if !exists {
		// Double-checked locking to avoid racing bucket creation
		cl.mu.Lock()
		bucket, exists = cl.buckets[handle]
		if !exists {
			bucket = NewTokenBucket(cl.config.Capacity, cl.config.RefillRate)
			cl.buckets[handle] = bucket
		}
		cl.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed {
		cl.metrics.IncrementRateLimitHits(handle)
	}
	return allowed
}

// GetStats returns a snapshot of rate limiting statistics per connection.
func (cl *ConnectionLimiter) GetStats() map[string]RateLimitStats {
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	stats := make(map[string]RateLimitStats)
	for handle, bucket := range cl.buckets {
		hits, total := bucket.Stats()
		hitRate := 0.0
		if total > 0 {
			hitRate = float64(hits) / float64(total)
		}
		stats[handle] = RateLimitStats{
			Connection: handle,
			Hits:       hits,
			Total:      total,
			HitRate:    hitRate,
		}
	}
	return stats
}

// RateLimitStats contains rate limiting statistics for one connection.
type RateLimitStats struct {
	Connection string  `json:"Connection"`
	Hits       int64   `json:"Hits"`
	Total      int64   `json:"Total"`
	HitRate    float64 `json:"HitRate"`
}

// String returns a human-readable representation of the statistics.
func (rls RateLimitStats) String() string {
	return fmt.Sprintf("Connection %s: %d/%d hits (%.2f%%)",
		rls.Connection, rls.Hits, rls.Total, rls.HitRate*100)
}
