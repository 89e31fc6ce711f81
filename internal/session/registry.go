package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/db"
	"github.com/ewhitmore/geotune/internal/observability"
)

// Registry hands out one Session per connection handle from a bounded cache.
// When the cache is full the least recently used session is evicted;
// rebuilding it later is cheap and idempotent.
type Registry struct {
	broker  Broker
	factory ClientFactory
	creds   *db.CredentialStore
	credTTL time.Duration
	maxSize int
	logger  *zap.Logger
	metrics observability.MetricsRegistry

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry constructs a registry bounded at maxSize sessions.
func NewRegistry(broker Broker, factory ClientFactory, creds *db.CredentialStore, credTTL time.Duration, maxSize int, logger *zap.Logger, metrics observability.MetricsRegistry) *Registry {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Registry{
		broker:   broker,
		factory:  factory,
		creds:    creds,
		credTTL:  credTTL,
		maxSize:  maxSize,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for a handle, creating it on first sight.
func (r *Registry) Get(handle string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[handle]; ok {
		s.touch()
		return s
	}

	if len(r.sessions) >= r.maxSize {
		r.evictOldestLocked()
	}

	s := New(handle, r.broker, r.factory, r.creds, r.credTTL, r.logger, r.metrics)
	r.sessions[handle] = s
	return s
}

// Register pre-creates a session for a freshly authorized connection, as
// notified by the broker webhook.
func (r *Registry) Register(handle string) {
	_ = r.Get(handle)
	r.logger.Info("connection registered", zap.String("connection_id", handle))
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, s := range r.sessions {
		at := s.lastUsedAt()
		if oldestKey == "" || at.Before(oldestAt) {
			oldestKey = k
			oldestAt = at
		}
	}
	if oldestKey != "" {
		delete(r.sessions, oldestKey)
		r.logger.Debug("session evicted", zap.String("connection_id", oldestKey))
	}
}
