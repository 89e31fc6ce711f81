// Package session owns the per-connection catalog client lifecycle: lazy
// credential exchange on first use and a single refresh-and-retry on
// failure. Sessions are passed explicitly; there is no process-global.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/db"
	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/nango"
	"github.com/ewhitmore/geotune/internal/observability"
)

var (
	// ErrNoConnection means no connection handle has been registered for
	// the session yet.
	ErrNoConnection = errors.New("no connection handle set")

	// ErrClientUnavailable means the catalog client could not be built,
	// typically because the broker exchange failed.
	ErrClientUnavailable = errors.New("catalog client unavailable")
)

// Catalog is the slice of the catalog/playback service the core consumes.
// Implemented by the spotify client; faked in tests.
type Catalog interface {
	TopTracks(ctx context.Context, limit int) ([]models.Track, error)
	SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error)
	SimilarTracks(ctx context.Context, seedID string, targets models.FeatureTargets, limit int) ([]models.Track, error)
	CurrentPlayback(ctx context.Context) (*models.PlaybackState, error)
	Play(ctx context.Context, uris []string) error
	Pause(ctx context.Context) error
	NextTrack(ctx context.Context) error
	PreviousTrack(ctx context.Context) error
	Seek(ctx context.Context, positionMS int) error
}

// Broker exchanges a connection handle for an access credential.
type Broker interface {
	Exchange(ctx context.Context, handle string) (nango.Credential, error)
}

// ClientFactory builds a catalog client from an access token.
type ClientFactory func(accessToken string) Catalog

// Session pairs a connection handle with its lazily built catalog client.
// The client is rebuilt through a fresh exchange at most once per failed
// operation; staleness is only ever discovered via call failure.
type Session struct {
	handle  string
	broker  Broker
	factory ClientFactory
	creds   *db.CredentialStore
	credTTL time.Duration
	logger  *zap.Logger
	metrics observability.MetricsRegistry

	mu       sync.Mutex
	client   Catalog
	lastUsed time.Time
}

// New constructs a session for the given handle. creds may be nil, in which
// case every rebuild goes to the broker.
func New(handle string, broker Broker, factory ClientFactory, creds *db.CredentialStore, credTTL time.Duration, logger *zap.Logger, metrics observability.MetricsRegistry) *Session {
	return &Session{
		handle:   handle,
		broker:   broker,
		factory:  factory,
		creds:    creds,
		credTTL:  credTTL,
		logger:   logger,
		metrics:  metrics,
		lastUsed: time.Now(),
	}
}

// Handle returns the connection handle the session was created for.
func (s *Session) Handle() string { return s.handle }

// SetConnection swaps the stored handle without performing any I/O. The
// client is dropped and rebuilt lazily on the next catalog call.
func (s *Session) SetConnection(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = handle
	s.client = nil
}

// Client returns the current catalog client, which may be nil if no call has
// needed one yet.
func (s *Session) Client() Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// EnsureClient builds the catalog client if it does not exist yet. It
// returns false, without raising, when no handle is set, the broker call
// fails, or the broker returns no credential.
func (s *Session) EnsureClient(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return true
	}
	return s.rebuildLocked(ctx, false)
}

// refresh drops the current client and cached credential and rebuilds
// through a fresh broker exchange.
func (s *Session) refresh(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	return s.rebuildLocked(ctx, true)
}

func (s *Session) rebuildLocked(ctx context.Context, force bool) bool {
	if s.handle == "" {
		return false
	}

	token := ""
	if !force && s.creds != nil {
		cached, err := s.creds.GetAccessToken(ctx, s.handle)
		if err != nil {
			s.logger.Warn("credential cache read failed", zap.Error(err))
		}
		token = cached
	}

	if token == "" {
		if force && s.creds != nil {
			if err := s.creds.DeleteAccessToken(ctx, s.handle); err != nil {
				s.logger.Warn("credential cache delete failed", zap.Error(err))
			}
		}
		cred, err := s.broker.Exchange(ctx, s.handle)
		if err != nil {
			s.metrics.IncrementBrokerExchanges("failure")
			s.logger.Warn("broker exchange failed",
				zap.String("connection_id", s.handle),
				zap.Error(err))
			return false
		}
		s.metrics.IncrementBrokerExchanges("success")
		if _, err := s.creds.IncrementExchange(ctx, s.handle); err != nil {
			s.logger.Debug("exchange counter failed", zap.Error(err))
		}
		if err := s.creds.PutAccessToken(ctx, s.handle, cred.AccessToken, s.credTTL); err != nil {
			s.logger.Warn("credential cache write failed", zap.Error(err))
		}
		token = cred.AccessToken
	}

	s.client = s.factory(token)
	return true
}

// do runs a catalog operation under the retry contract: attempt, and on
// failure rebuild the client through exactly one forced exchange and retry
// once. The second failure is returned as-is.
func (s *Session) do(ctx context.Context, fn func(Catalog) error) error {
	s.touch()
	c := s.Client()
	if c == nil {
		if !s.EnsureClient(ctx) {
			return ErrClientUnavailable
		}
		c = s.Client()
	}

	err := fn(c)
	if err == nil {
		return nil
	}

	s.logger.Debug("catalog call failed, refreshing credential", zap.Error(err))
	if !s.refresh(ctx) {
		return err
	}
	return fn(s.Client())
}

// PlayTrack starts playback of the given track URIs.
func (s *Session) PlayTrack(ctx context.Context, uris ...string) error {
	return s.do(ctx, func(c Catalog) error { return c.Play(ctx, uris) })
}

// Pause pauses playback.
func (s *Session) Pause(ctx context.Context) error {
	return s.do(ctx, func(c Catalog) error { return c.Pause(ctx) })
}

// NextTrack skips to the next track.
func (s *Session) NextTrack(ctx context.Context) error {
	return s.do(ctx, func(c Catalog) error { return c.NextTrack(ctx) })
}

// PreviousTrack skips to the previous track.
func (s *Session) PreviousTrack(ctx context.Context) error {
	return s.do(ctx, func(c Catalog) error { return c.PreviousTrack(ctx) })
}

// Seek jumps to a position in the current track.
func (s *Session) Seek(ctx context.Context, positionMS int) error {
	return s.do(ctx, func(c Catalog) error { return c.Seek(ctx, positionMS) })
}

// CurrentPlayback reads the player state. Unlike the mutating operations it
// degrades: after the one-shot retry also fails the read reports an absent
// state rather than an error.
func (s *Session) CurrentPlayback(ctx context.Context) *models.PlaybackState {
	var state *models.PlaybackState
	err := s.do(ctx, func(c Catalog) error {
		var e error
		state, e = c.CurrentPlayback(ctx)
		return e
	})
	if err != nil {
		s.logger.Warn("playback state unavailable",
			zap.String("connection_id", s.handle),
			zap.Error(err))
		return nil
	}
	return state
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func (s *Session) lastUsedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
