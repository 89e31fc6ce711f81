package logic

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/observability"
	"github.com/ewhitmore/geotune/internal/session"
)

// Dispatcher picks one track from a candidate list and starts playback on
// the listener's active device.
type Dispatcher struct {
	Logger  *zap.Logger
	Metrics observability.MetricsRegistry

	// StatusDelay is how long to wait after a successful play command before
	// reading the player state back, so the device has settled.
	StatusDelay time.Duration
}

// NewDispatcher constructs a dispatcher with the given post-play delay.
func NewDispatcher(statusDelay time.Duration, logger *zap.Logger, metrics observability.MetricsRegistry) *Dispatcher {
	return &Dispatcher{Logger: logger, Metrics: metrics, StatusDelay: statusDelay}
}

// SelectAndPlay chooses a uniformly random candidate and dispatches it. The
// returned outcome always carries the full candidate list; a dispatch
// failure is reported inside the outcome, not as a hard error, so callers
// can still surface the recommendations.
func (d *Dispatcher) SelectAndPlay(ctx context.Context, sess *session.Session, result models.RecommendationResult) models.PlaybackOutcome {
	outcome := models.PlaybackOutcome{
		Recommendations: result.Tracks,
		Location:        result.Context.Coordinate,
	}

	if result.Empty() {
		d.Metrics.IncrementDispatches("no_candidates")
		outcome.Error = ErrNoCandidates.Error()
		outcome.Message = "No recommendations available for this location and time"
		return outcome
	}

	pick := result.Tracks[rand.Intn(len(result.Tracks))]
	outcome.Selected = &pick

	if err := sess.PlayTrack(ctx, pick.URI()); err != nil {
		d.Metrics.IncrementDispatches("failure")
		d.Logger.Warn("playback dispatch failed",
			zap.String("track_id", pick.ID),
			zap.String("failure_kind", string(Classify(err))),
			zap.Error(err))
		outcome.Error = fmt.Sprintf("failed to start playback: %v", err)
		return outcome
	}

	d.Metrics.IncrementDispatches("success")
	outcome.Message = fmt.Sprintf("Now playing %q by %s", pick.Title, pick.Artist)

	// Give the device a beat to report the new state; bail early if the
	// caller is gone.
	select {
	case <-time.After(d.StatusDelay):
	case <-ctx.Done():
		return outcome
	}

	if state := sess.CurrentPlayback(ctx); state != nil {
		outcome.IsPlaying = state.IsPlaying
		outcome.Song = state.Song
		outcome.ProgressSec = state.ProgressSec
		outcome.DurationSec = state.DurationSec
		outcome.Device = state.Device
	}
	return outcome
}
