package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/middleware"
	"github.com/ewhitmore/geotune/internal/session"
)

type playerControlRequest struct {
	Action string `json:"action"`
	// Position is in seconds; only seek reads it.
	Position int `json:"position"`
}

// PlayerStatusHandler handles GET /player/status. An unreachable player
// reports a stopped state rather than an error.
func (s *Server) PlayerStatusHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "player_status"
	const method = "GET"

	sess, ok := s.sessionFor(w, r, endpoint, method, start)
	if !ok {
		return
	}

	state := sess.CurrentPlayback(r.Context())
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	if state == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"is_playing": false,
			"message":    "Nothing is currently playing",
		})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// PlayerControlHandler handles POST /player/control with actions play,
// pause, next, previous and seek. On success the refreshed player state is
// returned.
func (s *Server) PlayerControlHandler(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "player_control"
	const method = "POST"

	var req playerControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, ok := s.sessionFor(w, r, endpoint, method, start)
	if !ok {
		return
	}

	ctx := r.Context()
	var err error
	switch req.Action {
	case "play":
		err = sess.PlayTrack(ctx)
	case "pause":
		err = sess.Pause(ctx)
	case "next":
		err = sess.NextTrack(ctx)
	case "previous":
		err = sess.PreviousTrack(ctx)
	case "seek":
		err = sess.Seek(ctx, req.Position*1000)
	default:
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusBadRequest, "unknown action: "+req.Action)
		return
	}

	if err != nil {
		logger.Warn("player control failed",
			zap.String("action", req.Action),
			zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "502")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusBadGateway, "player command failed")
		return
	}

	state := sess.CurrentPlayback(ctx)
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	if state == nil {
		writeJSON(w, http.StatusOK, map[string]any{"is_playing": false, "action": req.Action})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// sessionFor resolves the request's connection session and ensures a live
// catalog client, writing the error response itself when it cannot.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request, endpoint, method string, start time.Time) (*session.Session, bool) {
	handle := connectionID(r)
	if handle == "" {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusBadRequest, "X-Connection-Id required")
		return nil, false
	}

	sess := s.Sessions.Get(handle)
	if !sess.EnsureClient(r.Context()) {
		s.Metrics.IncrementRequests(endpoint, method, "503")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusServiceUnavailable, "music service not connected")
		return nil, false
	}
	return sess, true
}
