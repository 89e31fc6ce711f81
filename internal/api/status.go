package api

import (
	"net/http"
	"time"
)

// StatusHandler handles GET /status with a service-level readiness summary.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "status"
	const method = "GET"

	s.Metrics.SetActiveSessions(s.Sessions.Len())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"service":           s.Config.ServiceName,
		"broker_configured": s.Broker.Configured(),
		"active_sessions":   s.Sessions.Len(),
	})

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

// SongHandler handles POST /song, the legacy surface returning only the
// currently playing track.
func (s *Server) SongHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "song"
	const method = "POST"

	sess, ok := s.sessionFor(w, r, endpoint, method, start)
	if !ok {
		return
	}

	state := sess.CurrentPlayback(r.Context())
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	if state == nil || state.Song == nil {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Nothing is currently playing"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"current_song": state.Song})
}

// HealthHandler responds with a simple status check.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "health"
	const method = "GET"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
