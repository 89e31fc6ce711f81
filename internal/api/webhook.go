package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/middleware"
)

// webhookPayload is the broker's auth lifecycle notification.
type webhookPayload struct {
	Type         string `json:"type"`
	Operation    string `json:"operation"`
	ConnectionID string `json:"connectionId"`
	ProviderKey  string `json:"provider_config_key"`
	Success      bool   `json:"success"`
}

// ConnectionWebhookHandler handles POST /connections/webhook. A successful
// auth-creation event pre-registers the connection so the first
// recommendation request does not pay for session creation.
func (s *Server) ConnectionWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "connections_webhook"
	const method = "POST"

	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if payload.Type == "auth" && payload.Operation == "creation" && payload.Success && payload.ConnectionID != "" {
		s.Sessions.Register(payload.ConnectionID)
		s.Metrics.SetActiveSessions(s.Sessions.Len())
	} else {
		logger.Debug("webhook ignored",
			zap.String("type", payload.Type),
			zap.String("operation", payload.Operation),
			zap.Bool("success", payload.Success))
	}

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
