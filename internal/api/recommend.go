package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/logic"
	"github.com/ewhitmore/geotune/internal/middleware"
	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/observability"
)

type recommendationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RecommendationsHandler handles POST /recommendations: classify the
// coordinate, run the strategy pipeline, pick one candidate and start
// playback, then report the merged outcome. Failures inside the pipeline
// degrade to informational payloads; only malformed input, rate limiting and
// an unbuildable session produce non-200 statuses.
func (s *Server) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "RecommendationsHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/recommendations"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "recommendations"
	const method = "POST"

	handle := connectionID(r)
	if handle == "" {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusBadRequest, "X-Connection-Id required")
		return
	}

	if !s.Limiter.Allow(handle) {
		logger.Warn("rate limited", zap.String("connection_id", handle))
		s.Metrics.IncrementRequests(endpoint, method, "429")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("decode request", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	coord := models.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	client := logic.DescribeClient(r.UserAgent())

	span.SetAttributes(
		attribute.Float64("location.latitude", coord.Latitude),
		attribute.Float64("location.longitude", coord.Longitude),
		attribute.String("device.type", client.DeviceType),
	)

	sess := s.Sessions.Get(handle)
	if !sess.EnsureClient(ctx) {
		logger.Warn("session unavailable", zap.String("connection_id", handle))
		s.Metrics.IncrementRequests(endpoint, method, "503")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		writeError(w, http.StatusServiceUnavailable, "music service not connected")
		return
	}

	result := s.Recommender.Recommend(ctx, sess.Client(), coord, time.Now(), clientIP(r))
	s.Metrics.RecordCandidateCount(result.Strategy, len(result.Tracks))

	if observability.ShouldSample(observability.GetSamplingRate()) {
		logger.Info("recommendation request",
			zap.String("request_id", middleware.RequestIDFromContext(ctx)),
			zap.String("connection_id", handle),
			zap.Float64("latitude", coord.Latitude),
			zap.Float64("longitude", coord.Longitude),
			zap.String("place_type", string(result.Context.PlaceType)),
			zap.String("time_of_day", string(result.Context.TimeOfDay)),
			zap.String("strategy", result.Strategy),
			zap.Int("candidates", len(result.Tracks)),
			zap.String("device_type", client.DeviceType),
			zap.String("os", client.OS))
	}

	outcome := s.Dispatcher.SelectAndPlay(ctx, sess, result)
	span.SetAttributes(attribute.Int("candidates", len(result.Tracks)))

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	writeJSON(w, http.StatusOK, outcome)
}
