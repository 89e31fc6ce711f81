// Package api exposes the recommendation and player surface over HTTP.
package api

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/config"
	"github.com/ewhitmore/geotune/internal/logic"
	"github.com/ewhitmore/geotune/internal/logic/ratelimit"
	"github.com/ewhitmore/geotune/internal/middleware"
	"github.com/ewhitmore/geotune/internal/nango"
	"github.com/ewhitmore/geotune/internal/observability"
	"github.com/ewhitmore/geotune/internal/session"
)

var tracer = otel.Tracer("geotune")

// connectionHeader carries the listener's connection handle on every
// session-scoped endpoint.
const connectionHeader = "X-Connection-Id"

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger      *zap.Logger
	Sessions    *session.Registry
	Recommender *logic.Recommender
	Dispatcher  *logic.Dispatcher
	Limiter     *ratelimit.ConnectionLimiter
	Broker      *nango.Client
	Metrics     observability.MetricsRegistry
	Config      config.Config
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, sessions *session.Registry, recommender *logic.Recommender, dispatcher *logic.Dispatcher, limiter *ratelimit.ConnectionLimiter, broker *nango.Client, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	return &Server{
		Logger:      logger,
		Sessions:    sessions,
		Recommender: recommender,
		Dispatcher:  dispatcher,
		Limiter:     limiter,
		Broker:      broker,
		Metrics:     metrics,
		Config:      cfg,
	}
}

// Router builds the full route table with middleware applied.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.CORS(""))
	r.Use(middleware.WithRequestID)
	r.Use(middleware.WithTraceLogger(s.Logger))

	r.HandleFunc("/recommendations", s.RecommendationsHandler).Methods("POST", "OPTIONS")
	r.HandleFunc("/player/status", s.PlayerStatusHandler).Methods("GET", "OPTIONS")
	r.HandleFunc("/player/control", s.PlayerControlHandler).Methods("POST", "OPTIONS")
	r.HandleFunc("/connections/webhook", s.ConnectionWebhookHandler).Methods("POST")
	r.HandleFunc("/status", s.StatusHandler).Methods("GET")
	r.HandleFunc("/song", s.SongHandler).Methods("POST", "OPTIONS")
	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// connectionID extracts the connection handle, with a legacy query-parameter
// fallback for old player frontends.
func connectionID(r *http.Request) string {
	if id := r.Header.Get(connectionHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("connection_id")
}

// clientIP prefers the forwarding header over the socket peer.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
