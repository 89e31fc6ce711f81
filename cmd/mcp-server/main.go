// The mcp-server binary exposes the recommendation and player operations as
// MCP tools over stdio, sharing the HTTP service's core.
package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/config"
	"github.com/ewhitmore/geotune/internal/db"
	"github.com/ewhitmore/geotune/internal/geoip"
	"github.com/ewhitmore/geotune/internal/logic"
	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/nango"
	"github.com/ewhitmore/geotune/internal/observability"
	"github.com/ewhitmore/geotune/internal/session"
	"github.com/ewhitmore/geotune/internal/spotify"
)

type RecommendTracksInput struct {
	ConnectionID string  `json:"connection_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Play         bool    `json:"play,omitempty"`
}

type RecommendTracksOutput struct {
	Tracks   []models.Track `json:"tracks"`
	Strategy string         `json:"strategy"`
	Message  string         `json:"message,omitempty"`
}

type PlayerStatusInput struct {
	ConnectionID string `json:"connection_id"`
}

type PlayerStatusOutput struct {
	IsPlaying   bool                `json:"is_playing"`
	Song        *models.CurrentSong `json:"current_song,omitempty"`
	ProgressSec int                 `json:"current_time"`
	DurationSec int                 `json:"duration"`
	Device      string              `json:"device,omitempty"`
	Message     string              `json:"message,omitempty"`
}

type PlayerControlInput struct {
	ConnectionID string `json:"connection_id"`
	Action       string `json:"action"`
	Position     int    `json:"position,omitempty"`
}

type PlayerControlOutput struct {
	Status string `json:"status"`
}

// toolServer holds shared dependencies for the MCP tools.
type toolServer struct {
	sessions    *session.Registry
	recommender *logic.Recommender
	dispatcher  *logic.Dispatcher
	logger      *zap.Logger
}

func (s *toolServer) session(ctx context.Context, handle string) (*session.Session, error) {
	if handle == "" {
		return nil, fmt.Errorf("connection_id is required")
	}
	sess := s.sessions.Get(handle)
	if !sess.EnsureClient(ctx) {
		return nil, fmt.Errorf("music service not connected for %s", handle)
	}
	return sess, nil
}

// RecommendTracks implements the recommend_tracks tool.
func (s *toolServer) RecommendTracks(ctx context.Context, req *mcp.CallToolRequest, input RecommendTracksInput) (*mcp.CallToolResult, RecommendTracksOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sess, err := s.session(ctx, input.ConnectionID)
	if err != nil {
		return nil, RecommendTracksOutput{}, err
	}

	coord := models.Coordinate{Latitude: input.Latitude, Longitude: input.Longitude}
	result := s.recommender.Recommend(ctx, sess.Client(), coord, time.Now(), "")

	out := RecommendTracksOutput{Tracks: result.Tracks, Strategy: result.Strategy}
	if input.Play {
		outcome := s.dispatcher.SelectAndPlay(ctx, sess, result)
		out.Message = outcome.Message
		if outcome.Error != "" {
			out.Message = outcome.Error
		}
	} else if result.Empty() {
		out.Message = "No recommendations available for this location and time"
	}
	return nil, out, nil
}

// PlayerStatus implements the player_status tool.
func (s *toolServer) PlayerStatus(ctx context.Context, req *mcp.CallToolRequest, input PlayerStatusInput) (*mcp.CallToolResult, PlayerStatusOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sess, err := s.session(ctx, input.ConnectionID)
	if err != nil {
		return nil, PlayerStatusOutput{}, err
	}

	state := sess.CurrentPlayback(ctx)
	if state == nil {
		return nil, PlayerStatusOutput{Message: "Nothing is currently playing"}, nil
	}
	return nil, PlayerStatusOutput{
		IsPlaying:   state.IsPlaying,
		Song:        state.Song,
		ProgressSec: state.ProgressSec,
		DurationSec: state.DurationSec,
		Device:      state.Device,
	}, nil
}

// PlayerControl implements the player_control tool.
func (s *toolServer) PlayerControl(ctx context.Context, req *mcp.CallToolRequest, input PlayerControlInput) (*mcp.CallToolResult, PlayerControlOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sess, err := s.session(ctx, input.ConnectionID)
	if err != nil {
		return nil, PlayerControlOutput{}, err
	}

	switch input.Action {
	case "play":
		err = sess.PlayTrack(ctx)
	case "pause":
		err = sess.Pause(ctx)
	case "next":
		err = sess.NextTrack(ctx)
	case "previous":
		err = sess.PreviousTrack(ctx)
	case "seek":
		err = sess.Seek(ctx, input.Position*1000)
	default:
		return nil, PlayerControlOutput{}, fmt.Errorf("unknown action: %s", input.Action)
	}
	if err != nil {
		return nil, PlayerControlOutput{}, fmt.Errorf("player command failed: %w", err)
	}
	return nil, PlayerControlOutput{Status: "ok"}, nil
}

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService("geotune-mcp")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	metricsRegistry := observability.NewNoOpRegistry()

	creds, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, credential caching disabled", zap.Error(err))
		creds = nil
	} else {
		defer creds.Close()
	}

	geoSvc, err := geoip.Init(cfg.GeoIPDB)
	if err != nil {
		logger.Warn("geoip unavailable, region fallback disabled", zap.Error(err))
		geoSvc = nil
	}

	broker := nango.NewClient(cfg.NangoBaseURL, cfg.NangoSecretKey, cfg.NangoProviderKey, cfg.ExternalTimeout, logger)
	factory := func(accessToken string) session.Catalog {
		return spotify.NewClient(cfg.SpotifyAPIURL, accessToken, cfg.ExternalTimeout, logger, metricsRegistry)
	}
	sessions := session.NewRegistry(broker, factory, creds, cfg.CredentialTTL, cfg.SessionCacheSize, logger, metricsRegistry)

	ts := &toolServer{
		sessions:    sessions,
		recommender: logic.NewRecommender(geoSvc, logger, metricsRegistry),
		dispatcher:  logic.NewDispatcher(cfg.PlaybackStatusDelay, logger, metricsRegistry),
		logger:      logger,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "geotune",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommend_tracks",
		Description: "Recommend music for a geographic location and the current time, optionally starting playback",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"connection_id": map[string]interface{}{
					"type":        "string",
					"description": "Connection handle for the listener's music account",
				},
				"latitude": map[string]interface{}{
					"type":        "number",
					"description": "Latitude in decimal degrees",
				},
				"longitude": map[string]interface{}{
					"type":        "number",
					"description": "Longitude in decimal degrees",
				},
				"play": map[string]interface{}{
					"type":        "boolean",
					"description": "Start playback of a randomly selected candidate (optional)",
				},
			},
			"required": []string{"connection_id", "latitude", "longitude"},
		},
	}, ts.RecommendTracks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "player_status",
		Description: "Read the current playback state for a connection",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"connection_id": map[string]interface{}{
					"type":        "string",
					"description": "Connection handle for the listener's music account",
				},
			},
			"required": []string{"connection_id"},
		},
	}, ts.PlayerStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "player_control",
		Description: "Control playback: play, pause, next, previous or seek",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"connection_id": map[string]interface{}{
					"type":        "string",
					"description": "Connection handle for the listener's music account",
				},
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"play", "pause", "next", "previous", "seek"},
					"description": "Player action to perform",
				},
				"position": map[string]interface{}{
					"type":        "integer",
					"description": "Seek position in seconds (seek only)",
				},
			},
			"required": []string{"connection_id", "action"},
		},
	}, ts.PlayerControl)

	stdioTransport := &mcp.StdioTransport{}

	var logBuffer bytes.Buffer
	loggingTransport := &mcp.LoggingTransport{
		Transport: stdioTransport,
		Writer:    &logBuffer,
	}

	logger.Info("MCP server running via stdio")

	if err := server.Run(context.Background(), loggingTransport); err != nil {
		logger.Fatal("Server error", zap.Error(err), zap.String("mcp_logs", logBuffer.String()))
	}
}
