package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/config"
	"github.com/ewhitmore/geotune/internal/logic"
	"github.com/ewhitmore/geotune/internal/logic/ratelimit"
	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/nango"
	"github.com/ewhitmore/geotune/internal/observability"
	"github.com/ewhitmore/geotune/internal/session"
)

type testBroker struct {
	err error
}

func (b *testBroker) Exchange(ctx context.Context, handle string) (nango.Credential, error) {
	if b.err != nil {
		return nango.Credential{}, b.err
	}
	return nango.Credential{AccessToken: "tok"}, nil
}

type testCatalog struct {
	playback *models.PlaybackState
	playErr  error
}

func (c *testCatalog) TopTracks(ctx context.Context, limit int) ([]models.Track, error) {
	return nil, nil
}
func (c *testCatalog) SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error) {
	return nil, nil
}
func (c *testCatalog) SimilarTracks(ctx context.Context, seedID string, targets models.FeatureTargets, limit int) ([]models.Track, error) {
	return nil, nil
}
func (c *testCatalog) CurrentPlayback(ctx context.Context) (*models.PlaybackState, error) {
	return c.playback, nil
}
func (c *testCatalog) Play(ctx context.Context, uris []string) error  { return c.playErr }
func (c *testCatalog) Pause(ctx context.Context) error                { return nil }
func (c *testCatalog) NextTrack(ctx context.Context) error            { return nil }
func (c *testCatalog) PreviousTrack(ctx context.Context) error        { return nil }
func (c *testCatalog) Seek(ctx context.Context, positionMS int) error { return nil }

type testStrategy struct {
	name   string
	tracks []models.Track
	err    error
}

func (s *testStrategy) Name() string { return s.name }
func (s *testStrategy) Recommend(ctx context.Context, catalog session.Catalog, rctx models.RecommendationContext) ([]models.Track, error) {
	return s.tracks, s.err
}

func newTestServer(broker session.Broker, catalog *testCatalog, primary, fallback *testStrategy) *Server {
	logger := zap.NewNop()
	metrics := observability.NewNoOpRegistry()
	factory := func(token string) session.Catalog { return catalog }
	sessions := session.NewRegistry(broker, factory, nil, time.Minute, 16, logger, metrics)

	recommender := &logic.Recommender{
		Primary:  primary,
		Fallback: fallback,
		Logger:   logger,
		Metrics:  metrics,
	}

	limiter := ratelimit.NewConnectionLimiter(ratelimit.Config{
		Capacity:   100,
		RefillRate: 100,
		Enabled:    true,
	}, metrics)

	return NewServer(
		logger,
		sessions,
		recommender,
		logic.NewDispatcher(time.Millisecond, logger, metrics),
		limiter,
		nango.NewClient("http://broker.invalid", "", "spotify-prod", time.Second, logger),
		metrics,
		config.Config{ServiceName: "geotune"},
	)
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(&testBroker{}, &testCatalog{}, &testStrategy{name: "p"}, &testStrategy{name: "f"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRecommendationsMissingConnection(t *testing.T) {
	srv := newTestServer(&testBroker{}, &testCatalog{}, &testStrategy{name: "p"}, &testStrategy{name: "f"})

	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewBufferString(`{"latitude":40.1,"longitude":-88.2}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRecommendationsBrokerDown(t *testing.T) {
	srv := newTestServer(&testBroker{err: errors.New("secret rejected")}, &testCatalog{},
		&testStrategy{name: "p"}, &testStrategy{name: "f"})

	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewBufferString(`{"latitude":40.1,"longitude":-88.2}`))
	req.Header.Set("X-Connection-Id", "conn-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestRecommendationsHappyPath(t *testing.T) {
	tracks := []models.Track{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	catalog := &testCatalog{playback: &models.PlaybackState{IsPlaying: true, Device: "Desk"}}
	srv := newTestServer(&testBroker{}, catalog, &testStrategy{name: "p", tracks: tracks}, &testStrategy{name: "f"})

	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewBufferString(`{"latitude":40.109,"longitude":-88.227}`))
	req.Header.Set("X-Connection-Id", "conn-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var outcome models.PlaybackOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(outcome.Recommendations) != 2 {
		t.Fatalf("recommendations = %d", len(outcome.Recommendations))
	}
	if outcome.Selected == nil {
		t.Fatal("no selection")
	}
	if outcome.Selected.ID != "a" && outcome.Selected.ID != "b" {
		t.Errorf("selected %q not among candidates", outcome.Selected.ID)
	}
	if !outcome.IsPlaying {
		t.Error("playback state not merged")
	}
}

func TestRecommendationsNoCandidates(t *testing.T) {
	srv := newTestServer(&testBroker{}, &testCatalog{}, &testStrategy{name: "p"}, &testStrategy{name: "f"})

	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewBufferString(`{"latitude":0,"longitude":0}`))
	req.Header.Set("X-Connection-Id", "conn-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want informational 200", rec.Code)
	}
	var outcome models.PlaybackOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outcome.Error == "" || outcome.Message == "" {
		t.Errorf("outcome = %+v, want informational error and message", outcome)
	}
}

func TestRecommendationsRateLimited(t *testing.T) {
	srv := newTestServer(&testBroker{}, &testCatalog{}, &testStrategy{name: "p"}, &testStrategy{name: "f"})
	srv.Limiter = ratelimit.NewConnectionLimiter(ratelimit.Config{
		Capacity:   1,
		RefillRate: 1,
		Enabled:    true,
	}, observability.NewNoOpRegistry())

	router := srv.Router()
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewBufferString(`{"latitude":0,"longitude":0}`))
		req.Header.Set("X-Connection-Id", "conn-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}
}

func TestConnectionWebhookRegisters(t *testing.T) {
	srv := newTestServer(&testBroker{}, &testCatalog{}, &testStrategy{name: "p"}, &testStrategy{name: "f"})

	body := `{"type":"auth","operation":"creation","connectionId":"conn-9","provider_config_key":"spotify-prod","success":true}`
	req := httptest.NewRequest(http.MethodPost, "/connections/webhook", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if srv.Sessions.Len() != 1 {
		t.Errorf("sessions = %d, want 1", srv.Sessions.Len())
	}
}

func TestConnectionWebhookIgnoresFailures(t *testing.T) {
	srv := newTestServer(&testBroker{}, &testCatalog{}, &testStrategy{name: "p"}, &testStrategy{name: "f"})

	body := `{"type":"auth","operation":"creation","connectionId":"conn-9","success":false}`
	req := httptest.NewRequest(http.MethodPost, "/connections/webhook", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if srv.Sessions.Len() != 0 {
		t.Errorf("sessions = %d, want 0", srv.Sessions.Len())
	}
}

func TestPlayerControlUnknownAction(t *testing.T) {
	srv := newTestServer(&testBroker{}, &testCatalog{}, &testStrategy{name: "p"}, &testStrategy{name: "f"})

	req := httptest.NewRequest(http.MethodPost, "/player/control", bytes.NewBufferString(`{"action":"rewind"}`))
	req.Header.Set("X-Connection-Id", "conn-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPlayerStatusNothingPlaying(t *testing.T) {
	srv := newTestServer(&testBroker{}, &testCatalog{}, &testStrategy{name: "p"}, &testStrategy{name: "f"})

	req := httptest.NewRequest(http.MethodGet, "/player/status", nil)
	req.Header.Set("X-Connection-Id", "conn-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if playing, _ := body["is_playing"].(bool); playing {
		t.Error("is_playing = true with no playback")
	}
}

func TestStatusHandler(t *testing.T) {
	srv := newTestServer(&testBroker{}, &testCatalog{}, &testStrategy{name: "p"}, &testStrategy{name: "f"})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
	if configured, _ := body["broker_configured"].(bool); configured {
		t.Error("broker must read unconfigured with empty secret")
	}
}
