package spotify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/observability"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "tok-test", time.Second, zap.NewNop(), observability.NewNoOpRegistry())
	return c, srv
}

const trackJSON = `{
	"id": "t1",
	"name": "Neon Fields",
	"artists": [{"name": "First Artist"}, {"name": "Second Artist"}],
	"album": {
		"name": "Night Drive",
		"images": [
			{"url": "small.jpg", "height": 64, "width": 64},
			{"url": "large.jpg", "height": 640, "width": 640}
		]
	},
	"duration_ms": 215000,
	"preview_url": "preview.mp3",
	"external_urls": {"spotify": "https://open.spotify.com/track/t1"},
	"popularity": 61
}`

func TestSearchTracks(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "late night" || q.Get("type") != "track" {
			t.Errorf("query = %v", q)
		}
		if q.Get("limit") != "10" || q.Get("offset") != "40" {
			t.Errorf("paging = limit %s offset %s", q.Get("limit"), q.Get("offset"))
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-test" {
			t.Errorf("authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"tracks":{"items":[` + trackJSON + `]}}`))
	})

	got, err := c.SearchTracks(context.Background(), "late night", 10, 40)
	if err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d tracks", len(got))
	}
	tr := got[0]
	if tr.ID != "t1" || tr.Title != "Neon Fields" {
		t.Errorf("track = %+v", tr)
	}
	if tr.Artist != "First Artist" {
		t.Errorf("artist = %q, want primary only", tr.Artist)
	}
	if tr.CoverArtURL != "large.jpg" {
		t.Errorf("cover = %q, want largest image", tr.CoverArtURL)
	}
	if tr.DurationMS != 215000 || tr.Popularity != 61 {
		t.Errorf("track = %+v", tr)
	}
	if tr.ExternalURL != "https://open.spotify.com/track/t1" {
		t.Errorf("external url = %q", tr.ExternalURL)
	}
}

func TestTopTracks(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/top/tracks" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("limit = %q", got)
		}
		_, _ = w.Write([]byte(`{"items":[` + trackJSON + `]}`))
	})

	got, err := c.TopTracks(context.Background(), 20)
	if err != nil {
		t.Fatalf("TopTracks: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("tracks = %+v", got)
	}
}

func TestSimilarTracks(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("seed_tracks") != "seed-1" || q.Get("limit") != "15" {
			t.Errorf("query = %v", q)
		}
		if q.Get("target_energy") != "0.400" {
			t.Errorf("target_energy = %q", q.Get("target_energy"))
		}
		if q.Get("target_tempo") != "80.000" {
			t.Errorf("target_tempo = %q", q.Get("target_tempo"))
		}
		_, _ = w.Write([]byte(`{"tracks":[` + trackJSON + `]}`))
	})

	targets := models.FeatureTargets{"target_energy": 0.4, "target_tempo": 80}
	got, err := c.SimilarTracks(context.Background(), "seed-1", targets, 15)
	if err != nil {
		t.Fatalf("SimilarTracks: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d tracks", len(got))
	}
}

func TestCurrentPlayback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"is_playing": true,
			"progress_ms": 30500,
			"item": ` + trackJSON + `,
			"device": {"name": "Kitchen Speaker"}
		}`))
	})

	state, err := c.CurrentPlayback(context.Background())
	if err != nil {
		t.Fatalf("CurrentPlayback: %v", err)
	}
	if state == nil || !state.IsPlaying {
		t.Fatalf("state = %+v", state)
	}
	if state.ProgressSec != 30 || state.DurationSec != 215 {
		t.Errorf("progress=%d duration=%d", state.ProgressSec, state.DurationSec)
	}
	if state.Song == nil || state.Song.Artist != "First Artist, Second Artist" {
		t.Errorf("song = %+v, want joined artists", state.Song)
	}
	if state.Device != "Kitchen Speaker" {
		t.Errorf("device = %q", state.Device)
	}
}

func TestCurrentPlaybackNoDevice(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	state, err := c.CurrentPlayback(context.Background())
	if err != nil {
		t.Fatalf("CurrentPlayback: %v", err)
	}
	if state != nil {
		t.Errorf("state = %+v, want nil for 204", state)
	}
}

func TestPlay(t *testing.T) {
	var gotBody string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/me/player/play" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.Play(context.Background(), []string{"spotify:track:t1"}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if gotBody != `{"uris":["spotify:track:t1"]}` {
		t.Errorf("body = %s", gotBody)
	}
}

func TestPlayErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no active device", http.StatusNotFound)
	})

	if err := c.Play(context.Background(), []string{"spotify:track:t1"}); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestSeekSendsMilliseconds(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("position_ms"); got != "45000" {
			t.Errorf("position_ms = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.Seek(context.Background(), 45000); err != nil {
		t.Fatalf("Seek: %v", err)
	}
}
