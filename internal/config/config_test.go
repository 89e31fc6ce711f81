package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, "geotune", cfg.ServiceName)
	assert.Equal(t, "https://api.nango.dev", cfg.NangoBaseURL)
	assert.Equal(t, "https://api.spotify.com/v1", cfg.SpotifyAPIURL)
	assert.Equal(t, 5*time.Second, cfg.ExternalTimeout)
	assert.Equal(t, time.Second, cfg.PlaybackStatusDelay)
	assert.Equal(t, 256, cfg.SessionCacheSize)
	assert.Equal(t, 30*time.Minute, cfg.CredentialTTL)
	assert.Empty(t, cfg.ForcePlaceType)
	assert.True(t, cfg.RateLimitEnabled)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("EXTERNAL_TIMEOUT", "2s")
	t.Setenv("PLAYBACK_STATUS_DELAY", "3")
	t.Setenv("SESSION_CACHE_SIZE", "10")
	t.Setenv("FORCE_PLACE_TYPE", "urban")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.ExternalTimeout)
	assert.Equal(t, 3*time.Second, cfg.PlaybackStatusDelay)
	assert.Equal(t, 10, cfg.SessionCacheSize)
	assert.Equal(t, "urban", cfg.ForcePlaceType)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, 0.25, cfg.TracingSampleRate)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("EXTERNAL_TIMEOUT", "soon")
	t.Setenv("SESSION_CACHE_SIZE", "lots")
	t.Setenv("RATE_LIMIT_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.ExternalTimeout)
	assert.Equal(t, 256, cfg.SessionCacheSize)
	assert.True(t, cfg.RateLimitEnabled)
}
