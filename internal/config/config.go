package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RedisAddr    string
	GeoIPDB      string
	ServiceName  string

	// Auth broker configuration
	NangoBaseURL     string
	NangoSecretKey   string
	NangoProviderKey string

	// Upstream catalog configuration
	SpotifyAPIURL   string
	ExternalTimeout time.Duration

	// Playback configuration
	PlaybackStatusDelay time.Duration

	// Session registry configuration
	SessionCacheSize int
	CredentialTTL    time.Duration

	// Recommendation configuration. ForcePlaceType, when non-empty, pins the
	// place classification regardless of geofence hits.
	ForcePlaceType string

	// Rate limiting configuration
	RateLimitEnabled    bool
	RateLimitCapacity   int
	RateLimitRefillRate int

	// Tracing configuration
	TracingEnabled    bool
	TempoEndpoint     string
	TracingSampleRate float64
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8787")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 15*time.Second)
	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.GeoIPDB = getenv("GEOIP_DB", "internal/geoip/testdata/GeoLite2-Country.mmdb")
	cfg.ServiceName = getenv("SERVICE_NAME", "geotune")

	cfg.NangoBaseURL = getenv("NANGO_BASE_URL", "https://api.nango.dev")
	cfg.NangoSecretKey = getenv("NANGO_SECRET_KEY", "")
	cfg.NangoProviderKey = getenv("NANGO_PROVIDER_KEY", "spotify-prod")

	cfg.SpotifyAPIURL = getenv("SPOTIFY_API_URL", "https://api.spotify.com/v1")
	cfg.ExternalTimeout = envDuration("EXTERNAL_TIMEOUT", 5*time.Second)

	cfg.PlaybackStatusDelay = envDuration("PLAYBACK_STATUS_DELAY", 1*time.Second)

	cfg.SessionCacheSize = envInt("SESSION_CACHE_SIZE", 256)
	cfg.CredentialTTL = envDuration("CREDENTIAL_TTL", 30*time.Minute)

	cfg.ForcePlaceType = getenv("FORCE_PLACE_TYPE", "")

	cfg.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimitCapacity = envInt("RATE_LIMIT_CAPACITY", 30)
	cfg.RateLimitRefillRate = envInt("RATE_LIMIT_REFILL_RATE", 5)

	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TempoEndpoint = getenv("TEMPO_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
