package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/api"
	"github.com/ewhitmore/geotune/internal/config"
	"github.com/ewhitmore/geotune/internal/db"
	"github.com/ewhitmore/geotune/internal/geoip"
	"github.com/ewhitmore/geotune/internal/logic"
	"github.com/ewhitmore/geotune/internal/logic/ratelimit"
	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/nango"
	"github.com/ewhitmore/geotune/internal/observability"
	"github.com/ewhitmore/geotune/internal/session"
	"github.com/ewhitmore/geotune/internal/spotify"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	metricsRegistry := observability.NewPrometheusRegistry()

	creds, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		// The credential cache is an optimization; running without it just
		// means an exchange per session rebuild.
		logger.Warn("redis unavailable, credential caching disabled", zap.Error(err))
		creds = nil
	} else {
		defer creds.Close()
	}

	geoSvc, err := geoip.Init(cfg.GeoIPDB)
	if err != nil {
		logger.Warn("geoip unavailable, region fallback disabled", zap.Error(err))
		geoSvc = nil
	} else {
		defer func() { _ = geoSvc.Close() }()
	}

	broker := nango.NewClient(cfg.NangoBaseURL, cfg.NangoSecretKey, cfg.NangoProviderKey, cfg.ExternalTimeout, logger)
	if !broker.Configured() {
		logger.Warn("auth broker not configured, connections cannot be established")
	}

	factory := func(accessToken string) session.Catalog {
		return spotify.NewClient(cfg.SpotifyAPIURL, accessToken, cfg.ExternalTimeout, logger, metricsRegistry)
	}
	sessions := session.NewRegistry(broker, factory, creds, cfg.CredentialTTL, cfg.SessionCacheSize, logger, metricsRegistry)

	recommender := logic.NewRecommender(geoSvc, logger, metricsRegistry)
	if cfg.ForcePlaceType != "" {
		if pt, ok := models.ParsePlaceType(cfg.ForcePlaceType); ok {
			recommender.ForcePlaceType = pt
			logger.Info("place type override active", zap.String("place_type", cfg.ForcePlaceType))
		} else {
			logger.Warn("invalid FORCE_PLACE_TYPE ignored", zap.String("value", cfg.ForcePlaceType))
		}
	}
	dispatcher := logic.NewDispatcher(cfg.PlaybackStatusDelay, logger, metricsRegistry)

	limiter := ratelimit.NewConnectionLimiter(ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillRate,
		Enabled:    cfg.RateLimitEnabled,
	}, metricsRegistry)

	srvDeps := api.NewServer(logger, sessions, recommender, dispatcher, limiter, broker, metricsRegistry, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srvDeps.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("geotune server running", zap.String("addr", srv.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
