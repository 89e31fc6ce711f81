package logic

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/geoip"
	"github.com/ewhitmore/geotune/internal/logic/selectors"
	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/observability"
	"github.com/ewhitmore/geotune/internal/session"
)

// Recommender drives the two-tier recommendation pipeline: the catalog
// similarity strategy first, keyword search when it comes back empty or
// fails. Strategy failures never propagate past this boundary; the result
// list may be empty.
type Recommender struct {
	Primary  selectors.Strategy
	Fallback selectors.Strategy
	GeoIP    *geoip.GeoIP
	Logger   *zap.Logger
	Metrics  observability.MetricsRegistry

	// ForcePlaceType, when set, overrides the geofence classification for
	// feature mapping. Off by default; kept as an explicit policy because a
	// prior revision of this service hard-coded urban here.
	ForcePlaceType models.PlaceType
}

// NewRecommender wires the default strategies.
func NewRecommender(g *geoip.GeoIP, logger *zap.Logger, metrics observability.MetricsRegistry) *Recommender {
	return &Recommender{
		Primary:  &selectors.SimilarityStrategy{Logger: logger},
		Fallback: &selectors.KeywordStrategy{Logger: logger},
		GeoIP:    g,
		Logger:   logger,
		Metrics:  metrics,
	}
}

// BuildContext derives the recommendation context for a coordinate at the
// given time. clientIP is only consulted when the coordinate is the (0,0)
// sentinel.
func (r *Recommender) BuildContext(coord models.Coordinate, now time.Time, clientIP string) models.RecommendationContext {
	place := ClassifyPlaceType(coord)
	if r.ForcePlaceType != "" {
		place = r.ForcePlaceType
	}
	hour := now.Hour()
	tod := BucketHour(hour)

	return models.RecommendationContext{
		Coordinate:   coord,
		PlaceType:    place,
		TimeOfDay:    tod,
		Hour:         hour,
		Features:     TargetFeatures(place, tod),
		RegionBucket: ResolveRegionBucket(r.GeoIP, coord, clientIP),
	}
}

// Recommend runs the pipeline for a coordinate at the given time.
func (r *Recommender) Recommend(ctx context.Context, catalog session.Catalog, coord models.Coordinate, now time.Time, clientIP string) models.RecommendationResult {
	rctx := r.BuildContext(coord, now, clientIP)

	tracks, err := r.Primary.Recommend(ctx, catalog, rctx)
	if err == nil && len(tracks) > 0 {
		reason := fmt.Sprintf("%s time in %s area", rctx.TimeOfDay, rctx.PlaceType)
		for i := range tracks {
			tracks[i].Reason = reason
			tracks[i].LocationType = string(rctx.PlaceType)
			tracks[i].TimeOfDay = string(rctx.TimeOfDay)
		}
		r.Metrics.IncrementStrategyResults(r.Primary.Name(), "hit")
		return models.RecommendationResult{Tracks: tracks, Context: rctx, Strategy: r.Primary.Name()}
	}

	if err != nil {
		r.Metrics.IncrementStrategyResults(r.Primary.Name(), "error")
		r.Logger.Warn("primary strategy failed, falling back",
			zap.String("strategy", r.Primary.Name()),
			zap.String("failure_kind", string(Classify(err))),
			zap.Error(err))
	} else {
		r.Metrics.IncrementStrategyResults(r.Primary.Name(), "empty")
	}

	tracks, err = r.Fallback.Recommend(ctx, catalog, rctx)
	if err != nil {
		r.Metrics.IncrementStrategyResults(r.Fallback.Name(), "error")
		r.Logger.Warn("fallback strategy failed",
			zap.String("strategy", r.Fallback.Name()),
			zap.String("failure_kind", string(Classify(err))),
			zap.Error(err))
		return models.RecommendationResult{Context: rctx, Strategy: r.Fallback.Name()}
	}

	outcome := "hit"
	if len(tracks) == 0 {
		outcome = "empty"
	}
	r.Metrics.IncrementStrategyResults(r.Fallback.Name(), outcome)
	return models.RecommendationResult{Tracks: tracks, Context: rctx, Strategy: r.Fallback.Name()}
}
