// Package selectors implements the two recommendation strategies: catalog
// similarity seeded by the listener's own tracks, and randomized keyword
// search as the fallback.
package selectors

import (
	"context"

	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/session"
)

// Strategy produces candidate tracks for a recommendation context. A
// strategy reports failure through its error; an empty slice with a nil
// error is a legitimate "nothing found" outcome. Either way the caller is
// expected to fall back, never to crash.
type Strategy interface {
	Name() string
	Recommend(ctx context.Context, catalog session.Catalog, rctx models.RecommendationContext) ([]models.Track, error)
}
