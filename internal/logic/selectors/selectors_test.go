package selectors

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewhitmore/geotune/internal/models"
)

// fakeCatalog is a scriptable catalog for strategy tests.
type fakeCatalog struct {
	topTracks    []models.Track
	topErr       error
	similar      []models.Track
	similarErr   error
	searchByTerm map[string][]models.Track
	searchErr    error

	topCalls     int
	similarCalls int
	searchCalls  int
	lastTargets  models.FeatureTargets
}

func (f *fakeCatalog) TopTracks(ctx context.Context, limit int) ([]models.Track, error) {
	f.topCalls++
	return f.topTracks, f.topErr
}

func (f *fakeCatalog) SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.searchByTerm != nil {
		return f.searchByTerm[query], nil
	}
	return nil, nil
}

func (f *fakeCatalog) SimilarTracks(ctx context.Context, seedID string, targets models.FeatureTargets, limit int) ([]models.Track, error) {
	f.similarCalls++
	f.lastTargets = targets
	return f.similar, f.similarErr
}

func (f *fakeCatalog) CurrentPlayback(ctx context.Context) (*models.PlaybackState, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCatalog) Play(ctx context.Context, uris []string) error { return nil }
func (f *fakeCatalog) Pause(ctx context.Context) error               { return nil }
func (f *fakeCatalog) NextTrack(ctx context.Context) error           { return nil }
func (f *fakeCatalog) PreviousTrack(ctx context.Context) error       { return nil }
func (f *fakeCatalog) Seek(ctx context.Context, positionMS int) error {
	return nil
}

func makeTracks(prefix string, n int) []models.Track {
	out := make([]models.Track, n)
	for i := range out {
		out[i] = models.Track{
			ID:     fmt.Sprintf("%s-%d", prefix, i),
			Title:  fmt.Sprintf("Track %d", i),
			Artist: "Artist",
		}
	}
	return out
}
