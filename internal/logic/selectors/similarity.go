package selectors

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/models"
	"github.com/ewhitmore/geotune/internal/session"
)

const (
	// similarityLimit is the similarity endpoint's own candidate cap.
	similarityLimit = 15
	// topTracksLimit is how many of the listener's top tracks are read to
	// pick a seed from.
	topTracksLimit = 20
	// featureJitter is the half-width of the uniform jitter applied per
	// feature dimension so repeated identical contexts still vary.
	featureJitter = 0.1
	// tempoScale converts the normalized tempo dimension to BPM.
	tempoScale = 200.0
)

// SimilarityStrategy asks the catalog for tracks similar to a random seed
// from the listener's top tracks, biased toward the context's target
// feature vector.
type SimilarityStrategy struct {
	Logger *zap.Logger
}

// Name implements Strategy.
func (s *SimilarityStrategy) Name() string { return "catalog_similarity" }

// Recommend implements Strategy. Any catalog failure surfaces as an error
// with an empty list; the orchestrator treats both the same way.
func (s *SimilarityStrategy) Recommend(ctx context.Context, catalog session.Catalog, rctx models.RecommendationContext) ([]models.Track, error) {
	seedID, err := s.pickSeed(ctx, catalog)
	if err != nil {
		return nil, err
	}
	return s.FindSimilar(ctx, catalog, rctx.Features, seedID)
}

// FindSimilar queries the similarity endpoint with the jittered target
// vector and shuffles the shaped results.
func (s *SimilarityStrategy) FindSimilar(ctx context.Context, catalog session.Catalog, features models.AudioFeatures, seedID string) ([]models.Track, error) {
	targets := WireTargets(features)
	tracks, err := catalog.SimilarTracks(ctx, seedID, targets, similarityLimit)
	if err != nil {
		return nil, fmt.Errorf("similarity lookup: %w", err)
	}

	rand.Shuffle(len(tracks), func(i, j int) {
		tracks[i], tracks[j] = tracks[j], tracks[i]
	})
	return tracks, nil
}

func (s *SimilarityStrategy) pickSeed(ctx context.Context, catalog session.Catalog) (string, error) {
	top, err := catalog.TopTracks(ctx, topTracksLimit)
	if err != nil {
		return "", fmt.Errorf("top tracks: %w", err)
	}
	if len(top) == 0 {
		return "", fmt.Errorf("top tracks: empty listening history")
	}
	return top[rand.Intn(len(top))].ID, nil
}

// WireTargets converts a target vector to the catalog's wire parameters.
// Every dimension except tempo gets an independent uniform jitter in
// [-featureJitter, +featureJitter] clamped to [0,1]; tempo is scaled to BPM
// with no jitter.
func WireTargets(f models.AudioFeatures) models.FeatureTargets {
	return models.FeatureTargets{
		"target_acousticness":     jitter(f.Acousticness),
		"target_danceability":     jitter(f.Danceability),
		"target_energy":           jitter(f.Energy),
		"target_tempo":            f.Tempo * tempoScale,
		"target_valence":          jitter(f.Valence),
		"target_instrumentalness": jitter(f.Instrumentalness),
		"target_speechiness":      jitter(f.Speechiness),
	}
}

func jitter(v float64) float64 {
	v += (rand.Float64()*2 - 1) * featureJitter
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
