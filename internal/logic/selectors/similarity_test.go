package selectors

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/models"
)

func TestSimilarityRecommend(t *testing.T) {
	catalog := &fakeCatalog{
		topTracks: makeTracks("top", 20),
		similar:   makeTracks("sim", 15),
	}
	s := &SimilarityStrategy{Logger: zap.NewNop()}

	got, err := s.Recommend(context.Background(), catalog, models.RecommendationContext{
		Features: models.AudioFeatures{Energy: 0.4, Tempo: 0.4},
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 15 {
		t.Fatalf("got %d tracks, want 15", len(got))
	}
	if catalog.topCalls != 1 || catalog.similarCalls != 1 {
		t.Errorf("calls: top=%d similar=%d, want 1 each", catalog.topCalls, catalog.similarCalls)
	}
}

func TestSimilarityRecommendEmptyHistory(t *testing.T) {
	catalog := &fakeCatalog{}
	s := &SimilarityStrategy{Logger: zap.NewNop()}

	got, err := s.Recommend(context.Background(), catalog, models.RecommendationContext{})
	if err == nil {
		t.Fatal("expected error for empty listening history")
	}
	if len(got) != 0 {
		t.Errorf("got %d tracks, want 0", len(got))
	}
	if catalog.similarCalls != 0 {
		t.Errorf("similarity endpoint called %d times despite missing seed", catalog.similarCalls)
	}
}

func TestWireTargets(t *testing.T) {
	f := models.AudioFeatures{
		Acousticness:     0.5,
		Danceability:     0.5,
		Energy:           0.5,
		Tempo:            0.4,
		Valence:          0.5,
		Instrumentalness: 0.3,
		Speechiness:      0.1,
	}

	for i := 0; i < 100; i++ {
		targets := WireTargets(f)

		if got := targets["target_tempo"]; got != 0.4*200 {
			t.Fatalf("target_tempo = %v, want %v (no jitter)", got, 0.4*200)
		}

		checks := map[string]float64{
			"target_acousticness":     f.Acousticness,
			"target_danceability":     f.Danceability,
			"target_energy":           f.Energy,
			"target_valence":          f.Valence,
			"target_instrumentalness": f.Instrumentalness,
			"target_speechiness":      f.Speechiness,
		}
		for key, base := range checks {
			v, ok := targets[key]
			if !ok {
				t.Fatalf("missing %s", key)
			}
			if v < 0 || v > 1 {
				t.Fatalf("%s = %v outside [0,1]", key, v)
			}
			if v < base-featureJitter-1e-9 || v > base+featureJitter+1e-9 {
				t.Fatalf("%s = %v outside jitter window around %v", key, v, base)
			}
		}
	}
}

func TestJitterClamped(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if v := jitter(0.0); v < 0 || v > featureJitter {
			t.Fatalf("jitter(0) = %v", v)
		}
		if v := jitter(1.0); v > 1 || v < 1-featureJitter {
			t.Fatalf("jitter(1) = %v", v)
		}
	}
}
