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
	// maxCandidates caps the fallback result list.
	maxCandidates = 12
	// searchTermCount is how many terms a single call actually searches.
	searchTermCount = 3
	// perTermTake caps how many results one term may contribute.
	perTermTake = 3
	// searchStopAt stops issuing further terms once this many candidates
	// have accumulated.
	searchStopAt = 9
	// searchPageSize and searchMaxOffset randomize which slice of the
	// catalog a term search sees.
	searchPageSize  = 10
	searchMaxOffset = 100
	// Popular-tracks last-resort tier.
	popularRounds    = 3
	popularPageSize  = 5
	popularMaxOffset = 500
	popularStopAt    = 6
)

// Daypart is the four-band wall-clock period used only for keyword
// selection. It is independent of the day/night bucket that drives the
// feature vector and the two can disagree around the edges.
type Daypart string

const (
	DaypartMorning   Daypart = "morning"
	DaypartAfternoon Daypart = "afternoon"
	DaypartEvening   Daypart = "evening"
	DaypartNight     Daypart = "night"
)

// DaypartForHour buckets an hour into morning 6-12, afternoon 12-18,
// evening 18-22 and night otherwise.
func DaypartForHour(hour int) Daypart {
	switch {
	case hour >= 6 && hour < 12:
		return DaypartMorning
	case hour >= 12 && hour < 18:
		return DaypartAfternoon
	case hour >= 18 && hour < 22:
		return DaypartEvening
	default:
		return DaypartNight
	}
}

// regionKeywords holds the five base search terms per coarse region bucket.
var regionKeywords = map[string][]string{
	models.RegionNorthAmericaNorth: {"indie rock", "folk", "alternative", "singer-songwriter", "acoustic"},
	models.RegionNorthAmericaSouth: {"country", "hip hop", "latin", "pop", "r&b"},
	models.RegionEurope:            {"electronic", "house", "synth-pop", "indie pop", "techno"},
	models.RegionGlobal:            {"pop", "rock", "top hits", "chill", "dance"},
}

// daypartKeywords holds the period terms; three are drawn per call.
var daypartKeywords = map[Daypart][]string{
	DaypartMorning:   {"morning", "sunrise", "coffee", "wake up", "fresh start"},
	DaypartAfternoon: {"upbeat", "summer", "drive", "feel good", "energy"},
	DaypartEvening:   {"sunset", "groove", "lounge", "golden hour", "wind down"},
	DaypartNight:     {"late night", "midnight", "chill", "after hours", "dreamy"},
}

// popularYears and popularGenres feed the last-resort tier.
var (
	popularYears  = []int{2019, 2020, 2021, 2022, 2023, 2024}
	popularGenres = []string{"pop", "rock", "hip-hop", "electronic", "indie", "r&b"}
)

// KeywordStrategy is the fallback: randomized keyword searches keyed by a
// coarse region bucket and the wall-clock daypart. It is deliberately
// over-provisioned with randomness (term choice, offsets, shuffles) so the
// same location and hour do not keep returning the same tracks.
type KeywordStrategy struct {
	Logger *zap.Logger
}

// Name implements Strategy.
func (k *KeywordStrategy) Name() string { return "keyword_search" }

// Recommend implements Strategy. Per-term search failures are skipped, not
// fatal; the result is empty only when every search, including the
// popular-tracks tier, failed or returned nothing.
func (k *KeywordStrategy) Recommend(ctx context.Context, catalog session.Catalog, rctx models.RecommendationContext) ([]models.Track, error) {
	terms := k.searchTerms(rctx)

	var candidates []models.Track
	for _, term := range terms {
		if len(candidates) >= searchStopAt {
			break
		}
		offset := rand.Intn(searchMaxOffset + 1)
		found, err := catalog.SearchTracks(ctx, term, searchPageSize, offset)
		if err != nil {
			k.Logger.Debug("keyword search failed",
				zap.String("term", term),
				zap.Error(err))
			continue
		}
		rand.Shuffle(len(found), func(i, j int) { found[i], found[j] = found[j], found[i] })
		take := perTermTake
		if take > len(found) {
			take = len(found)
		}
		for _, t := range found[:take] {
			t.Reason = "Regional recommendation: " + term
			t.LocationType = models.LocationRegional
			t.TimeOfDay = string(rctx.TimeOfDay)
			candidates = appendUnique(candidates, t)
		}
	}

	if len(candidates) == 0 {
		candidates = k.popularTracks(ctx, catalog, rctx)
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates, nil
}

// searchTerms builds this call's three terms: the region bucket's five base
// terms plus three daypart terms, shuffled together.
func (k *KeywordStrategy) searchTerms(rctx models.RecommendationContext) []string {
	bucket := rctx.RegionBucket
	base, ok := regionKeywords[bucket]
	if !ok {
		base = regionKeywords[models.RegionGlobal]
	}

	period := daypartKeywords[DaypartForHour(rctx.Hour)]
	period = append([]string(nil), period...)
	rand.Shuffle(len(period), func(i, j int) { period[i], period[j] = period[j], period[i] })
	if len(period) > 3 {
		period = period[:3]
	}

	pool := make([]string, 0, len(base)+len(period))
	pool = append(pool, base...)
	pool = append(pool, period...)
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if len(pool) > searchTermCount {
		pool = pool[:searchTermCount]
	}
	return pool
}

// popularTracks is the last-resort tier: random recent-year/genre queries
// until six candidates are collected or three rounds are spent.
func (k *KeywordStrategy) popularTracks(ctx context.Context, catalog session.Catalog, rctx models.RecommendationContext) []models.Track {
	var candidates []models.Track
	for round := 0; round < popularRounds && len(candidates) < popularStopAt; round++ {
		year := popularYears[rand.Intn(len(popularYears))]
		genre := popularGenres[rand.Intn(len(popularGenres))]
		query := fmt.Sprintf("year:%d genre:%s", year, genre)
		offset := rand.Intn(popularMaxOffset + 1)

		found, err := catalog.SearchTracks(ctx, query, popularPageSize, offset)
		if err != nil {
			k.Logger.Debug("popular track search failed",
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		for _, t := range found {
			t.Reason = fmt.Sprintf("Popular track (%d %s)", year, genre)
			t.LocationType = models.LocationGlobal
			t.TimeOfDay = string(rctx.TimeOfDay)
			candidates = appendUnique(candidates, t)
			if len(candidates) >= popularStopAt {
				break
			}
		}
	}
	return candidates
}

// appendUnique adds a track unless its catalog ID is already present.
func appendUnique(tracks []models.Track, t models.Track) []models.Track {
	for _, existing := range tracks {
		if existing.ID == t.ID {
			return tracks
		}
	}
	return append(tracks, t)
}
