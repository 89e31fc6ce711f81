package spotify

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/ewhitmore/geotune/internal/models"
)

// TopTracks returns up to limit of the listener's most played tracks.
func (c *Client) TopTracks(ctx context.Context, limit int) ([]models.Track, error) {
	var body struct {
		Items []wireTrack `json:"items"`
	}
	path := fmt.Sprintf("/me/top/tracks?limit=%d", limit)
	if err := c.get(ctx, path, "top_tracks", &body); err != nil {
		return nil, err
	}
	return toTracks(body.Items), nil
}

// SearchTracks runs a track search with the given page size and offset.
func (c *Client) SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var body struct {
		Tracks struct {
			Items []wireTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := c.get(ctx, "/search?"+q.Encode(), "search", &body); err != nil {
		return nil, err
	}
	return toTracks(body.Tracks.Items), nil
}

// SimilarTracks asks the recommendation endpoint for tracks near the target
// feature vector, seeded by one track.
func (c *Client) SimilarTracks(ctx context.Context, seedID string, targets models.FeatureTargets, limit int) ([]models.Track, error) {
	q := url.Values{}
	q.Set("seed_tracks", seedID)
	q.Set("limit", strconv.Itoa(limit))

	// Deterministic parameter order keeps request logs and test fixtures
	// stable.
	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, strconv.FormatFloat(targets[k], 'f', 3, 64))
	}

	var body struct {
		Tracks []wireTrack `json:"tracks"`
	}
	if err := c.get(ctx, "/recommendations?"+q.Encode(), "similar_tracks", &body); err != nil {
		return nil, err
	}
	return toTracks(body.Tracks), nil
}
