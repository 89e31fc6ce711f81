package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ewhitmore/geotune/internal/models"
)

// CurrentPlayback reads the player state. A 204 from upstream means no
// active device; that is reported as a nil state with no error.
func (c *Client) CurrentPlayback(ctx context.Context) (*models.PlaybackState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/player", nil)
	if err != nil {
		return nil, fmt.Errorf("spotify playback_state: %w", err)
	}

	var body wirePlayback
	if err := c.do(req, "playback_state", &body); err != nil {
		return nil, err
	}
	if body.Item == nil && !body.IsPlaying {
		return nil, nil
	}
	return body.toState(), nil
}

// Play starts playback of the given track URIs on the active device. With no
// URIs the call resumes whatever the player was on.
func (c *Client) Play(ctx context.Context, uris []string) error {
	if len(uris) == 0 {
		return c.command(ctx, http.MethodPut, "/me/player/play", "play")
	}
	b, err := json.Marshal(playRequest{URIs: uris})
	if err != nil {
		return fmt.Errorf("spotify play: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/me/player/play", bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("spotify play: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "play", nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.command(ctx, http.MethodPut, "/me/player/pause", "pause")
}

// NextTrack skips to the next track.
func (c *Client) NextTrack(ctx context.Context) error {
	return c.command(ctx, http.MethodPost, "/me/player/next", "next")
}

// PreviousTrack skips to the previous track.
func (c *Client) PreviousTrack(ctx context.Context) error {
	return c.command(ctx, http.MethodPost, "/me/player/previous", "previous")
}

// Seek jumps to a position, in milliseconds, within the current track.
func (c *Client) Seek(ctx context.Context, positionMS int) error {
	path := fmt.Sprintf("/me/player/seek?position_ms=%d", positionMS)
	return c.command(ctx, http.MethodPut, path, "seek")
}

func (c *Client) command(ctx context.Context, method, path, operation string) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("spotify %s: %w", operation, err)
	}
	return c.do(req, operation, nil)
}
