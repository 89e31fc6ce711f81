package spotify

import (
	"strings"

	"github.com/ewhitmore/geotune/internal/models"
)

// wireTrack is the upstream track shape.
type wireTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL    string `json:"url"`
			Height int    `json:"height"`
			Width  int    `json:"width"`
		} `json:"images"`
	} `json:"album"`
	DurationMS   int               `json:"duration_ms"`
	PreviewURL   string            `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	Popularity   int               `json:"popularity"`
}

// toTrack maps a wire track to the domain shape. Artist is the primary
// artist only; CoverArtURL picks the largest image.
func (w wireTrack) toTrack() models.Track {
	t := models.Track{
		ID:          w.ID,
		Title:       w.Name,
		Album:       w.Album.Name,
		DurationMS:  w.DurationMS,
		PreviewURL:  w.PreviewURL,
		ExternalURL: w.ExternalURLs["spotify"],
		Popularity:  w.Popularity,
	}
	if len(w.Artists) > 0 {
		t.Artist = w.Artists[0].Name
	}
	best := -1
	for _, img := range w.Album.Images {
		if img.Height*img.Width > best {
			best = img.Height * img.Width
			t.CoverArtURL = img.URL
		}
	}
	return t
}

func toTracks(ws []wireTrack) []models.Track {
	out := make([]models.Track, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toTrack())
	}
	return out
}

// wirePlayback is the upstream player state shape.
type wirePlayback struct {
	IsPlaying  bool       `json:"is_playing"`
	ProgressMS int        `json:"progress_ms"`
	Item       *wireTrack `json:"item"`
	Device     struct {
		Name string `json:"name"`
	} `json:"device"`
}

// toState maps the wire player state to the domain shape, converting
// millisecond positions to seconds and joining every artist name.
func (w wirePlayback) toState() *models.PlaybackState {
	state := &models.PlaybackState{
		IsPlaying:   w.IsPlaying,
		ProgressSec: w.ProgressMS / 1000,
		Device:      w.Device.Name,
	}
	if w.Item != nil {
		names := make([]string, 0, len(w.Item.Artists))
		for _, a := range w.Item.Artists {
			names = append(names, a.Name)
		}
		cover := ""
		if len(w.Item.Album.Images) > 0 {
			cover = w.Item.Album.Images[0].URL
		}
		state.Song = &models.CurrentSong{
			ID:          w.Item.ID,
			Title:       w.Item.Name,
			Artist:      strings.Join(names, ", "),
			Album:       w.Item.Album.Name,
			AlbumCover:  cover,
			DurationSec: w.Item.DurationMS / 1000,
		}
		state.DurationSec = w.Item.DurationMS / 1000
	}
	return state
}

// playRequest is the body for the play command.
type playRequest struct {
	URIs []string `json:"uris"`
}
