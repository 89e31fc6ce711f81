package models

// CurrentSong describes the item the player is currently on, as read back
// from the playback service. Artist here joins every listed artist, matching
// the player-status surface rather than the candidate Track shape.
type CurrentSong struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumCover  string `json:"album_cover,omitempty"`
	DurationSec int    `json:"duration"`
}

// PlaybackState is the normalized read of the player's current state.
// ProgressSec and DurationSec are in seconds.
type PlaybackState struct {
	IsPlaying   bool         `json:"is_playing"`
	Song        *CurrentSong `json:"current_song"`
	ProgressSec int          `json:"current_time"`
	DurationSec int          `json:"duration"`
	Device      string       `json:"device,omitempty"`
}

// PlaybackOutcome is the merged response for a recommendation-and-play
// request. A failed play command is reported through Error with the
// candidate list intact so the caller can retry client-side.
type PlaybackOutcome struct {
	IsPlaying       bool         `json:"is_playing"`
	Song            *CurrentSong `json:"current_song,omitempty"`
	ProgressSec     int          `json:"current_time"`
	DurationSec     int          `json:"duration"`
	Device          string       `json:"device,omitempty"`
	Recommendations []Track      `json:"location_recommendations"`
	Selected        *Track       `json:"selected_track_info,omitempty"`
	Location        Coordinate   `json:"location"`
	Message         string       `json:"message,omitempty"`
	Error           string       `json:"error,omitempty"`
}
