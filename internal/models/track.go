package models

// Track is the unified candidate shape produced by both recommendation
// strategies. Artist holds the primary artist only; CoverArtURL holds the
// largest available image and may be empty. Tracks are never persisted.
type Track struct {
	ID           string `json:"catalog_id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Album        string `json:"album"`
	DurationMS   int    `json:"duration_ms"`
	CoverArtURL  string `json:"cover_art_url,omitempty"`
	PreviewURL   string `json:"preview_url,omitempty"`
	ExternalURL  string `json:"external_url,omitempty"`
	Popularity   int    `json:"popularity"`
	Reason       string `json:"recommendation_reason,omitempty"`
	LocationType string `json:"location_type,omitempty"`
	TimeOfDay    string `json:"time_of_day,omitempty"`
}

// URI returns the player URI for the track.
func (t Track) URI() string {
	return "spotify:track:" + t.ID
}

// Location types stamped on fallback-strategy tracks. Primary-strategy
// tracks carry the geofence place type instead.
const (
	LocationRegional = "regional"
	LocationGlobal   = "global"
)

// RecommendationResult is the ordered candidate list handed to the
// dispatcher, along with the context it was derived from.
type RecommendationResult struct {
	Tracks   []Track               `json:"tracks"`
	Context  RecommendationContext `json:"-"`
	Strategy string                `json:"strategy,omitempty"`
}

// Empty reports whether both strategies came up with nothing.
func (r RecommendationResult) Empty() bool { return len(r.Tracks) == 0 }
