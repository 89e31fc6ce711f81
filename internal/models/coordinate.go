package models

// Coordinate is a WGS84 position supplied by the client. Values are taken
// as-is; no wrapping or normalization is applied.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether the coordinate is the (0,0) sentinel clients send
// when location access was denied.
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// PlaceType is the coarse category assigned to a coordinate by the
// geofence classifier.
type PlaceType string

const (
	PlaceUrban    PlaceType = "urban"
	PlaceSuburban PlaceType = "suburban"
	PlaceRural    PlaceType = "rural"
	PlaceUnknown  PlaceType = "unknown"
)

// ParsePlaceType maps a string to a PlaceType, returning ok=false for
// anything outside the known set.
func ParsePlaceType(s string) (PlaceType, bool) {
	switch PlaceType(s) {
	case PlaceUrban, PlaceSuburban, PlaceRural, PlaceUnknown:
		return PlaceType(s), true
	}
	return "", false
}

// Coarse keyword-region buckets. These are a second, independent geographic
// heuristic over raw lat/lon bands, deliberately distinct from the geofence
// place types above.
const (
	RegionNorthAmericaNorth = "north_america_north"
	RegionNorthAmericaSouth = "north_america_south"
	RegionEurope            = "europe"
	RegionGlobal            = "global"
)

// TimeOfDay is the binary day/night bucket derived from the hour of day.
type TimeOfDay string

const (
	TimeDay   TimeOfDay = "day"
	TimeNight TimeOfDay = "night"
)

// GeofenceRegion is one entry in the static, ordered region list. Bounds are
// inclusive on all four edges; the first region containing a coordinate wins.
type GeofenceRegion struct {
	Name      string
	LatMin    float64
	LatMax    float64
	LonMin    float64
	LonMax    float64
	PlaceType PlaceType
	Tags      []string
}

// Contains reports whether the coordinate falls inside the region's
// bounding box.
func (r GeofenceRegion) Contains(c Coordinate) bool {
	return c.Latitude >= r.LatMin && c.Latitude <= r.LatMax &&
		c.Longitude >= r.LonMin && c.Longitude <= r.LonMax
}
