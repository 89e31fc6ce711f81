package logic

import (
	"net"

	"github.com/ewhitmore/geotune/internal/geoip"
	"github.com/ewhitmore/geotune/internal/models"
)

// regions is the static geofence list. Order matters: the first region whose
// box contains the coordinate wins. Bounds are inclusive on all four edges.
var regions = []models.GeofenceRegion{
	{
		Name:      "downtown",
		LatMin:    40.106547,
		LatMax:    40.111303,
		LonMin:    -88.242023,
		LonMax:    -88.214757,
		PlaceType: models.PlaceUrban,
		Tags:      []string{"bars", "clubs", "restaurants"},
	},
	{
		Name:      "town",
		LatMin:    40.084082,
		LatMax:    40.092088,
		LonMin:    -88.209529,
		LonMax:    -88.199730,
		PlaceType: models.PlaceSuburban,
		Tags:      []string{"apartments", "cafes"},
	},
	{
		Name:      "country_roads",
		LatMin:    40.072587,
		LatMax:    40.093647,
		LonMin:    -88.238746,
		LonMax:    -88.223972,
		PlaceType: models.PlaceRural,
		Tags:      []string{"farmland", "parks"},
	},
}

// Regions returns the configured geofence list.
func Regions() []models.GeofenceRegion { return regions }

// ClassifyPlaceType maps a coordinate to a place type by scanning the region
// list in order. Coordinates outside every region classify as unknown.
func ClassifyPlaceType(c models.Coordinate) models.PlaceType {
	for _, r := range regions {
		if r.Contains(c) {
			return r.PlaceType
		}
	}
	return models.PlaceUnknown
}

// RegionBucket assigns a coordinate to a coarse keyword region by raw
// lat/lon bands. This intentionally does not reuse the geofence list above;
// the two classifiers serve different consumers and may disagree.
func RegionBucket(c models.Coordinate) string {
	switch {
	case c.Latitude >= 40 && c.Latitude <= 70 && c.Longitude >= -130 && c.Longitude <= -60:
		return models.RegionNorthAmericaNorth
	case c.Latitude >= 25 && c.Latitude < 40 && c.Longitude >= -125 && c.Longitude <= -75:
		return models.RegionNorthAmericaSouth
	case c.Latitude >= 35 && c.Latitude <= 70 && c.Longitude >= -10 && c.Longitude <= 40:
		return models.RegionEurope
	default:
		return models.RegionGlobal
	}
}

// countryBuckets maps ISO country codes to coarse regions for requests that
// arrive without a usable coordinate.
var countryBuckets = map[string]string{
	"US": models.RegionNorthAmericaSouth,
	"CA": models.RegionNorthAmericaNorth,
	"GB": models.RegionEurope,
	"IE": models.RegionEurope,
	"FR": models.RegionEurope,
	"DE": models.RegionEurope,
	"ES": models.RegionEurope,
	"IT": models.RegionEurope,
	"NL": models.RegionEurope,
	"SE": models.RegionEurope,
	"NO": models.RegionEurope,
	"FI": models.RegionEurope,
	"DK": models.RegionEurope,
	"PL": models.RegionEurope,
	"PT": models.RegionEurope,
}

// ResolveRegionBucket prefers the coordinate-band bucket; when the client
// sent the (0,0) sentinel it falls back to the request IP's country. The
// feature-vector classification is unaffected and stays unknown in that case.
func ResolveRegionBucket(g *geoip.GeoIP, c models.Coordinate, ipString string) string {
	if !c.IsZero() {
		return RegionBucket(c)
	}
	if ip := net.ParseIP(ipString); ip != nil && g != nil {
		if bucket, ok := countryBuckets[g.Country(ip)]; ok {
			return bucket
		}
	}
	return models.RegionGlobal
}
