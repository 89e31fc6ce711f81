package models

// AudioFeatures is the 7-dimensional target vector used to bias catalog
// similarity search. All fields are nominally in [0,1]; Tempo is rescaled to
// BPM (x200) only at the wire boundary. A vector is built fresh per request
// and never mutated after construction.
type AudioFeatures struct {
	Acousticness     float64 `json:"acousticness"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Tempo            float64 `json:"tempo"`
	Valence          float64 `json:"valence"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
}

// FeatureTargets is the wire form of an AudioFeatures vector after jitter
// and tempo scaling, keyed by the catalog service's target parameter names.
type FeatureTargets map[string]float64

// RecommendationContext carries everything the strategies derive from a
// single (coordinate, time) pair. The place type and the region bucket come
// from two deliberately independent geographic heuristics: the fine-grained
// geofence list drives the feature vector, the coarse lat/lon bands drive
// keyword selection.
type RecommendationContext struct {
	Coordinate   Coordinate
	PlaceType    PlaceType
	TimeOfDay    TimeOfDay
	Hour         int
	Features     AudioFeatures
	RegionBucket string
}
