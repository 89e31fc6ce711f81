package logic

import "github.com/ewhitmore/geotune/internal/models"

// baselineFeatures is the neutral starting vector. Instrumentalness and
// speechiness default lower than the rest: most catalog tracks have vocals
// and little spoken word.
var baselineFeatures = models.AudioFeatures{
	Acousticness:     0.5,
	Danceability:     0.5,
	Energy:           0.5,
	Tempo:            0.5,
	Valence:          0.5,
	Instrumentalness: 0.3,
	Speechiness:      0.1,
}

type featureKey struct {
	place models.PlaceType
	tod   models.TimeOfDay
}

// featureOverrides is the service's domain knowledge: per (place, time-of-day)
// combination, the listed fields replace their baseline values outright. The
// constants are a fixed heuristic, not a learned model.
var featureOverrides = map[featureKey]func(*models.AudioFeatures){
	{models.PlaceUrban, models.TimeNight}: func(f *models.AudioFeatures) {
		f.Energy = 0.4
		f.Danceability = 0.6
		f.Tempo = 0.4
		f.Valence = 0.3
		f.Instrumentalness = 0.2
		f.Speechiness = 0.1
		f.Acousticness = 0.3
	},
	{models.PlaceSuburban, models.TimeNight}: func(f *models.AudioFeatures) {
		f.Valence = 0.5
		f.Energy = 0.3
		f.Acousticness = 0.6
		f.Danceability = 0.4
		f.Tempo = 0.3
	},
	{models.PlaceRural, models.TimeNight}: func(f *models.AudioFeatures) {
		f.Energy = 0.3
		f.Instrumentalness = 0.5
		f.Acousticness = 0.7
		f.Valence = 0.4
		f.Tempo = 0.3
	},
	{models.PlaceUrban, models.TimeDay}: func(f *models.AudioFeatures) {
		f.Speechiness = 0.2
		f.Tempo = 0.7
		f.Energy = 0.7
		f.Danceability = 0.7
		f.Valence = 0.7
	},
	{models.PlaceSuburban, models.TimeDay}: func(f *models.AudioFeatures) {
		f.Energy = 0.6
		f.Speechiness = 0.1
		f.Valence = 0.6
		f.Danceability = 0.6
		f.Tempo = 0.6
	},
	{models.PlaceRural, models.TimeDay}: func(f *models.AudioFeatures) {
		f.Energy = 0.5
		f.Tempo = 0.4
		f.Acousticness = 0.8
		f.Valence = 0.6
		f.Instrumentalness = 0.3
	},
}

// TargetFeatures builds the audio-feature target for a (place, time-of-day)
// pair. An unknown place type returns the baseline unmodified. Pure and
// deterministic; jitter is applied later, at the wire boundary.
func TargetFeatures(place models.PlaceType, tod models.TimeOfDay) models.AudioFeatures {
	f := baselineFeatures
	if override, ok := featureOverrides[featureKey{place, tod}]; ok {
		override(&f)
	}
	return f
}
