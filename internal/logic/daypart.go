package logic

import "github.com/ewhitmore/geotune/internal/models"

// BucketHour maps an hour of day (0-23) to the binary day/night bucket used
// for feature mapping. Night runs from 21:00 through 07:59. Callers must
// supply an in-range hour.
func BucketHour(hour int) models.TimeOfDay {
	if hour >= 21 || hour < 8 {
		return models.TimeNight
	}
	return models.TimeDay
}
