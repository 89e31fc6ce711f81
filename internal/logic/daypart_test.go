package logic

import (
	"testing"

	"github.com/ewhitmore/geotune/internal/models"
)

func TestBucketHour(t *testing.T) {
	tests := []struct {
		hour int
		want models.TimeOfDay
	}{
		{0, models.TimeNight},
		{7, models.TimeNight},
		{8, models.TimeDay},
		{12, models.TimeDay},
		{20, models.TimeDay},
		{21, models.TimeNight},
		{23, models.TimeNight},
	}

	for _, tt := range tests {
		if got := BucketHour(tt.hour); got != tt.want {
			t.Errorf("BucketHour(%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}
