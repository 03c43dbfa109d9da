package geo

import (
	"math"
	"testing"
	"time"
)

func TestJulianDate(t *testing.T) {
	tests := []struct {
		t    time.Time
		want float64
	}{
		{time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 2451545.0},
		{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 2451544.5},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2460310.5},
	}
	for _, tt := range tests {
		if got := julianDate(tt.t); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("julianDate(%v) = %f, want %f", tt.t, got, tt.want)
		}
	}
}

func TestSubsolarPoint(t *testing.T) {
	tests := []struct {
		name   string
		t      time.Time
		lat    float64
		latTol float64
		lng    float64
		lngTol float64
	}{
		{"march equinox", time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC), 0, 0.1, 135, 3},
		{"june solstice", time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC), 23.44, 0.05, -133, 3},
		{"december solstice", time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC), -23.44, 0.05, -0.5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lng := SubsolarPoint(tt.t)
			if math.Abs(lat-tt.lat) > tt.latTol {
				t.Errorf("lat = %.3f, want %.2f", lat, tt.lat)
			}
			if math.Abs(NormalizeAngle(lng-tt.lng)) > tt.lngTol {
				t.Errorf("lng = %.2f, want about %.0f", lng, tt.lng)
			}
		})
	}
}

func TestDaylit(t *testing.T) {
	noon := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	if !Daylit(0, 0, noon) {
		t.Error("Greenwich should be daylit at noon UTC")
	}
	if Daylit(0, 180, noon) {
		t.Error("the antimeridian should be dark at noon UTC")
	}
	if !Daylit(6.9, 79.9, noon) {
		t.Error("Colombo should be daylit in the late afternoon")
	}
}
