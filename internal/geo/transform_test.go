package geo

import (
	"math"
	"testing"
)

func TestVec3Norm(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float64
	}{
		{"zero", Vec3{0, 0, 0}, 0},
		{"unit x", Vec3{1, 0, 0}, 1},
		{"unit z", Vec3{0, 0, 1}, 1},
		{"3-4-5", Vec3{3, 4, 0}, 5},
		{"3D", Vec3{1, 2, 2}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Norm()
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("Norm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeodeticToCartesian_Axes(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     Vec3
	}{
		{"null island", 0, 0, Vec3{1, 0, 0}},
		{"90E", 0, 90, Vec3{0, 1, 0}},
		{"north pole", 90, 0, Vec3{0, 0, 1}},
		{"south pole", -90, 0, Vec3{0, 0, -1}},
		{"antimeridian", 0, 180, Vec3{-1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GeodeticToCartesian(tt.lat, tt.lng, 1)
			if got.Sub(tt.want).Norm() > 1e-9 {
				t.Errorf("GeodeticToCartesian(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestGeodeticToCartesian_Radius(t *testing.T) {
	got := GeodeticToCartesian(23.685, 90.3563, 1.01)
	if math.Abs(got.Norm()-1.01) > 1e-9 {
		t.Errorf("marker radius = %v, want 1.01", got.Norm())
	}

	// Zero radius falls back to the unit sphere
	got = GeodeticToCartesian(10, 10, 0)
	if math.Abs(got.Norm()-1) > 1e-9 {
		t.Errorf("default radius = %v, want 1", got.Norm())
	}
}

func TestGeodeticRoundTrip(t *testing.T) {
	for lat := -89.0; lat <= 89; lat += 7.3 {
		for lng := -179.0; lng <= 179; lng += 11.9 {
			v := GeodeticToCartesian(lat, lng, 1)
			gotLat, gotLng := CartesianToGeodetic(v)
			if math.Abs(gotLat-lat) > 1e-9 || math.Abs(NormalizeAngle(gotLng-lng)) > 1e-9 {
				t.Fatalf("round trip (%v, %v) -> (%v, %v)", lat, lng, gotLat, gotLng)
			}
		}
	}
}

func TestNormalizeLatLng(t *testing.T) {
	tests := []struct {
		name             string
		lat, lng         float64
		wantLat, wantLng float64
		wantOK           bool
	}{
		{"in range", 23.7, 90.4, 23.7, 90.4, true},
		{"lng wraps east", 10, 190, 10, -170, true},
		{"lng wraps west", 10, -200, 10, 160, true},
		{"lat clamps", 95, 0, 90, 0, true},
		{"lat clamps south", -120, 0, -90, 0, true},
		{"nan", math.NaN(), 0, 0, 0, false},
		{"inf", 0, math.Inf(1), 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lng, ok := NormalizeLatLng(tt.lat, tt.lng)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if math.Abs(lat-tt.wantLat) > 1e-9 || math.Abs(lng-tt.wantLng) > 1e-9 {
				t.Errorf("NormalizeLatLng(%v, %v) = (%v, %v), want (%v, %v)",
					tt.lat, tt.lng, lat, lng, tt.wantLat, tt.wantLng)
			}
		})
	}
}

func TestAngularDistance(t *testing.T) {
	if d := AngularDistance(0, 0, 0, 90); math.Abs(d-90) > 1e-9 {
		t.Errorf("quarter turn = %v, want 90", d)
	}
	if d := AngularDistance(0, 179, 0, -179); math.Abs(d-2) > 1e-9 {
		t.Errorf("across antimeridian = %v, want 2", d)
	}
}

func TestFacesCamera(t *testing.T) {
	eye := Vec3{X: 3}
	if !FacesCamera(GeodeticToCartesian(0, 0, 1.01), eye) {
		t.Error("sub-camera point should face the camera")
	}
	if FacesCamera(GeodeticToCartesian(0, 180, 1.01), eye) {
		t.Error("antipodal point should be occluded")
	}
	if FacesCamera(GeodeticToCartesian(0, 89, 1.01), eye) {
		t.Error("point near the limb from a close eye should be occluded")
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{180, 180},
		{-180, -180},
		{360, 0},
		{-360, 0},
		{350, -10},
		{370, 10},
		{-190, 170},
		{540, 180},
		{-540, -180},
	}

	for _, tt := range tests {
		got := NormalizeAngle(tt.input)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLerpAngle_ShortestPath(t *testing.T) {
	tests := []struct {
		from     float64
		to       float64
		t        float64
		expected float64
	}{
		{0, 90, 0.5, 45},
		{0, 180, 0.5, 90},
		// 350 to 10 should go +20, not -340
		{350, 10, 0.5, 360},
		{350, 10, 0.0, 350},
		{10, 350, 0.5, 0},
		{10, 350, 1.0, -10},
	}

	for _, tt := range tests {
		got := LerpAngle(tt.from, tt.to, tt.t)
		diff := math.Abs(NormalizeAngle(got) - NormalizeAngle(tt.expected))
		if diff > 180 {
			diff = 360 - diff
		}
		if diff > 0.001 {
			t.Errorf("LerpAngle(%v, %v, %v) = %v, want %v", tt.from, tt.to, tt.t, got, tt.expected)
		}
	}
}
