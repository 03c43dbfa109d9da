package geo

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// SurfaceRadius is the radius of the rendered globe mesh.
const SurfaceRadius = 1.0

// NormalizeLatLng clamps latitude to [-90, 90] and wraps longitude into
// [-180, 180]. It returns ok=false for NaN or infinite input.
func NormalizeLatLng(lat, lng float64) (float64, float64, bool) {
	if !isFinite(lat) || !isFinite(lng) {
		return 0, 0, false
	}
	return math.Max(-90, math.Min(90, lat)), NormalizeAngle(lng), true
}

// GeodeticToCartesian converts latitude/longitude in degrees to a position
// on a sphere of the given radius. Longitude is measured eastward from +X,
// latitude northward toward +Z. A radius slightly above 1 lifts markers off
// the globe surface.
func GeodeticToCartesian(lat, lng, radius float64) Vec3 {
	if radius == 0 {
		radius = SurfaceRadius
	}
	ll := s2.LatLngFromDegrees(lat, lng).Normalized()
	p := s2.PointFromLatLng(ll)
	return Vec3{X: p.X * radius, Y: p.Y * radius, Z: p.Z * radius}
}

// CartesianToGeodetic converts a position back to latitude/longitude in
// degrees. The vector's length is ignored. The zero vector maps to (0, 0).
func CartesianToGeodetic(v Vec3) (lat, lng float64) {
	if v.Norm() == 0 {
		return 0, 0
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: r3.Vector{X: v.X, Y: v.Y, Z: v.Z}})
	return ll.Lat.Degrees(), ll.Lng.Degrees()
}

// AngularDistance returns the great-circle angle between two locations in
// degrees.
func AngularDistance(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Degrees()
}

// FacesCamera reports whether a point on (or just above) the sphere is on
// the hemisphere visible from eye. Points beyond the horizon are occluded
// by the globe itself.
func FacesCamera(p, eye Vec3) bool {
	return p.Dot(eye.Sub(p)) > 0
}

// NormalizeAngle wraps angle to -180..+180 range.
func NormalizeAngle(a float64) float64 {
	if !isFinite(a) {
		return 0
	}
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a < -180 {
		a += 360
	}
	return a
}

// LerpAngle interpolates between angles, taking the shortest path.
func LerpAngle(a, b, t float64) float64 {
	diff := NormalizeAngle(b - a)
	return a + diff*t
}

// Lerp is linear interpolation.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
