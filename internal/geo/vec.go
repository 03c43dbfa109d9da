// Package geo provides the coordinate transforms used by the globe:
// geodetic <-> unit-sphere Cartesian, and 3D -> screen projection.
package geo

import (
	"math"
)

// Vec3 represents a 3D vector in the globe frame (z toward the north pole).
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// IsFinite reports whether all components are finite numbers.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Vec2 is a position in screen space. Units are viewport units
// (pixels, or terminal cells for the TUI).
type Vec2 struct {
	X, Y float64
}

// Add returns the sum of two points.
func (p Vec2) Add(q Vec2) Vec2 {
	return Vec2{X: p.X + q.X, Y: p.Y + q.Y}
}

// DistSq returns the squared distance between p and q, with the vertical
// axis stretched by pixelAspect (height of one unit relative to its width).
func (p Vec2) DistSq(q Vec2, pixelAspect float64) float64 {
	if pixelAspect <= 0 {
		pixelAspect = 1
	}
	dx := p.X - q.X
	dy := (p.Y - q.Y) * pixelAspect
	return dx*dx + dy*dy
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
