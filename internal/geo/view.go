package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Viewport describes the drawable area in screen units.
type Viewport struct {
	Width  float64
	Height float64
	// PixelAspect is the height of one screen unit relative to its width.
	// Terminal cells are roughly twice as tall as they are wide.
	PixelAspect float64
}

// Aspect returns the physical width/height ratio of the viewport.
func (vp Viewport) Aspect() float64 {
	pa := vp.PixelAspect
	if pa <= 0 {
		pa = 1
	}
	if vp.Height <= 0 {
		return 1
	}
	return vp.Width / (vp.Height * pa)
}

// Contains reports whether a screen position lies inside the viewport.
func (vp Viewport) Contains(p Vec2) bool {
	return p.X >= 0 && p.X <= vp.Width && p.Y >= 0 && p.Y <= vp.Height
}

// Projector maps globe-frame positions into screen space. The 3D
// perspective view and the flat fallback both satisfy it, so registry and
// picking code does not care which renderer is active.
type Projector interface {
	Project(p Vec3) (Vec2, bool)
	Viewport() Viewport
	// Occludes reports whether the globe hides p from this projector.
	Occludes(p Vec3) bool
}

// View is a perspective camera looking at the globe.
type View struct {
	Eye    Vec3
	Target Vec3
	Up     Vec3
	FovY   float64 // vertical field of view in degrees
	Near   float64
	Far    float64
	Port   Viewport
}

// ViewProjection builds the combined view-projection matrix.
func (v View) ViewProjection() mgl64.Mat4 {
	up := v.Up
	if up.Norm() == 0 {
		up = Vec3{Z: 1}
	}
	view := mgl64.LookAtV(
		mgl64.Vec3{v.Eye.X, v.Eye.Y, v.Eye.Z},
		mgl64.Vec3{v.Target.X, v.Target.Y, v.Target.Z},
		mgl64.Vec3{up.X, up.Y, up.Z},
	)
	proj := mgl64.Perspective(mgl64.DegToRad(v.FovY), v.Port.Aspect(), v.Near, v.Far)
	return proj.Mul4(view)
}

// CartesianToScreen projects a position through the view. It returns false
// when the point is behind the near plane, not a number, or outside the
// viewport; callers treat that as "not visible, not clickable".
func CartesianToScreen(p Vec3, v View) (Vec2, bool) {
	return projectWith(v.ViewProjection(), v, p)
}

func projectWith(m mgl64.Mat4, v View, p Vec3) (Vec2, bool) {
	if !p.IsFinite() {
		return Vec2{}, false
	}
	clip := m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	w := clip.W()
	if w < v.Near || !isFinite(w) {
		return Vec2{}, false
	}
	ndcX := clip.X() / w
	ndcY := clip.Y() / w
	s := Vec2{
		X: (ndcX + 1) / 2 * v.Port.Width,
		Y: (1 - ndcY) / 2 * v.Port.Height,
	}
	if !isFinite(s.X) || !isFinite(s.Y) || !v.Port.Contains(s) {
		return Vec2{}, false
	}
	return s, true
}

// Perspective is a View with its matrix computed once, for projecting many
// points in one frame.
type Perspective struct {
	view View
	m    mgl64.Mat4
}

// NewPerspective prepares a projector for one frame.
func NewPerspective(v View) Perspective {
	return Perspective{view: v, m: v.ViewProjection()}
}

// Project implements Projector.
func (p Perspective) Project(pos Vec3) (Vec2, bool) {
	return projectWith(p.m, p.view, pos)
}

// Viewport implements Projector.
func (p Perspective) Viewport() Viewport {
	return p.view.Port
}

// Occludes implements Projector.
func (p Perspective) Occludes(pos Vec3) bool {
	return !FacesCamera(pos, p.view.Eye)
}

// View returns the underlying camera view.
func (p Perspective) View() View {
	return p.view
}

// Limb returns the screen-space center and radii of the globe's outline.
// ok is false when the eye is inside the globe.
func (p Perspective) Limb() (center Vec2, rx, ry float64, ok bool) {
	d := p.view.Eye.Sub(p.view.Target).Norm()
	if d <= SurfaceRadius {
		return Vec2{}, 0, 0, false
	}
	alpha := math.Asin(SurfaceRadius / d)
	half := degToRad(p.view.FovY) / 2
	ry = math.Tan(alpha) / math.Tan(half) * p.view.Port.Height / 2
	pa := p.view.Port.PixelAspect
	if pa <= 0 {
		pa = 1
	}
	rx = ry * pa
	center = Vec2{X: p.view.Port.Width / 2, Y: p.view.Port.Height / 2}
	return center, rx, ry, true
}

// FlatView is the degraded 2D fallback: an equirectangular map centered on
// a location. Scale 1 fits the whole world across the viewport width.
type FlatView struct {
	CenterLat float64
	CenterLng float64
	Scale     float64
	Port      Viewport
}

// Project implements Projector.
func (f FlatView) Project(pos Vec3) (Vec2, bool) {
	if !pos.IsFinite() || pos.Norm() == 0 {
		return Vec2{}, false
	}
	lat, lng := CartesianToGeodetic(pos)
	scale := f.Scale
	if scale <= 0 {
		scale = 1
	}
	unit := f.Port.Width / 360 * scale
	pa := f.Port.PixelAspect
	if pa <= 0 {
		pa = 1
	}
	s := Vec2{
		X: f.Port.Width/2 + NormalizeAngle(lng-f.CenterLng)*unit,
		Y: f.Port.Height/2 + (f.CenterLat-lat)*unit/pa,
	}
	if !f.Port.Contains(s) {
		return Vec2{}, false
	}
	return s, true
}

// Viewport implements Projector.
func (f FlatView) Viewport() Viewport {
	return f.Port
}

// Occludes implements Projector. Nothing is hidden on a flat map.
func (f FlatView) Occludes(Vec3) bool {
	return false
}
