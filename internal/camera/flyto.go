package camera

import (
	"math"
	"time"

	"github.com/litescript/ls-globe/internal/geo"
)

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(float64) float64

// EaseOutCubic decelerates toward the end with no overshoot.
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// FlyTo is an animated transition between two camera states.
type FlyTo struct {
	Start State
	End   State
	// StartTime is stamped by the first Advance after the request.
	StartTime time.Time
	Duration  time.Duration
	Ease      Easing
}

// Progress returns the clamped linear progress at now.
func (f FlyTo) Progress(now time.Time) float64 {
	if f.Duration <= 0 || f.StartTime.IsZero() {
		if f.Duration <= 0 {
			return 1
		}
		return 0
	}
	p := float64(now.Sub(f.StartTime)) / float64(f.Duration)
	return clamp(p, 0, 1)
}

// At returns the interpolated state for linear progress p.
func (f FlyTo) At(p float64) State {
	ease := f.Ease
	if ease == nil {
		ease = EaseOutCubic
	}
	e := ease(clamp(p, 0, 1))
	s := f.End
	if p >= 1 {
		return s
	}
	s.Azimuth = geo.NormalizeAngle(geo.LerpAngle(f.Start.Azimuth, f.End.Azimuth, e))
	s.Elevation = geo.Lerp(f.Start.Elevation, f.End.Elevation, e)
	s.Distance = geo.Lerp(f.Start.Distance, f.End.Distance, e)
	s.Target = geo.Vec3{
		X: geo.Lerp(f.Start.Target.X, f.End.Target.X, e),
		Y: geo.Lerp(f.Start.Target.Y, f.End.Target.Y, e),
		Z: geo.Lerp(f.Start.Target.Z, f.End.Target.Z, e),
	}
	return s
}

// FlyTo animates to center (lat, lng) at the current distance. Any active
// animation is replaced.
func (c *Controller) FlyTo(lat, lng float64, d time.Duration) {
	target := c.state
	target.Elevation = lat
	target.Azimuth = lng
	target.Distance = c.zoomTarget
	c.FlyToState(target, d)
}

// FlyToState animates to an arbitrary camera state. Angles and distance
// are clamped to the configured limits. The animation starts on the next
// Advance.
func (c *Controller) FlyToState(target State, d time.Duration) {
	lat, lng, ok := geo.NormalizeLatLng(target.Elevation, target.Azimuth)
	if !ok {
		return
	}
	end := c.state
	end.Azimuth = lng
	end.Elevation = clamp(lat, c.cfg.MinElevation, c.cfg.MaxElevation)
	end.Distance = c.clampDistance(target.Distance)
	end.Target = target.Target

	c.pendingAz, c.pendingEl = 0, 0
	c.anim = &FlyTo{
		Start:    c.state,
		End:      end,
		Duration: d,
		Ease:     EaseOutCubic,
	}
	c.zoomTarget = end.Distance
	c.mode = FlyingTo
}
