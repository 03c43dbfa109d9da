// Package camera implements the orbit camera around the globe: auto-rotate,
// damped drag and zoom, and animated fly-to transitions.
package camera

import (
	"math"
	"time"

	"github.com/litescript/ls-globe/internal/geo"
)

// Mode is the controller's motion state.
type Mode int

const (
	Idle Mode = iota
	UserDragging
	AutoRotating
	FlyingTo
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case UserDragging:
		return "dragging"
	case AutoRotating:
		return "auto-rotating"
	case FlyingTo:
		return "flying"
	default:
		return "unknown"
	}
}

// State is the orbit camera. Azimuth is the longitude under the camera and
// Elevation its latitude, both in degrees. Distance is measured from the
// globe center in globe radii.
type State struct {
	Azimuth         float64
	Elevation       float64
	Distance        float64
	Target          geo.Vec3
	AutoRotate      bool
	AutoRotateSpeed float64 // degrees per second
}

// Config holds controller limits and tuning.
type Config struct {
	MinDistance     float64
	MaxDistance     float64
	InitialDistance float64
	InitialLat      float64
	InitialLng      float64
	// StartDistance is where the camera sits before the intro fly-in.
	// Zero starts at InitialDistance.
	StartDistance float64

	AutoRotate      bool
	AutoRotateSpeed float64 // degrees per second

	// ZoomStep is the fractional distance change per wheel notch.
	ZoomStep float64

	MinElevation float64
	MaxElevation float64

	// DragDegreesPerUnit converts screen units of drag into degrees of
	// rotation at the initial distance.
	DragDegreesPerUnit float64

	// Damping is the time constant for drag and zoom smoothing. Zero
	// applies input immediately.
	Damping time.Duration

	FovY float64
	Near float64
	Far  float64
}

// DefaultConfig returns the standard camera setup, opening over Dhaka.
func DefaultConfig() Config {
	return Config{
		MinDistance:        1.3,
		MaxDistance:        8,
		InitialDistance:    3.5,
		InitialLat:         23.685,
		InitialLng:         90.3563,
		AutoRotate:         true,
		AutoRotateSpeed:    6,
		ZoomStep:           0.15,
		MinElevation:       -85,
		MaxElevation:       85,
		DragDegreesPerUnit: 0.6,
		Damping:            80 * time.Millisecond,
		FovY:               45,
		Near:               0.01,
		Far:                100,
	}
}

// maxStep bounds the integration step so a stalled host does not cause a
// sudden jump when ticks resume.
const maxStep = 250 * time.Millisecond

// Controller owns the camera state and the active fly-to animation. It is
// not safe for concurrent use; all calls come from the render loop.
type Controller struct {
	cfg   Config
	state State
	mode  Mode
	anim  *FlyTo

	zoomTarget  float64
	pendingAz   float64
	pendingEl   float64
	lastAdvance time.Time
}

// NewController creates a controller at the configured initial view.
func NewController(cfg Config) *Controller {
	cfg = withDefaults(cfg)
	start := cfg.InitialDistance
	if cfg.StartDistance > 0 {
		start = cfg.StartDistance
	}
	c := &Controller{
		cfg: cfg,
		state: State{
			Azimuth:         geo.NormalizeAngle(cfg.InitialLng),
			Elevation:       clamp(cfg.InitialLat, cfg.MinElevation, cfg.MaxElevation),
			Distance:        clamp(start, cfg.MinDistance, cfg.MaxDistance),
			AutoRotate:      cfg.AutoRotate,
			AutoRotateSpeed: cfg.AutoRotateSpeed,
		},
		mode: Idle,
	}
	c.zoomTarget = c.state.Distance
	return c
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.MinDistance <= 0 {
		cfg.MinDistance = def.MinDistance
	}
	if cfg.MaxDistance < cfg.MinDistance {
		cfg.MaxDistance = math.Max(def.MaxDistance, cfg.MinDistance)
	}
	if cfg.InitialDistance <= 0 {
		cfg.InitialDistance = def.InitialDistance
	}
	if cfg.ZoomStep <= 0 {
		cfg.ZoomStep = def.ZoomStep
	}
	if cfg.MinElevation == 0 && cfg.MaxElevation == 0 {
		cfg.MinElevation, cfg.MaxElevation = def.MinElevation, def.MaxElevation
	}
	if cfg.DragDegreesPerUnit <= 0 {
		cfg.DragDegreesPerUnit = def.DragDegreesPerUnit
	}
	if cfg.FovY <= 0 {
		cfg.FovY = def.FovY
	}
	if cfg.Near <= 0 {
		cfg.Near = def.Near
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = def.Far
	}
	return cfg
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns a copy of the camera state.
func (c *Controller) State() State {
	return c.state
}

// Mode returns the current motion state.
func (c *Controller) Mode() Mode {
	return c.mode
}

// HasAnimation reports whether a fly-to is in progress.
func (c *Controller) HasAnimation() bool {
	return c.anim != nil
}

// Animation returns a copy of the active fly-to, if any.
func (c *Controller) Animation() (FlyTo, bool) {
	if c.anim == nil {
		return FlyTo{}, false
	}
	return *c.anim, true
}

// MarkLoaded signals that data has arrived. The camera starts rotating
// unless the user has already interacted with it.
func (c *Controller) MarkLoaded() {
	if c.mode == Idle && c.state.AutoRotate {
		c.mode = AutoRotating
	}
}

// StopAutoRotate disables auto-rotation for the lifetime of the controller.
func (c *Controller) StopAutoRotate() {
	c.state.AutoRotate = false
	if c.mode == AutoRotating {
		c.mode = Idle
	}
}

// BeginDrag enters the dragging state. Any fly-to is discarded and
// auto-rotation is switched off for good.
func (c *Controller) BeginDrag() {
	c.anim = nil
	c.StopAutoRotate()
	c.zoomTarget = c.state.Distance
	c.mode = UserDragging
}

// DragBy queues a drag of dx, dy screen units. The rotation is applied
// gradually by Advance.
func (c *Controller) DragBy(dx, dy float64) {
	if c.mode != UserDragging {
		return
	}
	k := c.cfg.DragDegreesPerUnit * c.state.Distance / c.cfg.InitialDistance
	c.pendingAz -= dx * k
	c.pendingEl += dy * k
}

// EndDrag leaves the dragging state. Queued rotation keeps easing out.
func (c *Controller) EndDrag() {
	if c.mode == UserDragging {
		c.mode = Idle
	}
}

// Rotate queues a rotation in degrees, as from the keyboard. It counts as
// user interaction.
func (c *Controller) Rotate(dAz, dEl float64) {
	c.anim = nil
	c.zoomTarget = c.state.Distance
	c.StopAutoRotate()
	if c.mode == FlyingTo {
		c.mode = Idle
	}
	c.pendingAz += dAz
	c.pendingEl += dEl
}

// Zoom moves the camera one step in (direction > 0) or out (direction < 0).
// Zoom is allowed in every mode; during a fly-to it retargets the
// animation's end distance.
func (c *Controller) Zoom(direction int) {
	if direction == 0 {
		return
	}
	factor := math.Pow(1+c.cfg.ZoomStep, float64(-direction))
	base := c.zoomTarget
	if c.anim != nil {
		base = c.anim.End.Distance
	}
	target := c.clampDistance(base * factor)
	c.zoomTarget = target
	if c.anim != nil {
		c.anim.End.Distance = target
	}
}

// ZoomTarget returns the distance the camera is easing toward.
func (c *Controller) ZoomTarget() float64 {
	return c.zoomTarget
}

// Teardown discards any in-flight animation and queued input.
func (c *Controller) Teardown() {
	c.anim = nil
	c.pendingAz, c.pendingEl = 0, 0
	c.zoomTarget = c.state.Distance
	if c.mode == FlyingTo || c.mode == UserDragging {
		c.mode = Idle
	}
}

// Advance integrates camera motion up to now.
func (c *Controller) Advance(now time.Time) {
	var dt time.Duration
	if !c.lastAdvance.IsZero() {
		dt = now.Sub(c.lastAdvance)
	}
	c.lastAdvance = now
	if dt < 0 {
		dt = 0
	}
	if dt > maxStep {
		dt = maxStep
	}

	f := c.damping(dt)
	if c.pendingAz != 0 || c.pendingEl != 0 {
		az, el := c.pendingAz*f, c.pendingEl*f
		c.pendingAz -= az
		c.pendingEl -= el
		if math.Abs(c.pendingAz) < 1e-6 {
			c.pendingAz = 0
		}
		if math.Abs(c.pendingEl) < 1e-6 {
			c.pendingEl = 0
		}
		c.state.Azimuth += az
		c.state.Elevation += el
	}

	switch c.mode {
	case FlyingTo:
		c.advanceFlyTo(now)
	case AutoRotating:
		c.state.Azimuth += c.state.AutoRotateSpeed * dt.Seconds()
		fallthrough
	default:
		if c.anim == nil && c.zoomTarget != c.state.Distance {
			c.state.Distance += (c.zoomTarget - c.state.Distance) * f
			if math.Abs(c.zoomTarget-c.state.Distance) < 1e-6 {
				c.state.Distance = c.zoomTarget
			}
		}
	}

	c.state.Azimuth = geo.NormalizeAngle(c.state.Azimuth)
	c.state.Elevation = clamp(c.state.Elevation, c.cfg.MinElevation, c.cfg.MaxElevation)
	c.state.Distance = c.clampDistance(c.state.Distance)
}

func (c *Controller) advanceFlyTo(now time.Time) {
	a := c.anim
	if a == nil {
		c.mode = Idle
		return
	}
	if a.StartTime.IsZero() {
		a.StartTime = now
	}
	p := a.Progress(now)
	next := a.At(p)
	c.state.Azimuth = next.Azimuth
	c.state.Elevation = next.Elevation
	c.state.Distance = next.Distance
	c.state.Target = next.Target
	if p >= 1 {
		c.anim = nil
		c.zoomTarget = c.state.Distance
		c.mode = Idle
		if c.state.AutoRotate {
			c.mode = AutoRotating
		}
	}
}

func (c *Controller) damping(dt time.Duration) float64 {
	if c.cfg.Damping <= 0 {
		return 1
	}
	return 1 - math.Exp(-float64(dt)/float64(c.cfg.Damping))
}

func (c *Controller) clampDistance(d float64) float64 {
	return clamp(d, c.cfg.MinDistance, c.cfg.MaxDistance)
}

// View returns the perspective view for the current state.
func (c *Controller) View(port geo.Viewport) geo.View {
	eye := geo.GeodeticToCartesian(c.state.Elevation, c.state.Azimuth, c.state.Distance).Add(c.state.Target)
	return geo.View{
		Eye:    eye,
		Target: c.state.Target,
		Up:     geo.Vec3{Z: 1},
		FovY:   c.cfg.FovY,
		Near:   c.cfg.Near,
		Far:    c.cfg.Far,
		Port:   port,
	}
}

// FlatView returns the 2D fallback view centered under the camera.
func (c *Controller) FlatView(port geo.Viewport) geo.FlatView {
	return geo.FlatView{
		CenterLat: c.state.Elevation,
		CenterLng: c.state.Azimuth,
		Scale:     c.cfg.InitialDistance / c.state.Distance,
		Port:      port,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
