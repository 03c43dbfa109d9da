package interact

import (
	"time"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/pick"
	"github.com/litescript/ls-globe/internal/scene"
)

// Camera is the subset of the camera controller the coordinator drives.
type Camera interface {
	State() camera.State
	StopAutoRotate()
	BeginDrag()
	DragBy(dx, dy float64)
	EndDrag()
	Rotate(dAz, dEl float64)
	Zoom(direction int)
	FlyTo(lat, lng float64, d time.Duration)
	FlyToState(target camera.State, d time.Duration)
}

// Config tunes gesture recognition.
type Config struct {
	// Tolerance is the pick radius in screen units.
	Tolerance float64
	// DragThreshold is how far the pointer must move while pressed before
	// the gesture counts as a drag instead of a click.
	DragThreshold float64
	// LongPress turns a stationary press into a secondary gesture.
	LongPress     time.Duration
	FlyToDuration time.Duration
	// ClusterZoomDistance is where the camera lands after a cluster click,
	// just inside the distance at which points are shown individually.
	ClusterZoomDistance float64
	TooltipOffset       geo.Vec2
}

// DefaultConfig returns the standard gesture settings.
func DefaultConfig() Config {
	return Config{
		Tolerance:           2,
		DragThreshold:       1,
		LongPress:           600 * time.Millisecond,
		FlyToDuration:       time.Second,
		ClusterZoomDistance: 2.2,
		TooltipOffset:       geo.Vec2{X: 2, Y: -1},
	}
}

type inputKind int

const (
	inMove inputKind = iota
	inDown
	inUp
	inSecondary
	inWheel
	inLeave
	inRotate
)

type input struct {
	kind inputKind
	pos  geo.Vec2
	at   time.Time
	dir  int
	dAz  float64
	dEl  float64
}

type gesture struct {
	secondary bool
	pos       geo.Vec2
}

// Coordinator owns hover, click and drag state. Pointer handlers only
// queue input; HandleInput and Resolve run once per tick on the render
// goroutine.
type Coordinator struct {
	cfg      Config
	cam      Camera
	picker   pick.Picker
	handlers Handlers
	port     geo.Viewport

	inbox    []input
	gestures []gesture

	pointer   geo.Vec2
	pointerIn bool

	down      bool
	downPos   geo.Vec2
	downAt    time.Time
	lastDrag  geo.Vec2
	dragging  bool
	longFired bool

	hoverKey string
}

// New creates a coordinator driving cam. A nil picker uses the linear scan.
func New(cfg Config, cam Camera, picker pick.Picker, h Handlers) *Coordinator {
	def := DefaultConfig()
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.DragThreshold <= 0 {
		cfg.DragThreshold = def.DragThreshold
	}
	if cfg.LongPress <= 0 {
		cfg.LongPress = def.LongPress
	}
	if cfg.FlyToDuration < 0 {
		cfg.FlyToDuration = def.FlyToDuration
	}
	if cfg.ClusterZoomDistance <= 0 {
		cfg.ClusterZoomDistance = def.ClusterZoomDistance
	}
	if cfg.TooltipOffset == (geo.Vec2{}) {
		cfg.TooltipOffset = def.TooltipOffset
	}
	if picker == nil {
		picker = pick.Linear{}
	}
	return &Coordinator{
		cfg:      cfg,
		cam:      cam,
		picker:   picker,
		handlers: h,
		port:     geo.Viewport{PixelAspect: 1},
	}
}

// SetViewport records the drawable area for tooltip clamping and drag
// scaling.
func (c *Coordinator) SetViewport(vp geo.Viewport) {
	c.port = vp
}

// SetHandlers replaces the host callbacks.
func (c *Coordinator) SetHandlers(h Handlers) {
	c.handlers = h
}

// PointerMove queues a pointer move.
func (c *Coordinator) PointerMove(pos geo.Vec2) {
	c.inbox = append(c.inbox, input{kind: inMove, pos: pos})
}

// PointerDown queues a primary press.
func (c *Coordinator) PointerDown(pos geo.Vec2, now time.Time) {
	c.inbox = append(c.inbox, input{kind: inDown, pos: pos, at: now})
}

// PointerUp queues a primary release.
func (c *Coordinator) PointerUp(pos geo.Vec2, now time.Time) {
	c.inbox = append(c.inbox, input{kind: inUp, pos: pos, at: now})
}

// Secondary queues an alternate gesture such as a right click.
func (c *Coordinator) Secondary(pos geo.Vec2) {
	c.inbox = append(c.inbox, input{kind: inSecondary, pos: pos})
}

// Wheel queues a zoom; positive direction zooms in.
func (c *Coordinator) Wheel(direction int) {
	c.inbox = append(c.inbox, input{kind: inWheel, dir: direction})
}

// Rotate queues a keyboard rotation in degrees.
func (c *Coordinator) Rotate(dAz, dEl float64) {
	c.inbox = append(c.inbox, input{kind: inRotate, dAz: dAz, dEl: dEl})
}

// PointerLeave queues the pointer leaving the view.
func (c *Coordinator) PointerLeave() {
	c.inbox = append(c.inbox, input{kind: inLeave})
}

// Pointer returns the last known pointer position and whether it is
// inside the view.
func (c *Coordinator) Pointer() (geo.Vec2, bool) {
	return c.pointer, c.pointerIn
}

// HoveredKey returns the key of the hovered marker, or "".
func (c *Coordinator) HoveredKey() string {
	return c.hoverKey
}

// Dragging reports whether a drag gesture is in progress.
func (c *Coordinator) Dragging() bool {
	return c.dragging
}

// HandleInput applies queued input to the camera and recognizes gestures.
// It is the first phase of a tick.
func (c *Coordinator) HandleInput(now time.Time) {
	for _, in := range c.inbox {
		switch in.kind {
		case inMove:
			c.pointer, c.pointerIn = in.pos, true
			c.move(in.pos)
		case inDown:
			c.pointer, c.pointerIn = in.pos, true
			c.cam.StopAutoRotate()
			c.down, c.dragging, c.longFired = true, false, false
			c.downPos, c.lastDrag, c.downAt = in.pos, in.pos, in.at
		case inUp:
			c.release(in.pos)
		case inSecondary:
			c.cam.StopAutoRotate()
			c.gestures = append(c.gestures, gesture{secondary: true, pos: in.pos})
		case inWheel:
			c.cam.StopAutoRotate()
			c.cam.Zoom(in.dir)
		case inRotate:
			c.cam.Rotate(in.dAz, in.dEl)
		case inLeave:
			c.pointerIn = false
			if c.dragging {
				c.cam.EndDrag()
			}
			c.down, c.dragging = false, false
		}
	}
	c.inbox = c.inbox[:0]

	if c.down && !c.dragging && !c.longFired && !c.downAt.IsZero() && now.Sub(c.downAt) >= c.cfg.LongPress {
		c.longFired = true
		c.gestures = append(c.gestures, gesture{secondary: true, pos: c.downPos})
	}
}

func (c *Coordinator) move(pos geo.Vec2) {
	if !c.down {
		return
	}
	if !c.dragging {
		if pos.DistSq(c.downPos, c.port.PixelAspect) <= c.cfg.DragThreshold*c.cfg.DragThreshold {
			return
		}
		if c.longFired {
			return
		}
		c.dragging = true
		c.cam.BeginDrag()
	}
	pa := c.port.PixelAspect
	if pa <= 0 {
		pa = 1
	}
	c.cam.DragBy(pos.X-c.lastDrag.X, (pos.Y-c.lastDrag.Y)*pa)
	c.lastDrag = pos
}

func (c *Coordinator) release(pos geo.Vec2) {
	if !c.down {
		return
	}
	c.move(pos)
	switch {
	case c.dragging:
		c.cam.EndDrag()
	case !c.longFired:
		c.gestures = append(c.gestures, gesture{pos: pos})
	}
	c.down, c.dragging = false, false
}

// Resolve runs after projection. It performs at most one hover pick,
// resolves queued clicks against this frame's markers and dispatches the
// resulting events to the handlers. pts is not retained.
func (c *Coordinator) Resolve(pts []scene.RenderPoint) []Event {
	var events []Event

	key := ""
	var hovered scene.RenderPoint
	if c.pointerIn && !c.dragging {
		if rp, ok := c.picker.Pick(c.pointer, pts, c.cfg.Tolerance, c.port.PixelAspect); ok {
			key, hovered = rp.Key, rp
		}
	}
	if key != c.hoverKey {
		c.hoverKey = key
		ev := Event{Kind: HoverChange, Pointer: c.pointer}
		if key != "" {
			h := hovered
			ev.Hover = &h
		}
		events = append(events, ev)
	}

	for _, g := range c.gestures {
		rp, ok := c.picker.Pick(g.pos, pts, c.cfg.Tolerance, c.port.PixelAspect)
		if !ok {
			continue
		}
		if ev, ok := c.activate(rp, g); ok {
			events = append(events, ev)
		}
	}
	c.gestures = c.gestures[:0]

	if r, ok := c.picker.(interface{ Reset() }); ok {
		r.Reset()
	}

	for _, ev := range events {
		c.handlers.dispatch(ev)
	}
	return events
}

func (c *Coordinator) activate(rp scene.RenderPoint, g gesture) (Event, bool) {
	if rp.IsCluster() {
		if g.secondary {
			return Event{}, false
		}
		cl := *rp.Cluster
		target := c.cam.State()
		target.Elevation, target.Azimuth = cl.Lat(), cl.Lng()
		target.Distance = c.cfg.ClusterZoomDistance
		c.cam.FlyToState(target, c.cfg.FlyToDuration)
		return Event{Kind: ClusterSelect, Pointer: g.pos, Point: rp.Source, Cluster: &cl}, true
	}

	if g.secondary {
		return Event{Kind: Navigate, Pointer: g.pos, Point: rp.Source}, true
	}
	c.cam.FlyTo(rp.Source.Lat, rp.Source.Lng, c.cfg.FlyToDuration)
	return Event{Kind: PointSelect, Pointer: g.pos, Point: rp.Source}, true
}

// Reset clears all pointer state, as on remount.
func (c *Coordinator) Reset() {
	c.inbox = c.inbox[:0]
	c.gestures = c.gestures[:0]
	c.down, c.dragging, c.longFired, c.pointerIn = false, false, false, false
	c.hoverKey = ""
}
