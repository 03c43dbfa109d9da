// Package engine runs the globe's per-frame pipeline: input, camera
// advance, projection, interaction and draw, always in that order.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/cluster"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/interact"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/metrics"
	"github.com/litescript/ls-globe/internal/pick"
	"github.com/litescript/ls-globe/internal/points"
	"github.com/litescript/ls-globe/internal/scene"
)

// ErrRenderContext marks a draw failure the engine cannot recover from.
// Drawers wrap it; the loop stops and the host is told once.
var ErrRenderContext = errors.New("render context lost")

// Drawer presents a frame.
type Drawer interface {
	Draw(f *Frame) error
}

// DrawerFunc adapts a function to Drawer.
type DrawerFunc func(f *Frame) error

// Draw implements Drawer.
func (fn DrawerFunc) Draw(f *Frame) error { return fn(f) }

// TooltipSizer is implemented by drawers that know how large the tooltip
// for a marker will be.
type TooltipSizer interface {
	TooltipSize(rp scene.RenderPoint) geo.Vec2
}

// Frame is everything a drawer needs for one tick. Points is rebuilt every
// tick and must not be retained.
type Frame struct {
	Seq       uint64
	Time      time.Time
	Camera    camera.State
	Mode      camera.Mode
	Viewport  geo.Viewport
	Projector geo.Projector
	Flat      bool
	Clustered bool
	Points    []scene.RenderPoint
	Total     int // points in the working set
	Hover     *scene.RenderPoint
	Pointer   geo.Vec2
	Tooltip   geo.Vec2
	Events    []interact.Event
}

// Visible returns how many markers are on screen.
func (f *Frame) Visible() int {
	n := 0
	for i := range f.Points {
		if f.Points[i].Visible {
			n++
		}
	}
	return n
}

// Config assembles the engine's parts.
type Config struct {
	Camera   camera.Config
	Interact interact.Config
	Scene    scene.Config

	// ClusterThreshold is the camera distance above which markers
	// aggregate by city. Zero disables clustering.
	ClusterThreshold float64
	Picker           string
	GridCellSize     float64

	// IntroDuration is the fly-in played when the first data arrives.
	IntroDuration time.Duration
	Flat          bool
}

// DefaultConfig returns the standard engine setup.
func DefaultConfig() Config {
	cam := camera.DefaultConfig()
	cam.StartDistance = 6
	in := interact.DefaultConfig()
	in.ClusterZoomDistance = 2.2
	return Config{
		Camera:           cam,
		Interact:         in,
		Scene:            scene.DefaultConfig(),
		ClusterThreshold: 2.5,
		Picker:           "linear",
		GridCellSize:     4,
		IntroDuration:    time.Second,
	}
}

// Engine owns the per-view state: camera, registry and coordinator. All
// methods must be called from a single goroutine.
type Engine struct {
	cfg   Config
	cam   *camera.Controller
	reg   *scene.Registry
	coord *interact.Coordinator

	drawer  Drawer
	log     *logging.Logger
	metrics *metrics.Metrics

	port    geo.Viewport
	flat    bool
	loading bool
	loop    Loop
	seq     uint64

	fatal   error
	onFatal func(error)
	user    interact.Handlers
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics enables instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithHandlers sets the host callbacks.
func WithHandlers(h interact.Handlers) Option {
	return func(e *Engine) { e.user = h }
}

// OnFatal registers the callback fired once when the render context fails.
func OnFatal(fn func(error)) Option {
	return func(e *Engine) { e.onFatal = fn }
}

// New creates an engine in the loading state.
func New(cfg Config, drawer Drawer, opts ...Option) (*Engine, error) {
	picker, err := pick.New(cfg.Picker, cfg.GridCellSize)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if drawer == nil {
		drawer = DrawerFunc(func(*Frame) error { return nil })
	}

	e := &Engine{
		cfg:     cfg,
		cam:     camera.NewController(cfg.Camera),
		reg:     scene.NewRegistry(cfg.Scene),
		drawer:  drawer,
		log:     logging.Discard(),
		flat:    cfg.Flat,
		loading: true,
		port:    geo.Viewport{Width: 80, Height: 24, PixelAspect: 2},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.coord = interact.New(cfg.Interact, e.cam, picker, e.handlers())
	e.coord.SetViewport(e.port)
	return e, nil
}

// handlers wraps the host callbacks with instrumentation.
func (e *Engine) handlers() interact.Handlers {
	h := e.user
	return interact.Handlers{
		OnHoverChange: h.OnHoverChange,
		OnPointSelect: func(p points.GeoPoint) {
			e.metrics.Selection("select")
			e.metrics.FlyTo()
			e.log.Debug("select %s (%s)", p.ID, p.Name)
			if h.OnPointSelect != nil {
				h.OnPointSelect(p)
			}
		},
		OnNavigate: func(p points.GeoPoint) {
			e.metrics.Selection("navigate")
			e.log.Debug("navigate %s", p.ID)
			if h.OnNavigate != nil {
				h.OnNavigate(p)
			}
		},
		OnClusterSelect: func(c cluster.CityCluster) {
			e.metrics.Selection("cluster")
			e.metrics.FlyTo()
			e.log.Debug("cluster %s (%d)", c.Label(), c.Count)
			if h.OnClusterSelect != nil {
				h.OnClusterSelect(c)
			}
		},
	}
}

// Camera exposes the camera controller.
func (e *Engine) Camera() *camera.Controller { return e.cam }

// Registry exposes the point registry.
func (e *Engine) Registry() *scene.Registry { return e.reg }

// Input exposes the interaction coordinator for queuing pointer input.
func (e *Engine) Input() *interact.Coordinator { return e.coord }

// Loading reports whether the engine is waiting for its first snapshot.
func (e *Engine) Loading() bool { return e.loading }

// Err returns the fatal render error, if any.
func (e *Engine) Err() error { return e.fatal }

// Viewport returns the current drawable area.
func (e *Engine) Viewport() geo.Viewport { return e.port }

// SetLoading puts the engine back into the loading state, stopping the loop.
func (e *Engine) SetLoading(loading bool) {
	if loading && !e.loading {
		e.loop.Stop()
	}
	e.loading = loading
}

// SetData replaces the working set. The first snapshot ends the loading
// state, discards input queued before any point existed, and plays the
// intro fly-in.
func (e *Engine) SetData(pts []points.GeoPoint) (kept, dropped int) {
	kept, dropped = e.reg.SetData(pts)
	e.metrics.SetPoints(kept, dropped)
	if dropped > 0 {
		e.log.Warn("dropped %d malformed point records", dropped)
	}
	e.log.Info("%d academics loaded", kept)

	if e.loading {
		e.loading = false
		e.coord.Reset()
		cc := e.cam.Config()
		if e.cfg.IntroDuration > 0 {
			target := e.cam.State()
			target.Elevation, target.Azimuth = cc.InitialLat, cc.InitialLng
			target.Distance = cc.InitialDistance
			e.cam.FlyToState(target, e.cfg.IntroDuration)
		} else {
			e.cam.MarkLoaded()
		}
	}
	return kept, dropped
}

// Resize changes the viewport. Camera state is untouched.
func (e *Engine) Resize(width, height float64) {
	e.port.Width, e.port.Height = width, height
	e.coord.SetViewport(e.port)
}

// SetPixelAspect sets the height of one screen unit relative to its width.
func (e *Engine) SetPixelAspect(pa float64) {
	if pa > 0 {
		e.port.PixelAspect = pa
		e.coord.SetViewport(e.port)
	}
}

// SetFlat switches between the globe and the flat fallback map.
func (e *Engine) SetFlat(flat bool) { e.flat = flat }

// Flat reports whether the flat fallback map is active.
func (e *Engine) Flat() bool { return e.flat }

// Start schedules the render loop and returns the token ticks must carry.
// It refuses while loading or after a fatal error.
func (e *Engine) Start() (uint64, bool) {
	if e.loading || e.fatal != nil {
		return 0, false
	}
	return e.loop.Start(), true
}

// Accept reports whether a tick from the given loop generation may run.
func (e *Engine) Accept(token uint64) bool {
	return e.loop.Accept(token)
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	return e.loop.Running()
}

// Stop cancels the loop and discards in-flight animation, as on teardown.
func (e *Engine) Stop() {
	e.loop.Stop()
	e.cam.Teardown()
	e.coord.Reset()
}

func (e *Engine) projector() geo.Projector {
	if e.flat {
		return e.cam.FlatView(e.port)
	}
	return geo.NewPerspective(e.cam.View(e.port))
}

// Tick runs one frame. It returns false without doing anything when the
// loop is not running.
func (e *Engine) Tick(now time.Time) (Frame, bool) {
	if !e.loop.Running() {
		return Frame{}, false
	}
	start := time.Now()

	// input
	e.coord.HandleInput(now)

	// advance
	e.cam.Advance(now)
	state := e.cam.State()

	// project
	proj := e.projector()
	clustered := cluster.UseClusters(state.Distance, e.cfg.ClusterThreshold)
	var pts []scene.RenderPoint
	if clustered {
		pts = e.reg.RenderClusters(proj)
	} else {
		pts = e.reg.RenderPoints(proj)
	}

	// resolve
	events := e.coord.Resolve(pts)

	e.seq++
	pointer, inView := e.coord.Pointer()
	f := Frame{
		Seq:       e.seq,
		Time:      now,
		Camera:    state,
		Mode:      e.cam.Mode(),
		Viewport:  e.port,
		Projector: proj,
		Flat:      e.flat,
		Clustered: clustered,
		Points:    pts,
		Total:     e.reg.Len(),
		Pointer:   pointer,
		Events:    events,
	}
	if key := e.coord.HoveredKey(); key != "" {
		for i := range pts {
			if pts[i].Key == key {
				h := pts[i]
				f.Hover = &h
				break
			}
		}
	}
	if inView {
		e.metrics.ObservePick(f.Hover != nil)
	}
	if f.Hover != nil {
		size := geo.Vec2{X: 28, Y: 6}
		if ts, ok := e.drawer.(TooltipSizer); ok {
			size = ts.TooltipSize(*f.Hover)
		}
		f.Tooltip = e.coord.Tooltip(size)
	}

	// draw
	if err := e.drawer.Draw(&f); err != nil {
		if errors.Is(err, ErrRenderContext) {
			e.fail(err)
			return f, false
		}
		e.log.Warn("draw: %v", err)
	}
	e.metrics.ObserveFrame(time.Since(start))
	return f, true
}

func (e *Engine) fail(err error) {
	e.loop.Stop()
	e.cam.Teardown()
	if e.fatal != nil {
		return
	}
	e.fatal = err
	e.metrics.RenderContextLost()
	e.log.Error("render loop stopped: %v", err)
	if e.onFatal != nil {
		e.onFatal(err)
	}
}
