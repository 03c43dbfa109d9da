package render

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-globe/internal/engine"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/scene"
)

// Marker glyphs
const (
	glyphPoint        = '•'
	glyphCluster      = '●'
	glyphLargeCluster = '◉'
	glyphHover        = '◆'
	glyphGraticule    = '·'
	glyphLimb         = '·'
)

const (
	colorLimb      = "60"
	colorGraticule = "238"
	colorNight     = "235"
	colorLabel     = "250"
	colorTooltip   = "#d0c8ff"
	colorTitle     = "229"
)

// Options controls what the renderer draws.
type Options struct {
	Stars     bool
	Graticule bool
	// Daylight dims graticule dots on the night side, using the frame time.
	Daylight bool
	// Counts prints member counts next to city clusters.
	Counts bool
	// Plain disables ANSI styling of written frames.
	Plain bool
	// Out receives every frame when set, as in headless mode. A failed
	// write loses the render context.
	Out io.Writer
}

// DefaultOptions returns the interactive defaults.
func DefaultOptions() Options {
	return Options{Stars: true, Graticule: true, Daylight: true, Counts: true}
}

// Renderer draws engine frames. It implements engine.Drawer and
// engine.TooltipSizer.
type Renderer struct {
	opts  Options
	stars StarCatalog
	last  *Canvas
}

// New creates a renderer.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts, stars: DefaultStarCatalog()}
}

// Draw implements engine.Drawer.
func (r *Renderer) Draw(f *engine.Frame) error {
	r.last = r.Render(f)
	if r.opts.Out == nil {
		return nil
	}
	if _, err := io.WriteString(r.opts.Out, r.frameString()+"\n"); err != nil {
		return fmt.Errorf("write frame: %w: %w", engine.ErrRenderContext, err)
	}
	return nil
}

// View returns the most recent frame as a string, empty before the first
// draw.
func (r *Renderer) View() string {
	if r.last == nil {
		return ""
	}
	return r.frameString()
}

// Last returns the most recent canvas, or nil.
func (r *Renderer) Last() *Canvas {
	return r.last
}

func (r *Renderer) frameString() string {
	if r.opts.Plain {
		return r.last.Plain()
	}
	return r.last.String()
}

// Render rasterizes a frame onto a new canvas.
func (r *Renderer) Render(f *engine.Frame) *Canvas {
	c := NewCanvas(int(f.Viewport.Width), int(f.Viewport.Height))
	if f.Projector == nil {
		return c
	}

	if p, ok := f.Projector.(geo.Perspective); ok {
		if r.opts.Stars {
			r.drawStars(c, p)
		}
		drawLimb(c, p)
	}
	if r.opts.Graticule {
		var night func(lat, lng float64) bool
		if r.opts.Daylight && !f.Time.IsZero() {
			night = nightSide(f.Time)
		}
		drawGraticule(c, f.Projector, night)
	}

	hoverKey := ""
	if f.Hover != nil {
		hoverKey = f.Hover.Key
	}
	for i := range f.Points {
		rp := &f.Points[i]
		if !rp.Visible || rp.Key == hoverKey {
			continue
		}
		r.drawMarker(c, rp, false)
	}
	if f.Hover != nil {
		r.drawMarker(c, f.Hover, true)
		drawTooltip(c, f.Tooltip, TooltipLines(*f.Hover))
	}
	return c
}

// TooltipSize implements engine.TooltipSizer.
func (r *Renderer) TooltipSize(rp scene.RenderPoint) geo.Vec2 {
	w, h := boxSize(TooltipLines(rp))
	return geo.Vec2{X: float64(w), Y: float64(h)}
}

func (r *Renderer) drawStars(c *Canvas, p geo.Perspective) {
	for _, s := range r.stars.Stars {
		pos := geo.GeodeticToCartesian(s.DecDeg, s.RAdeg, starRadius)
		sp, ok := p.Project(pos)
		if !ok {
			continue
		}
		x, y := cellOf(c, sp)
		g, color := starGlyph(s.Mag)
		c.Set(x, y, g, color)
	}
}

// drawLimb clears the globe's disc, hiding stars behind it, and traces its
// outline.
func drawLimb(c *Canvas, p geo.Perspective) {
	center, rx, ry, ok := p.Limb()
	if !ok || rx <= 0 || ry <= 0 {
		return
	}
	w, h := c.Size()
	for y := 0; y < h; y++ {
		dy := (float64(y) + 0.5 - center.Y) / ry
		if dy*dy > 1 {
			continue
		}
		for x := 0; x < w; x++ {
			dx := (float64(x) + 0.5 - center.X) / rx
			if dx*dx+dy*dy <= 1 {
				c.Set(x, y, ' ', colorBackground)
			}
		}
	}

	steps := int(4*math.Pi*math.Max(rx, ry)) + 16
	for i := 0; i < steps; i++ {
		th := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Floor(center.X + rx*math.Cos(th)))
		y := int(math.Floor(center.Y + ry*math.Sin(th)))
		c.Set(x, y, glyphLimb, colorLimb)
	}
}

// nightSide returns a test for locations where the Sun is down at t.
func nightSide(t time.Time) func(lat, lng float64) bool {
	slat, slng := geo.SubsolarPoint(t)
	return func(lat, lng float64) bool {
		return geo.AngularDistance(lat, lng, slat, slng) >= 90
	}
}

// drawGraticule draws parallels and meridians every 30 degrees on the
// visible hemisphere. Dots where night reports true are dimmed.
func drawGraticule(c *Canvas, proj geo.Projector, night func(lat, lng float64) bool) {
	plot := func(lat, lng float64) {
		pos := geo.GeodeticToCartesian(lat, lng, geo.SurfaceRadius)
		if proj.Occludes(pos) {
			return
		}
		sp, ok := proj.Project(pos)
		if !ok {
			return
		}
		x, y := cellOf(c, sp)
		if c.At(x, y) != ' ' {
			return
		}
		var color lipgloss.Color = colorGraticule
		if night != nil && night(lat, lng) {
			color = colorNight
		}
		c.Set(x, y, glyphGraticule, color)
	}
	for lat := -60.0; lat <= 60; lat += 30 {
		for lng := -180.0; lng < 180; lng += 2 {
			plot(lat, lng)
		}
	}
	for lng := -180.0; lng < 180; lng += 30 {
		for lat := -80.0; lat <= 80; lat += 2 {
			plot(lat, lng)
		}
	}
}

func (r *Renderer) drawMarker(c *Canvas, rp *scene.RenderPoint, hovered bool) {
	x, y := cellOf(c, rp.Screen)
	color := lipgloss.Color(rp.Color)
	g := glyphPoint
	switch {
	case hovered:
		g = glyphHover
		color = lipgloss.Color(scene.Highlight(rp.Color))
	case rp.Radius >= 1.5:
		g = glyphLargeCluster
	case rp.IsCluster():
		g = glyphCluster
	}
	c.Set(x, y, g, color)
	if r.opts.Counts && rp.IsCluster() {
		c.Text(x+1, y, fmt.Sprintf("%d", rp.Count()), colorLabel)
	}
}

// cellOf maps a screen position to the cell containing it. Positions on
// the far edge map to the last cell.
func cellOf(c *Canvas, p geo.Vec2) (int, int) {
	w, h := c.Size()
	x := int(math.Floor(p.X))
	y := int(math.Floor(p.Y))
	if x == w {
		x = w - 1
	}
	if y == h {
		y = h - 1
	}
	return x, y
}
