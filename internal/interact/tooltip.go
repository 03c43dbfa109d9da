package interact

import (
	"github.com/litescript/ls-globe/internal/geo"
)

// PlaceTooltip returns the top-left corner for a tooltip of size box shown
// next to pointer. The box is shifted so it stays inside the viewport; a
// box larger than the viewport is pinned to the top-left.
func PlaceTooltip(pointer, offset, box geo.Vec2, vp geo.Viewport) geo.Vec2 {
	p := pointer.Add(offset)
	if p.X+box.X > vp.Width {
		p.X = vp.Width - box.X
	}
	if p.Y+box.Y > vp.Height {
		p.Y = vp.Height - box.Y
	}
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	return p
}

// Tooltip returns the tooltip anchor for the current pointer using the
// configured offset.
func (c *Coordinator) Tooltip(box geo.Vec2) geo.Vec2 {
	return PlaceTooltip(c.pointer, c.cfg.TooltipOffset, box, c.port)
}
