package pick

import (
	"math"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/scene"
)

type cell struct{ x, y int }

// Grid buckets visible markers by screen cell. The index is rebuilt when
// a new frame's slice is passed in, so repeated picks against the same
// frame (hover plus clicks) share one build.
type Grid struct {
	size float64

	frame   []scene.RenderPoint
	buckets map[cell][]int
}

// NewGrid creates a grid index with square cells of the given size in
// screen units.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 4
	}
	return &Grid{size: cellSize}
}

func (g *Grid) cellOf(p geo.Vec2) cell {
	return cell{int(math.Floor(p.X / g.size)), int(math.Floor(p.Y / g.size))}
}

func (g *Grid) build(pts []scene.RenderPoint) {
	if sameFrame(g.frame, pts) {
		return
	}
	g.frame = pts
	g.buckets = make(map[cell][]int)
	for i := range pts {
		if !pts[i].Visible {
			continue
		}
		c := g.cellOf(pts[i].Screen)
		g.buckets[c] = append(g.buckets[c], i)
	}
}

// Pick implements Picker.
func (g *Grid) Pick(pointer geo.Vec2, pts []scene.RenderPoint, tolerance, pixelAspect float64) (scene.RenderPoint, bool) {
	if tolerance < 0 || !finite(pointer) || len(pts) == 0 {
		return scene.RenderPoint{}, false
	}
	g.build(pts)

	if pixelAspect <= 0 {
		pixelAspect = 1
	}
	rx := int(math.Ceil(tolerance / g.size))
	ry := int(math.Ceil(tolerance / pixelAspect / g.size))
	center := g.cellOf(pointer)

	limit := tolerance * tolerance
	best := -1
	bestD := math.Inf(1)
	for cy := center.y - ry; cy <= center.y+ry; cy++ {
		for cx := center.x - rx; cx <= center.x+rx; cx++ {
			for _, i := range g.buckets[cell{cx, cy}] {
				d := pointer.DistSq(pts[i].Screen, pixelAspect)
				if d > limit {
					continue
				}
				if d < bestD || (d == bestD && i < best) {
					best, bestD = i, d
				}
			}
		}
	}
	if best < 0 {
		return scene.RenderPoint{}, false
	}
	return pts[best], true
}

// Reset drops the indexed frame. Callers reset at the end of each tick so
// the index never outlives the frame it was built from.
func (g *Grid) Reset() {
	g.frame = nil
	g.buckets = nil
}

// sameFrame reports whether two slices share a backing array and length.
func sameFrame(a, b []scene.RenderPoint) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}
