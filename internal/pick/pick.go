// Package pick resolves a pointer position to the nearest visible marker.
package pick

import (
	"fmt"
	"math"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/scene"
)

// Picker finds the marker nearest to a pointer. Implementations return the
// nearest visible marker within tolerance screen units (vertical distance
// scaled by pixelAspect), breaking equal distances by slice order.
type Picker interface {
	Pick(pointer geo.Vec2, pts []scene.RenderPoint, tolerance, pixelAspect float64) (scene.RenderPoint, bool)
}

// Linear scans every marker. It is the default; directory sizes are small.
type Linear struct{}

// Pick implements Picker.
func (Linear) Pick(pointer geo.Vec2, pts []scene.RenderPoint, tolerance, pixelAspect float64) (scene.RenderPoint, bool) {
	if tolerance < 0 || !finite(pointer) {
		return scene.RenderPoint{}, false
	}
	limit := tolerance * tolerance
	best := -1
	bestD := math.Inf(1)
	for i := range pts {
		if !pts[i].Visible {
			continue
		}
		d := pointer.DistSq(pts[i].Screen, pixelAspect)
		if d <= limit && d < bestD {
			best, bestD = i, d
		}
	}
	if best < 0 {
		return scene.RenderPoint{}, false
	}
	return pts[best], true
}

// New returns the picker for a configured strategy name.
func New(kind string, cellSize float64) (Picker, error) {
	switch kind {
	case "", "linear":
		return Linear{}, nil
	case "grid":
		return NewGrid(cellSize), nil
	default:
		return nil, fmt.Errorf("unknown picker %q", kind)
	}
}

func finite(p geo.Vec2) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
