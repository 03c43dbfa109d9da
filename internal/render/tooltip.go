package render

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/scene"
)

// TooltipLines returns the tooltip text for a marker: name, organization,
// field and location for an academic, a count for a city cluster.
func TooltipLines(rp scene.RenderPoint) []string {
	if rp.IsCluster() {
		cl := rp.Cluster
		return []string{
			cl.Label(),
			fmt.Sprintf("%d academics", cl.Count),
			"click to zoom in",
		}
	}
	p := rp.Source
	lines := []string{p.Name}
	if p.Name == "" {
		lines[0] = p.ID
	}
	if p.Organization != "" {
		lines = append(lines, p.Organization)
	}
	if p.Field != "" {
		lines = append(lines, p.Field)
	}
	if loc := p.Location(); loc != "" {
		lines = append(lines, loc)
	}
	return append(lines, "click for details")
}

// boxSize returns the outer size of a bordered, padded tooltip.
func boxSize(lines []string) (int, int) {
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	return w + 4, len(lines) + 2
}

// drawTooltip draws a rounded box with its top-left corner at anchor. The
// first line is the title.
func drawTooltip(c *Canvas, anchor geo.Vec2, lines []string) {
	if len(lines) == 0 {
		return
	}
	w, h := boxSize(lines)
	x0 := int(math.Round(anchor.X))
	y0 := int(math.Round(anchor.Y))
	b := lipgloss.RoundedBorder()
	edge := func(s string) rune { return []rune(s)[0] }

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := ' '
			switch {
			case y == 0 && x == 0:
				r = edge(b.TopLeft)
			case y == 0 && x == w-1:
				r = edge(b.TopRight)
			case y == h-1 && x == 0:
				r = edge(b.BottomLeft)
			case y == h-1 && x == w-1:
				r = edge(b.BottomRight)
			case y == 0:
				r = edge(b.Top)
			case y == h-1:
				r = edge(b.Bottom)
			case x == 0:
				r = edge(b.Left)
			case x == w-1:
				r = edge(b.Right)
			}
			c.Set(x0+x, y0+y, r, colorTooltip)
		}
	}
	for i, l := range lines {
		color := lipgloss.Color(colorTooltip)
		if i == 0 {
			color = colorTitle
		}
		c.Text(x0+2, y0+1+i, l, color)
	}
}
