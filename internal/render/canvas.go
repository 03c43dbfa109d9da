// Package render rasterizes engine frames onto a terminal character grid.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colorBackground = "236"

// Canvas is a fixed-size grid of runes with a foreground color per cell.
type Canvas struct {
	width  int
	height int
	cells  [][]rune
	colors [][]lipgloss.Color
}

// NewCanvas creates a blank canvas. Negative sizes yield an empty canvas.
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &Canvas{width: width, height: height}
	c.cells = make([][]rune, height)
	c.colors = make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		c.cells[y] = make([]rune, width)
		c.colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			c.cells[y][x] = ' '
			c.colors[y][x] = colorBackground
		}
	}
	return c
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// Set writes a rune. Out-of-bounds writes are ignored.
func (c *Canvas) Set(x, y int, r rune, color lipgloss.Color) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x] = r
	c.colors[y][x] = color
}

// At returns the rune at a cell, or 0 when out of bounds.
func (c *Canvas) At(x, y int) rune {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0
	}
	return c.cells[y][x]
}

// ColorAt returns the color of a cell.
func (c *Canvas) ColorAt(x, y int) lipgloss.Color {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return ""
	}
	return c.colors[y][x]
}

// Text writes s starting at (x, y), clipped to the canvas.
func (c *Canvas) Text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		c.Set(x+i, y, r, color)
	}
}

// String renders the canvas with colors. Runs of cells sharing a color are
// styled together.
func (c *Canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		start := 0
		for x := 1; x <= c.width; x++ {
			if x < c.width && c.colors[y][x] == c.colors[y][start] {
				continue
			}
			style := lipgloss.NewStyle().Foreground(c.colors[y][start])
			b.WriteString(style.Render(string(c.cells[y][start:x])))
			start = x
		}
		if y < c.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Plain renders the canvas without styling, with trailing spaces trimmed.
func (c *Canvas) Plain() string {
	lines := make([]string, c.height)
	for y := 0; y < c.height; y++ {
		lines[y] = strings.TrimRight(string(c.cells[y]), " ")
	}
	return strings.Join(lines, "\n")
}
