package scene

import (
	"hash/fnv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is the marker color for points without a field.
const DefaultColor = "#16a34a"

// FieldColor returns a stable color for a research field. Every field maps
// to its own hue at fixed chroma and lightness so markers stay legible on a
// dark background.
func FieldColor(field, fallback string) string {
	f := strings.ToLower(strings.TrimSpace(field))
	if f == "" {
		if fallback == "" {
			return DefaultColor
		}
		return fallback
	}
	h := fnv.New32a()
	h.Write([]byte(f))
	hue := float64(h.Sum32()%360) + 0.5
	return colorful.Hcl(hue, 0.45, 0.7).Clamped().Hex()
}

// Highlight blends a marker color toward white for the hovered state.
func Highlight(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	white := colorful.Color{R: 1, G: 1, B: 1}
	return c.BlendLab(white, 0.45).Clamped().Hex()
}

// Dim darkens a color, used for the degraded and fallback views.
func Dim(hex string, amount float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	black := colorful.Color{}
	return c.BlendLab(black, amount).Clamped().Hex()
}
