package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Star is a background star placed on a distant sphere around the globe.
type Star struct {
	Name   string
	RAdeg  float64 // right ascension, J2000
	DecDeg float64 // declination, J2000
	Mag    float64 // visual magnitude, lower is brighter
}

// StarCatalog is the backdrop drawn behind the globe.
type StarCatalog struct {
	Stars []Star
}

// DefaultStarCatalog returns the bright-star backdrop, brightest first.
func DefaultStarCatalog() StarCatalog {
	return StarCatalog{Stars: brightStars}
}

// starRadius is the distance of the star sphere in globe radii. It stays
// inside the camera's far plane.
const starRadius = 40

var brightStars = []Star{
	{"Sirius", 101.287, -16.716, -1.46},
	{"Canopus", 95.988, -52.696, -0.74},
	{"Arcturus", 213.915, 19.182, -0.05},
	{"Vega", 279.235, 38.784, 0.03},
	{"Capella", 79.172, 45.998, 0.08},
	{"Rigel", 78.634, -8.202, 0.13},
	{"Procyon", 114.826, 5.225, 0.34},
	{"Achernar", 24.429, -57.237, 0.46},
	{"Betelgeuse", 88.793, 7.407, 0.50},
	{"Hadar", 210.956, -60.373, 0.61},
	{"Altair", 297.696, 8.868, 0.76},
	{"Acrux", 186.650, -63.099, 0.76},
	{"Aldebaran", 68.980, 16.509, 0.85},
	{"Antares", 247.352, -26.432, 0.96},
	{"Spica", 201.298, -11.161, 0.97},
	{"Pollux", 116.329, 28.026, 1.14},
	{"Fomalhaut", 344.413, -29.622, 1.16},
	{"Deneb", 310.358, 45.280, 1.25},
	{"Mimosa", 191.930, -59.689, 1.25},
	{"Regulus", 152.093, 11.967, 1.35},
	{"Adhara", 104.656, -28.972, 1.50},
	{"Castor", 113.650, 31.889, 1.58},
	{"Shaula", 263.402, -37.104, 1.63},
	{"Bellatrix", 81.283, 6.350, 1.64},
	{"Elnath", 81.573, 28.608, 1.65},
	{"Miaplacidus", 138.300, -69.717, 1.68},
	{"Alnilam", 84.053, -1.202, 1.69},
	{"Alnair", 332.058, -46.961, 1.74},
	{"Alioth", 193.507, 55.960, 1.77},
	{"Dubhe", 165.932, 61.751, 1.79},
	{"Mirfak", 51.081, 49.861, 1.79},
	{"Wezen", 107.098, -26.393, 1.84},
	{"Alkaid", 206.885, 49.313, 1.86},
	{"Peacock", 306.412, -56.735, 1.94},
	{"Polaris", 37.954, 89.264, 2.02},
	{"Alphard", 141.897, -8.659, 2.00},
	{"Hamal", 31.793, 23.463, 2.00},
	{"Nunki", 283.816, -26.297, 2.02},
	{"Alpheratz", 2.097, 29.091, 2.06},
	{"Kochab", 222.676, 74.156, 2.08},
	{"Algol", 47.042, 40.957, 2.12},
	{"Denebola", 177.265, 14.572, 2.13},
	{"Schedar", 10.127, 56.537, 2.23},
	{"Eltanin", 269.152, 51.489, 2.23},
	{"Enif", 326.046, 9.875, 2.39},
	{"Markab", 346.190, 15.205, 2.49},
	{"Alderamin", 319.645, 62.586, 2.51},
	{"Sheratan", 28.660, 20.808, 2.64},
	{"Tarazed", 296.565, 10.613, 2.72},
	{"Cor Caroli", 194.007, 38.318, 2.81},
	{"Alcyone", 56.871, 24.105, 2.87},
	{"Sadalsuud", 322.890, -5.571, 2.91},
	{"Albireo", 292.680, 27.960, 3.18},
	{"Megrez", 183.857, 57.033, 3.31},
	{"Thuban", 211.097, 64.376, 3.65},
	{"Furud", 95.078, -30.063, 3.96},
	{"Alcor", 201.306, 54.988, 3.99},
}

// starGlyph picks a glyph and color by magnitude so bright stars stand out
// without competing with markers.
func starGlyph(mag float64) (rune, lipgloss.Color) {
	switch {
	case mag < 1.5:
		return '✶', "255"
	case mag < 3.0:
		return '·', "248"
	default:
		return '·', "240"
	}
}
