// Package points provides the academic point records shown on the globe.
package points

import (
	"strings"

	"github.com/litescript/ls-globe/internal/geo"
)

// GeoPoint is one visualizable academic. Display fields are opaque to the
// engine and only passed through to tooltips and callbacks.
type GeoPoint struct {
	ID           string
	Lat          float64 // degrees, north positive
	Lng          float64 // degrees, east positive
	Name         string
	Field        string // research field or category
	Organization string // university or institute
	City         string
	Country      string
}

// Location returns "City, Country" with missing parts omitted.
func (p GeoPoint) Location() string {
	switch {
	case p.City != "" && p.Country != "":
		return p.City + ", " + p.Country
	case p.City != "":
		return p.City
	default:
		return p.Country
	}
}

// Normalize validates a point and brings its coordinates into range.
// Points with an empty ID or non-finite coordinates are rejected.
func Normalize(p GeoPoint) (GeoPoint, bool) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return GeoPoint{}, false
	}
	lat, lng, ok := geo.NormalizeLatLng(p.Lat, p.Lng)
	if !ok {
		return GeoPoint{}, false
	}
	p.Lat, p.Lng = lat, lng
	return p, true
}

// Sanitize normalizes every point, dropping malformed ones and duplicate
// IDs (first occurrence wins). The input slice is not modified.
func Sanitize(in []GeoPoint) (out []GeoPoint, dropped int) {
	if len(in) == 0 {
		return nil, 0
	}
	out = make([]GeoPoint, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		np, ok := Normalize(p)
		if !ok || seen[np.ID] {
			dropped++
			continue
		}
		seen[np.ID] = true
		out = append(out, np)
	}
	return out, dropped
}
