// Package cluster groups points that share a city into aggregate markers.
package cluster

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/points"
)

// Key identifies a city cluster. Points without a city or country get a
// singleton key carrying their own ID.
type Key struct {
	City    string
	Country string
	PointID string
}

// String returns a stable identifier for the key. City and country are
// quoted so no pair of names can produce the same identifier.
func (k Key) String() string {
	if k.PointID != "" {
		return "pt:" + k.PointID
	}
	return "city:" + strconv.Quote(k.City) + "," + strconv.Quote(k.Country)
}

// CityCluster aggregates every point sharing a (city, country) pair.
type CityCluster struct {
	Key      Key
	Position geo.Vec3 // unit sphere
	Members  []points.GeoPoint
	Count    int
	first    int // index of first member in input order
}

// Label returns the display name, using the first member's spelling.
func (c CityCluster) Label() string {
	if len(c.Members) == 0 {
		return ""
	}
	if c.Key.PointID != "" {
		return c.Members[0].Name
	}
	return c.Members[0].Location()
}

// Lat returns the latitude of the cluster center.
func (c CityCluster) Lat() float64 {
	lat, _ := geo.CartesianToGeodetic(c.Position)
	return lat
}

// Lng returns the longitude of the cluster center.
func (c CityCluster) Lng() float64 {
	_, lng := geo.CartesianToGeodetic(c.Position)
	return lng
}

// KeyFor returns the cluster key for a point.
func KeyFor(p points.GeoPoint) Key {
	city := strings.ToLower(strings.TrimSpace(p.City))
	country := strings.ToLower(strings.TrimSpace(p.Country))
	if city == "" || country == "" {
		return Key{PointID: p.ID}
	}
	return Key{City: city, Country: country}
}

// Cluster groups points by city in a single pass. Clusters are ordered by
// descending member count, ties by first appearance in pts. Every point
// lands in exactly one cluster.
func Cluster(pts []points.GeoPoint) []CityCluster {
	if len(pts) == 0 {
		return nil
	}

	index := make(map[Key]int, len(pts))
	sums := make([]geo.Vec3, 0, len(pts))
	clusters := make([]CityCluster, 0, len(pts))

	for i, p := range pts {
		k := KeyFor(p)
		pos := geo.GeodeticToCartesian(p.Lat, p.Lng, 1)
		ci, ok := index[k]
		if !ok {
			ci = len(clusters)
			index[k] = ci
			clusters = append(clusters, CityCluster{Key: k, first: i})
			sums = append(sums, geo.Vec3{})
		}
		c := &clusters[ci]
		c.Members = append(c.Members, p)
		c.Count++
		sums[ci] = sums[ci].Add(pos)
	}

	for i := range clusters {
		c := &clusters[i]
		if sums[i].Norm() > 1e-6*float64(c.Count) {
			c.Position = sums[i].Normalized()
		} else {
			// Antipodal members cancel out; fall back to the first one.
			m := c.Members[0]
			c.Position = geo.GeodeticToCartesian(m.Lat, m.Lng, 1)
		}
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].first < clusters[j].first
	})
	return clusters
}

// UseClusters reports whether the camera is far enough out that rendering
// and picking should operate on clusters instead of individual points.
func UseClusters(distance, threshold float64) bool {
	return threshold > 0 && distance > threshold
}

// Summary returns one line per cluster, largest first.
func Summary(clusters []CityCluster) []string {
	lines := make([]string, 0, len(clusters))
	for _, c := range clusters {
		lines = append(lines, fmt.Sprintf("%4d  %s", c.Count, c.Label()))
	}
	return lines
}
