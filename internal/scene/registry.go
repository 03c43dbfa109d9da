// Package scene owns the working point set and derives the per-frame
// render primitives the picker and renderer consume.
package scene

import (
	"github.com/litescript/ls-globe/internal/cluster"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/points"
)

// Config controls how points are turned into markers.
type Config struct {
	// Altitude is the marker radius relative to the globe surface.
	Altitude float64
	// Radius is the marker radius in screen units.
	Radius float64
	// ClusterRadius is the base radius for multi-member clusters.
	ClusterRadius float64
	// DefaultColor is used for points without a field.
	DefaultColor string
}

// DefaultConfig returns the standard marker settings.
func DefaultConfig() Config {
	return Config{
		Altitude:      1.01,
		Radius:        0.5,
		ClusterRadius: 1,
		DefaultColor:  DefaultColor,
	}
}

// RenderPoint is one marker for the current frame. Slices of RenderPoint
// are rebuilt every frame and must not be retained across frames.
type RenderPoint struct {
	Index    int    // position in the registry order
	Key      string // stable across frames
	Position geo.Vec3
	Screen   geo.Vec2
	// Visible is false when the marker is occluded, behind the camera or
	// off screen. Invisible markers are never picked.
	Visible bool
	Radius  float64
	Color   string
	Source  points.GeoPoint
	// Cluster is set when the marker aggregates a city.
	Cluster *cluster.CityCluster
}

// IsCluster reports whether the marker aggregates several points.
func (rp RenderPoint) IsCluster() bool {
	return rp.Cluster != nil && rp.Cluster.Count > 1
}

// Count returns the number of points the marker represents.
func (rp RenderPoint) Count() int {
	if rp.Cluster != nil {
		return rp.Cluster.Count
	}
	return 1
}

// Registry holds the working point set. It is owned by a single goroutine.
type Registry struct {
	cfg     Config
	points  []points.GeoPoint
	dropped int

	dirty     bool
	positions []geo.Vec3
	colors    []string
	clusters  []cluster.CityCluster
	clusterCl []string
	clusterPs []geo.Vec3
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	def := DefaultConfig()
	if cfg.Altitude <= 0 {
		cfg.Altitude = def.Altitude
	}
	if cfg.Radius <= 0 {
		cfg.Radius = def.Radius
	}
	if cfg.ClusterRadius <= 0 {
		cfg.ClusterRadius = def.ClusterRadius
	}
	if cfg.DefaultColor == "" {
		cfg.DefaultColor = def.DefaultColor
	}
	return &Registry{cfg: cfg}
}

// SetData replaces the working set. Malformed points are dropped; a nil
// slice empties the registry. Derived data is rebuilt on next use.
func (r *Registry) SetData(pts []points.GeoPoint) (kept, dropped int) {
	r.points, r.dropped = points.Sanitize(pts)
	r.dirty = true
	return len(r.points), r.dropped
}

// Len returns the number of points in the working set.
func (r *Registry) Len() int {
	return len(r.points)
}

// Dropped returns how many records the last SetData rejected.
func (r *Registry) Dropped() int {
	return r.dropped
}

// Points returns a copy of the working set.
func (r *Registry) Points() []points.GeoPoint {
	out := make([]points.GeoPoint, len(r.points))
	copy(out, r.points)
	return out
}

// Clusters returns the city clusters for the working set.
func (r *Registry) Clusters() []cluster.CityCluster {
	r.derive()
	return r.clusters
}

func (r *Registry) derive() {
	if !r.dirty && r.positions != nil {
		return
	}
	r.positions = make([]geo.Vec3, len(r.points))
	r.colors = make([]string, len(r.points))
	for i, p := range r.points {
		r.positions[i] = geo.GeodeticToCartesian(p.Lat, p.Lng, r.cfg.Altitude)
		r.colors[i] = FieldColor(p.Field, r.cfg.DefaultColor)
	}

	r.clusters = cluster.Cluster(r.points)
	r.clusterPs = make([]geo.Vec3, len(r.clusters))
	r.clusterCl = make([]string, len(r.clusters))
	for i, c := range r.clusters {
		r.clusterPs[i] = c.Position.Scale(r.cfg.Altitude)
		r.clusterCl[i] = FieldColor(majorityField(c.Members), r.cfg.DefaultColor)
	}
	r.dirty = false
}

// RenderPoints projects every point for the current frame.
func (r *Registry) RenderPoints(proj geo.Projector) []RenderPoint {
	r.derive()
	out := make([]RenderPoint, len(r.points))
	for i, p := range r.points {
		rp := RenderPoint{
			Index:    i,
			Key:      "pt:" + p.ID,
			Position: r.positions[i],
			Radius:   r.cfg.Radius,
			Color:    r.colors[i],
			Source:   p,
		}
		rp.Screen, rp.Visible = project(proj, rp.Position)
		out[i] = rp
	}
	return out
}

// RenderClusters projects one marker per city cluster. Single-member
// clusters keep their point's key so hover state survives the switch
// between granularities.
func (r *Registry) RenderClusters(proj geo.Projector) []RenderPoint {
	r.derive()
	out := make([]RenderPoint, len(r.clusters))
	for i := range r.clusters {
		c := &r.clusters[i]
		rp := RenderPoint{
			Index:    i,
			Key:      c.Key.String(),
			Position: r.clusterPs[i],
			Radius:   clusterRadius(r.cfg, c.Count),
			Color:    r.clusterCl[i],
			Source:   c.Members[0],
			Cluster:  c,
		}
		if c.Count == 1 {
			rp.Key = "pt:" + c.Members[0].ID
			rp.Radius = r.cfg.Radius
		}
		rp.Screen, rp.Visible = project(proj, rp.Position)
		out[i] = rp
	}
	return out
}

func project(proj geo.Projector, pos geo.Vec3) (geo.Vec2, bool) {
	if proj == nil || proj.Occludes(pos) {
		return geo.Vec2{}, false
	}
	return proj.Project(pos)
}

func clusterRadius(cfg Config, count int) float64 {
	switch {
	case count >= 20:
		return cfg.ClusterRadius * 2
	case count >= 5:
		return cfg.ClusterRadius * 1.5
	default:
		return cfg.ClusterRadius
	}
}

func majorityField(members []points.GeoPoint) string {
	counts := make(map[string]int, len(members))
	best, bestN := "", 0
	for _, m := range members {
		counts[m.Field]++
		if n := counts[m.Field]; n > bestN {
			best, bestN = m.Field, n
		}
	}
	return best
}
