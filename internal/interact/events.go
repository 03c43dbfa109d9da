// Package interact turns raw pointer input into camera motion, hover state
// and selection events.
package interact

import (
	"github.com/litescript/ls-globe/internal/cluster"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/points"
	"github.com/litescript/ls-globe/internal/scene"
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	HoverChange EventKind = iota
	PointSelect
	ClusterSelect
	Navigate
)

func (k EventKind) String() string {
	switch k {
	case HoverChange:
		return "hover"
	case PointSelect:
		return "select"
	case ClusterSelect:
		return "cluster"
	case Navigate:
		return "navigate"
	default:
		return "unknown"
	}
}

// Event is one outcome of a frame's interaction pass.
type Event struct {
	Kind    EventKind
	Pointer geo.Vec2
	// Hover is the newly hovered marker, nil when hover ended. It is a copy
	// and safe to keep.
	Hover   *scene.RenderPoint
	Point   points.GeoPoint
	Cluster *cluster.CityCluster
}

// Handlers are the host callbacks. Any of them may be nil.
type Handlers struct {
	OnHoverChange   func(rp *scene.RenderPoint, pointer geo.Vec2)
	OnPointSelect   func(p points.GeoPoint)
	OnNavigate      func(p points.GeoPoint)
	OnClusterSelect func(c cluster.CityCluster)
}

func (h Handlers) dispatch(ev Event) {
	switch ev.Kind {
	case HoverChange:
		if h.OnHoverChange != nil {
			h.OnHoverChange(ev.Hover, ev.Pointer)
		}
	case PointSelect:
		if h.OnPointSelect != nil {
			h.OnPointSelect(ev.Point)
		}
	case Navigate:
		if h.OnNavigate != nil {
			h.OnNavigate(ev.Point)
		}
	case ClusterSelect:
		if h.OnClusterSelect != nil && ev.Cluster != nil {
			h.OnClusterSelect(*ev.Cluster)
		}
	}
}
