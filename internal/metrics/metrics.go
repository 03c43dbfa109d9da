// Package metrics exposes Prometheus instrumentation for the globe engine
// and its data feed. A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lsglobe"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	framesTotal   prometheus.Counter
	frameDuration prometheus.Histogram
	picksTotal    *prometheus.CounterVec
	flyToTotal    prometheus.Counter
	selections    *prometheus.CounterVec
	points        prometheus.Gauge
	droppedPoints prometheus.Counter
	fatalTotal    prometheus.Counter

	fetchDuration prometheus.Histogram
	fetchErrors   prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		framesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "frames_total",
			Help:      "Total frames rendered",
		}),
		frameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "frame_duration_seconds",
			Help:      "Time spent producing one frame",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		picksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "picks_total",
			Help:      "Hover and click picks by outcome",
		}, []string{"result"}),
		flyToTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "camera",
			Name:      "flyto_total",
			Help:      "Fly-to animations requested",
		}),
		selections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "selections_total",
			Help:      "Selection events by kind",
		}, []string{"kind"}),
		points: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "points",
			Help:      "Points in the current working set",
		}),
		droppedPoints: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "dropped_points_total",
			Help:      "Malformed point records dropped",
		}),
		fatalTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "render_context_failures_total",
			Help:      "Render loops stopped by a lost render context",
		}),
		fetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of point snapshot fetches",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}),
		fetchErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_errors_total",
			Help:      "Failed point snapshot fetches",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// ObserveFrame records one rendered frame.
func (m *Metrics) ObserveFrame(d time.Duration) {
	if m == nil {
		return
	}
	m.framesTotal.Inc()
	m.frameDuration.Observe(d.Seconds())
}

// ObservePick records a pick outcome.
func (m *Metrics) ObservePick(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.picksTotal.WithLabelValues(result).Inc()
}

// FlyTo records a fly-to request.
func (m *Metrics) FlyTo() {
	if m == nil {
		return
	}
	m.flyToTotal.Inc()
}

// Selection records a selection event of the given kind.
func (m *Metrics) Selection(kind string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(kind).Inc()
}

// SetPoints records the size of the working set and any dropped records.
func (m *Metrics) SetPoints(kept, dropped int) {
	if m == nil {
		return
	}
	m.points.Set(float64(kept))
	m.droppedPoints.Add(float64(dropped))
}

// RenderContextLost records a fatal render failure.
func (m *Metrics) RenderContextLost() {
	if m == nil {
		return
	}
	m.fatalTotal.Inc()
}

// ObserveFetch records a feed fetch.
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
	if err != nil {
		m.fetchErrors.Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
