package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveFrame(time.Millisecond)
	m.ObservePick(true)
	m.FlyTo()
	m.Selection("select")
	m.SetPoints(3, 1)
	m.RenderContextLost()
	m.ObserveFetch(time.Second, errors.New("boom"))
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveFrame(2 * time.Millisecond)
	m.ObserveFrame(3 * time.Millisecond)
	m.ObservePick(true)
	m.ObservePick(false)
	m.ObservePick(false)
	m.FlyTo()
	m.Selection("navigate")
	m.SetPoints(40, 2)
	m.SetPoints(38, 1)
	m.ObserveFetch(time.Second, errors.New("timeout"))
	m.ObserveFetch(time.Second, nil)

	if got := testutil.ToFloat64(m.framesTotal); got != 2 {
		t.Errorf("frames_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.picksTotal.WithLabelValues("miss")); got != 2 {
		t.Errorf("picks_total{miss} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.points); got != 38 {
		t.Errorf("points = %v, want 38", got)
	}
	if got := testutil.ToFloat64(m.droppedPoints); got != 3 {
		t.Errorf("dropped_points_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.fetchErrors); got != 1 {
		t.Errorf("fetch_errors_total = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.FlyTo()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "lsglobe_camera_flyto_total 1") {
		t.Errorf("metrics output missing flyto counter:\n%s", body)
	}
}
