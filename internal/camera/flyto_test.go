package camera

import (
	"math"
	"testing"
	"time"
)

func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.5, 0.875},
		{1, 1},
	}
	for _, tt := range tests {
		if got := EaseOutCubic(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EaseOutCubic(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFlyTo_DistanceEasing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDistance = 100
	cfg.MaxDistance = 1000
	cfg.InitialDistance = 600
	cfg.AutoRotate = false
	c := NewController(cfg)

	end := c.State()
	end.Distance = 200
	c.FlyToState(end, time.Second)

	c.Advance(t0)
	if d := c.State().Distance; math.Abs(d-600) > 1e-9 {
		t.Fatalf("distance at elapsed=0 is %v, want 600", d)
	}

	prev := 600.0
	for ms := 50; ms <= 1000; ms += 50 {
		c.Advance(t0.Add(time.Duration(ms) * time.Millisecond))
		d := c.State().Distance
		if d > prev+1e-9 {
			t.Fatalf("distance increased at %dms: %v > %v", ms, d, prev)
		}
		if d < 200-1e-9 || d > 600+1e-9 {
			t.Fatalf("distance overshoot at %dms: %v", ms, d)
		}
		prev = d
	}
	if math.Abs(prev-200) > 1e-9 {
		t.Errorf("distance at elapsed=1000 is %v, want 200", prev)
	}
	if c.HasAnimation() || c.Mode() != Idle {
		t.Errorf("after completion: animation=%v mode=%v", c.HasAnimation(), c.Mode())
	}
}

func TestFlyTo_LatestWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoRotate = false
	c := NewController(cfg)

	c.FlyTo(10, 20, time.Second)
	c.FlyTo(-30, 140, time.Second)

	a, ok := c.Animation()
	if !ok {
		t.Fatal("expected an active animation")
	}
	if a.End.Elevation != -30 || a.End.Azimuth != 140 {
		t.Errorf("active animation ends at (%v, %v), want (-30, 140)", a.End.Elevation, a.End.Azimuth)
	}

	c.Advance(t0)
	c.Advance(t0.Add(1500 * time.Millisecond))
	c.Advance(t0.Add(2 * time.Second))
	s := c.State()
	if math.Abs(s.Elevation+30) > 1e-9 || math.Abs(s.Azimuth-140) > 1e-9 {
		t.Errorf("camera settled at (%v, %v), want (-30, 140)", s.Elevation, s.Azimuth)
	}
}

func TestFlyTo_ShortestArc(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialLng = 170
	cfg.AutoRotate = false
	c := NewController(cfg)

	c.FlyTo(0, -170, time.Second)
	c.Advance(t0)
	for ms := 100; ms <= 1000; ms += 100 {
		c.Advance(t0.Add(time.Duration(ms) * time.Millisecond))
		az := c.State().Azimuth
		if az > -170 && az < 170 {
			t.Fatalf("azimuth %v crossed the long way round", az)
		}
	}
}

func TestFlyTo_DragCancels(t *testing.T) {
	c := NewController(DefaultConfig())
	c.FlyTo(0, 0, time.Second)
	c.Advance(t0)
	c.Advance(t0.Add(200 * time.Millisecond))
	mid := c.State()

	c.BeginDrag()
	if c.HasAnimation() {
		t.Fatal("drag must discard the fly-to")
	}
	c.EndDrag()
	c.Advance(t0.Add(2 * time.Second))
	if c.State().Azimuth != mid.Azimuth || c.State().Elevation != mid.Elevation {
		t.Error("cancelled fly-to must not resume")
	}
}

func TestFlyTo_ZoomRetargets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoRotate = false
	c := NewController(cfg)

	c.FlyTo(0, 0, time.Second)
	c.Zoom(1)
	a, _ := c.Animation()
	want := cfg.InitialDistance / (1 + cfg.ZoomStep)
	if math.Abs(a.End.Distance-want) > 1e-9 {
		t.Errorf("end distance = %v, want %v", a.End.Distance, want)
	}

	c.Advance(t0)
	c.Advance(t0.Add(time.Second))
	if math.Abs(c.State().Distance-want) > 1e-9 {
		t.Errorf("settled distance = %v, want %v", c.State().Distance, want)
	}
}

func TestFlyTo_ResumesRotationWithoutInteraction(t *testing.T) {
	c := NewController(DefaultConfig())
	c.FlyTo(10, 10, 100*time.Millisecond)
	c.Advance(t0)
	c.Advance(t0.Add(200 * time.Millisecond))
	if c.Mode() != AutoRotating {
		t.Errorf("intro fly-to should hand over to auto-rotate, mode = %v", c.Mode())
	}
}

func TestFlyTo_ZeroDurationJumps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoRotate = false
	c := NewController(cfg)
	c.FlyTo(45, -60, 0)
	c.Advance(t0)
	s := c.State()
	if s.Elevation != 45 || s.Azimuth != -60 || c.HasAnimation() {
		t.Errorf("zero-duration fly-to left state %+v, animation %v", s, c.HasAnimation())
	}
}

func TestFlyTo_InvalidTargetIgnored(t *testing.T) {
	c := NewController(DefaultConfig())
	c.FlyTo(math.NaN(), 0, time.Second)
	if c.HasAnimation() {
		t.Error("NaN target should be ignored")
	}
}
