package ui

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/cluster"
	"github.com/litescript/ls-globe/internal/engine"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/interact"
	"github.com/litescript/ls-globe/internal/points"
	"github.com/litescript/ls-globe/internal/render"
	"github.com/litescript/ls-globe/internal/state"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRe.ReplaceAllString(s, "") }

func academics() []points.GeoPoint {
	return []points.GeoPoint{
		{ID: "1", Name: "Dr. Rahman", Organization: "University of Dhaka", Field: "Physics", City: "Dhaka", Country: "Bangladesh", Lat: 23.81, Lng: 90.41},
		{ID: "2", Name: "Dr. Akter", Organization: "BUET", Field: "Chemistry", City: "Dhaka", Country: "Bangladesh", Lat: 23.73, Lng: 90.39},
		{ID: "3", Name: "Dr. Hossain", Organization: "CU", Field: "Biology", City: "Chittagong", Country: "Bangladesh", Lat: 22.36, Lng: 91.78},
		{ID: "4", Name: "Dr. Smith", Organization: "MIT", Field: "Physics", City: "Boston", Country: "USA", Lat: 42.36, Lng: -71.06},
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("terminal closed") }

// newModel builds a model over a still camera looking at Bangladesh.
func newModel(t *testing.T, opts render.Options) (Model, *engine.Engine, *state.Manager) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Camera.AutoRotate = false
	cfg.Camera.StartDistance = 0
	cfg.Camera.InitialDistance = 3
	cfg.Camera.Damping = 0
	cfg.ClusterThreshold = 0
	cfg.IntroDuration = 0

	rend := render.New(opts)
	eng, err := engine.New(cfg, rend)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	mgr := state.NewManager(state.DefaultConfig())
	return New(mgr, eng, rend, Options{}), eng, mgr
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func snapshotOf(pts []points.GeoPoint, gen uint64) state.Snapshot {
	return state.Snapshot{Generation: gen, Points: pts, Source: "demo"}
}

// loaded returns a model with data applied and the loop running.
func loaded(t *testing.T) (Model, *engine.Engine, *state.Manager) {
	t.Helper()
	m, eng, mgr := newModel(t, render.DefaultOptions())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 43})
	m, cmd := update(t, m, DataUpdateMsg{Snapshot: snapshotOf(academics(), 1)})
	if cmd == nil || !eng.Running() {
		t.Fatal("data should start the render loop")
	}
	return m, eng, mgr
}

// screenOf returns the terminal cell showing a point.
func screenOf(t *testing.T, eng *engine.Engine, id string) (int, int) {
	t.Helper()
	f, ok := eng.Tick(t0)
	if !ok {
		t.Fatal("tick failed")
	}
	for _, rp := range f.Points {
		if rp.Source.ID == id && rp.Visible {
			return int(rp.Screen.X), int(rp.Screen.Y) + headerLines
		}
	}
	t.Fatalf("point %s not visible", id)
	return 0, 0
}

func TestModel_LoadingUntilData(t *testing.T) {
	m, eng, _ := newModel(t, render.DefaultOptions())
	if got := m.View(); got != "Initializing..." {
		t.Errorf("view before size = %q", got)
	}

	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 120, Height: 43})
	if cmd != nil || eng.Running() {
		t.Fatal("loop must not start before data")
	}
	if vp := eng.Viewport(); vp.Width != 120 || vp.Height != 40 {
		t.Errorf("viewport = %+v, want 120x40", vp)
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "Loading academics...") {
		t.Errorf("loading view:\n%s", view)
	}

	// snapshots without data keep the loading state
	m, _ = update(t, m, DataUpdateMsg{Snapshot: state.Snapshot{}})
	if !eng.Loading() {
		t.Fatal("an empty generation must not end loading")
	}

	m, cmd = update(t, m, DataUpdateMsg{Snapshot: snapshotOf(academics(), 1)})
	if cmd == nil || !eng.Running() || m.token == 0 {
		t.Fatal("first data should start the loop")
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "4 academics loaded") {
		t.Errorf("status line missing count:\n%s", view)
	}

	// the same generation again is not reapplied
	_, cmd = update(t, m, DataUpdateMsg{Snapshot: snapshotOf(nil, 1)})
	if cmd != nil || eng.Registry().Len() != 4 {
		t.Errorf("repeated generation replaced data: len %d", eng.Registry().Len())
	}
}

func TestModel_IgnoresInputWhileLoading(t *testing.T) {
	_, refEng, _ := loaded(t)
	x, y := screenOf(t, refEng, "1")

	m, eng, mgr := newModel(t, render.DefaultOptions())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 43})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if m.pointerIn {
		t.Error("pointer should not be tracked on the loading screen")
	}

	m, _ = update(t, m, DataUpdateMsg{Snapshot: snapshotOf(academics(), 1)})
	m, _ = update(t, m, FrameMsg{Token: m.token, Time: t0})
	if m.snapshot.Selected != nil || mgr.Snapshot().Selected != nil {
		t.Errorf("click on the loading screen selected %+v", m.snapshot.Selected)
	}
	if eng.Camera().HasAnimation() {
		t.Error("click on the loading screen started a fly-to")
	}
	if got, want := eng.Camera().State().Distance, refEng.Camera().State().Distance; got != want {
		t.Errorf("distance = %v, want %v (zoom key ignored while loading)", got, want)
	}
}

func TestModel_TickPullsState(t *testing.T) {
	m, eng, mgr := newModel(t, render.DefaultOptions())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	mgr.Update(academics(), 0, "demo", time.Millisecond, nil)
	m, _ = update(t, m, TickMsg(t0))
	if eng.Loading() || eng.Registry().Len() != 4 {
		t.Fatalf("tick should hand state to the engine, len %d", eng.Registry().Len())
	}
	if m.generation != 1 {
		t.Errorf("generation = %d", m.generation)
	}
}

func TestModel_FrameTokens(t *testing.T) {
	m, eng, _ := loaded(t)

	m, cmd := update(t, m, FrameMsg{Token: m.token, Time: t0})
	if cmd == nil {
		t.Fatal("a current frame schedules the next one")
	}
	if eng.Registry().Len() != 4 || m.visible == 0 {
		t.Errorf("visible = %d", m.visible)
	}
	if !strings.Contains(stripANSI(m.View()), "•") {
		t.Error("frame should show markers")
	}

	_, cmd = update(t, m, FrameMsg{Token: m.token + 7, Time: t0})
	if cmd != nil {
		t.Error("a frame from another loop generation must be dropped")
	}
}

func TestModel_ClickSelects(t *testing.T) {
	m, eng, mgr := loaded(t)
	x, y := screenOf(t, eng, "3")

	press := tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	release := tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	m, _ = update(t, m, press)
	m, _ = update(t, m, release)
	m, _ = update(t, m, FrameMsg{Token: m.token, Time: t0.Add(16 * time.Millisecond)})

	snap := mgr.Snapshot()
	if snap.Selected == nil || snap.Selected.ID != "3" {
		t.Fatalf("selected = %+v", snap.Selected)
	}
	if !m.detailOpen() {
		t.Fatal("detail panel should open")
	}
	if vp := eng.Viewport(); vp.Width != 120-detailWidth {
		t.Errorf("globe width = %v, want %d", vp.Width, 120-detailWidth)
	}
	view := stripANSI(m.View())
	for _, want := range []string{"Dr. Hossain", "Organization", "Chittagong, Bangladesh", "esc to close"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail missing %q", want)
		}
	}

	m, _ = update(t, m, FrameMsg{Token: m.token, Time: t0.Add(32 * time.Millisecond)})
	if eng.Camera().Mode() != camera.FlyingTo || m.mode != camera.FlyingTo.String() {
		t.Errorf("selection should start a fly-to, mode %s", m.mode)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.detailOpen() || mgr.Snapshot().Selected != nil {
		t.Error("esc should clear the selection")
	}
	if eng.Viewport().Width != 120 {
		t.Errorf("globe width after close = %v", eng.Viewport().Width)
	}
}

func TestModel_RightClickNavigates(t *testing.T) {
	m, eng, mgr := loaded(t)
	x, y := screenOf(t, eng, "3")

	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	m, _ = update(t, m, FrameMsg{Token: m.token, Time: t0})

	if !strings.Contains(m.statusMsg, "Dr. Hossain (3)") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
	events := mgr.RecentEvents(5)
	if len(events) == 0 || events[len(events)-1].Type != state.EventNavigate {
		t.Errorf("events = %+v", events)
	}
	if mgr.Snapshot().Selected != nil {
		t.Error("navigate must not select")
	}
}

func TestModel_MouseOutsideLeaves(t *testing.T) {
	m, _, _ := loaded(t)
	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionMotion})
	if !m.pointerIn {
		t.Fatal("pointer should be inside the globe")
	}
	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 0, Action: tea.MouseActionMotion})
	if m.pointerIn {
		t.Error("header row is outside the globe")
	}
}

func TestModel_Keys(t *testing.T) {
	m, eng, _ := loaded(t)
	m, _ = update(t, m, FrameMsg{Token: m.token, Time: t0})
	before := eng.Camera().State().Distance

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m, _ = update(t, m, FrameMsg{Token: m.token, Time: t0.Add(16 * time.Millisecond)})
	if d := eng.Camera().State().Distance; d >= before {
		t.Errorf("+ should zoom in: %v -> %v", before, d)
	}

	az := eng.Camera().State().Azimuth
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, FrameMsg{Token: m.token, Time: t0.Add(32 * time.Millisecond)})
	if eng.Camera().State().Azimuth == az {
		t.Error("right arrow should rotate")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !eng.Flat() {
		t.Error("tab should switch to the flat map")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !strings.Contains(stripANSI(m.View()), "toggle flat map") {
		t.Error("? should show help")
	}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
	if eng.Running() {
		t.Error("quit stops the render loop")
	}
}

func TestModel_RenderFailureFallback(t *testing.T) {
	opts := render.DefaultOptions()
	opts.Out = failWriter{}
	m, eng, _ := newModel(t, opts)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, DataUpdateMsg{Snapshot: snapshotOf(academics(), 1)})

	m, cmd := update(t, m, FrameMsg{Token: m.token, Time: t0})
	if cmd != nil {
		t.Error("no frame may be scheduled after the render context is lost")
	}
	if !errors.Is(eng.Err(), engine.ErrRenderContext) {
		t.Fatalf("engine error = %v", eng.Err())
	}
	view := stripANSI(m.View())
	if !strings.Contains(view, "The globe cannot be drawn") || !strings.Contains(view, "Dhaka, Bangladesh") {
		t.Errorf("fallback view:\n%s", view)
	}

	// data after the failure does not restart drawing
	_, cmd = update(t, m, DataUpdateMsg{Snapshot: snapshotOf(academics(), 2)})
	if cmd != nil || eng.Running() {
		t.Error("loop restarted after a fatal error")
	}
}

func TestModel_ErrorMsg(t *testing.T) {
	m, _, _ := loaded(t)
	m, _ = update(t, m, ErrorMsg{Error: errors.New("feed unreachable")})
	if !strings.Contains(stripANSI(m.View()), "ERROR: feed unreachable") {
		t.Error("fetch error should show in the footer")
	}
}

func TestRecordEvents_Cluster(t *testing.T) {
	m, eng, mgr := loaded(t)
	cl := cluster.Cluster(academics())[0]
	m.recordEvents([]interact.Event{{Kind: interact.ClusterSelect, Pointer: geo.Vec2{X: 1, Y: 1}, Cluster: &cl}})

	if m.cluster == nil || m.cluster.Count != 2 {
		t.Fatalf("cluster = %+v", m.cluster)
	}
	if eng.Viewport().Width != 120-detailWidth {
		t.Errorf("panel should shrink the globe, width %v", eng.Viewport().Width)
	}
	view := stripANSI(m.View())
	if !strings.Contains(view, "2 academics") || !strings.Contains(view, "Dr. Akter") {
		t.Errorf("cluster panel:\n%s", view)
	}
	events := mgr.RecentEvents(1)
	if len(events) != 1 || events[0].Type != state.EventCluster || events[0].Count != 2 {
		t.Errorf("events = %+v", events)
	}
}

func TestClusterLines_Truncates(t *testing.T) {
	var members []points.GeoPoint
	for i := 0; i < maxClusterMembers+3; i++ {
		members = append(members, points.GeoPoint{ID: "x", Name: "Dr. X"})
	}
	lines := clusterLines("Dhaka, Bangladesh", len(members), members, 30)
	last := stripANSI(lines[len(lines)-1])
	if last != "… and 3 more" {
		t.Errorf("last line = %q", last)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Dhaka", 10, "Dhaka"},
		{"Bangladesh University", 8, "Banglad…"},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		if got := clip(tt.in, tt.width); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestRenderTitle(t *testing.T) {
	if got := stripANSI(renderTitle("LS-GLOBE")); got != " LS-GLOBE" {
		t.Errorf("title = %q", got)
	}
}
