package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-globe/internal/points"
)

func academics() []points.GeoPoint {
	return []points.GeoPoint{
		{ID: "1", Name: "Dr. Rahman", City: "Dhaka", Country: "Bangladesh", Lat: 23.81, Lng: 90.41},
		{ID: "2", Name: "Dr. Akter", City: "Dhaka", Country: "Bangladesh", Lat: 23.73, Lng: 90.39},
	}
}

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)

	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.RefreshInterval() != cfg.RefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), cfg.RefreshInterval)
	}
	if m.HasData() {
		t.Error("HasData should be false initially")
	}
	if snap := m.Snapshot(); snap.Generation != 0 || !snap.NextRefresh.IsZero() {
		t.Errorf("empty snapshot = %+v", snap)
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(academics(), 3, "demo", 100*time.Millisecond, nil)

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}

	snap := m.Snapshot()
	if len(snap.Points) != 2 || snap.Dropped != 3 || snap.Source != "demo" {
		t.Errorf("snapshot = %d points, %d dropped, source %q", len(snap.Points), snap.Dropped, snap.Source)
	}
	if snap.FetchDuration != 100*time.Millisecond {
		t.Errorf("FetchDuration = %v, want 100ms", snap.FetchDuration)
	}
	if snap.Generation != 1 {
		t.Errorf("Generation = %d, want 1", snap.Generation)
	}
	if got := snap.NextRefresh.Sub(snap.LastFetch); got != DefaultConfig().RefreshInterval {
		t.Errorf("NextRefresh - LastFetch = %v", got)
	}
	if len(snap.Events) != 0 {
		t.Errorf("first load should not produce change events, got %v", snap.Events)
	}
}

func TestManager_UpdateWithErrorKeepsData(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(academics(), 0, "demo", 0, nil)

	fetchErr := errors.New("fetch failed")
	m.Update(nil, 0, "demo", 50*time.Millisecond, fetchErr)

	snap := m.Snapshot()
	if !errors.Is(snap.LastError, fetchErr) {
		t.Errorf("LastError = %v, want %v", snap.LastError, fetchErr)
	}
	if len(snap.Points) != 2 || snap.Generation != 1 {
		t.Errorf("failed fetch should keep previous data: %d points, gen %d", len(snap.Points), snap.Generation)
	}
}

func TestManager_EmptyUpdate(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(nil, 0, "file", 0, nil)
	if !m.HasData() {
		t.Error("an empty directory still counts as data")
	}
	if n := len(m.Snapshot().Points); n != 0 {
		t.Errorf("points = %d", n)
	}
}

func TestManager_ChangeEvents(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(academics(), 0, "demo", 0, nil)

	next := academics()[:1]
	next[0].Lat = 22.36 // moved
	next = append(next, points.GeoPoint{ID: "3", Name: "Dr. Hossain", City: "Chittagong", Country: "Bangladesh"})
	m.Update(next, 0, "demo", 0, nil)

	want := []struct {
		typ EventType
		id  string
	}{
		{EventMoved, "1"},
		{EventAdded, "3"},
		{EventRemoved, "2"},
	}
	events := m.Snapshot().Events
	if len(events) != len(want) {
		t.Fatalf("events = %+v, want %d", events, len(want))
	}
	for i, w := range want {
		if events[i].Type != w.typ || events[i].ID != w.id {
			t.Errorf("event %d = %s %s, want %s %s", i, events[i].Type, events[i].ID, w.typ, w.id)
		}
	}
	if events[1].Location != "Chittagong, Bangladesh" {
		t.Errorf("Location = %q", events[1].Location)
	}
}

func TestManager_Selection(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(academics(), 0, "demo", 0, nil)

	m.Select(academics()[1])
	m.Navigate(academics()[1])
	m.SelectCluster("Dhaka, Bangladesh", 2)

	snap := m.Snapshot()
	if snap.Selected == nil || snap.Selected.ID != "2" {
		t.Fatalf("Selected = %v", snap.Selected)
	}
	snap.Selected.Name = "mutated"
	if m.Snapshot().Selected.Name == "mutated" {
		t.Error("snapshot selection must be a copy")
	}

	types := []EventType{EventSelected, EventNavigate, EventCluster}
	recent := m.RecentEvents(3)
	for i, typ := range types {
		if recent[i].Type != typ {
			t.Errorf("event %d = %s, want %s", i, recent[i].Type, typ)
		}
	}
	if recent[2].Count != 2 {
		t.Errorf("cluster count = %d", recent[2].Count)
	}

	m.ClearSelection()
	if m.Snapshot().Selected != nil {
		t.Error("ClearSelection should forget the selection")
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 3
	m := NewManager(cfg)

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		m.Select(points.GeoPoint{ID: id})
	}

	events := m.Snapshot().Events
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	for i, want := range []string{"c", "d", "e"} {
		if events[i].ID != want {
			t.Errorf("event %d = %s, want %s", i, events[i].ID, want)
		}
	}
	if got := m.RecentEvents(1); len(got) != 1 || got[0].ID != "e" {
		t.Errorf("RecentEvents(1) = %+v", got)
	}
}

func TestManager_CountHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHistoryLen = 3
	m := NewManager(cfg)

	for i := 0; i < 5; i++ {
		m.Update(academics()[:i%2+1], 0, "demo", 0, nil)
	}
	hist := m.CountHistory()
	if len(hist) != 3 {
		t.Fatalf("history length = %d, want 3", len(hist))
	}
	if hist[2].Value != 1 {
		t.Errorf("last count = %v, want 1", hist[2].Value)
	}
}

func TestManager_Lookup(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(academics(), 0, "demo", 0, nil)
	if p, ok := m.Lookup("2"); !ok || p.Name != "Dr. Akter" {
		t.Errorf("Lookup(2) = %+v, %v", p, ok)
	}
	if _, ok := m.Lookup("nope"); ok {
		t.Error("Lookup of unknown id should fail")
	}
}

func TestManager_Snapshot_IsCopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(academics(), 0, "demo", 0, nil)

	snap := m.Snapshot()
	snap.Points[0].Name = "mutated"
	if m.Snapshot().Points[0].Name == "mutated" {
		t.Error("snapshot points must be a copy")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			m.Update(academics(), 0, "demo", time.Millisecond, nil)
		}()
		go func() {
			defer wg.Done()
			_ = m.Snapshot()
			_ = m.HasData()
		}()
		go func() {
			defer wg.Done()
			m.Select(academics()[0])
			_ = m.RecentEvents(5)
		}()
	}
	wg.Wait()

	if !m.HasData() {
		t.Error("expected data after concurrent updates")
	}
}

func TestManager_SetRefreshInterval(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.SetRefreshInterval(30 * time.Second)
	if m.RefreshInterval() != 30*time.Second {
		t.Errorf("RefreshInterval = %v", m.RefreshInterval())
	}
}
