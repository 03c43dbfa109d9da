// Package state provides thread-safe state shared between the feed loop
// and the user interface.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-globe/internal/points"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventAdded    EventType = "ADDED"
	EventRemoved  EventType = "REMOVED"
	EventMoved    EventType = "MOVED"
	EventSelected EventType = "SELECTED"
	EventCluster  EventType = "CLUSTER"
	EventNavigate EventType = "NAVIGATE"
)

// Event records a change in the directory or a user selection.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Location  string    `json:"location,omitempty"`
	// Count is the member count for cluster selections.
	Count int `json:"count,omitempty"`
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	current       []points.GeoPoint
	byID          map[string]points.GeoPoint
	generation    uint64
	dropped       int
	source        string
	lastFetch     time.Time
	lastError     error
	fetchDuration time.Duration

	selected *points.GeoPoint

	// point counts per fetch
	history       []TimeSeries
	maxHistoryLen int

	// ring buffer
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   60,
		MaxEvents:       50,
		RefreshInterval: 5 * time.Minute,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHist := cfg.MaxHistoryLen
	if maxHist <= 0 {
		maxHist = 60
	}
	return &Manager{
		maxHistoryLen:   maxHist,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
		byID:            make(map[string]points.GeoPoint),
	}
}

// Update records the result of a fetch. A nil slice with a nil error is an
// empty directory; a non-nil error keeps the previous points.
func (m *Manager) Update(pts []points.GeoPoint, dropped int, source string, fetchDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastFetch = now
	m.lastError = err
	m.fetchDuration = fetchDuration
	if err != nil {
		return
	}

	next := make(map[string]points.GeoPoint, len(pts))
	for _, p := range pts {
		next[p.ID] = p
	}
	if m.generation > 0 {
		m.detectEvents(next, now)
	}

	m.current = append([]points.GeoPoint(nil), pts...)
	m.byID = next
	m.dropped = dropped
	m.source = source
	m.generation++

	m.history = append(m.history, TimeSeries{Timestamp: now, Value: float64(len(pts))})
	if len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}
}

// detectEvents compares a new snapshot with the previous one.
func (m *Manager) detectEvents(next map[string]points.GeoPoint, now time.Time) {
	for _, p := range sortedByID(next) {
		prev, ok := m.byID[p.ID]
		switch {
		case !ok:
			m.addEvent(eventFor(EventAdded, p, now))
		case prev.Lat != p.Lat || prev.Lng != p.Lng:
			m.addEvent(eventFor(EventMoved, p, now))
		}
	}
	for _, p := range sortedByID(m.byID) {
		if _, ok := next[p.ID]; !ok {
			m.addEvent(eventFor(EventRemoved, p, now))
		}
	}
}

func eventFor(t EventType, p points.GeoPoint, now time.Time) Event {
	return Event{Type: t, Timestamp: now, ID: p.ID, Name: p.Name, Location: p.Location()}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Select records the academic the user selected.
func (m *Manager) Select(p points.GeoPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sel := p
	m.selected = &sel
	m.addEvent(eventFor(EventSelected, p, time.Now()))
}

// Navigate records a request to open an academic's profile.
func (m *Manager) Navigate(p points.GeoPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addEvent(eventFor(EventNavigate, p, time.Now()))
}

// SelectCluster records a city cluster selection.
func (m *Manager) SelectCluster(label string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addEvent(Event{Type: EventCluster, Timestamp: time.Now(), Location: label, Count: count})
}

// ClearSelection forgets the selected academic.
func (m *Manager) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = nil
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	// Generation increases with every successful update; zero means no
	// data has arrived yet.
	Generation    uint64
	Points        []points.GeoPoint
	Dropped       int
	Source        string
	LastFetch     time.Time
	LastError     error
	FetchDuration time.Duration
	NextRefresh   time.Time
	Selected      *points.GeoPoint
	Events        []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pts := make([]points.GeoPoint, len(m.current))
	copy(pts, m.current)

	var sel *points.GeoPoint
	if m.selected != nil {
		s := *m.selected
		sel = &s
	}

	snap := Snapshot{
		Generation:    m.generation,
		Points:        pts,
		Dropped:       m.dropped,
		Source:        m.source,
		LastFetch:     m.lastFetch,
		LastError:     m.lastError,
		FetchDuration: m.fetchDuration,
		Selected:      sel,
		Events:        m.getEventsOrdered(),
	}
	if !m.lastFetch.IsZero() && m.refreshInterval > 0 {
		snap.NextRefresh = m.lastFetch.Add(m.refreshInterval)
	}
	return snap
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Lookup returns the current record for an academic.
func (m *Manager) Lookup(id string) (points.GeoPoint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[id]
	return p, ok
}

// CountHistory returns the number of academics seen at each fetch.
func (m *Manager) CountHistory() []TimeSeries {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TimeSeries, len(m.history))
	copy(out, m.history)
	return out
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true if we have received at least one successful fetch.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation > 0
}

func sortedByID(ps map[string]points.GeoPoint) []points.GeoPoint {
	out := make([]points.GeoPoint, 0, len(ps))
	for _, p := range ps {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
