// Package report writes headless views of the directory: JSON snapshot
// exports, the city summary table and the event log.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/litescript/ls-globe/internal/cluster"
	"github.com/litescript/ls-globe/internal/points"
	"github.com/litescript/ls-globe/internal/state"
)

// SnapshotExport is the JSON-serializable representation of the directory.
type SnapshotExport struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Source    string           `json:"source"`
	Total     int              `json:"total"`
	Dropped   int              `json:"dropped"`
	Academics []AcademicExport `json:"academics"`
	Cities    []CityExport     `json:"cities"`
	Events    []state.Event    `json:"events,omitempty"`
}

// AcademicExport is a JSON-friendly academic record.
type AcademicExport struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Organization string  `json:"organization,omitempty"`
	Field        string  `json:"field,omitempty"`
	City         string  `json:"city,omitempty"`
	Country      string  `json:"country,omitempty"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

// CityExport is one city cluster with its derived center.
type CityExport struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	TopField string   `json:"top_field,omitempty"`
	Members  []string `json:"members"`
}

// ExportSnapshot converts a state snapshot to an exportable format.
func ExportSnapshot(snap state.Snapshot) *SnapshotExport {
	export := &SnapshotExport{
		FetchedAt: snap.LastFetch,
		Source:    snap.Source,
		Total:     len(snap.Points),
		Dropped:   snap.Dropped,
		Academics: make([]AcademicExport, 0, len(snap.Points)),
		Cities:    []CityExport{},
		Events:    snap.Events,
	}
	for _, p := range snap.Points {
		export.Academics = append(export.Academics, AcademicExport{
			ID:           p.ID,
			Name:         p.Name,
			Organization: p.Organization,
			Field:        p.Field,
			City:         p.City,
			Country:      p.Country,
			Lat:          p.Lat,
			Lng:          p.Lng,
		})
	}
	for _, c := range cluster.Cluster(snap.Points) {
		ids := make([]string, len(c.Members))
		for i, m := range c.Members {
			ids[i] = m.ID
		}
		export.Cities = append(export.Cities, CityExport{
			Key:      c.Key.String(),
			Label:    c.Label(),
			Count:    c.Count,
			Lat:      c.Lat(),
			Lng:      c.Lng(),
			TopField: topField(c.Members),
			Members:  ids,
		})
	}
	return export
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteSummaryTable writes the academics grouped by city.
func WriteSummaryTable(w io.Writer, snap state.Snapshot) {
	clusters := cluster.Cluster(snap.Points)

	fmt.Fprintf(w, "Academic Directory @ %s\n", snap.LastFetch.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 72))

	if len(clusters) == 0 {
		fmt.Fprintln(w, "No academics loaded")
		return
	}

	fmt.Fprintf(w, "%5s  %-24s %-18s %-20s\n", "Count", "City", "Country", "Top field")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	for _, c := range clusters {
		m := c.Members[0]
		city := m.City
		if c.Key.PointID != "" {
			city = "(" + truncateStr(m.Name, 22) + ")"
		}
		fmt.Fprintf(w, "%5d  %-24s %-18s %-20s\n",
			c.Count,
			truncateStr(city, 24),
			truncateStr(m.Country, 18),
			truncateStr(topField(c.Members), 20),
		)
	}

	fmt.Fprintf(w, "\nTotal: %d academics in %d locations", len(snap.Points), len(clusters))
	if snap.Dropped > 0 {
		fmt.Fprintf(w, " (%d malformed records skipped)", snap.Dropped)
	}
	fmt.Fprintln(w)
}

// WriteEvents writes the most recent n events, oldest first.
func WriteEvents(w io.Writer, events []state.Event, n int) {
	fmt.Fprintln(w, "Recent events")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	for _, e := range events {
		subject := e.Name
		if subject == "" {
			subject = e.ID
		}
		if e.Type == state.EventCluster {
			subject = fmt.Sprintf("%d academics", e.Count)
		}
		fmt.Fprintf(w, "%s  %-9s %-28s %s\n",
			e.Timestamp.Format("15:04:05"), e.Type, truncateStr(subject, 28), e.Location)
	}
}

// topField returns the most common non-empty field, ties by name.
func topField(members []points.GeoPoint) string {
	counts := make(map[string]int)
	for _, m := range members {
		if m.Field != "" {
			counts[m.Field]++
		}
	}
	fields := make([]string, 0, len(counts))
	for f := range counts {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		if counts[fields[i]] != counts[fields[j]] {
			return counts[fields[i]] > counts[fields[j]]
		}
		return fields[i] < fields[j]
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}
