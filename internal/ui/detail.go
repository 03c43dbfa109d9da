package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-globe/internal/points"
)

// maxClusterMembers is how many names the city panel lists before
// summarizing the rest.
const maxClusterMembers = 10

var (
	detailBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
	detailTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	detailLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	detailValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#d0c8ff"))
)

// renderDetail draws the side panel for the selected academic or city.
func (m Model) renderDetail() string {
	inner := detailWidth - 4
	var lines []string
	switch {
	case m.cluster != nil:
		lines = clusterLines(m.cluster.Label(), m.cluster.Count, m.cluster.Members, inner)
	case m.snapshot.Selected != nil:
		lines = academicLines(*m.snapshot.Selected, inner)
	default:
		return ""
	}
	lines = append(lines, "", detailLabel.Render("esc to close"))
	return detailBox.Width(detailWidth - 2).Render(strings.Join(lines, "\n"))
}

func academicLines(p points.GeoPoint, width int) []string {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	lines := []string{detailTitle.Render(clip(name, width)), ""}
	row := func(label, value string) {
		if value == "" {
			return
		}
		lines = append(lines, detailLabel.Render(label), detailValue.Render(clip(value, width)))
	}
	row("Organization", p.Organization)
	row("Field", p.Field)
	row("Location", p.Location())
	row("Coordinates", fmt.Sprintf("%.4f, %.4f", p.Lat, p.Lng))
	row("ID", p.ID)
	return lines
}

func clusterLines(label string, count int, members []points.GeoPoint, width int) []string {
	lines := []string{
		detailTitle.Render(clip(label, width)),
		detailLabel.Render(fmt.Sprintf("%d academics", count)),
		"",
	}
	for i, p := range members {
		if i == maxClusterMembers {
			lines = append(lines, detailLabel.Render(fmt.Sprintf("… and %d more", len(members)-i)))
			break
		}
		lines = append(lines, detailValue.Render(clip("• "+p.Name, width)))
	}
	return lines
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
