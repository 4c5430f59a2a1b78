package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rusenback/trackerdash/internal/model"
	"github.com/rusenback/trackerdash/internal/storage"
)

var (
	graphTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B4BEFE"))
	graphAxisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	regionGraphStyles = map[model.Region]lipgloss.Style{
		model.RegionLogBody:       lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")),
		model.RegionVideoLibrary:  lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		model.RegionResultLibrary: lipgloss.NewStyle().Foreground(lipgloss.Color("#CBA6F7")),
		model.RegionEmployees:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	}

	regionLabels = map[model.Region]string{
		model.RegionLogBody:       "Log",
		model.RegionVideoLibrary:  "Videos",
		model.RegionResultLibrary: "Results",
		model.RegionEmployees:     "Employees",
	}

	sparkChars = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}
)

// renderSparkline creates a compact sparkline of the last width points.
// Zero stays on the baseline so idle periods read as flat.
func renderSparkline(data []float64, width int) string {
	if width < 1 {
		return ""
	}
	if len(data) == 0 {
		return strings.Repeat(sparkChars[0], width)
	}

	start := 0
	if len(data) > width {
		start = len(data) - width
	}
	displayData := data[start:]

	max := 0.0
	for _, v := range displayData {
		max = math.Max(max, v)
	}
	if max == 0 {
		max = 1
	}

	var result strings.Builder
	// Pad on the left so the newest point is always at the right edge
	for i := len(displayData); i < width; i++ {
		result.WriteString(sparkChars[0])
	}
	for _, value := range displayData {
		charIndex := int(value / max * float64(len(sparkChars)-1))
		if charIndex >= len(sparkChars) {
			charIndex = len(sparkChars) - 1
		}
		if charIndex < 0 {
			charIndex = 0
		}
		result.WriteString(sparkChars[charIndex])
	}

	return result.String()
}

// renderHistory renders one sparkline of sync changes per region plus the
// latest view switches
func renderHistory(
	activity map[model.Region][]float64,
	views []storage.ViewEvent,
	width int,
	timeRange storage.TimeRange,
) string {
	var s strings.Builder

	title := fmt.Sprintf("📈 Sync Activity - %s", timeRange.String())
	s.WriteString(graphTitleStyle.Render(title) + "\n")

	hint := "[1]30m [2]1h [3]6h [4]1d [5]1w"
	s.WriteString(graphAxisStyle.Render(hint) + "\n\n")

	if activity == nil {
		s.WriteString("Waiting for data...\n")
		return s.String()
	}

	const labelWidth = 10
	sparkWidth := width - labelWidth - 8
	if sparkWidth < 10 {
		sparkWidth = 10
	}

	for _, r := range model.SyncRegions {
		data := activity[r]
		total := 0.0
		for _, v := range data {
			total += v
		}
		style := regionGraphStyles[r]
		line := padRight(regionLabels[r], labelWidth) +
			style.Render(renderSparkline(data, sparkWidth)) +
			fmt.Sprintf(" %3.0f", total)
		s.WriteString(line + "\n")
	}

	s.WriteString(graphAxisStyle.Render(fmt.Sprintf("%*s", labelWidth+sparkWidth, "◄─ "+timeRange.String()+" ago → Now")) + "\n\n")

	if len(views) == 0 {
		return s.String()
	}
	s.WriteString(titleStyle.Render("Recent views") + "\n")
	for _, v := range views {
		s.WriteString(fmt.Sprintf("%s %-7s %s\n",
			dimStyle.Render(v.Timestamp.Format("15:04:05")),
			v.Mode,
			truncate(v.Identifier, width-20)))
	}

	return s.String()
}
