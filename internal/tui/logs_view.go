package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rusenback/trackerdash/internal/dom"
	"github.com/rusenback/trackerdash/internal/model"
	"github.com/rusenback/trackerdash/internal/render"
)

const (
	timeWidth     = 10
	employeeWidth = 24
)

// styleLogRow renders one row of the activity log. Rows from the live sync
// and rows rendered for a result use the same classification.
func styleLogRow(r dom.Row, renderer render.Renderer, maxWidth int) string {
	if len(r.Cells) < 3 {
		// placeholder rows span the whole table
		return dimStyle.Render(truncate(r.Text(), maxWidth))
	}

	timestamp := dimStyle.Render(padRight(truncate(r.Cells[0], timeWidth), timeWidth))
	employee := padRight(truncate(r.Cells[1], employeeWidth), employeeWidth)

	actionWidth := maxWidth - timeWidth - employeeWidth - 2
	if actionWidth < 4 {
		actionWidth = 4
	}
	action := truncate(r.Cells[2], actionWidth)
	if renderer.Classify(r.Cells[2]) == model.CategoryAlert {
		action = alertStyle.Render(action)
	} else {
		action = normalStyle.Render(action)
	}

	return timestamp + " " + employee + " " + action
}

// logHeader renders the column titles of the activity log
func logHeader(maxWidth int) string {
	header := padRight("TIME", timeWidth) + " " + padRight("EMPLOYEE", employeeWidth) + " ACTION"
	return headerStyle.Render(padRight(header, maxWidth))
}

// padRight pads s with spaces to a visible width
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
