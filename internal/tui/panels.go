package tui

import (
	"fmt"
	"strings"

	"github.com/rusenback/trackerdash/internal/dom"
	"github.com/rusenback/trackerdash/internal/model"
)

func (m Model) panelFrame(p panel, width, height int, content string) string {
	style := panelStyle
	if m.focused == p {
		style = focusedPanelStyle
	}
	return style.
		Width(width - 4).
		Height(height - 4).
		Render(content)
}

// renderVideoPanel renders the title badge and what the video panel shows
func (m Model) renderVideoPanel(width, height int) string {
	var s strings.Builder

	title := m.snap.Title
	if title == "" {
		title = "No video selected"
	}
	s.WriteString(badge(m.snap.Badge) + " " + titleStyle.Render(truncate(title, width-20)) + "\n\n")

	p := m.snap.Panel
	switch p.Kind {
	case model.PanelLive:
		s.WriteString(fmt.Sprintf("Stream:  %s\n", truncate(p.Source, width-18)))
		if p.Ready {
			if p.LastFrame > 0 {
				s.WriteString(fmt.Sprintf("Frames:  %d (last %d B)\n", p.Frames, p.LastFrame))
			} else {
				s.WriteString(fmt.Sprintf("Frames:  %d\n", p.Frames))
			}
		} else {
			s.WriteString("Frames:  waiting for first frame\n")
		}
	case model.PanelPlayback:
		s.WriteString(fmt.Sprintf("Playback: %s\n", truncate(p.Source, width-18)))
	case model.PanelMessage:
		s.WriteString(p.Message + "\n")
	default:
		s.WriteString(dimStyle.Render("Pick a video or a result below") + "\n")
	}
	if p.Err != "" {
		s.WriteString(alertStyle.Render("Error: "+truncate(p.Err, width-16)) + "\n")
	}

	if m.snap.Loading {
		s.WriteString("\n" + loadingStyle.Render("⏳ Loading...") + "\n")
	}

	s.WriteString("\n")
	if m.snap.Mode == model.ModeResult {
		s.WriteString(dimStyle.Render("Sync paused while viewing a result") + "\n")
	} else if m.snap.LastSyncErr != "" {
		s.WriteString(alertStyle.Render("Sync: "+truncate(m.snap.LastSyncErr, width-16)) + "\n")
	} else if !m.snap.LastSync.IsZero() {
		s.WriteString(dimStyle.Render("Synced "+m.snap.LastSync.Format("15:04:05")) + "\n")
	}

	if m.message != "" {
		s.WriteString("\n" + m.message + "\n")
	}

	help := "[Tab] panel [↑/↓] move [Enter/l] live [p] result [o] offline\n" +
		"[d] download [x] delete [e] export [R] refresh [q] quit"
	s.WriteString(helpStyle.Render(help))

	return m.panelFrame(-1, width, height, s.String())
}

func badge(b model.Badge) string {
	switch b {
	case model.BadgeLive:
		return liveBadgeStyle.Render("LIVE")
	case model.BadgeResult:
		return resultBadgeStyle.Render("RESULT")
	default:
		return idleBadgeStyle.Render("IDLE")
	}
}

// renderLogPanel renders the visible window of the activity log
func (m Model) renderLogPanel(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("📋 Activity Log") + "\n\n")

	maxLineWidth := width - 8
	s.WriteString(logHeader(maxLineWidth) + "\n")

	if len(m.logRows) == 0 {
		s.WriteString(dimStyle.Render("No rows yet..."))
		return m.panelFrame(panelLog, width, height, s.String())
	}

	visibleLines := m.calculateVisibleLogLines()
	total := len(m.logRows)
	start := clamp(m.logsScroll, total)
	end := start + visibleLines
	if end > total {
		end = total
	}

	for _, r := range m.logRows[start:end] {
		s.WriteString(styleLogRow(r, m.renderer, maxLineWidth) + "\n")
	}

	if total > visibleLines {
		s.WriteString(dimStyle.Render(fmt.Sprintf("\n[%d/%d] PgUp/PgDown:scroll", start+1, total)))
	}

	return m.panelFrame(panelLog, width, height, s.String())
}

// renderLibraryPanel renders the video and result libraries and the
// employee list
func (m Model) renderLibraryPanel(width, height int) string {
	var s strings.Builder
	lineWidth := width - 10

	// Each list gets a share of the panel
	listLines := (height - 14) / 3
	if listLines < 2 {
		listLines = 2
	}

	s.WriteString(titleStyle.Render("🎞 Videos") + "\n")
	s.WriteString(m.renderList(m.videos, panelVideos, lineWidth, listLines))
	s.WriteString("\n" + titleStyle.Render("✅ Results") + "\n")
	s.WriteString(m.renderList(m.results, panelResults, lineWidth, listLines))

	s.WriteString("\n" + titleStyle.Render("👥 Employees") + "\n")
	if len(m.employees) == 0 {
		s.WriteString(dimStyle.Render("none") + "\n")
	}
	for i, r := range m.employees {
		if i >= listLines {
			s.WriteString(dimStyle.Render(fmt.Sprintf("... %d more", len(m.employees)-i)) + "\n")
			break
		}
		s.WriteString("  " + truncate(r.Text(), lineWidth) + "\n")
	}

	p := panelVideos
	if m.focused == panelResults {
		p = panelResults
	}
	return m.panelFrame(p, width, height, s.String())
}

// renderList renders a selectable library list scrolled to its cursor
func (m Model) renderList(rows []dom.Row, p panel, width, lines int) string {
	if len(rows) == 0 {
		return dimStyle.Render("  empty") + "\n"
	}

	cursor := m.cursor[p]
	start := 0
	if cursor >= lines {
		start = cursor - lines + 1
	}

	var s strings.Builder
	for i := start; i < len(rows) && i < start+lines; i++ {
		line := truncate(rows[i].Text(), width)
		if i == cursor && m.focused == p {
			s.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	return s.String()
}

// renderHistoryPanel renders the sync activity graphs
func (m Model) renderHistoryPanel(width, height int) string {
	var content string
	if m.history == nil {
		content = graphTitleStyle.Render("📈 Sync Activity") + "\n\nHistory is disabled."
	} else {
		content = renderHistory(m.activity, m.views, width-4, m.timeRange)
	}
	return m.panelFrame(-1, width, height, content)
}
