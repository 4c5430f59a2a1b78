package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rusenback/trackerdash/internal/dom"
	"github.com/rusenback/trackerdash/internal/storage"
	"github.com/rusenback/trackerdash/internal/tracker"
)

// Handler names the dashboard page binds to library entries
const (
	actionStream  = "startStream"
	actionPlay    = "playResult"
	actionProcess = "smartProcess"
)

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case changedMsg:
		m.syncSnapshot()
		return m, waitForChange(m.dash.Changes())

	case tickMsg:
		return m, tea.Batch(fetchHistory(m.history, m.timeRange), tickCmd())

	case historyMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("History error: %v", msg.err)
			return m, nil
		}
		// a slow query for a previous range must not overwrite the current one
		if msg.timeRange == m.timeRange {
			m.activity = msg.activity
			m.views = msg.views
		}

	case actionMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.message = msg.message
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// any other key disarms a pending delete
	armed := m.pendingDelete
	m.pendingDelete = ""

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		m.focused = (m.focused + 1) % panelCount

	case "shift+tab":
		m.focused = (m.focused + panelCount - 1) % panelCount

	case "up", "k":
		if m.focused == panelLog {
			m.scrollLogs(-1)
		} else if m.cursor[m.focused] > 0 {
			m.cursor[m.focused]--
		}

	case "down", "j":
		switch m.focused {
		case panelLog:
			m.scrollLogs(1)
		case panelVideos:
			m.cursor[panelVideos] = clamp(m.cursor[panelVideos]+1, len(m.videos))
		case panelResults:
			m.cursor[panelResults] = clamp(m.cursor[panelResults]+1, len(m.results))
		}

	case "pgup":
		m.scrollLogs(-max(m.calculateVisibleLogLines()/2, 1))

	case "pgdown":
		m.scrollLogs(max(m.calculateVisibleLogLines()/2, 1))

	case "home":
		m.logsScroll = 0

	case "end":
		m.logsScroll = m.calculateMaxScroll()

	case "enter":
		switch m.focused {
		case panelVideos:
			return m.enterLive()
		case panelResults:
			return m.enterResult()
		}

	case "l":
		return m.enterLive()

	case "p":
		return m.enterResult()

	case "o":
		id, ok := selectedID(m.videos, m.cursor[panelVideos], actionProcess)
		if !ok {
			m.message = "No video selected"
			return m, nil
		}
		m.report(m.dash.RequestOffline(id), "Processing offline: "+id)

	case "d":
		id, ok := selectedID(m.results, m.cursor[panelResults], actionPlay)
		if !ok {
			m.message = "No result selected"
			return m, nil
		}
		m.message = "Downloading " + id + "..."
		return m, downloadResult(m.dash, id)

	case "x":
		return m.deleteSelected(armed)

	case "e":
		m.message = "Exporting report..."
		return m, exportReport(m.dash)

	case "R":
		if m.refresh == nil {
			return m, nil
		}
		if m.refresh.Trigger() {
			m.message = "Refreshing..."
		} else {
			m.message = "Refresh skipped, try again shortly"
		}

	case "1", "2", "3", "4", "5":
		m.timeRange = storage.TimeRange(msg.String()[0] - '1')
		return m, fetchHistory(m.history, m.timeRange)
	}

	return m, nil
}

func (m Model) enterLive() (tea.Model, tea.Cmd) {
	id, ok := selectedID(m.videos, m.cursor[panelVideos], actionStream)
	if !ok {
		m.message = "No video selected"
		return m, nil
	}
	m.report(m.dash.EnterLive(id), "Live: "+id)
	return m, nil
}

func (m Model) enterResult() (tea.Model, tea.Cmd) {
	id, ok := selectedID(m.results, m.cursor[panelResults], actionPlay)
	if !ok {
		m.message = "No result selected"
		return m, nil
	}
	m.report(m.dash.EnterResult(id), "Result: "+id)
	return m, nil
}

// deleteSelected arms the delete link of the focused library row, or follows
// it when it was armed by the previous key press
func (m Model) deleteSelected(armed string) (tea.Model, tea.Cmd) {
	var rows []dom.Row
	switch m.focused {
	case panelVideos:
		rows = m.videos
	case panelResults:
		rows = m.results
	}
	cursor := m.cursor[m.focused]
	if cursor >= len(rows) {
		m.message = "Nothing to delete"
		return m, nil
	}
	r := rows[cursor]
	link, ok := deleteLink(r)
	if !ok {
		m.message = "No delete link for " + truncate(r.Text(), 40)
		return m, nil
	}

	if link != armed {
		m.pendingDelete = link
		m.message = "Press x again to delete " + truncate(r.Text(), 40)
		return m, nil
	}
	m.message = "Deleting..."
	return m, deleteEntry(m.dash, link, r.Text())
}

func deleteLink(r dom.Row) (string, bool) {
	for _, l := range r.Links {
		if tracker.IsDeleteLink(l) {
			return l, true
		}
	}
	return "", false
}

func (m *Model) report(err error, ok string) {
	if err != nil {
		m.message = fmt.Sprintf("Error: %v", err)
		return
	}
	m.message = ok
}

func (m *Model) scrollLogs(delta int) {
	m.logsScroll += delta
	if maxScroll := m.calculateMaxScroll(); m.logsScroll > maxScroll {
		m.logsScroll = maxScroll
	}
	if m.logsScroll < 0 {
		m.logsScroll = 0
	}
}

// selectedID returns the video name behind the selected row. The argument of
// the row's fn handler wins; any other handler or the row text are fallbacks.
func selectedID(rows []dom.Row, cursor int, fn string) (string, bool) {
	if cursor < 0 || cursor >= len(rows) {
		return "", false
	}
	r := rows[cursor]
	if a, ok := r.Action(fn); ok && a.Arg != "" {
		return a.Arg, true
	}
	for _, a := range r.Actions {
		if a.Arg != "" {
			return a.Arg, true
		}
	}
	if len(r.Cells) > 0 && r.Cells[0] != "" {
		return r.Cells[0], true
	}
	return "", false
}
