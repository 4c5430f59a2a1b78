package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rusenback/trackerdash/internal/dom"
	"github.com/rusenback/trackerdash/internal/model"
	"github.com/rusenback/trackerdash/internal/render"
	"github.com/rusenback/trackerdash/internal/storage"
)

// Dashboard is the view state the TUI observes and drives
type Dashboard interface {
	Snapshot() model.Snapshot
	Changes() <-chan struct{}
	EnterLive(id string) error
	EnterResult(id string) error
	RequestOffline(id string) error
	DownloadResult(ctx context.Context, id string) (string, error)
	ExportReport(ctx context.Context) (string, error)
	Delete(ctx context.Context, link string) error
}

// Refresher runs a sync tick on demand
type Refresher interface {
	Trigger() bool
}

// History is the journal of past syncs and view switches
type History interface {
	Query(region string, timeRange storage.TimeRange) ([]storage.DataPoint, error)
	RecentViews(limit int) ([]storage.ViewEvent, error)
}

type panel int

const (
	panelVideos panel = iota
	panelResults
	panelLog
	panelCount
)

// Model represents the TUI application state
type Model struct {
	dash     Dashboard
	refresh  Refresher
	history  History
	renderer render.Renderer

	snap      model.Snapshot
	logRows   []dom.Row
	videos    []dom.Row
	results   []dom.Row
	employees []dom.Row

	focused    panel
	cursor     [panelCount]int
	logsScroll int

	message       string
	pendingDelete string // link armed by the first x press
	width         int
	height        int

	timeRange storage.TimeRange
	activity  map[model.Region][]float64
	views     []storage.ViewEvent
}

// Message types for Bubbletea update loop
type tickMsg time.Time

type changedMsg struct{}

type actionMsg struct {
	message string
	err     error
}

type historyMsg struct {
	timeRange storage.TimeRange
	activity  map[model.Region][]float64
	views     []storage.ViewEvent
	err       error
}

// NewModel creates a new TUI model. refresh and history may be nil.
func NewModel(dash Dashboard, refresh Refresher, history History, renderer render.Renderer) Model {
	m := Model{
		dash:      dash,
		refresh:   refresh,
		history:   history,
		renderer:  renderer,
		focused:   panelVideos,
		timeRange: storage.Range30Min,
		width:     120,
		height:    40,
	}
	m.syncSnapshot()
	return m
}

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.dash.Changes()),
		fetchHistory(m.history, m.timeRange),
		tickCmd(),
	)
}

// syncSnapshot copies the dashboard state and splits its regions into rows
func (m *Model) syncSnapshot() {
	m.snap = m.dash.Snapshot()
	m.logRows = regionRows(m.snap, model.RegionLogBody)
	m.videos = regionRows(m.snap, model.RegionVideoLibrary)
	m.results = regionRows(m.snap, model.RegionResultLibrary)
	m.employees = regionRows(m.snap, model.RegionEmployees)

	m.cursor[panelVideos] = clamp(m.cursor[panelVideos], len(m.videos))
	m.cursor[panelResults] = clamp(m.cursor[panelResults], len(m.results))
	m.logsScroll = clamp(m.logsScroll, m.calculateMaxScroll()+1)
}

func regionRows(s model.Snapshot, r model.Region) []dom.Row {
	rows, err := dom.Rows(s.Region(r))
	if err != nil {
		return nil
	}
	return rows
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
