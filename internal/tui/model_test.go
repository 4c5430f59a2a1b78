package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rusenback/trackerdash/internal/dom"
	"github.com/rusenback/trackerdash/internal/model"
	"github.com/rusenback/trackerdash/internal/render"
	"github.com/rusenback/trackerdash/internal/storage"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

type fakeDashboard struct {
	snap    model.Snapshot
	changes chan struct{}

	live      []string
	results   []string
	offline   []string
	downloads []string
	exports   int
	deleted   []string
	err       error
}

func newFakeDashboard() *fakeDashboard {
	return &fakeDashboard{
		snap:    model.Snapshot{Regions: make(map[model.Region]string)},
		changes: make(chan struct{}, 1),
	}
}

func (f *fakeDashboard) Snapshot() model.Snapshot { return f.snap }
func (f *fakeDashboard) Changes() <-chan struct{} { return f.changes }

func (f *fakeDashboard) EnterLive(id string) error {
	f.live = append(f.live, id)
	return f.err
}

func (f *fakeDashboard) EnterResult(id string) error {
	f.results = append(f.results, id)
	return f.err
}

func (f *fakeDashboard) RequestOffline(id string) error {
	f.offline = append(f.offline, id)
	return f.err
}

func (f *fakeDashboard) DownloadResult(ctx context.Context, id string) (string, error) {
	f.downloads = append(f.downloads, id)
	return "/tmp/" + id, f.err
}

func (f *fakeDashboard) ExportReport(ctx context.Context) (string, error) {
	f.exports++
	return "/tmp/report.xlsx", f.err
}

func (f *fakeDashboard) Delete(ctx context.Context, link string) error {
	f.deleted = append(f.deleted, link)
	return f.err
}

type fakeRefresher struct {
	allow bool
	calls int
}

func (r *fakeRefresher) Trigger() bool {
	r.calls++
	return r.allow
}

type fakeHistory struct {
	points map[string][]storage.DataPoint
	views  []storage.ViewEvent
	ranges []storage.TimeRange
}

func (h *fakeHistory) Query(region string, tr storage.TimeRange) ([]storage.DataPoint, error) {
	h.ranges = append(h.ranges, tr)
	return h.points[region], nil
}

func (h *fakeHistory) RecentViews(limit int) ([]storage.ViewEvent, error) {
	return h.views, nil
}

const (
	videoLibrary = `<li>cam1.mp4 <button onclick="startStream('cam1.mp4')">Live</button>` +
		`<button onclick="smartProcess('cam1.mp4')">Process</button></li>` +
		`<li>cam2.mp4 <button onclick="startStream('cam2.mp4')">Live</button>` +
		`<button onclick="smartProcess('cam2.mp4')">Process</button></li>`
	resultLibrary = `<div onclick="playResult('result_S1_cam1.mp4')">result_S1_cam1.mp4</div>`
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyPress(k))
		m = next.(Model)
	}
	return m, cmd
}

func rowOf(cells ...string) dom.Row {
	return dom.Row{Cells: cells}
}

func newTestModel(d *fakeDashboard) Model {
	d.snap.Regions[model.RegionVideoLibrary] = videoLibrary
	d.snap.Regions[model.RegionResultLibrary] = resultLibrary
	return NewModel(d, nil, nil, render.Renderer{})
}

func TestModel_EnterLiveFromLibrary(t *testing.T) {
	d := newFakeDashboard()
	m := newTestModel(d)
	assert.Equal(t, len(m.videos), 2)

	m, _ = press(t, m, "down", "enter")
	assert.DeepEqual(t, d.live, []string{"cam2.mp4"})
	assert.Equal(t, m.message, "Live: cam2.mp4")
}

func TestModel_EnterResultFromLibrary(t *testing.T) {
	d := newFakeDashboard()
	m := newTestModel(d)

	m, _ = press(t, m, "tab", "enter")
	assert.DeepEqual(t, d.results, []string{"result_S1_cam1.mp4"})

	_, _ = press(t, m, "p")
	assert.DeepEqual(t, d.results, []string{"result_S1_cam1.mp4", "result_S1_cam1.mp4"})
}

func TestModel_RequestOfflineUsesProcessHandler(t *testing.T) {
	d := newFakeDashboard()
	m := newTestModel(d)

	_, _ = press(t, m, "o")
	assert.DeepEqual(t, d.offline, []string{"cam1.mp4"})
}

func TestModel_SwitchErrorShown(t *testing.T) {
	d := newFakeDashboard()
	d.err = errors.New("empty video identifier")
	m := newTestModel(d)

	m, _ = press(t, m, "l")
	assert.Assert(t, is.Contains(m.message, "empty video identifier"))
}

func TestModel_NothingSelected(t *testing.T) {
	d := newFakeDashboard()
	m := NewModel(d, nil, nil, render.Renderer{})

	m, cmd := press(t, m, "l")
	assert.Equal(t, len(d.live), 0)
	assert.Equal(t, m.message, "No video selected")
	assert.Assert(t, cmd == nil)

	m, cmd = press(t, m, "d")
	assert.Equal(t, m.message, "No result selected")
	assert.Assert(t, cmd == nil)
}

func TestModel_DownloadAndExport(t *testing.T) {
	d := newFakeDashboard()
	m := newTestModel(d)

	m, cmd := press(t, m, "d")
	assert.Assert(t, cmd != nil)
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.DeepEqual(t, d.downloads, []string{"result_S1_cam1.mp4"})
	assert.Equal(t, m.message, "Saved: /tmp/result_S1_cam1.mp4")

	m, cmd = press(t, m, "e")
	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, d.exports, 1)
	assert.Equal(t, m.message, "Report saved: /tmp/report.xlsx")
}

func TestModel_ManualRefresh(t *testing.T) {
	d := newFakeDashboard()
	r := &fakeRefresher{allow: true}
	m := NewModel(d, r, nil, render.Renderer{})

	m, _ = press(t, m, "R")
	assert.Equal(t, m.message, "Refreshing...")

	r.allow = false
	m, _ = press(t, m, "R")
	assert.Equal(t, m.message, "Refresh skipped, try again shortly")
	assert.Equal(t, r.calls, 2)
}

func TestModel_ChangeRefreshesRows(t *testing.T) {
	d := newFakeDashboard()
	m := NewModel(d, nil, nil, render.Renderer{})
	assert.Equal(t, len(m.logRows), 0)

	d.snap.Title = "KẾT QUẢ PHÂN TÍCH: r.mp4"
	d.snap.Mode = model.ModeResult
	d.snap.Badge = model.BadgeResult
	d.snap.Regions[model.RegionLogBody] = render.RenderLog([]model.LogEntry{
		{Timestamp: "2024-01-01 08:00:00", EmployeeID: "E1", Action: "Rời bàn"},
		{Timestamp: "2024-01-01 08:05:00", EmployeeID: "E2", Action: "Quay lại"},
	})

	next, cmd := m.Update(changedMsg{})
	m = next.(Model)
	assert.Assert(t, cmd != nil)
	assert.Equal(t, len(m.logRows), 2)
	assert.Equal(t, m.logRows[0].Cells[0], "08:00:00")

	view := m.View()
	assert.Assert(t, is.Contains(view, "RESULT"))
	assert.Assert(t, is.Contains(view, "r.mp4"))
	assert.Assert(t, is.Contains(view, "Sync paused"))
}

func TestModel_LogRowClassification(t *testing.T) {
	rows := []string{
		styleLogRow(rowOf("08:00:00", "E1 Alice", "Rời bàn"), render.Renderer{}, 80),
		styleLogRow(rowOf("08:05:00", "E2 Bob", "Quay lại"), render.Renderer{}, 80),
	}
	assert.Assert(t, is.Contains(rows[0], "Rời bàn"))
	assert.Assert(t, is.Contains(rows[1], "Quay lại"))
	assert.Equal(t, render.Classify("Rời bàn"), model.CategoryAlert)

	placeholder := styleLogRow(rowOf(render.NoDataMessage), render.Renderer{}, 80)
	assert.Assert(t, is.Contains(placeholder, render.NoDataMessage))
}

func TestModel_TimeRangeKeys(t *testing.T) {
	d := newFakeDashboard()
	h := &fakeHistory{points: map[string][]storage.DataPoint{
		"log-body": {{Count: 1}, {Count: 3}},
	}}
	m := NewModel(d, nil, h, render.Renderer{})

	m, cmd := press(t, m, "3")
	assert.Equal(t, m.timeRange, storage.Range6Hour)
	assert.Assert(t, cmd != nil)

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.DeepEqual(t, m.activity[model.RegionLogBody], []float64{1, 3})
	assert.Equal(t, h.ranges[0], storage.Range6Hour)

	// a late answer for another range is ignored
	next, _ = m.Update(historyMsg{timeRange: storage.Range1Week, activity: map[model.Region][]float64{}})
	m = next.(Model)
	assert.DeepEqual(t, m.activity[model.RegionLogBody], []float64{1, 3})
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(newFakeDashboard(), nil, nil, render.Renderer{})
	_, cmd := press(t, m, "q")
	assert.Assert(t, cmd != nil)
	_, ok := cmd().(tea.QuitMsg)
	assert.Assert(t, ok)
}

func TestModel_ViewRendersLivePanel(t *testing.T) {
	d := newFakeDashboard()
	d.snap.Title = "LIVE STREAMING: cam1.mp4"
	d.snap.Badge = model.BadgeLive
	d.snap.Loading = true
	d.snap.Panel = model.Panel{Kind: model.PanelLive, Source: "http://x/video_feed/cam1.mp4?t=1"}
	d.snap.LastSync = time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	m := NewModel(d, nil, nil, render.Renderer{})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	view := next.(Model).View()
	assert.Assert(t, is.Contains(view, "LIVE"))
	assert.Assert(t, is.Contains(view, "waiting for first frame"))
	assert.Assert(t, is.Contains(view, "Loading"))
	assert.Assert(t, is.Contains(view, "Synced 08:00:00"))
}

func TestRenderSparkline(t *testing.T) {
	assert.Equal(t, renderSparkline(nil, 4), "▁▁▁▁")
	assert.Equal(t, renderSparkline([]float64{0, 7}, 4), "▁▁▁█")
	assert.Equal(t, strings.Count(renderSparkline([]float64{1, 2, 3, 4, 5, 6}, 3), ""), 4)
}

func TestModel_DeleteNeedsConfirmation(t *testing.T) {
	d := newFakeDashboard()
	d.snap.Regions[model.RegionVideoLibrary] = `<li>cam1.mp4 <a href="/delete_raw_upload/cam1.mp4">Xóa</a></li>` +
		`<li>cam2.mp4 <a href="/delete_raw_upload/cam2.mp4">Xóa</a></li>`
	d.snap.Regions[model.RegionResultLibrary] = `<div>result_S3_cam1.mp4 ` +
		`<a href="/download_output/result_S3_cam1.mp4">Tải</a> <a href="/delete_output/S3">Xóa</a></div>`
	m := NewModel(d, nil, nil, render.Renderer{})

	m, cmd := press(t, m, "x")
	assert.Assert(t, cmd == nil)
	assert.Assert(t, is.Contains(m.message, "Press x again"))
	assert.Equal(t, len(d.deleted), 0)

	// moving away disarms it
	m, cmd = press(t, m, "down", "x")
	assert.Assert(t, cmd == nil)
	assert.Assert(t, is.Contains(m.message, "cam2.mp4"))

	m, cmd = press(t, m, "x")
	assert.Assert(t, cmd != nil)
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.DeepEqual(t, d.deleted, []string{"/delete_raw_upload/cam2.mp4"})
	assert.Assert(t, is.Contains(m.message, "Deleted: cam2.mp4"))

	// a fired delete is not left armed
	m, _ = press(t, m, "tab", "x", "x")
	_, cmd = press(t, m, "x")
	assert.Assert(t, cmd == nil)
}

func TestModel_DeleteWithoutLink(t *testing.T) {
	d := newFakeDashboard()
	m := newTestModel(d)

	m, cmd := press(t, m, "x")
	assert.Assert(t, cmd == nil)
	assert.Assert(t, is.Contains(m.message, "No delete link"))

	m, _ = press(t, m, "tab", "tab")
	m, _ = press(t, m, "x")
	assert.Equal(t, m.message, "Nothing to delete")
}
