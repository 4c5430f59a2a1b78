package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rusenback/trackerdash/internal/model"
	"github.com/rusenback/trackerdash/internal/storage"
	"github.com/rusenback/trackerdash/internal/tracker"
	"gotest.tools/v3/poll"
)

var errOffline = errors.New("connection refused")

// fakeTracker is an in-memory tracker server
type fakeTracker struct {
	mu sync.Mutex

	page           string
	pageErr        error
	dashboardCalls int
	dashboardGate  chan struct{}

	logs     map[string][]model.LogEntry
	logsErr  error
	logsGate map[string]chan struct{}

	frames     chan tracker.Frame
	streamURLs []string
	streamCtxs []context.Context

	offlineIDs  []string
	offlinePage string
	offlineErr  error

	manageCalls []string // "<op> <arg>"
	managePage  string
	manageErr   error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		logs:     make(map[string][]model.LogEntry),
		logsGate: make(map[string]chan struct{}),
	}
}

func (f *fakeTracker) setPage(p string) {
	f.mu.Lock()
	f.page = p
	f.mu.Unlock()
}

func (f *fakeTracker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dashboardCalls
}

func (f *fakeTracker) LiveURL(id string, t time.Time) string {
	return fmt.Sprintf("http://tracker.test/video_feed/%s?t=%d", id, t.UnixMilli())
}

func (f *fakeTracker) PlaybackURL(id string) string {
	return "http://tracker.test/view_output/" + id
}

func (f *fakeTracker) Dashboard(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.dashboardCalls++
	gate := f.dashboardGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page, f.pageErr
}

func (f *fakeTracker) VideoLogs(ctx context.Context, id string) ([]model.LogEntry, error) {
	f.mu.Lock()
	gate := f.logsGate[id]
	f.mu.Unlock()

	// the gate ignores ctx so stale responses still arrive
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return f.logs[id], nil
}

func (f *fakeTracker) StreamLive(ctx context.Context, url string) (<-chan tracker.Frame, <-chan error) {
	out := make(chan tracker.Frame)
	errs := make(chan error, 1)

	f.mu.Lock()
	f.streamURLs = append(f.streamURLs, url)
	f.streamCtxs = append(f.streamCtxs, ctx)
	src := f.frames
	f.mu.Unlock()

	go func() {
		defer close(out)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			case fr, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- fr:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, errs
}

func (f *fakeTracker) ProcessOffline(ctx context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offlineIDs = append(f.offlineIDs, id)
	return f.offlinePage, f.offlineErr
}

func (f *fakeTracker) DownloadResult(ctx context.Context, id, dir string) (string, error) {
	return dir + "/" + id, nil
}

func (f *fakeTracker) ExportReport(ctx context.Context, dir string) (string, error) {
	return dir + "/report.xlsx", nil
}

func (f *fakeTracker) manage(op, arg string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manageCalls = append(f.manageCalls, op+" "+arg)
	return f.managePage, f.manageErr
}

func (f *fakeTracker) Delete(ctx context.Context, link string) (string, error) {
	return f.manage("delete", link)
}

func (f *fakeTracker) Upload(ctx context.Context, path string) (string, error) {
	return f.manage("upload", path)
}

func (f *fakeTracker) ImportEmployees(ctx context.Context, path string) (string, error) {
	return f.manage("import", path)
}

var _ tracker.TrackerClient = (*fakeTracker)(nil)

// memJournal collects journal entries
type memJournal struct {
	mu      sync.Mutex
	changes []storage.RegionChange
	views   []storage.ViewEvent
}

func (j *memJournal) RecordChange(c storage.RegionChange) {
	j.mu.Lock()
	j.changes = append(j.changes, c)
	j.mu.Unlock()
}

func (j *memJournal) RecordView(e storage.ViewEvent) {
	j.mu.Lock()
	j.views = append(j.views, e)
	j.mu.Unlock()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(t *testing.T, f *fakeTracker, opts Options) *Controller {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	c := New(f, opts)
	t.Cleanup(c.Close)
	return c
}

func waitFor(t *testing.T, c *Controller, desc string, cond func(model.Snapshot) bool) {
	t.Helper()
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if cond(c.Snapshot()) {
			return poll.Success()
		}
		return poll.Continue("waiting for %s", desc)
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(5*time.Millisecond))
}

func dashboardPage(title, logBody, videos string) string {
	return `<html><body>
<span id="active-video-name">` + title + `</span>
<div id="video-container"></div>
<table><tbody id="log-body">` + logBody + `</tbody></table>
<ul id="video-library">` + videos + `</ul>
<div id="result-library"><a onclick="playResult('result_S1_cam1.mp4')">result_S1_cam1.mp4</a></div>
<div id="employee-list-container"><p>E1 Alice</p></div>
<div id="loading-overlay" style="display:none"></div>
</body></html>`
}
