// Package dashboard holds the dashboard's view state: the switcher that moves
// the video panel between live streaming and recorded results, and the poller
// that mirrors server-rendered regions while the live view is shown.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rusenback/trackerdash/internal/dom"
	"github.com/rusenback/trackerdash/internal/model"
	"github.com/rusenback/trackerdash/internal/render"
	"github.com/rusenback/trackerdash/internal/storage"
	"github.com/rusenback/trackerdash/internal/tracker"
)

const (
	LiveTitlePrefix   = "LIVE STREAMING: "
	ResultTitlePrefix = "KẾT QUẢ PHÂN TÍCH: "
	DisconnectMessage = "Đang ngắt kết nối Live AI..."

	defaultResultMarker = "KẾT QUẢ"
	liveMarker          = "LIVE"
)

var (
	// ErrEmptyIdentifier is returned when a switch is requested without a video
	ErrEmptyIdentifier = errors.New("empty video identifier")
	// ErrParse wraps failures to read a fetched page
	ErrParse = errors.New("parse dashboard page")
)

// Journal records dashboard activity
type Journal interface {
	RecordChange(storage.RegionChange)
	RecordView(storage.ViewEvent)
}

// Options tune a Controller. Zero values fall back to defaults.
type Options struct {
	Regions         []model.Region
	LoadingFallback time.Duration
	DisconnectDelay time.Duration
	ResultMarker    string
	DownloadDir     string
	Renderer        render.Renderer
	Journal         Journal
	Logger          *slog.Logger
	Now             func() time.Time
}

func (o *Options) defaults() {
	if len(o.Regions) == 0 {
		o.Regions = model.SyncRegions
	}
	if o.LoadingFallback <= 0 {
		o.LoadingFallback = 800 * time.Millisecond
	}
	if o.DisconnectDelay < 0 {
		o.DisconnectDelay = 0
	}
	if o.ResultMarker == "" {
		o.ResultMarker = defaultResultMarker
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Controller owns the dashboard view state. Every switch starts a new
// generation; background work from older generations is cancelled and its
// results are dropped.
type Controller struct {
	client tracker.TrackerClient
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	state  model.Snapshot
	cancel context.CancelFunc
	loaded bool // a whole page has been mirrored at least once

	base       context.Context
	baseCancel context.CancelFunc
	changes    chan struct{}
}

// New creates a controller in live mode with an empty page
func New(client tracker.TrackerClient, opts Options) *Controller {
	opts.defaults()
	base, cancel := context.WithCancel(context.Background())
	return &Controller{
		client: client,
		opts:   opts,
		logger: opts.Logger.With("component", "dashboard"),
		state: model.Snapshot{
			Mode:    model.ModeLive,
			Regions: make(map[model.Region]string),
		},
		base:       base,
		baseCancel: cancel,
		changes:    make(chan struct{}, 1),
	}
}

// Changes signals after every state change. Signals coalesce.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

func (c *Controller) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Regions = make(map[model.Region]string, len(c.state.Regions))
	for k, v := range c.state.Regions {
		s.Regions[k] = v
	}
	return s
}

// Mode returns the current view mode
func (c *Controller) Mode() model.ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Mode
}

// begin starts a new generation and cancels the previous one.
// Caller holds c.mu.
func (c *Controller) begin() (context.Context, uint64) {
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.state.Generation++
	return ctx, c.state.Generation
}

// apply runs fn on the state if gen is still current
func (c *Controller) apply(gen uint64, fn func(s *model.Snapshot)) bool {
	c.mu.Lock()
	if c.state.Generation != gen {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *Controller) recordView(mode, id string) {
	if c.opts.Journal == nil {
		return
	}
	c.opts.Journal.RecordView(storage.ViewEvent{Mode: mode, Identifier: id, Timestamp: c.opts.Now()})
}

// EnterLive switches the panel to the live AI stream of a video. The loading
// overlay is hidden on the first frame or after the fallback delay,
// whichever comes first.
func (c *Controller) EnterLive(id string) error {
	if id == "" {
		return ErrEmptyIdentifier
	}
	src := c.client.LiveURL(id, c.opts.Now())

	c.mu.Lock()
	ctx, gen := c.begin()
	c.state.Mode = model.ModeLive
	c.state.Identifier = id
	c.state.Regions[model.RegionLogBody] = render.Placeholder(render.InitMessage)
	c.state.Title = LiveTitlePrefix + id
	c.state.Badge = model.BadgeLive
	c.state.Loading = true
	c.state.Panel = model.Panel{Kind: model.PanelLive, Source: src}
	c.mu.Unlock()
	c.notify()

	c.logger.Info("live mode", "id", id, "generation", gen)
	c.recordView(model.ModeLive.String(), id)

	fallback := time.AfterFunc(c.opts.LoadingFallback, func() {
		c.apply(gen, func(s *model.Snapshot) { s.Loading = false })
	})
	go c.watchStream(ctx, gen, src, fallback)
	return nil
}

func (c *Controller) watchStream(ctx context.Context, gen uint64, src string, fallback *time.Timer) {
	frames, errs := c.client.StreamLive(ctx, src)
	for f := range frames {
		first := false
		c.apply(gen, func(s *model.Snapshot) {
			if !s.Panel.Ready {
				first = true
				s.Panel.Ready = true
				s.Loading = false
			}
			s.Panel.Frames = f.Seq
			s.Panel.LastFrame = f.Size
		})
		if first {
			fallback.Stop()
			c.logger.Debug("stream ready", "url", src, "generation", gen)
		}
	}

	if err := <-errs; err != nil && ctx.Err() == nil {
		c.logger.Warn("live stream failed", "url", src, "err", err)
		c.apply(gen, func(s *model.Snapshot) { s.Panel.Err = err.Error() })
	}
}

// EnterResult switches the panel to a recorded result video and loads its
// activity log. The overlay is hidden whether or not the log arrives.
func (c *Controller) EnterResult(id string) error {
	if id == "" {
		return ErrEmptyIdentifier
	}

	c.mu.Lock()
	ctx, gen := c.begin()
	c.state.Mode = model.ModeResult
	c.state.Identifier = id
	c.state.Title = ResultTitlePrefix + id
	c.state.Badge = model.BadgeResult
	c.state.Loading = true
	c.state.Panel = model.Panel{Kind: model.PanelPlayback, Source: c.client.PlaybackURL(id)}
	c.mu.Unlock()
	c.notify()

	c.logger.Info("result mode", "id", id, "generation", gen)
	c.recordView(model.ModeResult.String(), id)

	go func() {
		entries, err := c.client.VideoLogs(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch video logs", "id", id, "err", err)
			c.apply(gen, func(s *model.Snapshot) { s.Loading = false })
			return
		}

		markup := c.opts.Renderer.RenderLog(entries)
		if !c.apply(gen, func(s *model.Snapshot) {
			s.Regions[model.RegionLogBody] = markup
			s.Loading = false
		}) {
			c.logger.Debug("dropped stale video logs", "id", id, "generation", gen)
		}
	}()
	return nil
}

// RequestOffline drops any live stream, waits for the connection to go away
// and asks the server to process the video offline. The page the server
// answers with replaces the dashboard.
func (c *Controller) RequestOffline(id string) error {
	if id == "" {
		return ErrEmptyIdentifier
	}

	c.mu.Lock()
	ctx, gen := c.begin()
	c.state.Panel = model.Panel{Kind: model.PanelMessage, Message: DisconnectMessage}
	c.state.Loading = true
	c.mu.Unlock()
	c.notify()

	c.logger.Info("offline processing requested", "id", id, "generation", gen)
	c.recordView("offline", id)

	go func() {
		select {
		case <-time.After(c.opts.DisconnectDelay):
		case <-ctx.Done():
			return
		}

		page, err := c.client.ProcessOffline(ctx, id)
		var doc *dom.Document
		if err == nil {
			doc, err = dom.ParseString(page)
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("offline processing", "id", id, "err", err)
			c.apply(gen, func(s *model.Snapshot) {
				s.Loading = false
				s.Panel = model.Panel{Kind: model.PanelMessage, Message: "Offline processing failed", Err: err.Error()}
			})
			return
		}

		c.apply(gen, func(s *model.Snapshot) {
			c.loadDocument(s, doc)
			s.Panel = model.Panel{}
			s.Loading = false
		})
		c.logger.Info("offline processing done", "id", id)
	}()
	return nil
}

// Load fetches the dashboard page and mirrors it, including the title.
// The view mode is derived from the title once, here.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	gen := c.state.Generation
	c.mu.Unlock()

	doc, err := c.fetchDocument(ctx)
	if err != nil {
		return err
	}
	if !c.apply(gen, func(s *model.Snapshot) { c.loadDocument(s, doc) }) {
		c.logger.Debug("dropped stale page load", "generation", gen)
	}
	return nil
}

// loadDocument replaces the whole state with a freshly loaded page.
// Caller holds c.mu.
func (c *Controller) loadDocument(s *model.Snapshot, doc *dom.Document) {
	for _, r := range c.opts.Regions {
		if inner, ok := doc.Inner(string(r)); ok {
			s.Regions[r] = inner
		}
	}
	c.loaded = true

	title, ok := doc.Text(string(model.RegionTitle))
	if !ok {
		return
	}
	s.Title = title
	s.Identifier = ""
	if _, after, found := strings.Cut(title, ": "); found {
		s.Identifier = strings.TrimSpace(after)
	}

	switch {
	case strings.Contains(title, c.opts.ResultMarker):
		s.Mode = model.ModeResult
		s.Badge = model.BadgeResult
	case strings.Contains(title, liveMarker):
		s.Mode = model.ModeLive
		s.Badge = model.BadgeLive
	default:
		s.Mode = model.ModeLive
		s.Badge = model.BadgeIdle
	}
}

func (c *Controller) fetchDocument(ctx context.Context) (*dom.Document, error) {
	page, err := c.client.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := dom.ParseString(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

// Sync mirrors the server's regions into the dashboard. It does nothing in
// result mode and drops its result if the view switched while fetching.
// It returns the regions that were replaced.
func (c *Controller) Sync(ctx context.Context) ([]model.Region, error) {
	c.mu.Lock()
	if c.state.Mode == model.ModeResult {
		c.mu.Unlock()
		return nil, nil
	}
	gen := c.state.Generation
	c.mu.Unlock()

	doc, err := c.fetchDocument(ctx)
	if err != nil {
		c.apply(gen, func(s *model.Snapshot) {
			if s.Mode != model.ModeResult {
				s.LastSyncErr = err.Error()
			}
		})
		return nil, err
	}

	var changed []model.Region
	var sizes []int
	applied := c.apply(gen, func(s *model.Snapshot) {
		if s.Mode == model.ModeResult {
			return
		}
		// Until a page has been mirrored there is nothing to compare with,
		// so the first successful sync takes every region it finds.
		first := !c.loaded
		for _, r := range c.opts.Regions {
			inner, ok := doc.Inner(string(r))
			if !ok {
				continue
			}
			cur, had := s.Regions[r]
			if (!had && !first) || (had && inner == cur) {
				continue
			}
			s.Regions[r] = inner
			changed = append(changed, r)
			sizes = append(sizes, len(inner))
		}
		c.loaded = true
		s.LastSync = c.opts.Now()
		s.LastSyncErr = ""
	})
	if !applied {
		c.logger.Debug("dropped stale sync", "generation", gen)
		return nil, nil
	}

	if c.opts.Journal != nil {
		now := c.opts.Now()
		for i, r := range changed {
			c.opts.Journal.RecordChange(storage.RegionChange{
				Region:     string(r),
				Generation: gen,
				Size:       sizes[i],
				Timestamp:  now,
			})
		}
	}
	return changed, nil
}

// Delete follows a delete link from a library row and mirrors the
// libraries of the page the server answers with
func (c *Controller) Delete(ctx context.Context, link string) error {
	return c.manage(ctx, "delete", link, c.client.Delete)
}

// Upload sends a raw video to the server
func (c *Controller) Upload(ctx context.Context, path string) error {
	return c.manage(ctx, "upload", path, c.client.Upload)
}

// ImportEmployees sends an employee list to the server
func (c *Controller) ImportEmployees(ctx context.Context, path string) error {
	return c.manage(ctx, "import employees", path, c.client.ImportEmployees)
}

// manage runs a library action. Only the library regions of the returned
// page are taken, so the view mode and the log are left as they are.
func (c *Controller) manage(ctx context.Context, op, arg string, call func(context.Context, string) (string, error)) error {
	page, err := call(ctx, arg)
	if err != nil {
		c.logger.Error(op, "arg", arg, "err", err)
		return err
	}
	doc, err := dom.ParseString(page)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}

	c.mu.Lock()
	for _, r := range c.opts.Regions {
		if r == model.RegionLogBody {
			continue
		}
		if inner, ok := doc.Inner(string(r)); ok {
			c.state.Regions[r] = inner
		}
	}
	c.mu.Unlock()
	c.notify()

	c.logger.Info(op+" done", "arg", arg)
	return nil
}

// DownloadResult saves a result video into the download directory
func (c *Controller) DownloadResult(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrEmptyIdentifier
	}
	path, err := c.client.DownloadResult(ctx, id, c.opts.DownloadDir)
	if err != nil {
		c.logger.Error("download result", "id", id, "err", err)
		return "", err
	}
	c.logger.Info("result downloaded", "id", id, "path", path)
	return path, nil
}

// ExportReport saves the server's activity report into the download directory
func (c *Controller) ExportReport(ctx context.Context) (string, error) {
	path, err := c.client.ExportReport(ctx, c.opts.DownloadDir)
	if err != nil {
		c.logger.Error("export report", "err", err)
		return "", err
	}
	c.logger.Info("report exported", "path", path)
	return path, nil
}

// Close cancels all background work
func (c *Controller) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.baseCancel()
}
