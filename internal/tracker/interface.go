// internal/tracker/interface.go
package tracker

import (
	"context"
	"time"

	"github.com/rusenback/trackerdash/internal/model"
)

// TrackerClient lets the dashboard be tested against fakes
type TrackerClient interface {
	LiveURL(id string, t time.Time) string
	PlaybackURL(id string) string
	Dashboard(ctx context.Context) (string, error)
	VideoLogs(ctx context.Context, id string) ([]model.LogEntry, error)
	StreamLive(ctx context.Context, url string) (<-chan Frame, <-chan error)
	ProcessOffline(ctx context.Context, id string) (string, error)
	DownloadResult(ctx context.Context, id, dir string) (string, error)
	ExportReport(ctx context.Context, dir string) (string, error)
	Delete(ctx context.Context, link string) (string, error)
	Upload(ctx context.Context, path string) (string, error)
	ImportEmployees(ctx context.Context, path string) (string, error)
}

// Make sure Client implements the interface
var _ TrackerClient = (*Client)(nil)
