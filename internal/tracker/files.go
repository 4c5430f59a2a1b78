package tracker

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DownloadResult saves a processed result video into dir
func (c *Client) DownloadResult(ctx context.Context, id, dir string) (string, error) {
	path, err := c.save(ctx, c.endpoint("download_output", id).String(), dir, id)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", id, err)
	}
	return path, nil
}

// ExportReport saves the server's activity report into dir
func (c *Client) ExportReport(ctx context.Context, dir string) (string, error) {
	fallback := "Personnel_Report_" + strconv.FormatInt(time.Now().Unix(), 10) + ".xlsx"
	path, err := c.save(ctx, c.endpoint("export_report").String(), dir, fallback)
	if err != nil {
		return "", fmt.Errorf("export report: %w", err)
	}
	return path, nil
}

// save streams a response body to dir. The server's attachment filename wins
// over name when present.
func (c *Client) save(ctx context.Context, u, dir, name string) (string, error) {
	resp, err := c.get(ctx, c.stream, u)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fn := filepath.Base(params["filename"]); fn != "." && fn != "/" && fn != "" {
			name = fn
		}
	}
	name = filepath.Base(name)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
