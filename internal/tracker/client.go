package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds the tracker server connection settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5000",
		Timeout: 10 * time.Second,
	}
}

// Client talks to the tracker server's dashboard endpoints
type Client struct {
	base    *url.URL
	http    *http.Client
	stream  *http.Client // no overall timeout, bounded by the caller's context
	session string
	logger  *slog.Logger
}

// NewClient creates a client for the server at cfg.BaseURL
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	return &Client{
		base:    base,
		http:    &http.Client{Timeout: cfg.Timeout},
		stream:  &http.Client{},
		session: uuid.New().String(),
		logger:  logger.With("component", "tracker"),
	}, nil
}

// Session returns the id this client sends with every request
func (c *Client) Session() string {
	return c.session
}

// endpoint joins path segments onto the base URL, escaping each segment
func (c *Client) endpoint(segments ...string) *url.URL {
	u := *c.base
	escaped := u.EscapedPath()
	for _, s := range segments {
		escaped += "/" + url.PathEscape(s)
	}
	if escaped == "" {
		escaped = "/"
	}
	if p, err := url.PathUnescape(escaped); err == nil {
		u.Path = p
	}
	u.RawPath = escaped
	return &u
}

// LiveURL is the live stream source; t busts caches between switches
func (c *Client) LiveURL(id string, t time.Time) string {
	u := c.endpoint("video_feed", id)
	u.RawQuery = "t=" + strconv.FormatInt(t.UnixMilli(), 10)
	return u.String()
}

// PlaybackURL is the recorded result video source
func (c *Client) PlaybackURL(id string) string {
	return c.endpoint("view_output", id).String()
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, "", err
	}
	reqID := uuid.New().String()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("X-Client-Session", c.session)
	return req, reqID, nil
}

// get performs a GET and returns the response after checking its status.
// The caller closes the body.
func (c *Client) get(ctx context.Context, hc *http.Client, u string) (*http.Response, error) {
	req, reqID, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(hc, req, reqID)
}

// do sends req and checks the response status. The caller closes the body.
func (c *Client) do(hc *http.Client, req *http.Request, reqID string) (*http.Response, error) {
	u := req.URL.String()
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("request", "url", u, "status", resp.StatusCode, "request_id", reqID, "elapsed", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{URL: u, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// getText reads a whole text response
func (c *Client) getText(ctx context.Context, u string) (string, error) {
	resp, err := c.get(ctx, c.http, u)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", u, err)
	}
	return string(body), nil
}

// Dashboard fetches the dashboard root page
func (c *Client) Dashboard(ctx context.Context) (string, error) {
	page, err := c.getText(ctx, c.endpoint().String())
	if err != nil {
		return "", fmt.Errorf("fetch dashboard: %w", err)
	}
	return page, nil
}

// ProcessOffline asks the server to process a video offline. The server
// answers once processing is done, redirecting to the dashboard page, which
// is returned.
func (c *Client) ProcessOffline(ctx context.Context, id string) (string, error) {
	req, reqID, err := c.newRequest(ctx, http.MethodGet, c.endpoint("process_offline", id).String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.stream.Do(req)
	if err != nil {
		return "", fmt.Errorf("process offline %s: %w", id, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request", "url", req.URL.String(), "status", resp.StatusCode, "request_id", reqID)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("process offline %s: %w", id, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("process offline %s: %w",
			id, &StatusError{URL: req.URL.String(), Code: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}
	return string(body), nil
}
