package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDeleteLink is returned for links that do not point at one of the
// server's delete routes
var ErrNotDeleteLink = errors.New("not a tracker delete link")

var deleteRoutes = []string{"/delete_output/", "/delete_raw_upload/"}

// IsDeleteLink reports whether href points at a delete route
func IsDeleteLink(href string) bool {
	ref, err := url.Parse(href)
	if err != nil {
		return false
	}
	for _, r := range deleteRoutes {
		if strings.Contains(ref.Path, r) {
			return true
		}
	}
	return false
}

// Delete follows a delete link taken from a library region. Links are
// resolved against the server and must stay on it. The server redirects to
// the dashboard, whose page is returned.
func (c *Client) Delete(ctx context.Context, link string) (string, error) {
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("delete %q: %w", link, err)
	}
	u := c.base.ResolveReference(ref)
	if u.Scheme != c.base.Scheme || u.Host != c.base.Host || !IsDeleteLink(u.String()) {
		return "", fmt.Errorf("delete %q: %w", link, ErrNotDeleteLink)
	}

	page, err := c.getText(ctx, u.String())
	if err != nil {
		return "", fmt.Errorf("delete %q: %w", link, err)
	}
	c.logger.Info("deleted", "link", u.Path)
	return page, nil
}

// Upload sends a raw video to the server's upload folder
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	page, err := c.postFile(ctx, c.endpoint("upload").String(), "video", path)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	return page, nil
}

// ImportEmployees sends a CSV or Excel employee list for bulk import
func (c *Client) ImportEmployees(ctx context.Context, path string) (string, error) {
	page, err := c.postFile(ctx, c.endpoint("import_employees").String(), "file", path)
	if err != nil {
		return "", fmt.Errorf("import employees %s: %w", filepath.Base(path), err)
	}
	return page, nil
}

// postFile streams the file at path as a multipart form field and returns
// the page the server redirects to
func (c *Client) postFile(ctx context.Context, u, field, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	defer pr.Close() // unblocks the writer if the server answers early
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(field, filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, reqID, err := c.newRequest(ctx, http.MethodPost, u, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// uploads can be large, so only the caller's context bounds them
	resp, err := c.do(c.stream, req, reqID)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
