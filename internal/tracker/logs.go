// internal/tracker/logs.go
package tracker

import (
	"context"
	"fmt"
	"io"

	"github.com/rusenback/trackerdash/internal/model"
	"github.com/valyala/fastjson"
)

var parsers fastjson.ParserPool

// VideoLogs fetches the recorded actions of a processed video
func (c *Client) VideoLogs(ctx context.Context, id string) ([]model.LogEntry, error) {
	u := c.endpoint("get_video_logs", id).String()
	resp, err := c.get(ctx, c.http, u)
	if err != nil {
		return nil, fmt.Errorf("fetch logs for %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read logs for %s: %w", id, err)
	}

	entries, err := parseLogEntries(body)
	if err != nil {
		return nil, fmt.Errorf("decode logs for %s: %w", id, err)
	}
	return entries, nil
}

// parseLogEntries decodes the JSON array served by get_video_logs.
// Numeric ids are kept in their JSON spelling and a null or missing
// full_name leaves FullName nil.
func parseLogEntries(body []byte) ([]model.LogEntry, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, err
	}
	arr, err := v.Array()
	if err != nil {
		return nil, err
	}

	entries := make([]model.LogEntry, 0, len(arr))
	for _, item := range arr {
		if item.Type() != fastjson.TypeObject {
			continue
		}
		e := model.LogEntry{
			Timestamp:  scalar(item.Get("timestamp")),
			EmployeeID: scalar(item.Get("employee_id")),
			Action:     scalar(item.Get("action")),
		}
		if fn := item.Get("full_name"); fn != nil && fn.Type() != fastjson.TypeNull {
			name := scalar(fn)
			e.FullName = &name
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// scalar renders a JSON string or number as text; other types become ""
func scalar(v *fastjson.Value) string {
	if v == nil {
		return ""
	}
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return string(v.MarshalTo(nil))
	default:
		return ""
	}
}
