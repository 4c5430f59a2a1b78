// Package render turns tracker log entries into the rows of the dashboard's
// activity table.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/rusenback/trackerdash/internal/model"
)

const (
	// AwayMarker is the action text the tracker uses when an employee leaves the desk
	AwayMarker = "Rời bàn"

	UnknownName   = "Chưa rõ"
	NoDataMessage = "Không có dữ liệu cho phiên này"
	InitMessage   = "Đang khởi tạo Engine AI..."

	columns = 3
)

var rowsTmpl = template.Must(template.New("rows").Parse(
	`{{range .}}<tr>` +
		`<td><span class="badge bg-dark fw-normal">{{.Time}}</span></td>` +
		`<td><span class="fw-bold text-dark">{{.EmployeeID}}</span><small class="d-block text-muted">{{.Name}}</small></td>` +
		`<td><span class="{{.BadgeClass}}" data-category="{{.Category}}">{{.Action}}</span></td>` +
		`</tr>{{end}}`))

var placeholderTmpl = template.Must(template.New("placeholder").Parse(
	`<tr><td colspan="{{.Columns}}" class="text-center py-3 text-muted">{{.Message}}</td></tr>`))

var badgeClasses = map[model.Category]string{
	model.CategoryAlert:  "badge bg-danger-subtle text-danger border-0",
	model.CategoryNormal: "badge bg-success-subtle text-success border-0",
}

type row struct {
	Time       string
	EmployeeID string
	Name       string
	Action     string
	Category   string
	BadgeClass string
}

// Renderer renders log tables. The zero value uses AwayMarker.
type Renderer struct {
	AwayMarker string
}

func (r Renderer) marker() string {
	if r.AwayMarker == "" {
		return AwayMarker
	}
	return r.AwayMarker
}

// Classify returns CategoryAlert when the action contains the away marker
func (r Renderer) Classify(action string) model.Category {
	if strings.Contains(action, r.marker()) {
		return model.CategoryAlert
	}
	return model.CategoryNormal
}

// RenderLog renders one table row per entry, or a single "no data" row when
// entries is empty. Output depends only on the input.
func (r Renderer) RenderLog(entries []model.LogEntry) string {
	if len(entries) == 0 {
		return Placeholder(NoDataMessage)
	}

	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if name == "" {
			name = UnknownName
		}
		cat := r.Classify(e.Action)
		rows = append(rows, row{
			Time:       e.DisplayTime(),
			EmployeeID: e.EmployeeID,
			Name:       name,
			Action:     e.Action,
			Category:   cat.String(),
			BadgeClass: badgeClasses[cat],
		})
	}

	var buf bytes.Buffer
	if err := rowsTmpl.Execute(&buf, rows); err != nil {
		// the template only reads string fields
		panic(err)
	}
	return buf.String()
}

var std Renderer

// Classify classifies an action with the default away marker
func Classify(action string) model.Category {
	return std.Classify(action)
}

// RenderLog renders entries with the default away marker
func RenderLog(entries []model.LogEntry) string {
	return std.RenderLog(entries)
}

// Placeholder renders a single row spanning every column of the log table
func Placeholder(message string) string {
	var buf bytes.Buffer
	if err := placeholderTmpl.Execute(&buf, struct {
		Columns int
		Message string
	}{columns, message}); err != nil {
		panic(err)
	}
	return buf.String()
}
