package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rusenback/trackerdash/internal/model"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func strPtr(s string) *string { return &s }

func TestRenderLog_Scenario(t *testing.T) {
	entries := []model.LogEntry{
		{Timestamp: "2024-01-01 08:15:00", EmployeeID: "E1", FullName: strPtr("Alice"), Action: "Rời bàn"},
		{Timestamp: "08:20:00", EmployeeID: "E2", FullName: nil, Action: "Quay lại"},
	}

	out := RenderLog(entries)
	rows := strings.Split(strings.TrimSuffix(out, "</tr>"), "</tr>")
	assert.Equal(t, len(rows), 2)

	assert.Assert(t, is.Contains(rows[0], ">08:15:00<"))
	assert.Assert(t, !strings.Contains(rows[0], "2024-01-01"))
	assert.Assert(t, is.Contains(rows[0], "Alice"))
	assert.Assert(t, is.Contains(rows[0], `data-category="alert"`))
	assert.Assert(t, is.Contains(rows[0], "text-danger"))

	assert.Assert(t, is.Contains(rows[1], ">08:20:00<"))
	assert.Assert(t, is.Contains(rows[1], UnknownName))
	assert.Assert(t, is.Contains(rows[1], `data-category="normal"`))
	assert.Assert(t, is.Contains(rows[1], "text-success"))
}

func TestRenderLog_Deterministic(t *testing.T) {
	entries := []model.LogEntry{
		{Timestamp: "2024-01-01 09:00:00", EmployeeID: "E7", FullName: strPtr("Bình"), Action: "Làm việc"},
		{Timestamp: "09:05:00", EmployeeID: "E7", FullName: strPtr(""), Action: "Rời bàn (5 phút)"},
	}
	first := RenderLog(entries)
	for i := 0; i < 10; i++ {
		assert.Equal(t, RenderLog(entries), first)
	}
}

func TestRenderLog_Empty(t *testing.T) {
	for _, entries := range [][]model.LogEntry{nil, {}} {
		out := RenderLog(entries)
		assert.Equal(t, strings.Count(out, "<tr>"), 1)
		assert.Assert(t, is.Contains(out, `colspan="3"`))
		assert.Assert(t, is.Contains(out, NoDataMessage))
	}
}

func TestRenderLog_RowCount(t *testing.T) {
	for _, n := range []int{1, 2, 5, 40} {
		entries := make([]model.LogEntry, n)
		for i := range entries {
			entries[i] = model.LogEntry{
				Timestamp:  fmt.Sprintf("10:%02d:00", i%60),
				EmployeeID: fmt.Sprintf("E%d", i),
				Action:     "Quay lại",
			}
		}
		out := RenderLog(entries)
		assert.Equal(t, strings.Count(out, "<tr>"), n, "n=%d", n)
		assert.Equal(t, strings.Count(out, "colspan"), 0, "n=%d", n)
	}
}

func TestRenderLog_ExactlyOneCategory(t *testing.T) {
	actions := []string{"Rời bàn", "Quay lại", "", "Đã rời bàn", "Rời bàn lúc 10h", "rời bàn"}
	for _, a := range actions {
		out := RenderLog([]model.LogEntry{{Timestamp: "10:00:00", EmployeeID: "E1", Action: a}})
		alerts := strings.Count(out, `data-category="alert"`)
		normals := strings.Count(out, `data-category="normal"`)
		assert.Equal(t, alerts+normals, 1, "action %q", a)
		assert.Equal(t, alerts == 1, strings.Contains(a, AwayMarker), "action %q", a)
	}
}

func TestRenderLog_EscapesMarkup(t *testing.T) {
	out := RenderLog([]model.LogEntry{{
		Timestamp:  "10:00:00",
		EmployeeID: "<script>x</script>",
		Action:     "Quay lại",
	}})
	assert.Assert(t, !strings.Contains(out, "<script>"))
	assert.Assert(t, is.Contains(out, "&lt;script&gt;"))
}

func TestRenderer_CustomMarker(t *testing.T) {
	r := Renderer{AwayMarker: "Away"}
	assert.Equal(t, r.Classify("Away from desk"), model.CategoryAlert)
	assert.Equal(t, r.Classify("Rời bàn"), model.CategoryNormal)
	assert.Equal(t, Classify("Rời bàn"), model.CategoryAlert)
}

func TestPlaceholder(t *testing.T) {
	out := Placeholder(InitMessage)
	assert.Equal(t, out, `<tr><td colspan="3" class="text-center py-3 text-muted">`+InitMessage+`</td></tr>`)
}
