package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rusenback/trackerdash/internal/model"
	"github.com/rusenback/trackerdash/internal/storage"
)

const (
	historyInterval = 5 * time.Second
	fileTimeout     = 2 * time.Minute
	recentViews     = 5
)

// tickCmd creates a command that sends a tick message for the history panel
func tickCmd() tea.Cmd {
	return tea.Tick(historyInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange creates a command that waits for the next dashboard change
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// fetchHistory loads per-region activity and the latest view switches
func fetchHistory(h History, tr storage.TimeRange) tea.Cmd {
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		msg := historyMsg{timeRange: tr, activity: make(map[model.Region][]float64)}
		for _, r := range model.SyncRegions {
			points, err := h.Query(string(r), tr)
			if err != nil {
				msg.err = err
				return msg
			}
			counts := make([]float64, len(points))
			for i, p := range points {
				counts[i] = float64(p.Count)
			}
			msg.activity[r] = counts
		}
		msg.views, msg.err = h.RecentViews(recentViews)
		return msg
	}
}

// downloadResult creates a command that saves a result video
func downloadResult(d Dashboard, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fileTimeout)
		defer cancel()
		path, err := d.DownloadResult(ctx, id)
		return actionMsg{message: fmt.Sprintf("Saved: %s", path), err: err}
	}
}

// exportReport creates a command that saves the activity report
func exportReport(d Dashboard) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fileTimeout)
		defer cancel()
		path, err := d.ExportReport(ctx)
		return actionMsg{message: fmt.Sprintf("Report saved: %s", path), err: err}
	}
}

// deleteEntry creates a command that follows a library delete link
func deleteEntry(d Dashboard, link, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fileTimeout)
		defer cancel()
		return actionMsg{message: "Deleted: " + name, err: d.Delete(ctx, link)}
	}
}
