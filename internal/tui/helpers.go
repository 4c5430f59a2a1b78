package tui

// truncate shortens a string to a maximum number of runes
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 0 {
		return ""
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// calculateVisibleLogLines calculates how many log rows fit in the log panel
func (m Model) calculateVisibleLogLines() int {
	// Top row is 60% of height; reserve borders, padding, title and header
	topHeight := int(float64(m.height) * 0.6)
	visibleLines := topHeight - 10
	if visibleLines < 3 {
		visibleLines = 3
	}
	return visibleLines
}

// calculateMaxScroll calculates the maximum scroll position
func (m Model) calculateMaxScroll() int {
	maxScroll := len(m.logRows) - m.calculateVisibleLogLines()
	if maxScroll < 0 {
		maxScroll = 0
	}
	return maxScroll
}
