package tui

import "github.com/charmbracelet/lipgloss"

// View renders the TUI interface
func (m Model) View() string {
	return m.renderFourPanelView()
}

// renderFourPanelView renders the four-panel grid layout
func (m Model) renderFourPanelView() string {
	// 45% left, 55% right for columns
	// 60% top, 40% bottom for rows
	leftWidth := int(float64(m.width) * 0.45)
	rightWidth := m.width - leftWidth

	topHeight := int(float64(m.height) * 0.6)
	bottomHeight := m.height - topHeight

	topLeftPanel := m.renderVideoPanel(leftWidth, topHeight)
	topRightPanel := m.renderLogPanel(rightWidth, topHeight)
	bottomLeftPanel := m.renderLibraryPanel(leftWidth, bottomHeight)
	bottomRightPanel := m.renderHistoryPanel(rightWidth, bottomHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, topLeftPanel, topRightPanel)
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top, bottomLeftPanel, bottomRightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow)
}
