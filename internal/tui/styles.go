package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B4BEFE"))

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1E1E2E")).
		Background(lipgloss.Color("#CBA6F7"))

	selectedStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1E1E2E")).
		Background(lipgloss.Color("#89B4FA"))

	liveBadgeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1E1E2E")).
		Background(lipgloss.Color("#F38BA8")).
		Padding(0, 1)

	resultBadgeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1E1E2E")).
		Background(lipgloss.Color("#A6E3A1")).
		Padding(0, 1)

	idleBadgeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CDD6F4")).
		Background(lipgloss.Color("#45475A")).
		Padding(0, 1)

	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))

	normalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8")).Padding(1, 0)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#585B70")).
		Padding(1, 2)

	focusedPanelStyle = panelStyle.BorderForeground(lipgloss.Color("#89B4FA"))
)
