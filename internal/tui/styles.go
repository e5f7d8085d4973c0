package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("243"))
	activeTabStyle = tabStyle.Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))

	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle      = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("243"))
	pendingStyle   = lipgloss.NewStyle().Faint(true)
	loadingStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("243"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errBannerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("160"))
)
