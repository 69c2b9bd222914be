package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// BlockSeparator exports blockSeparator for testing.
func BlockSeparator(prev, curr MessageBlock) string {
	return blockSeparator(prev, curr)
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// Updates exposes the notification queue fed by streaming sessions.
func Updates(m Model) <-chan tea.Msg {
	return m.updates
}

// FitTitle exports fitTitle for testing.
func FitTitle(s string, width int) string {
	return fitTitle(s, width)
}

// SidebarWidth exports sidebarWidth for testing.
const SidebarWidth = sidebarWidth
