// Package goldmark renders assistant replies, written in markdown, as
// ANSI-styled terminal text. Parsing is done by goldmark; styling by
// lipgloss.
package goldmark

import "github.com/fwojciec/chatstream"

const defaultWidth = 80

// Render parses markdown source and returns styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width. Code blocks
// keep their lines as written.
func Render(source string, width int, theme chatstream.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme).render([]byte(source), width)
}
