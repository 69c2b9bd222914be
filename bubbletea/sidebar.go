package bubbletea

import (
	"strings"

	"github.com/fwojciec/chatstream"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const (
	sidebarWidth   = 28
	streamingMark  = "● "
	idleMark       = "  "
	ellipsis       = "…"
	untitledMarker = "(untitled)"
)

// sidebarEntry is one row of the chat list.
type sidebarEntry struct {
	ID        string
	Title     string
	Streaming bool
}

// renderSidebar draws the chat list, one title per row, truncated to width
// display cells. Rows past height are scrolled so selected stays visible.
func renderSidebar(entries []sidebarEntry, selected, width, height int, styles Styles) string {
	if height < 1 {
		height = 1
	}
	first := 0
	if selected >= height {
		first = selected - height + 1
	}

	var b strings.Builder
	for i := first; i < len(entries) && i < first+height; i++ {
		if i > first {
			b.WriteString("\n")
		}
		e := entries[i]
		mark := idleMark
		if e.Streaming {
			mark = streamingMark
		}
		row := fitTitle(mark+displayTitle(e.Title), width)
		if i == selected {
			row = styles.Selected.Render(row)
		}
		b.WriteString(row)
	}
	if len(entries) == 0 {
		b.WriteString(styles.Muted.Render(fitTitle("No chats", width)))
	}
	return styles.Sidebar.Render(b.String())
}

// cells measures terminal width independent of the locale, so ambiguous
// runes such as the ellipsis count as one cell.
var cells = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

func displayTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return untitledMarker
	}
	return title
}

// fitTitle truncates s to width display cells and pads it to exactly width.
// Grapheme clusters are never split.
func fitTitle(s string, width int) string {
	if uniseg.StringWidth(s) > width {
		var b strings.Builder
		w := 0
		limit := width - cells.StringWidth(ellipsis)
		g := uniseg.NewGraphemes(s)
		for g.Next() {
			cw := g.Width()
			if w+cw > limit {
				break
			}
			b.WriteString(g.Str())
			w += cw
		}
		s = b.String() + ellipsis
	}
	return cells.FillRight(s, width)
}

func sidebarEntries(convs []chatstream.Conversation, streaming func(id string) bool) []sidebarEntry {
	entries := make([]sidebarEntry, len(convs))
	for i, c := range convs {
		entries[i] = sidebarEntry{ID: c.ID, Title: c.Title, Streaming: streaming(c.ID)}
	}
	return entries
}
