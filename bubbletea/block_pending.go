package bubbletea

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatstream"
)

var _ MessageBlock = (*PendingBlock)(nil)

// PendingBlock renders an assistant placeholder that has not received any
// text yet.
type PendingBlock struct {
	styles Styles
}

// NewPendingBlock creates a PendingBlock.
func NewPendingBlock(styles Styles) *PendingBlock {
	return &PendingBlock{styles: styles}
}

func (b *PendingBlock) View(width int) string {
	return lipgloss.NewStyle().Width(width).Render(b.styles.Pending.Render(chatstream.PendingContent))
}
