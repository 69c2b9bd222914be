package bubbletea

// MessageBlock is a renderable element in the conversation.
// View takes a width parameter so the root model controls layout and
// blocks are testable in isolation.
type MessageBlock interface {
	View(width int) string
}

// blockSeparator returns the gap placed between two consecutive blocks.
// An error is attached directly below the message it belongs to.
func blockSeparator(prev, curr MessageBlock) string {
	if _, ok := curr.(*ErrorBlock); ok {
		return "\n"
	}
	return "\n\n"
}
