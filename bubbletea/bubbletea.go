// Package bubbletea provides a Bubble Tea TUI for chatstream.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatstream"
)

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.cancelAll()
	}
	return err
}

// ChatsLoadedMsg carries the result of the initial chat listing.
type ChatsLoadedMsg struct {
	Chats []chatstream.Conversation
	Err   error
}

// ChatCreatedMsg carries the result of creating a chat.
type ChatCreatedMsg struct {
	Conversation chatstream.Conversation
	Err          error
}

// DeltaMsg reports that a reply in ChatID received text. The text itself
// is already in the store.
type DeltaMsg struct {
	ChatID    string
	MessageID string
}

// StreamDoneMsg reports that the reply MessageID completed.
type StreamDoneMsg struct {
	ChatID    string
	MessageID string
}

// StreamFailedMsg reports that the reply MessageID failed.
type StreamFailedMsg struct {
	ChatID    string
	MessageID string
	Err       error
}
