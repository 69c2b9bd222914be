package chatstream

import (
	"fmt"
	"slices"
	"time"
)

// PendingContent is the content of an assistant placeholder before the
// first delta arrives.
const PendingContent = "Thinking..."

// DefaultTitle is used for conversations the server returns without a title.
const DefaultTitle = "Chat"

// Message is a single entry of a conversation.
// ID is stable for the life of the message.
type Message struct {
	ID        string
	Content   string
	IsUser    bool
	Timestamp time.Time
}

// Pending reports whether m is an assistant placeholder that has not
// received any delta yet.
func (m Message) Pending() bool {
	return !m.IsUser && m.Content == PendingContent
}

// Conversation is an ordered (chronological) list of messages.
type Conversation struct {
	ID        string
	Title     string
	Messages  []Message
	UpdatedAt time.Time
}

// Clone returns a copy of c that shares no mutable state with it.
func (c Conversation) Clone() Conversation {
	c.Messages = slices.Clone(c.Messages)
	return c
}

// Message returns the message with the given id.
func (c Conversation) Message(id string) (Message, bool) {
	for _, m := range c.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// AppendExchange returns a new snapshot of c with the user message and the
// assistant placeholder appended, in that order. c is not modified.
func AppendExchange(c Conversation, user, placeholder Message) Conversation {
	next := c.Clone()
	next.Messages = append(next.Messages, user, placeholder)
	next.UpdatedAt = placeholder.Timestamp
	return next
}

// ApplyDelta returns a new snapshot of c with text folded into the message
// identified by messageID. The first delta replaces the pending placeholder
// content; later deltas are appended. c is not modified.
func ApplyDelta(c Conversation, messageID, text string) (Conversation, error) {
	idx := slices.IndexFunc(c.Messages, func(m Message) bool { return m.ID == messageID })
	if idx < 0 {
		return c, fmt.Errorf("message %q in conversation %q: %w", messageID, c.ID, ErrMessageNotFound)
	}
	next := c.Clone()
	m := &next.Messages[idx]
	if m.Pending() {
		m.Content = text
	} else {
		m.Content += text
	}
	return next, nil
}
