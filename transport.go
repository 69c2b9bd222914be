package chatstream

import (
	"context"
	"io"
)

// TransportRequest is a single outbound request to the streaming endpoint.
type TransportRequest struct {
	Method string
	URL    string
	Header map[string]string
	Body   []byte
}

// Transport opens streaming responses. A nil body with a nil error means
// the response carried no readable body. Non-success statuses are returned
// as errors wrapping ErrTransport.
type Transport interface {
	RequestStreaming(ctx context.Context, req TransportRequest) (io.ReadCloser, error)
}

// TokenSource supplies the bearer credential for outbound requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns t.
func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// ChatService is the remote conversation registry.
type ChatService interface {
	CreateChat(ctx context.Context) (Conversation, error)
	ListChats(ctx context.Context) ([]Conversation, error)
}

// ConversationStore holds the in-memory conversation state. Update applies
// fn atomically with respect to other updates of the same conversation.
type ConversationStore interface {
	Put(c Conversation)
	Conversation(id string) (Conversation, error)
	Conversations() []Conversation
	Update(id string, fn func(Conversation) (Conversation, error)) error
}

// Interface compliance check.
var _ TokenSource = StaticToken("")
