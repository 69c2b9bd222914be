// Package mock provides test doubles for chatstream interfaces using
// function fields.
package mock

import (
	"context"
	"io"

	"github.com/fwojciec/chatstream"
)

// Interface compliance checks.
var (
	_ chatstream.Transport   = (*Transport)(nil)
	_ chatstream.TokenSource = (*TokenSource)(nil)
	_ chatstream.ChatService = (*ChatService)(nil)
	_ io.ReadCloser          = (*Body)(nil)
)

// Transport is a test double for chatstream.Transport.
// Set RequestStreamingFn before calling RequestStreaming.
type Transport struct {
	RequestStreamingFn func(ctx context.Context, req chatstream.TransportRequest) (io.ReadCloser, error)
}

// RequestStreaming delegates to RequestStreamingFn.
func (t *Transport) RequestStreaming(ctx context.Context, req chatstream.TransportRequest) (io.ReadCloser, error) {
	return t.RequestStreamingFn(ctx, req)
}

// TokenSource is a test double for chatstream.TokenSource.
type TokenSource struct {
	TokenFn func(ctx context.Context) (string, error)
}

// Token delegates to TokenFn.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	return s.TokenFn(ctx)
}

// ChatService is a test double for chatstream.ChatService.
// Set the function fields for the methods you need.
type ChatService struct {
	CreateChatFn func(ctx context.Context) (chatstream.Conversation, error)
	ListChatsFn  func(ctx context.Context) ([]chatstream.Conversation, error)
}

// CreateChat delegates to CreateChatFn.
func (s *ChatService) CreateChat(ctx context.Context) (chatstream.Conversation, error) {
	return s.CreateChatFn(ctx)
}

// ListChats delegates to ListChatsFn.
func (s *ChatService) ListChats(ctx context.Context) ([]chatstream.Conversation, error) {
	return s.ListChatsFn(ctx)
}

// Body is a test double for a response body.
// ReadFn panics when nil to catch missing setup. CloseFn is nil-safe
// because sessions always close the body.
type Body struct {
	ReadFn  func(p []byte) (int, error)
	CloseFn func() error
}

// Read delegates to ReadFn.
func (b *Body) Read(p []byte) (int, error) {
	return b.ReadFn(p)
}

// Close delegates to CloseFn. Returns nil when CloseFn is nil.
func (b *Body) Close() error {
	if b.CloseFn == nil {
		return nil
	}
	return b.CloseFn()
}
