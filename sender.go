package chatstream

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender orchestrates one send: it records the user message and an
// assistant placeholder in the store, starts a streaming session and folds
// the session's deltas into the placeholder.
type Sender struct {
	store    ConversationStore
	streamer Streamer
	tokens   TokenSource
	logger   *zap.Logger
	newID    func() string
	now      func() time.Time
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSenderLogger sets the logger. Default is a no-op logger.
func WithSenderLogger(l *zap.Logger) SenderOption {
	return func(s *Sender) { s.logger = l }
}

// WithIDGenerator overrides message ID generation. Default is random UUIDs.
func WithIDGenerator(fn func() string) SenderOption {
	return func(s *Sender) { s.newID = fn }
}

// WithClock overrides the time source used for message timestamps.
func WithClock(fn func() time.Time) SenderOption {
	return func(s *Sender) { s.now = fn }
}

// NewSender creates a Sender.
func NewSender(store ConversationStore, streamer Streamer, tokens TokenSource, opts ...SenderOption) *Sender {
	s := &Sender{
		store:    store,
		streamer: streamer,
		tokens:   tokens,
		logger:   zap.NewNop(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SendOption configures a single Send invocation.
type SendOption func(*sendConfig)

type sendConfig struct {
	onDelta   func(Exchange, string)
	onDone    func(Exchange)
	onFailure func(Exchange, error)
}

// WithOnDelta registers a callback invoked after each delta has been
// applied to the store.
func WithOnDelta(fn func(ex Exchange, text string)) SendOption {
	return func(c *sendConfig) { c.onDelta = fn }
}

// WithOnDone registers a callback invoked once the stream completed.
func WithOnDone(fn func(ex Exchange)) SendOption {
	return func(c *sendConfig) { c.onDone = fn }
}

// WithOnFailure registers a callback invoked once if the stream failed.
// The placeholder keeps whatever content it accumulated.
func WithOnFailure(fn func(ex Exchange, err error)) SendOption {
	return func(c *sendConfig) { c.onFailure = fn }
}

// Exchange identifies the messages created by one Send and the session
// streaming into them.
type Exchange struct {
	ChatID        string
	UserID        string
	PlaceholderID string
	Handle        StreamHandle
}

// Send appends the user message and the placeholder to conversation chatID,
// then starts streaming the reply. Both messages exist in the store before
// Send starts the session. Deltas are applied to the placeholder by ID, so
// the caller may display another conversation in the meantime.
func (s *Sender) Send(ctx context.Context, chatID, prompt string, opts ...SendOption) (Exchange, error) {
	var cfg sendConfig
	for _, o := range opts {
		o(&cfg)
	}

	req := StreamRequest{ChatID: chatID, Prompt: prompt}
	if err := req.Validate(); err != nil {
		return Exchange{}, err
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return Exchange{}, fmt.Errorf("token: %w", err)
	}
	req.Token = token

	now := s.now()
	user := Message{ID: s.newID(), Content: prompt, IsUser: true, Timestamp: now}
	placeholder := Message{ID: s.newID(), Content: PendingContent, Timestamp: now}
	err = s.store.Update(chatID, func(c Conversation) (Conversation, error) {
		return AppendExchange(c, user, placeholder), nil
	})
	if err != nil {
		return Exchange{}, err
	}

	// Callbacks see the exchange without its handle; the handle only exists
	// once Start returns.
	ex := Exchange{ChatID: chatID, UserID: user.ID, PlaceholderID: placeholder.ID}
	logger := s.logger.With(zap.String("chat_id", chatID), zap.String("message_id", placeholder.ID))

	h := Handlers{
		OnDelta: func(text string) {
			err := s.store.Update(chatID, func(c Conversation) (Conversation, error) {
				return ApplyDelta(c, placeholder.ID, text)
			})
			if err != nil {
				logger.Warn("drop delta", zap.Error(err))
				return
			}
			if cfg.onDelta != nil {
				cfg.onDelta(ex, text)
			}
		},
		OnDone: func() {
			if cfg.onDone != nil {
				cfg.onDone(ex)
			}
		},
		OnFailure: func(err error) {
			logger.Error("stream failed", zap.Error(err))
			if cfg.onFailure != nil {
				cfg.onFailure(ex, err)
			}
		},
	}
	started := ex
	started.Handle = s.streamer.Start(ctx, req, h)
	return started, nil
}
