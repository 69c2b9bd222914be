// Package stream implements [chatstream.Streamer]: one session per send,
// reading the chat server's response body and delivering deltas to the
// caller's handlers.
//
// A session is driven by a small state machine in the manner of Rob Pike's
// lexer: each state function does one step and returns the next state.
// Reading is the only blocking step.
package stream

import (
	"context"
	"fmt"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/json"
	"github.com/fwojciec/chatstream/sse"
	"go.uber.org/zap"
)

const defaultReadSize = 4096

// Interface compliance check.
var _ chatstream.Streamer = (*Client)(nil)

// Client starts streaming sessions against a fixed endpoint.
type Client struct {
	transport chatstream.Transport
	endpoint  string
	logger    *zap.Logger
	strict    bool
	readSize  int
}

// Option configures a [Client].
type Option func(*Client)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithStrictCompletion makes a session fail, instead of complete, when the
// body ends without the completion event or when there is no body at all.
func WithStrictCompletion() Option {
	return func(c *Client) { c.strict = true }
}

// WithReadSize sets the size of the read buffer.
func WithReadSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// New creates a [Client] posting to endpoint through transport.
func New(transport chatstream.Transport, endpoint string, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		endpoint:  endpoint,
		logger:    zap.NewNop(),
		readSize:  defaultReadSize,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start opens the streaming request and returns immediately. The session
// runs on its own goroutine until it completes, fails or is cancelled.
// Cancelling ctx has the same effect as calling Cancel.
func (c *Client) Start(ctx context.Context, req chatstream.StreamRequest, h chatstream.Handlers) chatstream.StreamHandle {
	s := c.newSession(ctx, req, h)
	go s.run()
	return s
}

// Run is the synchronous form of Start: it drives the session on the
// calling goroutine and returns its result.
func (c *Client) Run(ctx context.Context, req chatstream.StreamRequest, h chatstream.Handlers) chatstream.StreamResult {
	s := c.newSession(ctx, req, h)
	s.run()
	return s.Result()
}

func (c *Client) newSession(ctx context.Context, req chatstream.StreamRequest, h chatstream.Handlers) *Session {
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		client:  c,
		req:     req,
		h:       h,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		buf:     make([]byte, c.readSize),
		logger:  c.logger.With(zap.String("chat_id", req.ChatID)),
		decoder: sse.NewDecoder(),
	}
}

func (c *Client) buildRequest(req chatstream.StreamRequest) (chatstream.TransportRequest, error) {
	body, err := json.MarshalStreamRequest(req.ChatID, req.Prompt)
	if err != nil {
		return chatstream.TransportRequest{}, fmt.Errorf("stream: %w", err)
	}
	header := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "text/event-stream",
	}
	if req.Token != "" {
		header["Authorization"] = "Bearer " + req.Token
	}
	return chatstream.TransportRequest{
		Method: "POST",
		URL:    c.endpoint,
		Header: header,
		Body:   body,
	}, nil
}
