package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/json"
	"go.uber.org/zap"
)

// Interface compliance checks.
var (
	_ chatstream.Transport   = (*Client)(nil)
	_ chatstream.ChatService = (*Client)(nil)
)

// Client talks to the chat server. It opens streaming responses for
// [stream.Client] and serves the chat registry endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     chatstream.TokenSource
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the server base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client. Its Timeout must be zero or
// long enough for a whole response, since streams are read through it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets the credential used by the chat registry endpoints.
// Streaming requests carry their own Authorization header.
func WithTokenSource(ts chatstream.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client].
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		tokens:     chatstream.StaticToken(""),
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StreamURL returns the URL of the streaming endpoint.
func (c *Client) StreamURL() string {
	return c.baseURL + streamPath
}

// RequestStreaming performs req and returns the response body unread. It
// returns a nil body when the response has none, and a
// [*chatstream.StatusError] for non-2xx statuses.
func (c *Client) RequestStreaming(ctx context.Context, req chatstream.TransportRequest) (io.ReadCloser, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("http: %w: %w", err, chatstream.ErrTransport)
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	c.logger.Debug("request", zap.String("method", req.Method), zap.String("url", req.URL))
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http: %w: %w", err, chatstream.ErrTransport)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody || resp.StatusCode == http.StatusNoContent {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, nil
	}
	return resp.Body, nil
}

// CreateChat registers a new conversation on the server.
func (c *Client) CreateChat(ctx context.Context) (chatstream.Conversation, error) {
	data, err := c.do(ctx, http.MethodPost, createChatPath, []byte("{}"))
	if err != nil {
		return chatstream.Conversation{}, err
	}
	conv, err := json.UnmarshalCreateChat(data, c.now())
	if err != nil {
		return chatstream.Conversation{}, fmt.Errorf("http: %w", err)
	}
	return conv, nil
}

// ListChats returns every conversation known to the server, in the order
// the server sends them.
func (c *Client) ListChats(ctx context.Context) ([]chatstream.Conversation, error) {
	data, err := c.do(ctx, http.MethodGet, listChatsPath, nil)
	if err != nil {
		return nil, err
	}
	convs, err := json.UnmarshalChats(data)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return convs, nil
}

// do performs a plain JSON request and returns the whole response body.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("http: token: %w", err)
	}
	header := map[string]string{"Accept": "application/json"}
	if payload != nil {
		header["Content-Type"] = "application/json"
	}
	if token != "" {
		header["Authorization"] = "Bearer " + token
	}
	body, err := c.RequestStreaming(ctx, chatstream.TransportRequest{
		Method: method,
		URL:    c.baseURL + path,
		Header: header,
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("http: %s %s: %w", method, path, chatstream.ErrEmptyBody)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("http: read: %w: %w", err, chatstream.ErrTransport)
	}
	return data, nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &chatstream.StatusError{StatusCode: resp.StatusCode}
	}
	return &chatstream.StatusError{StatusCode: resp.StatusCode, Body: json.ErrorMessage(body)}
}
