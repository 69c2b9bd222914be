package chatstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation before anything
	// was sent.
	ErrValidation = errors.New("validation error")

	// ErrTransport indicates the streaming request could not be completed:
	// connection failure, non-success status, or a truncated stream in
	// strict mode.
	ErrTransport = errors.New("transport error")

	// ErrConversationNotFound indicates the target conversation is unknown
	// to the store.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrMessageNotFound indicates the target message does not exist in
	// its conversation.
	ErrMessageNotFound = errors.New("message not found")

	// ErrStreamTruncated indicates the stream ended without an explicit
	// completion event. Only reported in strict completion mode.
	ErrStreamTruncated = fmt.Errorf("stream ended without completion event: %w", ErrTransport)

	// ErrEmptyBody indicates the response carried no readable body. Only
	// reported in strict completion mode.
	ErrEmptyBody = fmt.Errorf("response has no body: %w", ErrTransport)
)

// StatusError is returned when the server answers with a non-success
// HTTP status. It unwraps to ErrTransport.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Unwrap returns ErrTransport so callers can match with errors.Is.
func (e *StatusError) Unwrap() error { return ErrTransport }
