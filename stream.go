package chatstream

import "context"

// StreamState indicates the current state of a streaming session.
type StreamState int

const (
	StreamStateReading     StreamState = iota // Awaiting the next chunk from the transport.
	StreamStateDecoding                       // Turning the chunk into logical lines.
	StreamStateDispatching                    // Classifying lines and delivering deltas.
	StreamStateTerminated                     // No further reads or callbacks.
)

func (s StreamState) String() string {
	switch s {
	case StreamStateReading:
		return "reading"
	case StreamStateDecoding:
		return "decoding"
	case StreamStateDispatching:
		return "dispatching"
	case StreamStateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Outcome records how a session terminated.
type Outcome int

const (
	OutcomePending     Outcome = iota // Session still running.
	OutcomeDone                       // Server sent the explicit completion event.
	OutcomeEndOfStream                // Body ended without a completion event.
	OutcomeEmptyBody                  // Transport returned no body at all.
	OutcomeFailed                     // Transport or status failure.
	OutcomeCancelled                  // Caller cancelled.
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeDone:
		return "done"
	case OutcomeEndOfStream:
		return "end_of_stream"
	case OutcomeEmptyBody:
		return "empty_body"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StreamResult summarizes a terminated session.
type StreamResult struct {
	Outcome Outcome
	Err     error // non-nil only for OutcomeFailed
	Deltas  int   // number of OnDelta calls delivered
}

// Handlers are the callbacks a session delivers to. They run on the
// session's reading goroutine and must return quickly.
//
// For every session exactly one of the following holds: OnDone is called
// once, OnFailure is called once, or the session was cancelled and neither
// is called. No callback fires after termination. Nil handlers are skipped.
type Handlers struct {
	OnDelta   func(text string)
	OnDone    func()
	OnFailure func(err error)
}

// StreamRequest identifies one send: the target conversation, the prompt
// text and the bearer credential to attach.
type StreamRequest struct {
	ChatID string
	Prompt string
	Token  string
}

// StreamHandle controls a running session.
type StreamHandle interface {
	// Cancel stops further reads and suppresses every callback that has not
	// started yet. Safe to call more than once and from inside a callback.
	Cancel()
	// Done is closed once the session has terminated and released the
	// transport.
	Done() <-chan struct{}
	// Result is meaningful after Done is closed.
	Result() StreamResult
}

// Streamer starts streaming sessions. Sessions run concurrently; there is
// no single-flight between them.
type Streamer interface {
	Start(ctx context.Context, req StreamRequest, h Handlers) StreamHandle
}
