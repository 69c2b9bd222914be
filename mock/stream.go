package mock

import (
	"context"

	"github.com/fwojciec/chatstream"
)

// Interface compliance checks.
var (
	_ chatstream.Streamer     = (*Streamer)(nil)
	_ chatstream.StreamHandle = (*StreamHandle)(nil)
)

// Streamer is a test double for chatstream.Streamer.
// Set StartFn before calling Start.
type Streamer struct {
	StartFn func(ctx context.Context, req chatstream.StreamRequest, h chatstream.Handlers) chatstream.StreamHandle
}

// Start delegates to StartFn.
func (s *Streamer) Start(ctx context.Context, req chatstream.StreamRequest, h chatstream.Handlers) chatstream.StreamHandle {
	return s.StartFn(ctx, req, h)
}

// StreamHandle is a test double for chatstream.StreamHandle.
// All function fields are nil-safe: Cancel is a no-op, Done returns a nil
// channel and Result returns the zero value.
type StreamHandle struct {
	CancelFn func()
	DoneFn   func() <-chan struct{}
	ResultFn func() chatstream.StreamResult
}

// Cancel delegates to CancelFn.
func (h *StreamHandle) Cancel() {
	if h.CancelFn != nil {
		h.CancelFn()
	}
}

// Done delegates to DoneFn.
func (h *StreamHandle) Done() <-chan struct{} {
	if h.DoneFn == nil {
		return nil
	}
	return h.DoneFn()
}

// Result delegates to ResultFn.
func (h *StreamHandle) Result() chatstream.StreamResult {
	if h.ResultFn == nil {
		return chatstream.StreamResult{}
	}
	return h.ResultFn()
}
