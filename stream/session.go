package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/sse"
	"go.uber.org/zap"
)

// Interface compliance check.
var _ chatstream.StreamHandle = (*Session)(nil)

// Session is one streaming request/response exchange.
//
// Fields in the last group are owned by the goroutine driving the state
// machine; Cancel, Done, Result and State never touch them.
type Session struct {
	client *Client
	req    chatstream.StreamRequest
	h      chatstream.Handlers
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	state      atomic.Int32
	cancelled  atomic.Bool
	terminated atomic.Bool
	deltas     atomic.Int64
	done       chan struct{}

	mu     sync.Mutex
	result chatstream.StreamResult

	// run goroutine only
	body    io.ReadCloser
	decoder *sse.Decoder
	buf     []byte
	chunk   []byte
	readErr error
	lines   []string
}

// stateFn is one step of the session; nil means terminated.
type stateFn func(*Session) stateFn

// Cancel stops the session. Reads already in flight are allowed to return
// and the body is closed; no callback that has not started yet will fire.
// Cancel may be called from inside a handler.
func (s *Session) Cancel() {
	if s.cancelled.CompareAndSwap(false, true) {
		s.cancel()
	}
}

// Done is closed after the session has terminated and released the body.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the session summary. Outcome is OutcomePending until the
// session terminates.
func (s *Session) Result() chatstream.StreamResult {
	s.mu.Lock()
	r := s.result
	s.mu.Unlock()
	r.Deltas = int(s.deltas.Load())
	return r
}

// State returns the current state of the session.
func (s *Session) State() chatstream.StreamState {
	return chatstream.StreamState(s.state.Load())
}

func (s *Session) run() {
	defer close(s.done)
	defer s.cancel()

	s.logger.Debug("stream start")
	for state := stateFn(opening); state != nil; {
		state = state(s)
	}
}

func (s *Session) setState(st chatstream.StreamState) {
	s.state.Store(int32(st))
}

func (s *Session) isCancelled() bool {
	return s.cancelled.Load() || s.ctx.Err() != nil
}

// opening sends the request. It is part of the reading phase: the session
// waits on the transport.
func opening(s *Session) stateFn {
	s.setState(chatstream.StreamStateReading)
	treq, err := s.client.buildRequest(s.req)
	if err != nil {
		return s.fail(err)
	}
	body, err := s.client.transport.RequestStreaming(s.ctx, treq)
	if err != nil {
		if s.isCancelled() {
			return s.terminateCancelled()
		}
		return s.fail(err)
	}
	if body == nil {
		if s.client.strict {
			return s.fail(chatstream.ErrEmptyBody)
		}
		s.logger.Warn("response has no body, treating as complete")
		return s.complete(chatstream.OutcomeEmptyBody)
	}
	s.body = body
	return reading
}

func reading(s *Session) stateFn {
	if s.isCancelled() {
		return s.terminateCancelled()
	}
	s.setState(chatstream.StreamStateReading)
	n, err := s.body.Read(s.buf)
	s.chunk = s.buf[:n]
	s.readErr = err
	return decoding
}

func decoding(s *Session) stateFn {
	s.setState(chatstream.StreamStateDecoding)
	s.lines = s.decoder.Feed(s.chunk)
	if errors.Is(s.readErr, io.EOF) {
		if tail, ok := s.decoder.Flush(); ok {
			s.lines = append(s.lines, tail)
		}
	}
	return dispatching
}

func dispatching(s *Session) stateFn {
	s.setState(chatstream.StreamStateDispatching)
	lines := s.lines
	s.lines = nil
	for _, line := range lines {
		if s.isCancelled() {
			return s.terminateCancelled()
		}
		switch evt := sse.Classify(line).(type) {
		case chatstream.EventDelta:
			s.deltas.Add(1)
			if s.h.OnDelta != nil {
				s.h.OnDelta(evt.Text)
			}
		case chatstream.EventDone:
			// Bytes after the completion line are discarded.
			return s.complete(chatstream.OutcomeDone)
		}
	}

	switch {
	case s.readErr == nil:
		return reading
	case errors.Is(s.readErr, io.EOF):
		if s.client.strict {
			return s.fail(chatstream.ErrStreamTruncated)
		}
		s.logger.Warn("stream ended without completion event, treating as complete")
		return s.complete(chatstream.OutcomeEndOfStream)
	case s.isCancelled():
		return s.terminateCancelled()
	default:
		return s.fail(fmt.Errorf("stream: read: %w: %w", s.readErr, chatstream.ErrTransport))
	}
}

func (s *Session) complete(outcome chatstream.Outcome) stateFn {
	if !s.terminate(outcome, nil) {
		return nil
	}
	if s.isCancelled() {
		return s.terminateCancelled()
	}
	s.logger.Debug("stream complete", zap.Stringer("outcome", outcome), zap.Int64("deltas", s.deltas.Load()))
	if s.h.OnDone != nil {
		s.h.OnDone()
	}
	return nil
}

func (s *Session) fail(err error) stateFn {
	if !s.terminate(chatstream.OutcomeFailed, err) {
		return nil
	}
	if s.isCancelled() {
		return s.terminateCancelled()
	}
	s.logger.Error("stream failed", zap.Error(err), zap.Int64("deltas", s.deltas.Load()))
	if s.h.OnFailure != nil {
		s.h.OnFailure(err)
	}
	return nil
}

func (s *Session) terminateCancelled() stateFn {
	s.terminate(chatstream.OutcomeCancelled, nil)
	// A completion or failure recorded just before cancellation was
	// observed is overridden: its callback never fired.
	s.mu.Lock()
	s.result = chatstream.StreamResult{Outcome: chatstream.OutcomeCancelled}
	s.mu.Unlock()
	s.logger.Info("stream cancelled", zap.Int64("deltas", s.deltas.Load()))
	return nil
}

// terminate records the outcome and releases the body. It reports false if
// the session had already terminated.
func (s *Session) terminate(outcome chatstream.Outcome, err error) bool {
	if !s.terminated.CompareAndSwap(false, true) {
		return false
	}
	s.setState(chatstream.StreamStateTerminated)
	s.mu.Lock()
	s.result = chatstream.StreamResult{Outcome: outcome, Err: err}
	s.mu.Unlock()
	if s.body != nil {
		if cerr := s.body.Close(); cerr != nil {
			s.logger.Debug("close body", zap.Error(cerr))
		}
	}
	return true
}
