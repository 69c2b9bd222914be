package bubbletea_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatstream"
	bt "github.com/fwojciec/chatstream/bubbletea"
	"github.com/fwojciec/chatstream/inmem"
	"github.com/fwojciec/chatstream/mock"
	"github.com/stretchr/testify/require"
)

// fakeStreamer records the handlers of every started session so tests can
// drive them by hand.
type fakeStreamer struct {
	mu       sync.Mutex
	requests []chatstream.StreamRequest
	handlers []chatstream.Handlers
	handles  []*fakeHandle
}

type fakeHandle struct {
	mock.StreamHandle
	cancelled bool
}

func (s *fakeStreamer) Start(ctx context.Context, req chatstream.StreamRequest, h chatstream.Handlers) chatstream.StreamHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	fh := &fakeHandle{}
	fh.CancelFn = func() { fh.cancelled = true }
	s.requests = append(s.requests, req)
	s.handlers = append(s.handlers, h)
	s.handles = append(s.handles, fh)
	return fh
}

func (s *fakeStreamer) last() (chatstream.Handlers, *fakeHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers[len(s.handlers)-1], s.handles[len(s.handles)-1]
}

// fixture bundles a model with the doubles behind it.
type fixture struct {
	store    *inmem.Store
	streamer *fakeStreamer
	chats    *mock.ChatService
}

func newFixture() *fixture {
	n := 0
	return &fixture{
		store:    inmem.NewStore(),
		streamer: &fakeStreamer{},
		chats: &mock.ChatService{
			ListChatsFn: func(context.Context) ([]chatstream.Conversation, error) { return nil, nil },
			CreateChatFn: func(context.Context) (chatstream.Conversation, error) {
				n++
				return chatstream.Conversation{ID: fmt.Sprintf("new-%d", n), Title: chatstream.DefaultTitle}, nil
			},
		},
	}
}

func (f *fixture) model(t *testing.T) bt.Model {
	t.Helper()
	ids := 0
	sender := chatstream.NewSender(f.store, f.streamer, chatstream.StaticToken("tok"),
		chatstream.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("m%d", ids)
		}),
		chatstream.WithClock(func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }),
	)
	m := bt.New(f.store, f.chats, sender, chatstream.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateWithCmd sends a message and returns the updated Model and command.
func updateWithCmd(t *testing.T, m bt.Model, msg tea.Msg) (bt.Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model, cmd
}

// drain feeds every queued session notification back into the model.
func drain(t *testing.T, m bt.Model) bt.Model {
	t.Helper()
	for {
		select {
		case msg := <-bt.Updates(m):
			m = updateModel(t, m, msg)
		default:
			return m
		}
	}
}

// typeAndSend puts text in the input and presses Enter.
func typeAndSend(t *testing.T, m bt.Model, text string) bt.Model {
	t.Helper()
	m.Input.SetValue(text)
	return updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}
