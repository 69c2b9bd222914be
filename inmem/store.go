// Package inmem implements [chatstream.ConversationStore] in memory.
package inmem

import (
	"fmt"
	"slices"
	"sync"

	"github.com/fwojciec/chatstream"
)

// Interface compliance check.
var _ chatstream.ConversationStore = (*Store)(nil)

// Store keeps conversations newest first. Snapshots returned by its
// methods share no state with the store.
//
// Updates to different conversations do not block each other; updates to
// the same conversation are serialized.
type Store struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
	notify  func(id string)
}

type entry struct {
	mu   sync.Mutex
	conv chatstream.Conversation
}

// Option configures a [Store].
type Option func(*Store)

// WithNotify registers fn to be called after every successful Put or
// Update, with the ID of the changed conversation. fn runs on the caller's
// goroutine after all locks are released.
func WithNotify(fn func(id string)) Option {
	return func(s *Store) { s.notify = fn }
}

// NewStore creates an empty [Store].
func NewStore(opts ...Option) *Store {
	s := &Store{entries: make(map[string]*entry)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the store contents with convs, keeping their order.
func (s *Store) Load(convs []chatstream.Conversation) {
	s.mu.Lock()
	s.order = s.order[:0]
	s.entries = make(map[string]*entry, len(convs))
	for _, c := range convs {
		if _, ok := s.entries[c.ID]; ok {
			continue
		}
		s.order = append(s.order, c.ID)
		s.entries[c.ID] = &entry{conv: c.Clone()}
	}
	s.mu.Unlock()
}

// Put inserts c at the front, or replaces the existing conversation with
// the same ID in place.
func (s *Store) Put(c chatstream.Conversation) {
	c = c.Clone()
	s.mu.Lock()
	if e, ok := s.entries[c.ID]; ok {
		s.mu.Unlock()
		e.mu.Lock()
		e.conv = c
		e.mu.Unlock()
	} else {
		s.entries[c.ID] = &entry{conv: c}
		s.order = slices.Insert(s.order, 0, c.ID)
		s.mu.Unlock()
	}
	s.changed(c.ID)
}

// Conversation returns a snapshot of the conversation with the given ID.
func (s *Store) Conversation(id string) (chatstream.Conversation, error) {
	e, err := s.entry(id)
	if err != nil {
		return chatstream.Conversation{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conv.Clone(), nil
}

// Conversations returns snapshots of all conversations, newest first.
func (s *Store) Conversations() []chatstream.Conversation {
	s.mu.RLock()
	entries := make([]*entry, len(s.order))
	for i, id := range s.order {
		entries[i] = s.entries[id]
	}
	s.mu.RUnlock()

	convs := make([]chatstream.Conversation, len(entries))
	for i, e := range entries {
		e.mu.Lock()
		convs[i] = e.conv.Clone()
		e.mu.Unlock()
	}
	return convs
}

// Update replaces the conversation with fn's result. If fn fails the
// conversation is left unchanged and the error is returned.
func (s *Store) Update(id string, fn func(chatstream.Conversation) (chatstream.Conversation, error)) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	next, err := fn(e.conv.Clone())
	if err != nil {
		e.mu.Unlock()
		return err
	}
	next.ID = id
	e.conv = next
	e.mu.Unlock()
	s.changed(id)
	return nil
}

func (s *Store) entry(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("conversation %q: %w", id, chatstream.ErrConversationNotFound)
	}
	return e, nil
}

func (s *Store) changed(id string) {
	if s.notify != nil {
		s.notify(id)
	}
}
