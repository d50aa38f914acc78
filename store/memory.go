package store

import (
	"context"
	"slices"
	"sync"

	"github.com/effective-security/modelfactory/pkg/llms"
)

type inMemory struct {
	mu          sync.RWMutex
	storage     map[string][]record
	maxMessages int
}

// NewMemoryStore returns a store that keeps the messages in memory
func NewMemoryStore(opts ...Option) MessageStore {
	o := newOptions(opts)
	return &inMemory{
		maxMessages: o.maxMessages,
	}
}

func (m *inMemory) Messages(_ context.Context, sessionID string) ([]llms.Message, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil, nil
	}
	list := m.storage[sessionID]
	msgs := make([]llms.Message, 0, len(list))
	for _, r := range list {
		msgs = append(msgs, r.message())
	}
	return msgs, nil
}

func (m *inMemory) Add(_ context.Context, sessionID string, msgs ...llms.Message) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	if len(msgs) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]record)
	}
	list := m.storage[sessionID]
	for _, msg := range msgs {
		list = append(list, toRecord(msg))
	}
	if m.maxMessages > 0 && len(list) > m.maxMessages {
		list = slices.Clone(list[len(list)-m.maxMessages:])
	}
	m.storage[sessionID] = list
	return nil
}

func (m *inMemory) Reset(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, sessionID)
	}
	return nil
}

func (m *inMemory) Sessions(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.storage))
	for id := range m.storage {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
