package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/advigo/advigo/providers/ai"
	"github.com/advigo/advigo/providers/memory"
)

// MapStore is a simple, concurrency-safe in-memory conversation store.
// Histories are kept per conversation id in a map guarded by an RWMutex,
// which is efficient for the read-heavy access pattern of prompt rendering.
type MapStore struct {
	mu            sync.RWMutex
	conversations map[string][]ai.Message
}

// New returns a new, empty [MapStore] ready for immediate use.
func New() *MapStore {
	return &MapStore{
		conversations: make(map[string][]ai.Message),
	}
}

// Ensure MapStore implements memory.Store at compile time.
var _ memory.Store = (*MapStore)(nil)

// Messages returns a copy of the conversation history, oldest first, to avoid
// external mutation of internal state. The returned slice is always non-nil.
// The context parameter is accepted for interface compliance but is not used
// by the in-memory implementation. The returned error is always nil.
func (m *MapStore) Messages(_ context.Context, conversationID string) ([]ai.Message, error) {
	m.mu.RLock()
	history := m.conversations[conversationID]
	if len(history) == 0 {
		m.mu.RUnlock()
		return []ai.Message{}, nil
	}
	out := make([]ai.Message, len(history))
	copy(out, history)
	m.mu.RUnlock()
	return out, nil
}

// Append stores copies of the given messages at the end of the conversation
// history, preserving their order. It is a no-op when messages is empty.
// The returned error is always nil.
func (m *MapStore) Append(_ context.Context, conversationID string, messages []ai.Message) error {
	if len(messages) == 0 {
		return nil
	}
	m.mu.Lock()
	m.conversations[conversationID] = append(m.conversations[conversationID], messages...)
	m.mu.Unlock()
	return nil
}

// Clear removes the conversation history. Clearing an unknown conversation id
// is a no-op. The returned error is always nil.
func (m *MapStore) Clear(_ context.Context, conversationID string) error {
	m.mu.Lock()
	delete(m.conversations, conversationID)
	m.mu.Unlock()
	return nil
}

// Conversations returns the ids of all conversations with recorded history,
// sorted lexicographically. The returned slice is always non-nil.
func (m *MapStore) Conversations() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.conversations))
	for id := range m.conversations {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
