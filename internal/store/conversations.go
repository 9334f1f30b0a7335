// Package store provides in-memory conversation storage and filesystem
// artifact storage.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/deepagent-ai/agent-platform/internal/model"
	"github.com/deepagent-ai/agent-platform/pkg/metrics"
)

// ErrNotFound is returned when a conversation or artifact does not exist.
var ErrNotFound = errors.New("not found")

// ConversationStore keeps conversations in memory, keyed by ID. All access
// goes through a single RWMutex so concurrent appends to the same
// conversation serialize instead of racing.
type ConversationStore struct {
	mu               sync.RWMutex
	conversations    map[string]*model.Conversation
	maxConversations int
}

// NewConversationStore creates a store bounded to maxConversations entries.
// When the bound is exceeded the least-recently-updated conversation is
// evicted. A bound of zero or less means unbounded.
func NewConversationStore(maxConversations int) *ConversationStore {
	return &ConversationStore{
		conversations:    make(map[string]*model.Conversation),
		maxConversations: maxConversations,
	}
}

// Get returns a copy of the conversation, or ErrNotFound.
func (s *ConversationStore) Get(id string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy so callers never hold a reference into the guarded map.
	out := *conv
	out.Messages = make([]model.Message, len(conv.Messages))
	copy(out.Messages, conv.Messages)

	return &out, nil
}

// AppendMessage appends a message to the conversation, creating it if
// absent, and records the model selection.
func (s *ConversationStore) AppendMessage(id, modelID string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	conv, ok := s.conversations[id]
	if !ok {
		conv = &model.Conversation{
			ID:        id,
			CreatedAt: now,
		}
		s.conversations[id] = conv
		s.evictLocked(id)
		metrics.ConversationsActive.Set(float64(len(s.conversations)))
	}

	conv.ModelID = modelID
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = now

	metrics.MessagesTotal.WithLabelValues(string(msg.Role)).Inc()
}

// Delete removes a conversation. Deleting an unknown ID is a no-op.
func (s *ConversationStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, id)
	metrics.ConversationsActive.Set(float64(len(s.conversations)))
}

// Len returns the number of stored conversations.
func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.conversations)
}

// evictLocked drops the least-recently-updated conversation while the store
// exceeds its bound, never evicting keep. Caller must hold the write lock.
func (s *ConversationStore) evictLocked(keep string) {
	if s.maxConversations <= 0 {
		return
	}

	for len(s.conversations) > s.maxConversations {
		var oldestID string
		var oldest time.Time
		for id, conv := range s.conversations {
			if id == keep {
				continue
			}
			if oldestID == "" || conv.UpdatedAt.Before(oldest) {
				oldestID = id
				oldest = conv.UpdatedAt
			}
		}
		if oldestID == "" {
			return
		}
		delete(s.conversations, oldestID)
	}
}
