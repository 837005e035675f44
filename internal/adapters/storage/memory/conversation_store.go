// Package memory provides an in-process ConversationStore used by tests
// and as the "memory" storage backend for local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

type storedExchange struct {
	id               domain.ExchangeID
	userMessage      string
	assistantMessage string
	timestamp        time.Time
	createdAt        time.Time
	metadata         map[string]any
}

// ConversationStore keeps exchanges per conversation in insertion order,
// which makes chronological ordering stable by construction.
type ConversationStore struct {
	mu        sync.RWMutex
	exchanges map[domain.ConversationID][]storedExchange
	now       func() time.Time
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		exchanges: make(map[domain.ConversationID][]storedExchange),
		now:       time.Now,
	}
}

// SetNow overrides the clock, for tests that need controlled timestamps.
func (s *ConversationStore) SetNow(now func() time.Time) {
	s.now = now
}

func (s *ConversationStore) AppendExchange(
	_ context.Context,
	id domain.ConversationID,
	userMessage, assistantMessage string,
	metadata map[string]any,
) (domain.ExchangeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	ex := storedExchange{
		id:               domain.ExchangeID(uuid.NewString()),
		userMessage:      userMessage,
		assistantMessage: assistantMessage,
		timestamp:        now,
		createdAt:        now,
		metadata:         metadata,
	}
	s.exchanges[id] = append(s.exchanges[id], ex)
	return ex.id, nil
}

func (s *ConversationStore) GetHistory(_ context.Context, id domain.ConversationID, limit int) (*domain.ConversationHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exchanges := s.exchanges[id]
	if limit > 0 && len(exchanges) > limit {
		exchanges = exchanges[:limit]
	}

	history := &domain.ConversationHistory{
		ConversationID: id,
		Messages:       []domain.ChatMessage{},
	}

	for _, ex := range exchanges {
		if history.CreatedAt == nil {
			created := ex.createdAt
			history.CreatedAt = &created
		}
		updated := ex.timestamp
		history.UpdatedAt = &updated

		history.Messages = append(history.Messages,
			domain.ChatMessage{Role: domain.RoleUser, Content: ex.userMessage, Timestamp: ex.timestamp},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: ex.assistantMessage, Timestamp: ex.timestamp},
		)
	}

	history.MessageCount = len(history.Messages)
	return history, nil
}

func (s *ConversationStore) ListSummaries(_ context.Context, limit int) ([]domain.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := []domain.ConversationSummary{}
	for id, exchanges := range s.exchanges {
		if len(exchanges) == 0 {
			continue
		}

		first, last := exchanges[0], exchanges[len(exchanges)-1]
		created, updated := first.createdAt, last.timestamp
		summaries = append(summaries, domain.ConversationSummary{
			ConversationID: id,
			FirstMessage:   first.userMessage,
			LastMessage:    last.userMessage,
			MessageCount:   len(exchanges),
			CreatedAt:      &created,
			UpdatedAt:      &updated,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(*summaries[j].UpdatedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (s *ConversationStore) DeleteConversation(_ context.Context, id domain.ConversationID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.exchanges[id]; !exists {
		return false, nil
	}
	delete(s.exchanges, id)
	return true, nil
}

func (s *ConversationStore) Stats(_ context.Context, id domain.ConversationID) (*domain.ConversationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exchanges := s.exchanges[id]
	if len(exchanges) == 0 {
		return &domain.ConversationStats{ConversationID: id}, nil
	}

	firstAt := exchanges[0].createdAt
	lastAt := exchanges[len(exchanges)-1].createdAt
	return &domain.ConversationStats{
		ConversationID: id,
		MessageCount:   len(exchanges),
		FirstMessageAt: &firstAt,
		LastMessageAt:  &lastAt,
	}, nil
}

// The memory backend is always reachable; the health surface below lets it
// stand in for the mongo client on the health endpoints.

func (s *ConversationStore) HealthCheck(context.Context) bool { return true }

func (s *ConversationStore) DatabaseName() string { return "memory" }

func (s *ConversationStore) CollectionNames(context.Context) ([]string, error) {
	return []string{"conversations"}, nil
}
