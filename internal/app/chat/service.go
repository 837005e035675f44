// Package chat orchestrates AI generation and conversation persistence.
package chat

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
	"github.com/coding-with-maaz/chatbot-api/internal/observability"
)

type Service struct {
	provider domain.AIProvider
	store    domain.ConversationStore
	now      func() time.Time
}

func NewService(provider domain.AIProvider, store domain.ConversationStore) *Service {
	return &Service{
		provider: provider,
		store:    store,
		now:      time.Now,
	}
}

type SendMessageInput struct {
	Message        string
	ConversationID domain.ConversationID
	History        []domain.ChatMessage
}

type SendMessageOutput struct {
	Response       string
	ConversationID domain.ConversationID
	Timestamp      time.Time
}

// SendMessage calls the AI provider and persists the resulting exchange.
// Provider errors propagate to the caller; persistence failures are logged
// and the AI response is still returned, so the chat function stays
// available when the store is not.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	conversationID := in.ConversationID
	if conversationID == "" {
		conversationID = NewConversationID()
	}

	log := observability.LoggerFromContext(ctx).With(
		zap.String("conversation_id", string(conversationID)),
	)

	response, err := s.provider.GenerateResponse(ctx, in.Message, in.History)
	if err != nil {
		log.Error("AI generation failed", zap.Error(err))
		return nil, err
	}

	if _, err := s.store.AppendExchange(ctx, conversationID, in.Message, response, nil); err != nil {
		log.Error("failed to store exchange, returning response anyway", zap.Error(err))
	} else {
		log.Info("saved conversation exchange")
	}

	return &SendMessageOutput{
		Response:       response,
		ConversationID: conversationID,
		Timestamp:      s.now().UTC(),
	}, nil
}

// GetHistory returns the ordered, expanded message history for a conversation.
func (s *Service) GetHistory(ctx context.Context, id domain.ConversationID, limit int) (*domain.ConversationHistory, error) {
	return s.store.GetHistory(ctx, id, limit)
}

// ListSummaries returns recent conversation summaries, most recently
// updated first. It never fails on an unreachable store.
func (s *Service) ListSummaries(ctx context.Context, limit int) ([]domain.ConversationSummary, error) {
	return s.store.ListSummaries(ctx, limit)
}

// DeleteConversation removes a conversation and reports whether it existed.
func (s *Service) DeleteConversation(ctx context.Context, id domain.ConversationID) (bool, error) {
	return s.store.DeleteConversation(ctx, id)
}

// Stats returns per-conversation exchange counters.
func (s *Service) Stats(ctx context.Context, id domain.ConversationID) (*domain.ConversationStats, error) {
	return s.store.Stats(ctx, id)
}

// ProviderInfo exposes the active provider for introspection.
func (s *Service) ProviderInfo() domain.ModelInfo {
	return s.provider.ModelInfo()
}

// NewConversationID generates an opaque globally-unique conversation id
// with a fixed prefix and a 16-char hex suffix.
func NewConversationID() domain.ConversationID {
	u := uuid.New()
	return domain.ConversationID("conv_" + hex.EncodeToString(u[:])[:16])
}
