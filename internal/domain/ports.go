package domain

import "context"

// AIProvider defines the single capability the application needs from an
// LLM backend: turn a prompt plus prior history into a reply.
type AIProvider interface {
	GenerateResponse(ctx context.Context, prompt string, history []ChatMessage) (string, error)
	ModelInfo() ModelInfo
}

// ModelInfo describes the active provider for introspection endpoints.
type ModelInfo struct {
	Provider  string `json:"provider"`
	ModelName string `json:"model_name"`
	Status    string `json:"status"`
}

// ConversationStore defines exchange persistence.
//
// Read paths degrade gracefully: ListSummaries swallows connectivity errors
// and returns an empty slice, and GetHistory returns an empty history for
// unknown conversations. Write and delete paths surface their errors.
type ConversationStore interface {
	AppendExchange(ctx context.Context, id ConversationID, userMessage, assistantMessage string, metadata map[string]any) (ExchangeID, error)
	GetHistory(ctx context.Context, id ConversationID, limit int) (*ConversationHistory, error)
	ListSummaries(ctx context.Context, limit int) ([]ConversationSummary, error)
	DeleteConversation(ctx context.Context, id ConversationID) (bool, error)
	Stats(ctx context.Context, id ConversationID) (*ConversationStats, error)
}
