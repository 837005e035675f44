package llm

import (
	"context"
	"fmt"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

// MockProvider echoes the prompt back. Used in tests and local development
// without API keys.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) GenerateResponse(_ context.Context, prompt string, history []domain.ChatMessage) (string, error) {
	return fmt.Sprintf("You said %q (history: %d messages). This is a mock response.", prompt, len(history)), nil
}

func (m *MockProvider) ModelInfo() domain.ModelInfo {
	return domain.ModelInfo{
		Provider:  "mock",
		ModelName: "mock-echo",
		Status:    "initialized",
	}
}
