package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

const openAIProviderName = "OpenAI"

type OpenAIProvider struct {
	client    *openai.Client
	modelName string
}

// NewOpenAIProvider creates an OpenAI-backed provider.
func NewOpenAIProvider(apiKey, modelName string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	return &OpenAIProvider{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
	}, nil
}

// GenerateResponse implements domain.AIProvider on the chat completions API.
func (o *OpenAIProvider) GenerateResponse(
	ctx context.Context,
	prompt string,
	history []domain.ChatMessage,
) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.modelName,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", o.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &domain.ProviderError{
			Provider: openAIProviderName,
			Kind:     domain.ProviderFailure,
			Message:  "model returned no choices",
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify uses the API error status code when present before falling back
// to text matching.
func (o *OpenAIProvider) classify(err error) *domain.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return &domain.ProviderError{
				Provider: openAIProviderName,
				Kind:     domain.ProviderQuotaExceeded,
				Message:  "API quota exceeded, wait a few minutes before trying again",
				Err:      err,
			}
		case http.StatusUnauthorized:
			return &domain.ProviderError{
				Provider: openAIProviderName,
				Kind:     domain.ProviderAuthInvalid,
				Message:  "invalid API key",
				Err:      err,
			}
		}
	}
	return classifyErr(openAIProviderName, err)
}

func (o *OpenAIProvider) ModelInfo() domain.ModelInfo {
	return domain.ModelInfo{
		Provider:  openAIProviderName,
		ModelName: o.modelName,
		Status:    "initialized",
	}
}
