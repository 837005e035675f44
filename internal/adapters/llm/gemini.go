// Package llm provides the AI provider adapters and their startup selection.
package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

const geminiProviderName = "Google Gemini"

type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider creates a Gemini-backed provider using the public
// Gemini API with an API key.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateResponse implements domain.AIProvider on Gemini.
func (g *GeminiProvider) GenerateResponse(
	ctx context.Context,
	prompt string,
	history []domain.ChatMessage,
) (string, error) {
	var contents []*genai.Content
	for _, m := range history {
		contents = append(contents, genai.NewContentFromText(m.Content, geminiRole(m.Role)))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	temp := float32(0.7)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: int32(2048),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", classifyErr(geminiProviderName, err)
	}

	text := res.Text()
	if text == "" {
		return "", &domain.ProviderError{
			Provider: geminiProviderName,
			Kind:     domain.ProviderFailure,
			Message:  "model returned empty text",
		}
	}
	return text, nil
}

// geminiRole maps a domain role onto the genai content role.
func geminiRole(r domain.Role) genai.Role {
	var role genai.Role
	switch r {
	case domain.RoleAssistant:
		role = genai.RoleModel
	default:
		role = genai.RoleUser
	}
	return role
}

func (g *GeminiProvider) ModelInfo() domain.ModelInfo {
	return domain.ModelInfo{
		Provider:  geminiProviderName,
		ModelName: g.modelName,
		Status:    "initialized",
	}
}
