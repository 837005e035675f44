package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coding-with-maaz/chatbot-api/internal/config"
	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

// Select picks the AI provider at process start. The configured provider is
// tried first; if it fails to initialize the other one is attempted, and
// initialization fails loudly only when both are unavailable.
func Select(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.AIProvider, error) {
	if cfg.UseMockAI {
		logger.Info("using mock AI provider")
		return NewMockProvider(), nil
	}

	type builder struct {
		name  string
		build func() (domain.AIProvider, error)
	}

	gemini := builder{
		name: "gemini",
		build: func() (domain.AIProvider, error) {
			return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		},
	}
	openAI := builder{
		name: "openai",
		build: func() (domain.AIProvider, error) {
			return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		},
	}

	order := []builder{openAI, gemini}
	if cfg.AIProvider == config.ProviderGemini {
		order = []builder{gemini, openAI}
	}

	primary, err := order[0].build()
	if err == nil {
		logger.Info("using AI provider", zap.String("provider", order[0].name))
		return primary, nil
	}
	logger.Warn("primary AI provider failed to initialize, trying fallback",
		zap.String("provider", order[0].name),
		zap.Error(err),
	)

	secondary, err2 := order[1].build()
	if err2 == nil {
		logger.Info("using fallback AI provider", zap.String("provider", order[1].name))
		return secondary, nil
	}

	return nil, fmt.Errorf("no AI provider available: %s (%v), %s (%v)",
		order[0].name, err, order[1].name, err2)
}
