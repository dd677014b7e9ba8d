package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
)

// ProviderName identifies an LLM provider.
type ProviderName string

// Provider name constants.
const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGoogle    ProviderName = "google"
	ProviderMock      ProviderName = "mock"
)

// Provider sends one system prompt plus one user message and returns the
// generated text.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// IsAvailable returns true if the provider is configured.
	IsAvailable() bool

	// Complete performs a single completion request. No retries.
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// NewProvider builds the provider named by cfg.LLMProvider. A provider without
// credentials is replaced by the mock so the bot still answers.
func NewProvider(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (Provider, error) {
	name := ProviderName(strings.ToLower(strings.TrimSpace(cfg.LLMProvider)))

	var p Provider

	switch name {
	case ProviderOpenAI, "deepseek", "":
		p = NewOpenAIProvider(cfg, logger)
	case ProviderAnthropic:
		p = NewAnthropicProvider(cfg, logger)
	case ProviderGoogle:
		if cfg.GoogleAPIKey == "" {
			p = NewMockProvider()

			break
		}

		gp, err := NewGoogleProvider(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		p = gp
	case ProviderMock:
		p = NewMockProvider()
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownProvider, cfg.LLMProvider)
	}

	if !p.IsAvailable() {
		logger.Warn().
			Str(logKeyProvider, string(p.Name())).
			Msg("LLM provider has no credentials, using mock responses")

		return NewMockProvider(), nil
	}

	logger.Info().Str(logKeyProvider, string(p.Name())).Msg("LLM provider configured")

	return p, nil
}

func rateLimit(cfg *config.Config) float64 {
	if cfg.RateLimitRPS <= 0 {
		return 1
	}

	return float64(cfg.RateLimitRPS)
}

func maxTokens(cfg *config.Config) int {
	if cfg.LLMMaxTokens <= 0 {
		return defaultMaxTokens
	}

	return cfg.LLMMaxTokens
}
