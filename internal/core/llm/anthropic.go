package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
)

// anthropicProvider implements the Provider interface for Anthropic Claude.
type anthropicProvider struct {
	cfg         *config.Config
	client      anthropic.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
}

// NewAnthropicProvider creates a new Anthropic LLM provider.
func NewAnthropicProvider(cfg *config.Config, logger *zerolog.Logger) *anthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))

	return &anthropicProvider{
		cfg:         cfg,
		client:      client,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit(cfg)), defaultRateLimiterBurst),
	}
}

// Name returns the provider identifier.
func (p *anthropicProvider) Name() ProviderName {
	return ProviderAnthropic
}

// IsAvailable returns true if the provider is configured and available.
func (p *anthropicProvider) IsAvailable() bool {
	return p.cfg.AnthropicAPIKey != ""
}

func (p *anthropicProvider) resolveModel() string {
	if p.cfg.AnthropicModel == "" {
		return defaultAnthropicModel
	}

	return p.cfg.AnthropicModel
}

// Complete sends one message request with the system prompt.
func (p *anthropicProvider) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.resolveModel()),
		MaxTokens:   int64(maxTokens(p.cfg)),
		Temperature: anthropic.Float(float64(p.cfg.LLMTemperature)),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	text := strings.TrimSpace(extractTextFromResponse(resp))
	if text == "" {
		return "", fmt.Errorf("anthropic messages: %w", apperrors.ErrEmptyResponse)
	}

	return text, nil
}

// extractTextFromResponse joins the text blocks of a Claude response.
func extractTextFromResponse(resp *anthropic.Message) string {
	if resp == nil {
		return ""
	}

	var result strings.Builder

	for _, block := range resp.Content {
		if block.Type == contentTypeText {
			result.WriteString(block.Text)
		}
	}

	return result.String()
}

// Ensure anthropicProvider implements Provider interface.
var _ Provider = (*anthropicProvider)(nil)
