package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
)

// sanitizeUTF8 replaces invalid UTF-8 sequences; the protobuf API rejects them.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var builder strings.Builder
	builder.Grow(len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			builder.WriteRune(utf8.RuneError)

			i++
		} else {
			builder.WriteRune(r)

			i += size
		}
	}

	return builder.String()
}

// googleProvider implements the Provider interface for Google Gemini.
type googleProvider struct {
	cfg         *config.Config
	client      *genai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
}

// NewGoogleProvider creates a new Google Gemini LLM provider.
func NewGoogleProvider(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*googleProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		return nil, fmt.Errorf("creating google genai client: %w", err)
	}

	return &googleProvider{
		cfg:         cfg,
		client:      client,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit(cfg)), defaultRateLimiterBurst),
	}, nil
}

// Close closes the Google client.
func (p *googleProvider) Close() error {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("closing google genai client: %w", err)
		}
	}

	return nil
}

// Name returns the provider identifier.
func (p *googleProvider) Name() ProviderName {
	return ProviderGoogle
}

// IsAvailable returns true if the provider is configured and available.
func (p *googleProvider) IsAvailable() bool {
	return p.cfg.GoogleAPIKey != "" && p.client != nil
}

func (p *googleProvider) resolveModel() string {
	if p.cfg.GoogleModel == "" {
		return defaultGoogleModel
	}

	return p.cfg.GoogleModel
}

// Complete generates content with the system prompt as system instruction.
func (p *googleProvider) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	genModel := p.client.GenerativeModel(p.resolveModel())
	genModel.SystemInstruction = genai.NewUserContent(genai.Text(sanitizeUTF8(systemPrompt)))
	genModel.SetTemperature(p.cfg.LLMTemperature)
	genModel.SetMaxOutputTokens(int32(maxTokens(p.cfg))) //nolint:gosec // bounded by config

	resp, err := genModel.GenerateContent(ctx, genai.Text(sanitizeUTF8(userMessage)))
	if err != nil {
		return "", fmt.Errorf("google generate content: %w", err)
	}

	text := strings.TrimSpace(extractGoogleResponseText(resp))
	if text == "" {
		return "", fmt.Errorf("google generate content: %w", apperrors.ErrEmptyResponse)
	}

	return text, nil
}

// extractGoogleResponseText extracts text content from Google Gemini response.
func extractGoogleResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var result strings.Builder

	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					result.WriteString(string(text))
				}
			}
		}
	}

	return result.String()
}

// Ensure googleProvider implements Provider interface.
var _ Provider = (*googleProvider)(nil)
