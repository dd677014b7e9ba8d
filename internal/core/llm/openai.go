package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
)

// ErrCircuitBreakerOpen indicates the circuit breaker is open.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
)

// openaiProvider talks to any OpenAI-compatible chat completion endpoint.
// DeepSeek is the default deployment.
type openaiProvider struct {
	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

// NewOpenAIProvider creates a provider for the OpenAI-compatible API at
// cfg.LLMBaseURL.
func NewOpenAIProvider(cfg *config.Config, logger *zerolog.Logger) *openaiProvider {
	clientCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.LLMBaseURL, "/")
	}

	return &openaiProvider{
		cfg:         cfg,
		client:      openai.NewClientWithConfig(clientCfg),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit(cfg)), defaultRateLimiterBurst),
	}
}

// Name returns the provider identifier.
func (p *openaiProvider) Name() ProviderName {
	return ProviderOpenAI
}

// IsAvailable returns true if an API key is configured.
func (p *openaiProvider) IsAvailable() bool {
	return p.cfg.LLMAPIKey != ""
}

func (p *openaiProvider) checkCircuit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Now().Before(p.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", ErrCircuitBreakerOpen, p.circuitOpenUntil)
	}

	return nil
}

func (p *openaiProvider) recordSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.consecutiveFailures = 0
}

func (p *openaiProvider) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.consecutiveFailures++
	if p.consecutiveFailures >= circuitBreakerThreshold {
		p.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		p.logger.Warn().
			Int("consecutive_failures", p.consecutiveFailures).
			Time("open_until", p.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

func (p *openaiProvider) resolveModel() string {
	if p.cfg.LLMModel == "" {
		return defaultOpenAIModel
	}

	return p.cfg.LLMModel
}

// Complete sends one chat completion request with a system and a user message.
func (p *openaiProvider) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if err := p.checkCircuit(); err != nil {
		return "", err
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.resolveModel(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: p.cfg.LLMTemperature,
		MaxTokens:   maxTokens(p.cfg),
	})
	if err != nil {
		p.recordFailure()

		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	p.recordSuccess()

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: %w", apperrors.ErrEmptyResponse)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Ensure openaiProvider implements Provider interface.
var _ Provider = (*openaiProvider)(nil)
