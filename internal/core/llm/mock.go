package llm

import (
	"context"
	"strings"
)

const mockResponsePrefix = "Это тестовый ответ консультанта Сеплица на вопрос: "

// mockProvider answers without network access. It is used in tests and when
// no API key is configured.
type mockProvider struct{}

// NewMockProvider creates a new mock LLM provider.
func NewMockProvider() Provider {
	return &mockProvider{}
}

// Name returns the provider identifier.
func (p *mockProvider) Name() ProviderName {
	return ProviderMock
}

// IsAvailable returns true as mock is always available.
func (p *mockProvider) IsAvailable() bool {
	return true
}

// Complete echoes the user message.
func (p *mockProvider) Complete(ctx context.Context, _, userMessage string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err //nolint:wrapcheck // context errors are returned as is
	}

	return mockResponsePrefix + strings.TrimSpace(userMessage), nil
}

// Ensure mockProvider implements Provider interface.
var _ Provider = (*mockProvider)(nil)
