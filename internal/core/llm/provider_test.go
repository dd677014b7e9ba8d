package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
)

func TestNewProvider(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		cfg     config.Config
		want    ProviderName
		wantErr error
	}{
		{name: "openai with key", cfg: config.Config{LLMProvider: "openai", LLMAPIKey: "k"}, want: ProviderOpenAI},
		{name: "deepseek alias", cfg: config.Config{LLMProvider: "DeepSeek", LLMAPIKey: "k"}, want: ProviderOpenAI},
		{name: "openai without key falls back to mock", cfg: config.Config{LLMProvider: "openai"}, want: ProviderMock},
		{name: "anthropic with key", cfg: config.Config{LLMProvider: "anthropic", AnthropicAPIKey: "k"}, want: ProviderAnthropic},
		{name: "anthropic without key", cfg: config.Config{LLMProvider: "anthropic"}, want: ProviderMock},
		{name: "google without key", cfg: config.Config{LLMProvider: "google"}, want: ProviderMock},
		{name: "explicit mock", cfg: config.Config{LLMProvider: "mock"}, want: ProviderMock},
		{name: "unknown", cfg: config.Config{LLMProvider: "llama"}, wantErr: apperrors.ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg

			p, err := NewProvider(context.Background(), &cfg, &logger)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestLoadSystemPrompt(t *testing.T) {
	prompt, err := LoadSystemPrompt("")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Сеплица-Эксперт")
	assert.Contains(t, prompt, "Отвечай строго в рамках системы.")

	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  Ты консультант.\n"), 0o600))

	prompt, err = LoadSystemPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "Ты консультант.", prompt)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	prompt, err = LoadSystemPrompt(empty)
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemPrompt(), prompt)

	_, err = LoadSystemPrompt(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDetailsPrompt(t *testing.T) {
	assert.Equal(t, "Расскажи подробно о ресвератрол в контексте системы Сеплица", DetailsPrompt("ресвератрол"))
}
