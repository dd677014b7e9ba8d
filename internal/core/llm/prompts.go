package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed prompts/seplitsa.txt
var defaultSystemPrompt string

const detailsPromptFormat = "Расскажи подробно о %s в контексте системы Сеплица"

// DefaultSystemPrompt returns the built-in consultant persona.
func DefaultSystemPrompt() string {
	return strings.TrimSpace(defaultSystemPrompt)
}

// LoadSystemPrompt reads the persona from path, or returns the built-in one
// when path is empty.
func LoadSystemPrompt(path string) (string, error) {
	if path == "" {
		return DefaultSystemPrompt(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading system prompt %s: %w", path, err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return DefaultSystemPrompt(), nil
	}

	return prompt, nil
}

// DetailsPrompt builds the question asked when a topic has no stored text.
func DetailsPrompt(topic string) string {
	return fmt.Sprintf(detailsPromptFormat, topic)
}
