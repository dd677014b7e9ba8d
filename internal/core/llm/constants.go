package llm

import "time"

// User-facing apologies returned instead of errors.
const (
	ApologyTimeout = "Извините, сервис временно недоступен. Пожалуйста, попробуйте позже."
	ApologyFailure = "Произошла ошибка при обработке запроса. Пожалуйста, попробуйте еще раз."
)

// Failure reasons recorded in metrics.
const (
	reasonTimeout = "timeout"
	reasonError   = "error"
	reasonEmpty   = "empty"
)

const (
	errRateLimiter = "rate limiter error: %w"

	contentTypeText = "text"

	defaultRateLimiterBurst = 5
	defaultTimeout          = 60 * time.Second
	defaultMaxTokens        = 4000
	defaultOpenAIModel      = "deepseek-chat"
	defaultAnthropicModel   = "claude-haiku-4-5"
	defaultGoogleModel      = "gemini-2.0-flash"

	logKeyProvider = "provider"
	logKeyQueryLen = "query_len"
	logKeyDuration = "duration"
)
