package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/platform/observability"
	"github.com/seplitsa/seplitsa-bot/internal/platform/worker"
)

// Responder produces a free-form answer for questions the knowledge base
// cannot resolve. It never returns an error: failures become apologies.
type Responder struct {
	provider     Provider
	systemPrompt string
	timeout      time.Duration
	logger       *zerolog.Logger
}

// NewResponder creates a Responder. A zero timeout uses the default of 60s.
func NewResponder(provider Provider, systemPrompt string, timeout time.Duration, logger *zerolog.Logger) *Responder {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt()
	}

	return &Responder{
		provider:     provider,
		systemPrompt: systemPrompt,
		timeout:      timeout,
		logger:       logger,
	}
}

// ProviderName returns the name of the underlying provider.
func (r *Responder) ProviderName() ProviderName {
	return r.provider.Name()
}

// Respond sends one request and returns the generated text or an apology.
func (r *Responder) Respond(ctx context.Context, query string) string {
	provider := string(r.provider.Name())

	var text string

	start := time.Now()
	err := worker.RunWithTimeout(ctx, r.timeout, func(callCtx context.Context) error {
		var err error

		text, err = r.provider.Complete(callCtx, r.systemPrompt, query)
		if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}

		return err
	})
	elapsed := time.Since(start)

	observability.LLMRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())

	switch {
	case err != nil && isTimeout(err):
		observability.LLMFailures.WithLabelValues(provider, reasonTimeout).Inc()
		r.logger.Error().Err(err).
			Str(logKeyProvider, provider).
			Dur(logKeyDuration, elapsed).
			Msg("LLM request timed out")

		return ApologyTimeout
	case err != nil:
		observability.LLMFailures.WithLabelValues(provider, reasonError).Inc()
		r.logger.Error().Err(err).
			Str(logKeyProvider, provider).
			Dur(logKeyDuration, elapsed).
			Msg("LLM request failed")

		return ApologyFailure
	case text == "":
		observability.LLMFailures.WithLabelValues(provider, reasonEmpty).Inc()
		r.logger.Error().
			Str(logKeyProvider, provider).
			Msg("LLM returned an empty answer")

		return ApologyFailure
	}

	r.logger.Info().
		Str(logKeyProvider, provider).
		Int(logKeyQueryLen, len([]rune(query))).
		Dur(logKeyDuration, elapsed).
		Msg("LLM answer generated")

	return text
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
