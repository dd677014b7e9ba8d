package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
)

// UpdatesFetcher is the single Bot API call SkipOffset needs.
type UpdatesFetcher interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// ParseOffset validates a command-line update offset.
func ParseOffset(s string) (int, error) {
	offset, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidOffset, s)
	}

	return offset, nil
}

// SkipOffset confirms every update up to and including offset so Telegram
// stops redelivering it.
func (a *App) SkipOffset(ctx context.Context, offset int) error {
	api, err := a.newTelegramClient()
	if err != nil {
		return err
	}

	_, err = skipOffset(ctx, api, offset, a.logger)

	return err
}

// skipOffset requests offset+1 without waiting and reports how many updates
// remain queued after it.
func skipOffset(ctx context.Context, api UpdatesFetcher, offset int, logger *zerolog.Logger) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("%w: %d", apperrors.ErrInvalidOffset, offset)
	}

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("skip offset: %w", err)
	}

	logger.Info().Int("offset", offset).Msg("skipping update offset")

	updates, err := api.GetUpdates(tgbotapi.UpdateConfig{Offset: offset + 1, Timeout: 0})
	if err != nil {
		return 0, fmt.Errorf("confirming offset %d: %w", offset, err)
	}

	logger.Info().Int("offset", offset).Int("remaining", len(updates)).Msg("offset skipped")

	return len(updates), nil
}
