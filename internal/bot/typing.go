package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/platform/worker"
)

const typingWorkerName = "typing"

// withTyping runs fn while a typing action is shown in chatID. The first
// action is sent immediately and then repeated every TypingInterval until fn
// returns.
func (b *Bot) withTyping(ctx context.Context, chatID int64, fn func(ctx context.Context)) {
	logger := zerolog.Ctx(ctx)

	typingCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		err := worker.SingleTickerLoop(typingCtx, worker.SingleTickerConfig{
			Name:       typingWorkerName,
			Interval:   b.cfg.TypingInterval,
			RunOnStart: true,
			OnTick: func(context.Context) {
				b.sendTyping(logger, chatID)
			},
			Logger: logger,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn().Err(err).Int64(LogFieldChatID, chatID).Msg("typing indicator stopped")
		}
	}()

	defer func() {
		cancel()
		<-done
	}()

	fn(ctx)
}

func (b *Bot) sendTyping(logger *zerolog.Logger, chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		logger.Debug().Err(err).Int64(LogFieldChatID, chatID).Msg("failed to send typing action")
	}
}
