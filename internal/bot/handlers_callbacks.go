package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/core/llm"
	"github.com/seplitsa/seplitsa-bot/internal/platform/textutil"
)

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := query.Data

	switch {
	case data == CallbackClosePromo:
		b.handleClosePromo(ctx, query)
	case strings.HasPrefix(data, CallbackPrefixDetails):
		b.handleDetails(ctx, query)
	default:
		zerolog.Ctx(ctx).Debug().Str("data", data).Msg("unknown callback")
		b.out.request(tgbotapi.NewCallback(query.ID, ""))
	}
}

func (b *Bot) handleClosePromo(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.out.request(tgbotapi.NewCallback(query.ID, textPromoClosed))

	if query.Message == nil || query.Message.Chat == nil {
		return
	}

	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(query.Message.Chat.ID, query.Message.MessageID)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to delete promo")
	}
}

// handleDetails sends the full text for a shortened answer, generating one
// when the topic is not in the knowledge document.
func (b *Bot) handleDetails(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.out.request(tgbotapi.NewCallback(query.ID, ""))

	if query.Message == nil || query.Message.Chat == nil || query.From == nil {
		return
	}

	logger := zerolog.Ctx(ctx)
	chatID := query.Message.Chat.ID
	topic := detailsTopic(query.Data, query.Message)

	logger.Info().Int64(LogFieldUserID, query.From.ID).Str(logFieldTopic, topic).Msg("details requested")

	if b.cfg.ProgressEnabled && b.profiles != nil {
		rank, promoted := b.profiles.RecordDetailsClick(query.From.ID)
		defer b.notifyPromotion(ctx, chatID, query.From.ID, rank, promoted)
	}

	if match, ok := b.knowledge.Lookup(topic); ok {
		if err := b.out.sendKnowledge(chatID, textDetailsFmt, topic, match.Value, nil); err != nil {
			logger.Error().Err(err).Msg("failed to send details")
		}

		return
	}

	waiting, err := b.out.sendPlain(chatID, textDetailsWaiting, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to send details waiting message")
	}

	var answer string

	b.withTyping(ctx, chatID, func(ctx context.Context) {
		answer = b.responder.Respond(ctx, llm.DetailsPrompt(topic))
	})

	if err == nil {
		b.out.request(tgbotapi.NewDeleteMessage(chatID, waiting.MessageID))
	}

	if isApology(answer) {
		b.reply(ctx, chatID, textDetailsMissing, nil)

		return
	}

	b.reply(ctx, chatID, fmt.Sprintf(textDetailsFmt, textutil.EscapeMarkdown(topic), answer), nil)
}

// shortAnswer returns a markup-free excerpt of value when details are enabled
// and the value is longer than ShortAnswerLimit.
func (b *Bot) shortAnswer(value string) (string, bool) {
	if !b.cfg.DetailsEnabled || b.cfg.ShortAnswerLimit <= 0 {
		return "", false
	}

	plain := textutil.StripMarkup(textutil.RemoveVideoMarkers(value))
	if len([]rune(plain)) <= b.cfg.ShortAnswerLimit {
		return "", false
	}

	return textutil.Truncate(plain, b.cfg.ShortAnswerLimit), true
}
