package bot

import (
	"context"
	"fmt"
	"slices"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/core/llm"
	"github.com/seplitsa/seplitsa-bot/internal/platform/textutil"
	"github.com/seplitsa/seplitsa-bot/internal/session"
)

// routeAbout answers the expert bot's about and help buttons with the system
// overview.
func (b *Bot) routeAbout(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	if !b.cfg.IsExpert() || !slices.Contains(aboutInputs, text) {
		return false
	}

	b.sessions.Update(msg.From.ID, func(s *session.Session) { s.Teaching = false })
	b.reply(ctx, msg.Chat.ID, textAbout, nil)

	return true
}

// routeExercises answers the expert bot's exercises buttons with a generated
// overview, shortened behind a details button.
func (b *Bot) routeExercises(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	if !b.cfg.IsExpert() || !slices.Contains(exercisesInputs, text) {
		return false
	}

	logger := zerolog.Ctx(ctx)
	chatID := msg.Chat.ID

	b.sessions.Update(msg.From.ID, func(s *session.Session) { s.Teaching = false })

	waiting, err := b.out.sendPlain(chatID, textExercisesWait, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to send exercises waiting message")
	}

	var answer string

	b.withTyping(ctx, chatID, func(ctx context.Context) {
		answer = b.responder.Respond(ctx, exercisesPrompt)
	})

	if err == nil {
		b.out.request(tgbotapi.NewDeleteMessage(chatID, waiting.MessageID))
	}

	if isApology(answer) {
		b.reply(ctx, chatID, textAIUnavailable, nil)

		return true
	}

	b.sendShortAnswer(ctx, chatID, textExercisesTopic, answer)

	return true
}

// sendShortAnswer sends text without markup under a topic header. Long texts
// are cut and get a details button when details are enabled.
func (b *Bot) sendShortAnswer(ctx context.Context, chatID int64, topic, text string) {
	var markup interface{}

	body := textutil.StripMarkup(textutil.RemoveVideoMarkers(text))
	if short, shortened := b.shortAnswer(text); shortened {
		body = short
		markup = detailsKeyboard(topic)
	}

	if _, err := b.out.sendPlain(chatID, fmt.Sprintf(textShortTopicFmt, topic, body), markup); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64(LogFieldChatID, chatID).Msg("failed to send short answer")
	}
}

// isApology reports whether a generated answer is one of the fixed failure
// texts rather than content.
func isApology(answer string) bool {
	return answer == "" || answer == llm.ApologyTimeout || answer == llm.ApologyFailure
}
