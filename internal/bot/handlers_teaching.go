package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/platform/textutil"
	"github.com/seplitsa/seplitsa-bot/internal/session"
)

func (b *Bot) handleTeachCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAuthor(msg.From) {
		b.reply(ctx, msg.Chat.ID, textAuthorOnlyCmd, nil)

		return
	}

	b.enableTeaching(ctx, msg)
}

func (b *Bot) enableTeaching(ctx context.Context, msg *tgbotapi.Message) {
	b.sessions.Update(msg.From.ID, func(s *session.Session) { s.Teaching = true })

	zerolog.Ctx(ctx).Info().Int64(LogFieldUserID, msg.From.ID).Str(LogFieldAction, "teaching_on").Msg("teaching mode changed")
	b.reply(ctx, msg.Chat.ID, textTeachingEnabled, replyKeyboard(teachingRows))
}

// routeTeaching handles the author's teaching controls and entries. Other
// users only get a refusal for the teaching button; their other texts fall
// through to normal routing.
func (b *Bot) routeTeaching(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	if !b.isAuthor(msg.From) {
		if text == ButtonTeaching {
			b.reply(ctx, msg.Chat.ID, textAuthorOnly, nil)

			return true
		}

		return false
	}

	lower := strings.ToLower(text)

	switch {
	case text == ButtonTeaching:
		b.enableTeaching(ctx, msg)
	case slices.Contains(showKnowledgeInputs, lower):
		b.showKnowledge(ctx, msg)
	case slices.Contains(exitTeachingInputs, lower):
		b.disableTeaching(ctx, msg)
	case b.sessions.Get(msg.From.ID).Teaching && strings.Contains(text, ":") && !isMenuButton(text):
		b.teach(ctx, msg, text)
	default:
		return false
	}

	return true
}

func (b *Bot) disableTeaching(ctx context.Context, msg *tgbotapi.Message) {
	b.sessions.Update(msg.From.ID, func(s *session.Session) { s.Teaching = false })

	zerolog.Ctx(ctx).Info().Int64(LogFieldUserID, msg.From.ID).Str(LogFieldAction, "teaching_off").Msg("teaching mode changed")
	b.reply(ctx, msg.Chat.ID, textTeachingDisabled, b.mainKeyboard(msg.From))
}

// showKnowledge lists the knowledge document. The info bot shows a preview of
// each entry, the expert bot the full text.
func (b *Bot) showKnowledge(ctx context.Context, msg *tgbotapi.Message) {
	k := b.knowledge.Load()
	if k.Len() == 0 {
		b.reply(ctx, msg.Chat.ID, textKnowledgeEmpty, replyKeyboard(teachingRows))

		return
	}

	var sb strings.Builder

	sb.WriteString(textKnowledgeHeader)

	k.Each(func(key, value string) bool {
		if !b.cfg.IsExpert() {
			value = textutil.Truncate(value, teachingPreviewRunes)
		}

		fmt.Fprintf(&sb, "*%s:*\n%s\n\n", textutil.EscapeMarkdown(key), value)

		return true
	})

	b.reply(ctx, msg.Chat.ID, sb.String(), replyKeyboard(teachingRows))
}

// teach stores a "TOPIC: text" entry.
func (b *Bot) teach(ctx context.Context, msg *tgbotapi.Message, text string) {
	key, value, _ := strings.Cut(text, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	if key == "" || value == "" {
		b.reply(ctx, msg.Chat.ID, textTeachingFormat, replyKeyboard(teachingRows))

		return
	}

	if !b.knowledge.Put(key, value) {
		b.reply(ctx, msg.Chat.ID, textKnowledgeSaveFailed, replyKeyboard(teachingRows))

		return
	}

	zerolog.Ctx(ctx).Info().Int64(LogFieldUserID, msg.From.ID).Str(logFieldKey, key).Msg("knowledge updated")

	reply := fmt.Sprintf(textKnowledgeSavedFmt, textutil.EscapeMarkdown(key), textutil.EscapeMarkdown(value))
	b.reply(ctx, msg.Chat.ID, reply, replyKeyboard(teachingRows))
}
