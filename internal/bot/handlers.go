package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/platform/worker"
	"github.com/seplitsa/seplitsa-bot/internal/profile"
	"github.com/seplitsa/seplitsa-bot/internal/session"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	b.sessions.Update(msg.From.ID, func(s *session.Session) {
		s.Menu = session.MainMenu
		s.Teaching = false
	})

	welcome := textWelcomeUser
	if b.isAuthor(msg.From) {
		welcome = fmt.Sprintf(textWelcomeAuthorFmt, b.cfg.AuthorName)
	}

	if _, err := b.out.sendPlain(msg.Chat.ID, welcome, b.mainKeyboard(msg.From)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send welcome")
	}

	if b.cfg.PromoEnabled {
		b.sendPromo(ctx, msg.Chat.ID)
	}
}

func (b *Bot) sendPromo(ctx context.Context, chatID int64) {
	if err := worker.Wait(ctx, b.promoDelay); err != nil {
		return
	}

	if _, err := b.out.sendPlain(chatID, textPromo, promoKeyboard(b.cfg.PromoURL)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send promo")
	}
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	var sb strings.Builder

	sb.WriteString(textHelp)

	if b.cfg.ProgressEnabled || b.cfg.WizardEnabled {
		sb.WriteString(textHelpProgress)
	}

	if b.isAuthor(msg.From) {
		sb.WriteString(textHelpAuthor)
	}

	b.reply(ctx, msg.Chat.ID, sb.String(), b.mainKeyboard(msg.From))
}

func (b *Bot) handleDebug(ctx context.Context, msg *tgbotapi.Message) {
	text := fmt.Sprintf(textDebugMissingFmt, debugKey)

	if match, ok := b.knowledge.Lookup(debugKey); ok {
		preview := match.Value
		if runes := []rune(preview); len(runes) > debugPreviewRunes {
			preview = string(runes[:debugPreviewRunes])
		}

		text = fmt.Sprintf(textDebugFoundFmt, debugKey, preview)
	}

	if _, err := b.out.sendPlain(msg.Chat.ID, text, nil); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send debug reply")
	}
}

func (b *Bot) handleProgress(ctx context.Context, msg *tgbotapi.Message) {
	if !b.cfg.ProgressEnabled || b.profiles == nil {
		b.reply(ctx, msg.Chat.ID, textProgressDisabled, nil)

		return
	}

	b.reply(ctx, msg.Chat.ID, formatProgress(b.profiles.Stats(msg.From.ID)), nil)
}

func formatProgress(st profile.Stats) string {
	text := fmt.Sprintf(textProgressFmt, st.Rank.Title(), st.Menus, st.Topics, st.Details)
	if st.HasNext {
		return text + fmt.Sprintf(textProgressNextFmt, st.Next.Title(), st.Percent)
	}

	return text + textProgressMax
}

func (b *Bot) handleRank(ctx context.Context, msg *tgbotapi.Message) {
	if !b.cfg.ProgressEnabled || b.profiles == nil {
		b.reply(ctx, msg.Chat.ID, textProgressDisabled, nil)

		return
	}

	rank := b.profiles.Progress(msg.From.ID).CurrentRank
	text := fmt.Sprintf(textRankFmt, rank.Title(),
		profile.RankNovice.Title(), profile.RankKnowledgeable.Title(), profile.RankExpert.Title())

	b.reply(ctx, msg.Chat.ID, text, nil)
}

func (b *Bot) handleResetProfile(ctx context.Context, msg *tgbotapi.Message) {
	if b.profiles == nil {
		b.reply(ctx, msg.Chat.ID, textWizardDisabled, nil)

		return
	}

	if !b.profiles.DeleteUser(msg.From.ID) {
		zerolog.Ctx(ctx).Warn().Int64(LogFieldUserID, msg.From.ID).Msg("profile reset was not persisted")
	}

	b.sessions.Update(msg.From.ID, func(s *session.Session) { s.Collecting = false })
	zerolog.Ctx(ctx).Info().Int64(LogFieldUserID, msg.From.ID).Msg("profile reset")

	b.reply(ctx, msg.Chat.ID, textProfileReset, b.mainKeyboard(msg.From))
}

func (b *Bot) handleFillProfile(ctx context.Context, msg *tgbotapi.Message) {
	if !b.cfg.WizardEnabled || b.wizard == nil {
		b.reply(ctx, msg.Chat.ID, textWizardDisabled, nil)

		return
	}

	b.applyWizardReply(ctx, msg, b.wizard.Fill(msg.From.ID, identityOf(msg.From)))
}

// routeProfileButtons handles the review and notification frequency buttons,
// which may arrive outside of collection mode.
func (b *Bot) routeProfileButtons(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	if !b.cfg.WizardEnabled || b.wizard == nil {
		return false
	}

	switch {
	case text == profile.ButtonConfirm:
		b.applyWizardReply(ctx, msg, b.wizard.Confirm(ctx, msg.From.ID))
	case text == profile.ButtonDispute:
		b.applyWizardReply(ctx, msg, b.wizard.Dispute(msg.From.ID))
	case slices.Contains(profile.FrequencyOptions, text):
		b.applyWizardReply(ctx, msg, b.wizard.SetNotificationFrequency(msg.From.ID, text))
	default:
		return false
	}

	return true
}

// routeCollection feeds free text to the questionnaire while collection is
// active. Navigation aborts collection.
func (b *Bot) routeCollection(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	if !b.cfg.WizardEnabled || b.wizard == nil || !b.sessions.Get(msg.From.ID).Collecting {
		return false
	}

	if slices.Contains(backInputs, text) || isMenuButton(text) {
		b.sessions.Update(msg.From.ID, func(s *session.Session) {
			s.Collecting = false
			s.Menu = session.MainMenu
		})

		zerolog.Ctx(ctx).Info().Int64(LogFieldUserID, msg.From.ID).Msg("data collection aborted")
		b.reply(ctx, msg.Chat.ID, textCollectionAborted, b.mainKeyboard(msg.From))

		return true
	}

	b.applyWizardReply(ctx, msg, b.wizard.Answer(msg.From.ID, identityOf(msg.From), text))

	return true
}

func (b *Bot) routeBack(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	if !slices.Contains(backInputs, text) {
		return false
	}

	b.sessions.Update(msg.From.ID, func(s *session.Session) {
		s.Menu = session.MainMenu
		s.Teaching = false
	})

	reply := mainMenuTitle
	if b.cfg.IsExpert() {
		reply = textBackToMain
	}

	b.reply(ctx, msg.Chat.ID, reply, b.mainKeyboard(msg.From))

	return true
}

func (b *Bot) routeSubmenu(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	if !isSubmenu(text) {
		return false
	}

	menu, _ := LookupMenu(text)

	b.sessions.Update(msg.From.ID, func(s *session.Session) {
		s.Menu = menu.Key
		s.Teaching = false
	})

	zerolog.Ctx(ctx).Info().Int64(LogFieldUserID, msg.From.ID).Str(logFieldMenu, menu.Key).Msg("menu opened")

	title := menu.Title
	if b.cfg.IsExpert() {
		title += ":"
	}

	b.reply(ctx, msg.Chat.ID, title, replyKeyboard(menuRows(menu.Key, b.isAuthor(msg.From))))

	if b.cfg.ProgressEnabled && b.profiles != nil {
		rank, promoted := b.profiles.RecordMenuVisit(msg.From.ID, menu.Key)
		b.notifyPromotion(ctx, msg.Chat.ID, msg.From.ID, rank, promoted)
	}

	return true
}

func (b *Bot) routeKnowledge(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	match, ok := b.knowledge.Lookup(text)
	if !ok {
		return false
	}

	zerolog.Ctx(ctx).Info().
		Int64(LogFieldUserID, msg.From.ID).
		Str(logFieldKey, match.Key).
		Str(logFieldMatch, string(match.Kind)).
		Msg("knowledge answer")

	if err := b.out.sendKnowledge(msg.Chat.ID, textTopicFmt, text, match.Value, nil); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Msg("failed to send knowledge answer")
	}

	if b.cfg.ProgressEnabled && b.profiles != nil {
		rank, promoted := b.profiles.RecordTopicRead(msg.From.ID, text)
		b.notifyPromotion(ctx, msg.Chat.ID, msg.From.ID, rank, promoted)
	}

	return true
}

// routeFallback answers anything else with generated text. Users without a
// collected profile may be asked the questionnaire while they wait.
func (b *Bot) routeFallback(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	logger := zerolog.Ctx(ctx)

	if b.cfg.WizardEnabled && b.wizard != nil && !isMenuButton(text) && b.wizard.ShouldOffer(msg.From.ID, text) {
		logger.Info().Int64(LogFieldUserID, msg.From.ID).Msg("starting questionnaire while the answer is generated")
		b.applyWizardReply(ctx, msg, b.wizard.Begin(msg.From.ID, identityOf(msg.From), profile.IntroWaiting))
	}

	if isTopicOf(b.sessions.Get(msg.From.ID).Menu, text) {
		logger.Info().Str(logFieldTopic, text).Msg("menu topic has no knowledge entry")
	}

	var answer string

	b.withTyping(ctx, msg.Chat.ID, func(ctx context.Context) {
		answer = b.responder.Respond(ctx, text)
	})

	b.reply(ctx, msg.Chat.ID, answer, nil)

	return true
}
