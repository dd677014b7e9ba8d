// Package bot implements the Seplitsa knowledge bot front-end: menu
// navigation, knowledge answers, the profile questionnaire, author teaching
// mode and the text-generation fallback.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/seplitsa/seplitsa-bot/internal/knowledge"
	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
	"github.com/seplitsa/seplitsa-bot/internal/platform/observability"
	"github.com/seplitsa/seplitsa-bot/internal/profile"
	"github.com/seplitsa/seplitsa-bot/internal/session"
)

// Responder produces a free-text answer; failures come back as apologies.
type Responder interface {
	Respond(ctx context.Context, query string) string
}

// Deps are the stores and services the bot routes messages to.
type Deps struct {
	Knowledge *knowledge.Store
	Profiles  *profile.Store
	Wizard    *profile.Wizard
	Sessions  session.Store
	Responder Responder
}

type Bot struct {
	cfg        *config.Config
	api        API
	out        *sender
	knowledge  *knowledge.Store
	profiles   *profile.Store
	wizard     *profile.Wizard
	sessions   session.Store
	responder  Responder
	commands   *commandRegistry
	routes     []textRoute
	promoDelay time.Duration
	ready      atomic.Bool
	logger     *zerolog.Logger
}

func New(cfg *config.Config, api API, deps Deps, logger *zerolog.Logger) *Bot {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}

	b := &Bot{
		cfg:        cfg,
		api:        api,
		out:        newSender(api, logger),
		knowledge:  deps.Knowledge,
		profiles:   deps.Profiles,
		wizard:     deps.Wizard,
		sessions:   sessions,
		responder:  deps.Responder,
		promoDelay: promoDelay,
		logger:     logger,
	}

	b.commands = b.newCommandRegistry()
	b.routes = b.textRoutes()

	return b
}

// Ready reports whether the bot is consuming updates.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

// Run dispatches updates to handlers, at most HandlerConcurrency at a time,
// until ctx is canceled or the channel is closed. In-flight handlers are
// awaited before returning.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	sem := semaphore.NewWeighted(int64(max(1, b.cfg.HandlerConcurrency)))

	var wg sync.WaitGroup

	b.ready.Store(true)
	b.logger.Info().Str("variant", b.cfg.BotVariant).Int("concurrency", b.cfg.HandlerConcurrency).Msg("bot started")

	defer func() {
		b.ready.Store(false)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("bot run context canceled: %w", ctx.Err())
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				return fmt.Errorf("bot run context canceled: %w", err)
			}

			wg.Add(1)

			go func() {
				defer wg.Done()
				defer sem.Release(1)

				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate processes one update with a trace-scoped logger.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	logger := b.logger.With().Str(LogFieldTraceID, uuid.New().String()).Int("update_id", update.UpdateID).Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("update handler panicked")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		observability.UpdatesReceived.WithLabelValues(updateKindCallback).Inc()
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil && update.Message.Chat != nil:
		observability.UpdatesReceived.WithLabelValues(updateKindMessage).Inc()
		b.handleMessage(ctx, update.Message)
	default:
		observability.UpdatesReceived.WithLabelValues(updateKindOther).Inc()
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().
		Int64(LogFieldUserID, msg.From.ID).
		Str(LogFieldUsername, msg.From.UserName).
		Int("text_len", len([]rune(text))).
		Msg("handling message")

	if cmd, ok := parseCommand(text); ok {
		b.sessions.Update(msg.From.ID, func(s *session.Session) { s.Collecting = false })

		logger.Info().Str("command", cmd).Int64(LogFieldUserID, msg.From.ID).Msg("handling command")

		if !b.commands.route(ctx, cmd, msg) {
			b.handleHelp(ctx, msg)
		}

		return
	}

	for _, route := range b.routes {
		if route(ctx, msg, text) {
			return
		}
	}
}

// isAuthor reports whether the user is the configured knowledge author.
func (b *Bot) isAuthor(u *tgbotapi.User) bool {
	author := strings.TrimPrefix(b.cfg.AuthorUsername, "@")

	return u != nil && u.UserName != "" && author != "" && strings.EqualFold(u.UserName, author)
}

func (b *Bot) mainKeyboard(u *tgbotapi.User) tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard(menuRows(session.MainMenu, b.isAuthor(u)))
}

func identityOf(u *tgbotapi.User) profile.Identity {
	return profile.Identity{
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// reply sends text through the formatting ladder and logs delivery failures.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup interface{}) {
	if err := b.out.send(chatID, text, markup); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64(LogFieldChatID, chatID).Msg("failed to send reply")
	}
}

// applyWizardReply shows a questionnaire reply and records whether further
// free text belongs to the questionnaire.
func (b *Bot) applyWizardReply(ctx context.Context, msg *tgbotapi.Message, r profile.Reply) {
	b.sessions.Update(msg.From.ID, func(s *session.Session) { s.Collecting = r.Collecting })

	var markup interface{} = b.mainKeyboard(msg.From)
	if r.Keyboard != nil {
		markup = replyKeyboard(r.Keyboard)
	}

	b.reply(ctx, msg.Chat.ID, r.Text, markup)
}

// notifyPromotion congratulates the user when a counter update reached a new rank.
func (b *Bot) notifyPromotion(ctx context.Context, chatID, userID int64, rank profile.Rank, promoted bool) {
	if !promoted {
		return
	}

	zerolog.Ctx(ctx).Info().Int64(LogFieldUserID, userID).Str(logFieldRank, string(rank)).Msg("user promoted")
	b.reply(ctx, chatID, fmt.Sprintf(textRankUpFmt, rank.Title()), nil)
}
