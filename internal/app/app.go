// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together configuration, stores and the Telegram client
// and exposes the operational modes:
//
//   - Bot mode: the knowledge bot in its expert or info variant
//   - FileID mode: echo bot that returns file identifiers of forwarded media
//   - SkipOffset: one-shot confirmation of a stuck update offset
package app

import (
	"context"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/bot"
	"github.com/seplitsa/seplitsa-bot/internal/core/llm"
	"github.com/seplitsa/seplitsa-bot/internal/knowledge"
	"github.com/seplitsa/seplitsa-bot/internal/mediaid"
	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
	"github.com/seplitsa/seplitsa-bot/internal/platform/observability"
	"github.com/seplitsa/seplitsa-bot/internal/platform/pidfile"
	"github.com/seplitsa/seplitsa-bot/internal/profile"
	"github.com/seplitsa/seplitsa-bot/internal/session"
	"github.com/seplitsa/seplitsa-bot/internal/sheets"
)

const errBotInit = "bot initialization failed: %w"

const (
	logFieldVariant   = "variant"
	logFieldBotName   = "bot"
	logFieldKnowledge = "knowledge_file"
	logFieldUsers     = "users"
	logFieldEntries   = "entries"
)

// App holds the application configuration and runs the process modes.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
}

// New creates a new App instance.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// StartHealthServer serves health, readiness and metrics until ctx is done.
func (a *App) StartHealthServer(ctx context.Context, ready observability.ReadinessFunc) error {
	srv := observability.NewServer(ready, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunBot runs the knowledge bot until ctx is canceled.
func (a *App) RunBot(ctx context.Context) error {
	a.logger.Info().Str(logFieldVariant, a.cfg.BotVariant).Msg("Starting bot mode")

	if err := pidfile.EnsureNotRoot(a.cfg.AllowRoot); err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	pid, err := pidfile.Acquire(pidfile.Candidates(a.cfg.PIDFile), a.logger)
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}
	defer pid.Release()

	deps, closeDeps, err := a.newBotDeps(ctx)
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}
	defer closeDeps()

	api, err := a.newTelegramClient()
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	b := bot.New(a.cfg, api, deps, a.logger)

	go func() {
		if err := a.StartHealthServer(ctx, b.Ready); err != nil {
			a.logger.Error().Err(err).Msg("health check server error")
		}
	}()

	updates := a.startPolling(api)
	defer api.StopReceivingUpdates()

	if err := b.Run(ctx, updates); err != nil {
		return fmt.Errorf("bot run: %w", err)
	}

	return nil
}

// RunFileID runs the media identifier echo bot until ctx is canceled.
func (a *App) RunFileID(ctx context.Context) error {
	a.logger.Info().Msg("Starting file id mode")

	api, err := a.newTelegramClient()
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	echo := mediaid.New(api, a.logger)

	updates := a.startPolling(api)
	defer api.StopReceivingUpdates()

	if err := echo.Run(ctx, updates); err != nil {
		return fmt.Errorf("file id bot run: %w", err)
	}

	return nil
}

// newBotDeps loads the stores and builds the text generation stack. The
// returned func releases provider resources.
func (a *App) newBotDeps(ctx context.Context) (bot.Deps, func(), error) {
	kStore := knowledge.NewStore(a.cfg.KnowledgeFile, knowledge.NewResolver(a.cfg.MinContainmentRunes), a.logger)
	a.logger.Info().
		Str(logFieldKnowledge, kStore.Path()).
		Int(logFieldEntries, kStore.Load().Len()).
		Msg("knowledge loaded")

	pStore := profile.NewStore(a.cfg.UserDataFile, a.logger)
	pStore.Load()
	a.logger.Info().Int(logFieldUsers, pStore.Users()).Msg("user data loaded")

	mirror, err := sheets.New(ctx, a.cfg, a.logger)
	if err != nil {
		return bot.Deps{}, nil, fmt.Errorf("spreadsheet mirror: %w", err)
	}

	provider, err := llm.NewProvider(ctx, a.cfg, a.logger)
	if err != nil {
		return bot.Deps{}, nil, fmt.Errorf("llm provider: %w", err)
	}

	closeProvider := func() {
		if c, ok := provider.(io.Closer); ok {
			if err := c.Close(); err != nil {
				a.logger.Warn().Err(err).Msg("failed to close llm provider")
			}
		}
	}

	prompt, err := llm.LoadSystemPrompt(a.cfg.LLMSystemPromptFile)
	if err != nil {
		closeProvider()

		return bot.Deps{}, nil, fmt.Errorf("system prompt: %w", err)
	}

	deps := bot.Deps{
		Knowledge: kStore,
		Profiles:  pStore,
		Wizard:    profile.NewWizard(pStore, mirror, profile.ResetPolicy(a.cfg.ProfileResetPolicy), a.logger),
		Sessions:  session.NewMemoryStore(),
		Responder: llm.NewResponder(provider, prompt, a.cfg.LLMTimeout, a.logger),
	}

	return deps, closeProvider, nil
}

func (a *App) newTelegramClient() (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(a.cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram client: %w", err)
	}

	a.logger.Info().Str(logFieldBotName, api.Self.UserName).Msg("telegram client authorized")

	return api, nil
}

// startPolling clears any webhook, optionally dropping updates queued while
// the bot was offline, and starts long polling.
func (a *App) startPolling(api *tgbotapi.BotAPI) tgbotapi.UpdatesChannel {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: a.cfg.DropPendingUpdates}); err != nil {
		a.logger.Warn().Err(err).Msg("failed to delete webhook")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = a.cfg.PollTimeout

	return api.GetUpdatesChan(u)
}
