package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/app"
	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
)

const (
	modeBot        = "bot"
	modeFileID     = "fileid"
	modeSkipOffset = "skip-offset"
)

func main() {
	mode := flag.String("mode", modeBot, "Service mode (bot, fileid, skip-offset)")
	variant := flag.String("variant", "", "Bot variant (expert, info); overrides BOT_VARIANT")
	offset := flag.String("offset", "", "Update offset to skip (skip-offset mode)")

	flag.Parse()

	if *variant != "" {
		if err := os.Setenv("BOT_VARIANT", *variant); err != nil {
			log.Fatalf("failed to set variant: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, &logger)

	if err := runMode(ctx, application, *mode, *offset); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode, offset string) error {
	switch mode {
	case modeBot:
		return application.RunBot(ctx)
	case modeFileID:
		return application.RunFileID(ctx)
	case modeSkipOffset:
		n, err := app.ParseOffset(offset)
		if err != nil {
			return err
		}

		return application.SkipOffset(ctx, n)
	default:
		log.Fatalf("Usage: %s --mode=[bot|fileid|skip-offset] [--variant=expert|info] [--offset=N]", os.Args[0])

		return nil
	}
}
