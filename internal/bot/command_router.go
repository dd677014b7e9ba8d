package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// commandHandler is a function that handles a specific bot command.
type commandHandler func(ctx context.Context, msg *tgbotapi.Message)

// textRoute handles a free-text message and reports whether it consumed it.
type textRoute func(ctx context.Context, msg *tgbotapi.Message, text string) bool

// commandRegistry holds the mapping of command names to their handlers.
type commandRegistry struct {
	handlers map[string]commandHandler
}

// newCommandRegistry creates a new command registry for the bot.
func (b *Bot) newCommandRegistry() *commandRegistry {
	r := &commandRegistry{
		handlers: make(map[string]commandHandler),
	}

	b.registerCoreCommands(r)
	b.registerAuthorCommands(r)
	b.registerProfileCommands(r)

	return r
}

func (b *Bot) registerCoreCommands(r *commandRegistry) {
	r.handlers[CmdStart] = b.handleStart
	r.handlers[CmdMenu] = b.handleStart
	r.handlers[CmdMenuRu] = b.handleStart
	r.handlers[CmdHelp] = b.handleHelp
	r.handlers[CmdDebug] = b.handleDebug
}

func (b *Bot) registerAuthorCommands(r *commandRegistry) {
	r.handlers[CmdTeach] = b.handleTeachCommand
	r.handlers[CmdTeachRu] = b.handleTeachCommand
}

func (b *Bot) registerProfileCommands(r *commandRegistry) {
	r.handlers[CmdProgress] = b.handleProgress
	r.handlers[CmdRank] = b.handleRank
	r.handlers[CmdResetProfile] = b.handleResetProfile
	r.handlers[CmdFillProfile] = b.handleFillProfile
}

// route handles the command routing for a message.
func (r *commandRegistry) route(ctx context.Context, cmd string, msg *tgbotapi.Message) bool {
	if handler, ok := r.handlers[cmd]; ok {
		handler(ctx, msg)

		return true
	}

	return false
}

// textRoutes lists free-text handlers in precedence order.
func (b *Bot) textRoutes() []textRoute {
	return []textRoute{
		b.routeTeaching,
		b.routeProfileButtons,
		b.routeCollection,
		b.routeBack,
		b.routeSubmenu,
		b.routeAbout,
		b.routeExercises,
		b.routeKnowledge,
		b.routeFallback,
	}
}

// parseCommand extracts the command name from text such as "/start" or
// "/menu@seplitsa_bot args". Cyrillic commands arrive without a bot_command
// entity, so the text itself is parsed.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", false
	}

	cmd, _, _ := strings.Cut(fields[0], "@")

	return strings.ToLower(cmd), cmd != ""
}
