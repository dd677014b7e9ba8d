package mediaid

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/platform/observability"
	"github.com/seplitsa/seplitsa-bot/internal/platform/textutil"
)

const (
	cmdStart  = "start"
	cmdHelp   = "help"
	cmdStats  = "stats"
	cmdFormat = "format"

	logFieldKind   = "kind"
	logFieldFileID = "file_id"
	logFieldUserID = "user_id"

	fileIDPreviewRunes = 20
)

// API is the subset of the Telegram client the echo bot needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Stats counts echoed media for the lifetime of the process.
type Stats struct {
	mu      sync.Mutex
	counts  map[Kind]int
	started time.Time
}

func NewStats(now time.Time) *Stats {
	return &Stats{counts: make(map[Kind]int), started: now}
}

func (s *Stats) Record(k Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[k]++
}

// Snapshot returns a copy of the counters and the total.
func (s *Stats) Snapshot() (map[Kind]int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[Kind]int, len(s.counts))
	total := 0

	for k, n := range s.counts {
		out[k] = n
		total += n
	}

	return out, total
}

// Uptime returns the time elapsed since the counters were created.
func (s *Stats) Uptime(now time.Time) time.Duration {
	return now.Sub(s.started)
}

// Bot echoes file identifiers of received media.
type Bot struct {
	api    API
	stats  *Stats
	now    func() time.Time
	logger *zerolog.Logger
}

func New(api API, logger *zerolog.Logger) *Bot {
	return &Bot{
		api:    api,
		stats:  NewStats(time.Now()),
		now:    time.Now,
		logger: logger,
	}
}

// Stats exposes the counters, mainly for shutdown reporting.
func (b *Bot) Stats() *Stats {
	return b.stats
}

// Run handles updates sequentially until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	for {
		select {
		case <-ctx.Done():
			_, total := b.stats.Snapshot()
			b.logger.Info().Int("processed", total).Msg("media id bot stopped")

			return fmt.Errorf("media id bot stopped: %w", ctx.Err())
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			b.HandleUpdate(update)
		}
	}
}

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)

		return
	}

	media, ok := Extract(msg)
	if !ok {
		b.reply(msg, textUnknown)

		return
	}

	b.stats.Record(media.Kind)
	observability.MediaIDsEchoed.WithLabelValues(string(media.Kind)).Inc()

	event := b.logger.Info().Str(logFieldKind, string(media.Kind)).Str(logFieldFileID, preview(media.FileID))
	if msg.From != nil {
		event = event.Int64(logFieldUserID, msg.From.ID)
	}

	event.Msg("media id echoed")

	b.reply(msg, Describe(media))
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch strings.ToLower(msg.Command()) {
	case cmdStart, cmdHelp:
		b.reply(msg, textWelcome)
	case cmdStats:
		b.reply(msg, b.formatStats())
	case cmdFormat:
		b.reply(msg, textFormat)
	default:
		b.reply(msg, textUnknown)
	}
}

func (b *Bot) formatStats() string {
	counts, total := b.stats.Snapshot()
	uptime := b.stats.Uptime(b.now())

	var sb strings.Builder

	sb.WriteString("📊 *СТАТИСТИКА БОТА*\n\n")
	fmt.Fprintf(&sb, "⏱ Время работы: %dч %dм\n\n", int(uptime.Hours()), int(uptime.Minutes())%60)

	for _, k := range Kinds {
		fmt.Fprintf(&sb, "%s %s: %d\n", kindIcons[k], kindNames[k], counts[k])
	}

	fmt.Fprintf(&sb, "\n📈 Всего обработано: %d", total)

	return sb.String()
}

// reply answers msg in Markdown, resending without markup when Telegram
// refuses to parse it.
func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	out.ParseMode = tgbotapi.ModeMarkdown

	_, err := b.api.Send(out)
	if err == nil {
		return
	}

	b.logger.Warn().Err(err).Msg("markdown reply failed, retrying as plain text")

	out.Text = textutil.StripMarkup(text)
	out.ParseMode = ""

	if _, err := b.api.Send(out); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("failed to send reply")
	}
}

func preview(fileID string) string {
	if runes := []rune(fileID); len(runes) > fileIDPreviewRunes {
		return string(runes[:fileIDPreviewRunes]) + "..."
	}

	return fileID
}
