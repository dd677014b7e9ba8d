package bot

import (
	"crypto/md5" //nolint:gosec // used for short callback identifiers, not security
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/platform/observability"
	"github.com/seplitsa/seplitsa-bot/internal/platform/textutil"
)

// Formatting levels of the delivery ladder.
const (
	levelPlain    = "plain"
	levelStripped = "stripped"
)

// API is the subset of the Telegram client used by the bots.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// sender delivers texts, falling back to plainer formatting when Telegram
// rejects a message.
type sender struct {
	api    API
	logger *zerolog.Logger
}

func newSender(api API, logger *zerolog.Logger) *sender {
	return &sender{api: api, logger: logger}
}

// markdownWorthy reports whether Markdown should be attempted at all.
func markdownWorthy(text string) bool {
	return len([]rune(text)) <= plainTextThreshold && textutil.MarkupDensity(text) <= markupDensityThreshold
}

// send walks the ladder: Markdown, plain text, then stripped text split into
// parts. markup is attached to the last part.
func (s *sender) send(chatID int64, text string, markup interface{}) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if markdownWorthy(text) {
		err := s.deliver(chatID, text, tgbotapi.ModeMarkdown, markup)
		if err == nil {
			return nil
		}

		s.logger.Warn().Err(err).Int64(LogFieldChatID, chatID).Msg("markdown delivery failed, retrying as plain text")
	}

	if textutil.UTF16Len(text) <= textutil.MessageLimit {
		err := s.deliver(chatID, text, "", markup)
		if err == nil {
			observability.SendFallbacks.WithLabelValues(levelPlain).Inc()

			return nil
		}

		s.logger.Warn().Err(err).Int64(LogFieldChatID, chatID).Msg("plain delivery failed, stripping markup")
	}

	observability.SendFallbacks.WithLabelValues(levelStripped).Inc()

	return s.sendParts(chatID, textutil.StripMarkup(text), markup)
}

// sendParts sends text split into message-sized parts without parse mode.
func (s *sender) sendParts(chatID int64, text string, markup interface{}) error {
	parts := textutil.Split(text, textutil.MessageLimit)

	var errs []error

	for i, part := range parts {
		var m interface{}
		if i == len(parts)-1 {
			m = markup
		}

		if err := s.deliver(chatID, part, "", m); err != nil {
			s.logger.Error().Err(err).Int64(LogFieldChatID, chatID).Int("part", i+1).Msg("failed to send message part")
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("sending %d of %d parts to chat %d: %w", len(errs), len(parts), chatID, errors.Join(errs...))
	}

	return nil
}

func (s *sender) deliver(chatID int64, text, parseMode string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true

	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("sending message to chat %d: %w", chatID, err)
	}

	return nil
}

// sendPlain sends a single unformatted message and returns it.
func (s *sender) sendPlain(chatID int64, text string, markup interface{}) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	sent, err := s.api.Send(msg)
	if err != nil {
		return tgbotapi.Message{}, fmt.Errorf("sending message to chat %d: %w", chatID, err)
	}

	return sent, nil
}

// sendVideo sends a stored video by its file identifier.
func (s *sender) sendVideo(chatID int64, fileID string) error {
	if _, err := s.api.Send(tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))); err != nil {
		return fmt.Errorf("sending video to chat %d: %w", chatID, err)
	}

	return nil
}

// sendKnowledge sends a knowledge value, delivering an embedded video first
// and then the text without the marker.
func (s *sender) sendKnowledge(chatID int64, format, topic, value string, markup interface{}) error {
	if fileID, ok := textutil.ExtractVideoID(value); ok {
		if err := s.sendVideo(chatID, fileID); err != nil {
			s.logger.Error().Err(err).Int64(LogFieldChatID, chatID).Msg("failed to send knowledge video")
		}

		value = textutil.RemoveVideoMarkers(value)
		if value == "" {
			return nil
		}
	}

	return s.send(chatID, fmt.Sprintf(format, textutil.EscapeMarkdown(topic), value), markup)
}

func (s *sender) request(c tgbotapi.Chattable) {
	if _, err := s.api.Request(c); err != nil {
		s.logger.Warn().Err(err).Msg("telegram request failed")
	}
}

// detailsCallbackData encodes a topic for the details button. Long topics are
// replaced by a hash prefix to fit the 64-byte callback data limit.
func detailsCallbackData(topic string) string {
	if len(topic) > callbackTopicBytes {
		sum := md5.Sum([]byte(topic)) //nolint:gosec // identifier only
		return CallbackPrefixDetails + hex.EncodeToString(sum[:])[:callbackHashChars]
	}

	data := strings.ReplaceAll(topic, " ", "_")
	if runes := []rune(data); len(runes) > callbackTopicRunes {
		data = string(runes[:callbackTopicRunes])
	}

	return CallbackPrefixDetails + data
}

// detailsTopic recovers the topic of a details callback, preferring the
// header line of the message the button was attached to.
func detailsTopic(data string, msg *tgbotapi.Message) string {
	if msg != nil && strings.Contains(msg.Text, "📋") {
		header, _, _ := strings.Cut(msg.Text, "\n\n")
		if topic := strings.TrimSpace(strings.Replace(header, "📋 ", "", 1)); topic != "" {
			return topic
		}
	}

	return strings.ReplaceAll(strings.TrimPrefix(data, CallbackPrefixDetails), "_", " ")
}
