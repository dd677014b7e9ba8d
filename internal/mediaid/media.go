// Package mediaid implements a small utility bot that replies to forwarded
// media with the Telegram file identifiers needed to embed it in the
// knowledge document.
package mediaid

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/seplitsa/seplitsa-bot/internal/platform/textutil"
)

// Kind is a supported media type.
type Kind string

const (
	KindVideo     Kind = "video"
	KindVideoNote Kind = "video_note"
	KindPhoto     Kind = "photo"
	KindDocument  Kind = "document"
	KindAudio     Kind = "audio"
	KindVoice     Kind = "voice"
)

// Kinds lists the supported kinds in display order.
var Kinds = []Kind{KindVideo, KindPhoto, KindDocument, KindAudio, KindVoice, KindVideoNote}

const (
	bytesPerKB = 1024
	bytesPerMB = 1024 * 1024
)

// Media describes one attachment.
type Media struct {
	Kind         Kind
	FileID       string
	FileUniqueID string
	Size         int64
	Duration     int
	Width        int
	Height       int
	Name         string
	Title        string
	Performer    string
}

// Extract returns the first supported attachment of msg. Photos resolve to
// the largest size.
func Extract(msg *tgbotapi.Message) (Media, bool) {
	if msg == nil {
		return Media{}, false
	}

	switch {
	case msg.Video != nil:
		v := msg.Video

		return Media{
			Kind:         KindVideo,
			FileID:       v.FileID,
			FileUniqueID: v.FileUniqueID,
			Size:         int64(v.FileSize),
			Duration:     v.Duration,
			Width:        v.Width,
			Height:       v.Height,
		}, true
	case msg.VideoNote != nil:
		v := msg.VideoNote

		return Media{
			Kind:         KindVideoNote,
			FileID:       v.FileID,
			FileUniqueID: v.FileUniqueID,
			Size:         int64(v.FileSize),
			Duration:     v.Duration,
			Width:        v.Length,
			Height:       v.Length,
		}, true
	case len(msg.Photo) > 0:
		p := largestPhoto(msg.Photo)

		return Media{
			Kind:         KindPhoto,
			FileID:       p.FileID,
			FileUniqueID: p.FileUniqueID,
			Size:         int64(p.FileSize),
			Width:        p.Width,
			Height:       p.Height,
		}, true
	case msg.Document != nil:
		d := msg.Document

		return Media{
			Kind:         KindDocument,
			FileID:       d.FileID,
			FileUniqueID: d.FileUniqueID,
			Size:         int64(d.FileSize),
			Name:         d.FileName,
		}, true
	case msg.Audio != nil:
		a := msg.Audio

		return Media{
			Kind:         KindAudio,
			FileID:       a.FileID,
			FileUniqueID: a.FileUniqueID,
			Size:         int64(a.FileSize),
			Duration:     a.Duration,
			Title:        a.Title,
			Performer:    a.Performer,
		}, true
	case msg.Voice != nil:
		v := msg.Voice

		return Media{
			Kind:         KindVoice,
			FileID:       v.FileID,
			FileUniqueID: v.FileUniqueID,
			Size:         int64(v.FileSize),
			Duration:     v.Duration,
		}, true
	}

	return Media{}, false
}

// largestPhoto picks the size with the most pixels; Telegram usually sends
// it last.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[len(sizes)-1]

	for _, s := range sizes {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}

	return best
}

// Marker returns the placeholder to paste into a knowledge value. Video notes
// share the video marker since they are delivered the same way.
func Marker(m Media) string {
	switch m.Kind {
	case KindVideo, KindVideoNote:
		return textutil.VideoMarker(m.FileID)
	default:
		return fmt.Sprintf("[%s:%s]", strings.ToUpper(string(m.Kind)), m.FileID)
	}
}

// Describe renders the reply for m in legacy Markdown.
func Describe(m Media) string {
	var b strings.Builder

	fmt.Fprintf(&b, "✅ *%s FILE ID ПОЛУЧЕН!*\n\n", kindHeaders[m.Kind])
	fmt.Fprintf(&b, "%s *File ID:*\n`%s`\n", kindIcons[m.Kind], m.FileID)

	if m.FileUniqueID != "" {
		fmt.Fprintf(&b, "🔑 *Unique ID:* `%s`\n", m.FileUniqueID)
	}

	b.WriteString("\nℹ️ *Информация:*\n")

	switch m.Kind {
	case KindVideo:
		fmt.Fprintf(&b, "• Размер: %.2f MB\n", megabytes(m.Size))
		fmt.Fprintf(&b, "• Длительность: %d сек\n", m.Duration)
		fmt.Fprintf(&b, "• Разрешение: %dx%d\n", m.Width, m.Height)
	case KindVideoNote, KindVoice:
		fmt.Fprintf(&b, "• Длительность: %d сек\n", m.Duration)
	case KindPhoto:
		fmt.Fprintf(&b, "• Размер: %.2f KB\n", float64(m.Size)/bytesPerKB)
		fmt.Fprintf(&b, "• Разрешение: %dx%d\n", m.Width, m.Height)
	case KindDocument:
		fmt.Fprintf(&b, "• Имя: %s\n", textutil.EscapeMarkdown(orDefault(m.Name, textUnnamed)))
		fmt.Fprintf(&b, "• Размер: %.2f MB\n", megabytes(m.Size))
	case KindAudio:
		fmt.Fprintf(&b, "• Исполнитель: %s\n", textutil.EscapeMarkdown(orDefault(m.Performer, textUnknownPerformer)))
		fmt.Fprintf(&b, "• Название: %s\n", textutil.EscapeMarkdown(orDefault(m.Title, textUnnamed)))
		fmt.Fprintf(&b, "• Длительность: %d сек\n", m.Duration)
	}

	fmt.Fprintf(&b, "\n📋 *Для базы знаний:*\n```\n%s\n```", Marker(m))

	if m.Kind == KindVideo {
		b.WriteString("\n\n💡 Скопируйте маркер и вставьте его в значение темы")
	}

	return b.String()
}

func megabytes(size int64) float64 {
	return float64(size) / bytesPerMB
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}

	return s
}
