package mediaid

import (
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errParse = errors.New("bad request: can't parse entities")

type fakeAPI struct {
	sent           []tgbotapi.MessageConfig
	rejectMarkdown bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, nil
	}

	if f.rejectMarkdown && msg.ParseMode != "" {
		return tgbotapi.Message{}, errParse
	}

	f.sent = append(f.sent, msg)

	return tgbotapi.Message{}, nil
}

func newTestBot() (*Bot, *fakeAPI) {
	api := &fakeAPI{}
	logger := zerolog.Nop()

	return New(api, &logger), api
}

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 5,
		From:      &tgbotapi.User{ID: 1},
		Chat:      &tgbotapi.Chat{ID: 10},
		Text:      text,
	}
}

func command(name string) *tgbotapi.Message {
	msg := message("/" + name)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name) + 1}}

	return msg
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		msg  *tgbotapi.Message
		want Media
		ok   bool
	}{
		{
			name: "video",
			msg:  &tgbotapi.Message{Video: &tgbotapi.Video{FileID: "vid", FileUniqueID: "u1", Duration: 12, Width: 640, Height: 360, FileSize: 2 * bytesPerMB}},
			want: Media{Kind: KindVideo, FileID: "vid", FileUniqueID: "u1", Duration: 12, Width: 640, Height: 360, Size: 2 * bytesPerMB},
			ok:   true,
		},
		{
			name: "largest photo",
			msg: &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{
				{FileID: "small", Width: 90, Height: 90},
				{FileID: "large", Width: 1280, Height: 720},
				{FileID: "medium", Width: 320, Height: 180},
			}},
			want: Media{Kind: KindPhoto, FileID: "large", Width: 1280, Height: 720},
			ok:   true,
		},
		{
			name: "video note",
			msg:  &tgbotapi.Message{VideoNote: &tgbotapi.VideoNote{FileID: "note", Length: 240, Duration: 7}},
			want: Media{Kind: KindVideoNote, FileID: "note", Duration: 7, Width: 240, Height: 240},
			ok:   true,
		},
		{
			name: "voice",
			msg:  &tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "v", Duration: 3}},
			want: Media{Kind: KindVoice, FileID: "v", Duration: 3},
			ok:   true,
		},
		{name: "text only", msg: message("привет"), ok: false},
		{name: "nil", msg: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarker(t *testing.T) {
	assert.Equal(t, "[VIDEO:abc]", Marker(Media{Kind: KindVideo, FileID: "abc"}))
	assert.Equal(t, "[VIDEO:abc]", Marker(Media{Kind: KindVideoNote, FileID: "abc"}))
	assert.Equal(t, "[PHOTO:abc]", Marker(Media{Kind: KindPhoto, FileID: "abc"}))
	assert.Equal(t, "[DOCUMENT:abc]", Marker(Media{Kind: KindDocument, FileID: "abc"}))
}

func TestDescribe(t *testing.T) {
	video := Describe(Media{Kind: KindVideo, FileID: "BAAC", FileUniqueID: "AgAD", Size: 3 * bytesPerMB, Duration: 42, Width: 1920, Height: 1080})
	assert.Contains(t, video, "`BAAC`")
	assert.Contains(t, video, "`AgAD`")
	assert.Contains(t, video, "3.00 MB")
	assert.Contains(t, video, "1920x1080")
	assert.Contains(t, video, "```\n[VIDEO:BAAC]\n```")

	doc := Describe(Media{Kind: KindDocument, FileID: "DOC", Name: "my_file.pdf"})
	assert.Contains(t, doc, `my\_file.pdf`)

	audio := Describe(Media{Kind: KindAudio, FileID: "AUD"})
	assert.Contains(t, audio, textUnknownPerformer)
	assert.Contains(t, audio, textUnnamed)
}

func TestHandleUpdate_EchoesMedia(t *testing.T) {
	b, api := newTestBot()

	msg := message("")
	msg.Video = &tgbotapi.Video{FileID: "BAACAgI", Duration: 5}

	b.HandleUpdate(tgbotapi.Update{Message: msg})

	require.Len(t, api.sent, 1)
	assert.Equal(t, 5, api.sent[0].ReplyToMessageID)
	assert.Equal(t, tgbotapi.ModeMarkdown, api.sent[0].ParseMode)
	assert.Contains(t, api.sent[0].Text, "[VIDEO:BAACAgI]")

	counts, total := b.Stats().Snapshot()
	assert.Equal(t, 1, counts[KindVideo])
	assert.Equal(t, 1, total)
}

func TestHandleUpdate_Commands(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{command: "start", want: "Telegram File ID Bot"},
		{command: "help", want: "Telegram File ID Bot"},
		{command: "format", want: "ФОРМАТ ДЛЯ БАЗЫ ЗНАНИЙ"},
		{command: "stats", want: "Всего обработано: 0"},
		{command: "unknown", want: "Неизвестный тип медиа"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			b, api := newTestBot()

			b.HandleUpdate(tgbotapi.Update{Message: command(tt.command)})

			require.Len(t, api.sent, 1)
			assert.Contains(t, api.sent[0].Text, tt.want)
		})
	}
}

func TestHandleUpdate_UnknownContent(t *testing.T) {
	b, api := newTestBot()

	b.HandleUpdate(tgbotapi.Update{Message: message("просто текст")})
	b.HandleUpdate(tgbotapi.Update{})

	require.Len(t, api.sent, 1)
	assert.Equal(t, textUnknown, api.sent[0].Text)
}

func TestReply_FallsBackToPlain(t *testing.T) {
	b, api := newTestBot()
	api.rejectMarkdown = true

	b.HandleUpdate(tgbotapi.Update{Message: command("start")})

	require.Len(t, api.sent, 1)
	assert.Empty(t, api.sent[0].ParseMode)
	assert.NotContains(t, api.sent[0].Text, "*")
}

func TestFormatStats(t *testing.T) {
	b, _ := newTestBot()
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	b.stats = NewStats(start)
	b.now = func() time.Time { return start.Add(2*time.Hour + 15*time.Minute) }

	b.stats.Record(KindPhoto)
	b.stats.Record(KindPhoto)
	b.stats.Record(KindVoice)

	text := b.formatStats()
	assert.Contains(t, text, "2ч 15м")
	assert.Contains(t, text, "Фото: 2")
	assert.Contains(t, text, "Голосовые: 1")
	assert.Contains(t, text, "Всего обработано: 3")
}
