package bot

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seplitsa/seplitsa-bot/internal/platform/textutil"
)

func newTestSender(reject func(tgbotapi.MessageConfig) bool) (*sender, *fakeAPI) {
	api := &fakeAPI{reject: reject}
	logger := zerolog.Nop()

	return newSender(api, &logger), api
}

func TestMarkdownWorthy(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "short formatted", text: "*жирный* текст", want: true},
		{name: "too long", text: strings.Repeat("а", plainTextThreshold+1), want: false},
		{name: "too much markup", text: strings.Repeat("_", markupDensityThreshold+1), want: false},
		{name: "at the limits", text: strings.Repeat("*", markupDensityThreshold), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, markdownWorthy(tt.text))
		})
	}
}

func TestSend_MarkdownAccepted(t *testing.T) {
	s, api := newTestSender(nil)

	require.NoError(t, s.send(testChatID, "*тема*\n\nтекст", nil))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, tgbotapi.ModeMarkdown, msgs[0].ParseMode)
}

func TestSend_FallsBackToPlain(t *testing.T) {
	s, api := newTestSender(func(m tgbotapi.MessageConfig) bool {
		return m.ParseMode == tgbotapi.ModeMarkdown
	})

	require.NoError(t, s.send(testChatID, "*незакрытая_разметка", nil))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].ParseMode)
	assert.Equal(t, "*незакрытая_разметка", msgs[0].Text)
}

func TestSend_FallsBackToStripped(t *testing.T) {
	s, api := newTestSender(func(m tgbotapi.MessageConfig) bool {
		return m.ParseMode != "" || strings.ContainsAny(m.Text, "*_")
	})

	require.NoError(t, s.send(testChatID, "*тема* и _курсив_", nil))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "тема и курсив", msgs[0].Text)
}

func TestSend_HighDensitySkipsMarkdown(t *testing.T) {
	s, api := newTestSender(nil)

	require.NoError(t, s.send(testChatID, strings.Repeat("*a* ", 30), nil))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].ParseMode)
}

func TestSend_LongTextSplitWithMarkupOnLastPart(t *testing.T) {
	s, api := newTestSender(nil)
	markup := detailsKeyboard("тема")

	text := strings.Repeat("Длинное предложение о системе. ", 300)
	require.NoError(t, s.send(testChatID, text, markup))

	msgs := api.messages()
	require.Greater(t, len(msgs), 1)

	for i, m := range msgs {
		assert.LessOrEqual(t, textutil.UTF16Len(m.Text), textutil.MessageLimit)
		assert.Empty(t, m.ParseMode)

		if i < len(msgs)-1 {
			assert.Nil(t, m.ReplyMarkup)
		}
	}

	assert.Equal(t, markup, msgs[len(msgs)-1].ReplyMarkup)
}

func TestSend_EmptyTextIsNoop(t *testing.T) {
	s, api := newTestSender(nil)

	require.NoError(t, s.send(testChatID, "  \n", nil))
	assert.Empty(t, api.messages())
}

func TestSend_ReportsFailure(t *testing.T) {
	s, api := newTestSender(func(tgbotapi.MessageConfig) bool { return true })

	err := s.send(testChatID, "текст", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errRejected)
	assert.Empty(t, api.messages())
}

func TestSendKnowledge_EscapesTopic(t *testing.T) {
	s, api := newTestSender(nil)

	require.NoError(t, s.sendKnowledge(testChatID, textTopicFmt, "что_то", "значение", nil))

	assert.Equal(t, "📋 *что\\_то*\n\nзначение", api.lastMessage(t).Text)
}
