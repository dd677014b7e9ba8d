package sheets

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
	"github.com/seplitsa/seplitsa-bot/internal/profile"
)

type recordingAppender struct {
	rangeA1 string
	rows    [][]interface{}
	err     error
}

func (r *recordingAppender) Append(ctx context.Context, rangeA1 string, row []interface{}) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("append without deadline")
	}

	r.rangeA1 = rangeA1
	r.rows = append(r.rows, row)

	return r.err
}

func TestMirror_AppendProfile(t *testing.T) {
	logger := zerolog.Nop()
	app := &recordingAppender{}

	m := NewMirror(app, "Sheet1!A1", time.Second, &logger)
	m.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	p := profile.Profile{
		Name:              "Анна",
		Age:               34,
		City:              "Казань",
		Financial:         "Стабильно",
		Motivation:        "Готов изучать",
		TelegramUsername:  "anna",
		TelegramFirstName: "Анна",
	}
	pr := profile.Progress{CurrentRank: profile.RankInterested, RegistrationDate: "2025-01-01T00:00:00Z"}

	require.NoError(t, m.AppendProfile(context.Background(), 42, p, pr))
	require.Len(t, app.rows, 1)
	assert.Equal(t, "Sheet1!A1", app.rangeA1)
	assert.Equal(t, []interface{}{
		"2025-01-02 03:04:05", "42", "anna", "Анна", "",
		"Анна", "34", "Казань", "Стабильно", "Готов изучать",
		"interested", "2025-01-01T00:00:00Z",
	}, app.rows[0])
}

func TestMirror_AppendError(t *testing.T) {
	logger := zerolog.Nop()
	m := NewMirror(&recordingAppender{err: errors.New("quota")}, "A1", 0, &logger)

	err := m.AppendProfile(context.Background(), 1, profile.Profile{}, profile.Progress{})
	assert.ErrorContains(t, err, "quota")
}

func TestMirror_Disabled(t *testing.T) {
	logger := zerolog.Nop()

	m, err := New(context.Background(), &config.Config{SheetsEnabled: false}, &logger)
	require.NoError(t, err)
	assert.False(t, m.Enabled())
	assert.NoError(t, m.AppendProfile(context.Background(), 1, profile.Profile{}, profile.Progress{}))

	m, err = New(context.Background(), &config.Config{
		SheetsEnabled:         true,
		SheetsCredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	}, &logger)
	require.NoError(t, err)
	assert.False(t, m.Enabled())

	var nilMirror *Mirror
	assert.False(t, nilMirror.Enabled())
}
