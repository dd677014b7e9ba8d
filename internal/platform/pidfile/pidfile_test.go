package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
)

// deadPID is above any pid_max the kernel allows.
const deadPID = 2147483646

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"/tmp/x.pid", LegacyPath}, Candidates("/tmp/x.pid"))
	assert.Equal(t, []string{LegacyPath}, Candidates(""))
	assert.Equal(t, []string{LegacyPath}, Candidates(LegacyPath))
}

func TestAcquire_WritesOwnPIDAndReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.pid")

	f, err := Acquire([]string{path}, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, path, f.Path())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(raw))

	f.Release()

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	f.Release()
}

func TestAcquire_LiveProcessRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0o600))

	_, err := Acquire([]string{path}, nopLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRunning)
}

func TestAcquire_StaleFilesReplaced(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "dead pid", content: strconv.Itoa(deadPID)},
		{name: "garbage", content: "not-a-pid"},
		{name: "own pid", content: strconv.Itoa(os.Getpid())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bot.pid")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			f, err := Acquire([]string{path}, nopLogger())
			require.NoError(t, err)
			assert.Equal(t, path, f.Path())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(os.Getpid()), string(raw))
		})
	}
}

func TestAcquire_FallsBackToNextCandidate(t *testing.T) {
	dir := t.TempDir()
	unwritable := filepath.Join(dir, "missing", "bot.pid")
	fallback := filepath.Join(dir, "bot.pid")

	f, err := Acquire([]string{unwritable, fallback}, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, fallback, f.Path())
}

func TestAcquire_NoWritableCandidateIsNotFatal(t *testing.T) {
	f, err := Acquire([]string{filepath.Join(t.TempDir(), "missing", "bot.pid")}, nopLogger())
	require.NoError(t, err)
	assert.Empty(t, f.Path())

	f.Release()
}

func TestEnsureNotRoot_Allowed(t *testing.T) {
	assert.NoError(t, EnsureNotRoot(true))
}
