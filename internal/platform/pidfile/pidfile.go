// Package pidfile guards against two instances polling the same bot token.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
)

// LegacyPath is the location used by deployments that predate PID_FILE.
const LegacyPath = "bot.pid"

const (
	logFieldPath = "path"
	logFieldPID  = "pid"

	filePerm = 0o644
)

// File is an acquired PID file. The zero value is valid and releases nothing.
type File struct {
	path   string
	logger *zerolog.Logger
}

// Candidates returns the lookup order for a configured path.
func Candidates(configured string) []string {
	if configured == "" || configured == LegacyPath {
		return []string{LegacyPath}
	}

	return []string{configured, LegacyPath}
}

// Acquire fails with ErrAlreadyRunning when a candidate names a live process.
// Stale files are removed. The PID is written to the first writable candidate;
// if none is writable the process continues without a PID file.
func Acquire(candidates []string, logger *zerolog.Logger) (*File, error) {
	for _, path := range candidates {
		pid, ok := readPID(path)
		if !ok {
			continue
		}

		if pid != os.Getpid() && alive(pid) {
			return nil, fmt.Errorf("%w (pid %d, %s)", apperrors.ErrAlreadyRunning, pid, path)
		}

		logger.Info().Str(logFieldPath, path).Int(logFieldPID, pid).Msg("removing stale pid file")

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str(logFieldPath, path).Msg("failed to remove stale pid file")
		}
	}

	pid := []byte(strconv.Itoa(os.Getpid()))

	for _, path := range candidates {
		if err := os.WriteFile(path, pid, filePerm); err != nil {
			logger.Debug().Err(err).Str(logFieldPath, path).Msg("pid file location not writable")

			continue
		}

		logger.Info().Str(logFieldPath, path).Msg("pid file created")

		return &File{path: path, logger: logger}, nil
	}

	logger.Warn().Strs("candidates", candidates).Msg("could not create a pid file, continuing without one")

	return &File{logger: logger}, nil
}

// Path returns the written location, or "" when no file was written.
func (f *File) Path() string {
	if f == nil {
		return ""
	}

	return f.path
}

// Release removes the PID file.
func (f *File) Release() {
	if f == nil || f.path == "" {
		return
	}

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.logger.Error().Err(err).Str(logFieldPath, f.path).Msg("failed to remove pid file")

		return
	}

	f.path = ""
}

// EnsureNotRoot refuses to continue under an effective uid of 0 unless allowed.
func EnsureNotRoot(allowRoot bool) error {
	if allowRoot || unix.Geteuid() != 0 {
		return nil
	}

	return apperrors.ErrRunningAsRoot
}

func readPID(path string) (int, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || pid <= 0 {
		// Unparseable content is treated as stale.
		return 0, true
	}

	return pid, true
}

// alive probes pid with signal 0. EPERM means the process exists under
// another user.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	err := unix.Kill(pid, 0)

	return err == nil || errors.Is(err, unix.EPERM)
}
