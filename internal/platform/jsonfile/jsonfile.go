// Package jsonfile reads and writes the human-editable JSON documents the bots
// persist their state in.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
)

const (
	indent       = "  "
	filePerm     = 0o644
	contextLines = 2
)

// Read loads the document at path into v. It reports found=false without error
// when the file does not exist or holds only whitespace.
func Read(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return true, &DecodeError{Path: path, Excerpt: excerpt(data, err), Err: err}
	}

	return true, nil
}

// Write serializes v with two-space indentation and unescaped non-ASCII text,
// replacing path atomically.
func Write(path string, v any) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("writing %s: %w", tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}

// DecodeError reports a malformed document together with the lines around the
// offending position. It matches apperrors.ErrMalformedDocument.
type DecodeError struct {
	Path    string
	Excerpt string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{apperrors.ErrMalformedDocument, e.Err}
}

// excerpt returns the lines surrounding a syntax error, or "" when the error
// carries no position.
func excerpt(data []byte, err error) string {
	var syntaxErr *json.SyntaxError

	var typeErr *json.UnmarshalTypeError

	var offset int64

	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return ""
	}

	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	line := bytes.Count(data[:offset], []byte("\n"))
	lines := strings.Split(string(data), "\n")

	start := max(0, line-contextLines)
	end := min(len(lines), line+contextLines+1)

	return strings.Join(lines[start:end], "\n")
}
