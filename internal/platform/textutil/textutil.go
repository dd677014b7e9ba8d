// Package textutil provides text helpers for Telegram messages.
//
// The package handles:
//   - UTF-16 length calculation (Telegram's native encoding)
//   - Splitting long texts on paragraph, line and word boundaries
//   - Escaping and stripping legacy Markdown
//   - Embedded video markers in knowledge values
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// MessageLimit is the largest chunk sent in one message when a text is split.
const MessageLimit = 4000

const contentsLabel = "Содержание:"

var videoMarkerRegex = regexp.MustCompile(`\[VIDEO:([^\]]+)\]`)

var splitAfter = []string{"\n\n", ".\n", "!\n", "?\n", ". ", "! ", "? "}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
)

var markupStripper = strings.NewReplacer(
	"*", "",
	"_", "",
	"`", "",
	"[", "",
	"]", "",
	`\`, "",
)

// UTF16Len returns the number of UTF-16 code units needed to encode s.
// Telegram counts message length in UTF-16 code units, so emoji count twice.
func UTF16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// utf16Slice returns the longest prefix of s that fits into maxUnits.
func utf16Slice(s string, maxUnits int) string {
	units := 0

	for i, r := range s {
		runeUnits := 1
		if r > 0xFFFF {
			runeUnits = 2 // Surrogate pair needed
		}

		if units+runeUnits > maxUnits {
			return s[:i]
		}

		units += runeUnits
	}

	return s
}

// Split breaks text into parts of at most limit UTF-16 units each, preferring
// sentence, line and word boundaries. Empty parts are never returned.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}

	var parts []string

	remaining := text
	for remaining != "" {
		if UTF16Len(remaining) <= limit {
			parts = appendPart(parts, remaining)

			break
		}

		toWrite, rest := findBestSplit(remaining, limit)
		if toWrite == "" {
			// A single rune wider than the limit; emit it whole to make progress.
			toWrite, rest = firstRune(remaining)
		}

		parts = appendPart(parts, toWrite)
		remaining = strings.TrimLeft(rest, " \t\n\r")
	}

	return parts
}

func appendPart(parts []string, part string) []string {
	part = strings.TrimRight(part, " \t\n\r")
	if strings.TrimSpace(part) == "" {
		return parts
	}

	return append(parts, part)
}

func firstRune(s string) (string, string) {
	for i := range s {
		if i > 0 {
			return s[:i], s[i:]
		}
	}

	return s, ""
}

func findBestSplit(text string, maxUnits int) (toWrite, remainder string) {
	searchText := utf16Slice(text, maxUnits)

	for _, sep := range splitAfter {
		if pos := strings.LastIndex(searchText, sep); pos > 0 {
			splitAt := pos + len(sep)
			return text[:splitAt], text[splitAt:]
		}
	}

	if pos := strings.LastIndex(searchText, "\n"); pos > 0 {
		return text[:pos+1], text[pos+1:]
	}

	if pos := strings.LastIndex(searchText, " "); pos > 0 {
		return text[:pos+1], text[pos+1:]
	}

	return searchText, text[len(searchText):]
}

// EscapeMarkdown escapes characters that legacy Telegram Markdown treats as markup.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// StripMarkup removes every legacy Markdown control character.
func StripMarkup(s string) string {
	return markupStripper.Replace(s)
}

// MarkupDensity counts the emphasis characters that make Markdown parsing fragile.
func MarkupDensity(s string) int {
	return strings.Count(s, "*") + strings.Count(s, "_")
}

// ExtractVideoID returns the file identifier of the first [VIDEO:<id>] marker.
func ExtractVideoID(s string) (string, bool) {
	m := videoMarkerRegex.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	id := strings.TrimSpace(m[1])

	return id, id != ""
}

// RemoveVideoMarkers drops video markers and the contents label that
// accompanies them, leaving the descriptive text.
func RemoveVideoMarkers(s string) string {
	s = videoMarkerRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, contentsLabel, "")

	return strings.TrimSpace(s)
}

// VideoMarker formats a marker that can be pasted into a knowledge value.
func VideoMarker(fileID string) string {
	return "[VIDEO:" + fileID + "]"
}

// Truncate shortens s to at most maxRunes runes, cutting on a word boundary
// when one is available and appending an ellipsis.
func Truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return s
	}

	cut := string(runes[:maxRunes])
	if pos := strings.LastIndexAny(cut, " \n"); pos > len(cut)/2 {
		cut = cut[:pos]
	}

	return strings.TrimRight(cut, " \n.,;:") + "..."
}
