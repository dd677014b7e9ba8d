package knowledge

import (
	"strings"
	"unicode/utf8"
)

// MatchKind tells which resolution step produced a match.
type MatchKind string

const (
	MatchExact      MatchKind = "exact"
	MatchNormalized MatchKind = "normalized"
	MatchContains   MatchKind = "contains"
)

// Match is a resolved knowledge entry.
type Match struct {
	Key   string
	Value string
	Kind  MatchKind
}

// Resolver finds the entry a user query refers to.
//
// Steps run in strict precedence: the raw query as a stored key, then the
// normalized query against normalized keys, then containment either way. Within
// a step the first key in insertion order wins, so overlapping keys such as
// "питание" and "ступень 3 питание" resolve by position, not by closeness.
type Resolver struct {
	minContainmentRunes int
}

// NewResolver returns a resolver that skips the containment step for normalized
// queries shorter than minContainmentRunes. Zero disables the threshold.
func NewResolver(minContainmentRunes int) *Resolver {
	return &Resolver{minContainmentRunes: minContainmentRunes}
}

// Resolve returns the best-effort match for query, or false when nothing matches.
func (r *Resolver) Resolve(query string, k *Knowledge) (Match, bool) {
	if k.Len() == 0 {
		return Match{}, false
	}

	if value, ok := k.Get(query); ok {
		return Match{Key: query, Value: value, Kind: MatchExact}, true
	}

	normalizedQuery := Normalize(query)
	if normalizedQuery == "" {
		return Match{}, false
	}

	type normalizedEntry struct {
		key, normalized, value string
	}

	entries := make([]normalizedEntry, 0, k.Len())

	k.Each(func(key, value string) bool {
		entries = append(entries, normalizedEntry{key: key, normalized: Normalize(key), value: value})

		return true
	})

	for _, e := range entries {
		if e.normalized == normalizedQuery {
			return Match{Key: e.key, Value: e.value, Kind: MatchNormalized}, true
		}
	}

	if utf8.RuneCountInString(normalizedQuery) < r.minContainmentRunes {
		return Match{}, false
	}

	for _, e := range entries {
		if e.normalized == "" {
			continue
		}

		if strings.Contains(e.normalized, normalizedQuery) || strings.Contains(normalizedQuery, e.normalized) {
			return Match{Key: e.key, Value: e.value, Kind: MatchContains}, true
		}
	}

	return Match{}, false
}
