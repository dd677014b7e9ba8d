package knowledge

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/platform/jsonfile"
	"github.com/seplitsa/seplitsa-bot/internal/platform/observability"
)

const (
	logFieldPath    = "path"
	logFieldKey     = "key"
	logFieldQuery   = "query"
	logFieldEntries = "entries"
	logFieldMatch   = "match"

	lookupResultMiss = "miss"
)

// Store persists the knowledge document. The document is read wholesale on every
// lookup so edits made on disk are visible without a restart.
type Store struct {
	path     string
	resolver *Resolver
	logger   *zerolog.Logger

	// mu serializes load-modify-save cycles from teaching mode.
	mu sync.Mutex
}

// NewStore creates a store backed by the document at path.
func NewStore(path string, resolver *Resolver, logger *zerolog.Logger) *Store {
	return &Store{
		path:     path,
		resolver: resolver,
		logger:   logger,
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing, empty or malformed document yields an
// empty mapping; the problem is logged and never returned.
func (s *Store) Load() *Knowledge {
	k, err := s.read()
	if err != nil {
		return New()
	}

	return k
}

// read loads the document. The error is non-nil only when a document exists
// but could not be read or decoded; a missing document is an empty mapping.
func (s *Store) read() (*Knowledge, error) {
	k := New()

	found, err := jsonfile.Read(s.path, k)
	if err != nil {
		event := s.logger.Warn().Err(err).Str(logFieldPath, s.path)

		var decodeErr *jsonfile.DecodeError
		if errors.As(err, &decodeErr) && decodeErr.Excerpt != "" {
			event = event.Str("excerpt", decodeErr.Excerpt)
		}

		event.Msg("knowledge document is unreadable, continuing without knowledge")

		return nil, err
	}

	if !found {
		s.logger.Warn().Str(logFieldPath, s.path).Msg("knowledge document is missing or empty")

		return k, nil
	}

	observability.KnowledgeEntries.Set(float64(k.Len()))

	return k, nil
}

// Save overwrites the document with k and reports whether it succeeded.
func (s *Store) Save(k *Knowledge) bool {
	if err := jsonfile.Write(s.path, k); err != nil {
		s.logger.Error().Err(err).Str(logFieldPath, s.path).Msg("failed to save knowledge document")

		return false
	}

	observability.KnowledgeEntries.Set(float64(k.Len()))

	return true
}

// Put stores one entry and persists the whole document. An existing document
// that cannot be read is left untouched and Put reports false.
func (s *Store) Put(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, err := s.read()
	if err != nil {
		s.logger.Error().Err(err).Str(logFieldPath, s.path).Str(logFieldKey, key).
			Msg("refusing to overwrite unreadable knowledge document")

		return false
	}

	k.Set(key, value)

	if !s.Save(k) {
		return false
	}

	s.logger.Info().Str(logFieldKey, key).Int(logFieldEntries, k.Len()).Msg("knowledge entry saved")

	return true
}

// Lookup loads the document and resolves query against it.
func (s *Store) Lookup(query string) (Match, bool) {
	match, ok := s.resolver.Resolve(query, s.Load())
	if !ok {
		observability.KnowledgeLookups.WithLabelValues(lookupResultMiss).Inc()
		s.logger.Debug().Str(logFieldQuery, query).Msg("knowledge lookup missed")

		return Match{}, false
	}

	observability.KnowledgeLookups.WithLabelValues(string(match.Kind)).Inc()
	s.logger.Debug().
		Str(logFieldQuery, query).
		Str(logFieldKey, match.Key).
		Str(logFieldMatch, string(match.Kind)).
		Msg("knowledge lookup matched")

	return match, true
}
