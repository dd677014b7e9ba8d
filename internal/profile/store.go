package profile

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/platform/jsonfile"
	"github.com/seplitsa/seplitsa-bot/internal/platform/observability"
)

// LogFieldUserID is the structured log key for Telegram user ids.
const LogFieldUserID = "user_id"

const (
	logFieldPath  = "path"
	logFieldUsers = "users"
	logFieldRank  = "rank"
)

// document is the persisted layout; map keys are Telegram user ids.
type document struct {
	UserData     map[int64]*Profile  `json:"user_data"`
	UserProgress map[int64]*Progress `json:"user_progress"`
}

// Store keeps every profile and progress record in memory and rewrites the
// whole document after each mutation.
type Store struct {
	path   string
	logger *zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	profiles map[int64]*Profile
	progress map[int64]*Progress

	// readErr holds the failure of the last Load. While set, the document on
	// disk is never overwritten.
	readErr error
}

// NewStore creates an empty store backed by path. Call Load to read it.
func NewStore(path string, logger *zerolog.Logger) *Store {
	return &Store{
		path:     path,
		logger:   logger,
		now:      time.Now,
		profiles: map[int64]*Profile{},
		progress: map[int64]*Progress{},
	}
}

// Load replaces the in-memory state with the document contents. Missing or
// malformed documents leave the store empty. After a malformed or unreadable
// document the store keeps working in memory but refuses to write until a
// later Load succeeds.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = map[int64]*Profile{}
	s.progress = map[int64]*Progress{}

	var doc document

	found, err := jsonfile.Read(s.path, &doc)
	s.readErr = err

	if err != nil {
		event := s.logger.Error().Err(err).Str(logFieldPath, s.path)

		var decodeErr *jsonfile.DecodeError
		if errors.As(err, &decodeErr) && decodeErr.Excerpt != "" {
			event = event.Str("excerpt", decodeErr.Excerpt)
		}

		event.Msg("user data document is unreadable, starting empty without saving")

		return
	}

	if !found {
		s.logger.Info().Str(logFieldPath, s.path).Msg("no user data document yet")

		return
	}

	for id, p := range doc.UserData {
		if p != nil {
			s.profiles[id] = p
		}
	}

	for id, p := range doc.UserProgress {
		if p == nil {
			continue
		}

		p.normalize()
		s.progress[id] = p
	}

	s.logger.Info().Int(logFieldUsers, len(s.profiles)).Msg("user data loaded")
}

// Save persists the current state.
func (s *Store) Save() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked()
}

func (s *Store) saveLocked() bool {
	if s.readErr != nil {
		s.logger.Error().Err(s.readErr).Str(logFieldPath, s.path).Msg("refusing to overwrite unreadable user data")

		return false
	}

	doc := document{UserData: s.profiles, UserProgress: s.progress}

	if err := jsonfile.Write(s.path, doc); err != nil {
		s.logger.Error().Err(err).Str(logFieldPath, s.path).Msg("failed to save user data")

		return false
	}

	return true
}

// Users returns the number of stored profiles.
func (s *Store) Users() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.profiles)
}

// Profile returns a copy of the stored profile.
func (s *Store) Profile(userID int64) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, false
	}

	return *p, true
}

// UpdateProfile applies fn to the user's profile, creating it when absent,
// and persists the document. fn returning false skips the write.
func (s *Store) UpdateProfile(userID int64, fn func(p *Profile) bool) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profileLocked(userID)
	if fn(p) {
		s.saveLocked()
	}

	return *p
}

func (s *Store) profileLocked(userID int64) *Profile {
	p, ok := s.profiles[userID]
	if !ok {
		p = &Profile{}
		s.profiles[userID] = p
	}

	return p
}

// DeleteUser removes both records of a user and persists the document.
func (s *Store) DeleteUser(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, userID)
	delete(s.progress, userID)

	return s.saveLocked()
}

// Progress returns a copy of the user's progress, initializing it in memory.
func (s *Store) Progress(userID int64) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.progressLocked(userID).Clone()
}

func (s *Store) progressLocked(userID int64) *Progress {
	p, ok := s.progress[userID]
	if !ok {
		p = NewProgress(s.now())
		s.progress[userID] = p
	}

	return p
}

// Stats returns the progress summary for a user.
func (s *Store) Stats(userID int64) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.progressLocked(userID).Stats()
}

// RecordMenuVisit adds a distinct menu and returns the rank reached, if any.
func (s *Store) RecordMenuVisit(userID int64, menu string) (Rank, bool) {
	return s.updateProgress(userID, func(p *Progress) { p.MenusVisited.Add(menu) })
}

// RecordTopicRead adds a distinct topic and returns the rank reached, if any.
func (s *Store) RecordTopicRead(userID int64, topic string) (Rank, bool) {
	return s.updateProgress(userID, func(p *Progress) { p.TopicsRead.Add(topic) })
}

// RecordDetailsClick counts one details expansion and returns the rank reached, if any.
func (s *Store) RecordDetailsClick(userID int64) (Rank, bool) {
	return s.updateProgress(userID, func(p *Progress) { p.DetailsClicks++ })
}

func (s *Store) updateProgress(userID int64, fn func(p *Progress)) (Rank, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.progressLocked(userID)
	fn(p)

	rank, promoted := p.promote()
	if promoted {
		observability.RankPromotions.WithLabelValues(string(rank)).Inc()
		s.logger.Info().Int64(LogFieldUserID, userID).Str(logFieldRank, string(rank)).Msg("user promoted")
	}

	s.saveLocked()

	return rank, promoted
}

// MarkCollected flags the questionnaire as done on both records and grants
// the interested rank to novices.
func (s *Store) MarkCollected(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markCollectedLocked(userID)
	s.saveLocked()
}

func (s *Store) markCollectedLocked(userID int64) {
	s.profileLocked(userID).DataCollected = true

	pr := s.progressLocked(userID)
	pr.DataCollected = true

	if pr.CurrentRank == RankNovice && pr.Grant(RankInterested) {
		observability.RankPromotions.WithLabelValues(string(RankInterested)).Inc()
	}
}

// IsComplete reports whether the stored profile has every answer and all of
// them validate. A complete profile also gets its completion flags set.
func (s *Store) IsComplete(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok || !p.Complete() {
		return false
	}

	pr := s.progressLocked(userID)
	if !p.DataCollected || !pr.DataCollected {
		p.DataCollected = true
		pr.DataCollected = true
		s.saveLocked()
	}

	return true
}
