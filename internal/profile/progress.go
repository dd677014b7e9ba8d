package profile

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Rank is an engagement tier. Ranks only move up.
type Rank string

const (
	RankNovice        Rank = "novice"
	RankInterested    Rank = "interested"
	RankKnowledgeable Rank = "knowledgeable"
	RankExpert        Rank = "expert"
)

const (
	menuWeight    = 30
	topicWeight   = 40
	detailsWeight = 30
	fullProgress  = 100
)

var rankTitles = map[Rank]string{
	RankNovice:        "👶 Сеплица-Неофит",
	RankInterested:    "🌱 Интересующийся Сеплицей",
	RankKnowledgeable: "📚 Знаток",
	RankExpert:        "🎓 Эксперт",
}

var rankOrder = []Rank{RankNovice, RankInterested, RankKnowledgeable, RankExpert}

// Requirement is the engagement needed to reach a rank.
type Requirement struct {
	Menus   int
	Topics  int
	Details int
}

var requirements = map[Rank]Requirement{
	RankKnowledgeable: {Menus: 3, Topics: 5, Details: 3},
	RankExpert:        {Menus: 6, Topics: 10, Details: 6},
}

// Title returns the user-facing rank name.
func (r Rank) Title() string {
	if t, ok := rankTitles[r]; ok {
		return t
	}

	return rankTitles[RankNovice]
}

func (r Rank) level() int {
	if i := slices.Index(rankOrder, r); i >= 0 {
		return i
	}

	return 0
}

// Next returns the rank reachable through engagement, if any.
func (r Rank) Next() (Rank, bool) {
	switch r.level() {
	case RankNovice.level(), RankInterested.level():
		return RankKnowledgeable, true
	case RankKnowledgeable.level():
		return RankExpert, true
	default:
		return "", false
	}
}

// Set is a string set serialized as a sorted JSON list.
type Set map[string]struct{}

// Add inserts v and reports whether it was new.
func (s Set) Add(v string) bool {
	if _, ok := s[v]; ok {
		return false
	}

	s[v] = struct{}{}

	return true
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}

	slices.Sort(out)

	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(s.Sorted())
	if err != nil {
		return nil, fmt.Errorf("marshal set: %w", err)
	}

	return data, nil
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("unmarshal set: %w", err)
	}

	*s = make(Set, len(items))
	for _, v := range items {
		(*s)[v] = struct{}{}
	}

	return nil
}

func (s Set) clone() Set {
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}

	return out
}

// Progress is one user's engagement record.
type Progress struct {
	MenusVisited     Set    `json:"menus_visited"`
	TopicsRead       Set    `json:"topics_read"`
	DetailsClicks    int    `json:"details_clicks"`
	MessagesScrolled Set    `json:"messages_scrolled"`
	CurrentRank      Rank   `json:"current_rank"`
	RegistrationDate string `json:"registration_date,omitempty"`
	DataCollected    bool   `json:"data_collected"`
}

// NewProgress starts a novice record registered at now.
func NewProgress(now time.Time) *Progress {
	return &Progress{
		MenusVisited:     Set{},
		TopicsRead:       Set{},
		MessagesScrolled: Set{},
		CurrentRank:      RankNovice,
		RegistrationDate: now.Format(time.RFC3339),
	}
}

// normalize repairs records read from older or hand-edited documents.
func (p *Progress) normalize() {
	if p.MenusVisited == nil {
		p.MenusVisited = Set{}
	}

	if p.TopicsRead == nil {
		p.TopicsRead = Set{}
	}

	if p.MessagesScrolled == nil {
		p.MessagesScrolled = Set{}
	}

	if _, ok := rankTitles[p.CurrentRank]; !ok {
		p.CurrentRank = RankNovice
	}
}

// Clone returns a deep copy.
func (p *Progress) Clone() Progress {
	c := *p
	c.MenusVisited = p.MenusVisited.clone()
	c.TopicsRead = p.TopicsRead.clone()
	c.MessagesScrolled = p.MessagesScrolled.clone()

	return c
}

// Grant raises the rank to r; lower or equal ranks are ignored.
func (p *Progress) Grant(r Rank) bool {
	if r.level() <= p.CurrentRank.level() {
		return false
	}

	p.CurrentRank = r

	return true
}

// promote applies every threshold the counters satisfy and returns the
// highest rank reached in this call.
func (p *Progress) promote() (Rank, bool) {
	var (
		reached  Rank
		promoted bool
	)

	for {
		next, ok := p.CurrentRank.Next()
		if !ok || !p.meets(requirements[next]) {
			return reached, promoted
		}

		p.CurrentRank = next
		reached, promoted = next, true
	}
}

func (p *Progress) meets(req Requirement) bool {
	return len(p.MenusVisited) >= req.Menus &&
		len(p.TopicsRead) >= req.Topics &&
		p.DetailsClicks >= req.Details
}

// Stats summarizes progress toward the next rank.
type Stats struct {
	Rank    Rank
	Next    Rank
	HasNext bool
	Percent int
	Menus   int
	Topics  int
	Details int
}

// Stats computes the progress summary shown by /progress.
func (p *Progress) Stats() Stats {
	st := Stats{
		Rank:    p.CurrentRank,
		Menus:   len(p.MenusVisited),
		Topics:  len(p.TopicsRead),
		Details: p.DetailsClicks,
		Percent: fullProgress,
	}

	next, ok := p.CurrentRank.Next()
	if !ok {
		return st
	}

	req := requirements[next]
	score := float64(st.Menus)/float64(req.Menus)*menuWeight +
		float64(st.Topics)/float64(req.Topics)*topicWeight +
		float64(st.Details)/float64(req.Details)*detailsWeight

	st.Next = next
	st.HasNext = true
	st.Percent = min(fullProgress, int(score))

	return st
}
