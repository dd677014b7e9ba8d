// Package profile holds per-user questionnaire answers, engagement progress and
// the step-by-step wizard that collects the questionnaire.
package profile

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Step is a wizard state persisted with the profile.
type Step string

const (
	StepName       Step = "name"
	StepAge        Step = "age"
	StepCity       Step = "city"
	StepFinancial  Step = "financial"
	StepMotivation Step = "motivation"
	StepReview     Step = "review"
	StepComplete   Step = "complete"

	// stepLegacyDevice was removed from the questionnaire; stored profiles
	// still parked on it continue at StepFinancial.
	stepLegacyDevice Step = "device"
)

// ResetPolicy decides what survives when a user disputes the reviewed profile.
type ResetPolicy string

const (
	// ResetKeepIdentity keeps the Telegram identity fields only.
	ResetKeepIdentity ResetPolicy = "keep_identity"
	// ResetClearAll drops the whole record.
	ResetClearAll ResetPolicy = "clear_all"
)

const (
	minNameRunes = 2
	minCityRunes = 2
	minAge       = 18
	maxAge       = 100
)

// FinancialOptions are the accepted financial bracket answers.
var FinancialOptions = []string{"Экономлю", "Стабильно", "Могу позволить себе многое", "Не ограничен"}

// MotivationOptions are the accepted motivation answers.
var MotivationOptions = []string{"Только знакомлюсь", "Готов изучать", "Очень настроен", "Уже работаю над собой"}

// Identity is the Telegram account data captured on first contact.
type Identity struct {
	Username  string
	FirstName string
	LastName  string
}

// Profile is one user's questionnaire record.
type Profile struct {
	Name                  string `json:"name,omitempty"`
	Age                   int    `json:"age,omitempty"`
	City                  string `json:"city,omitempty"`
	Financial             string `json:"financial,omitempty"`
	Motivation            string `json:"motivation,omitempty"`
	Step                  Step   `json:"step,omitempty"`
	DataCollected         bool   `json:"data_collected,omitempty"`
	TelegramUsername      string `json:"telegram_username,omitempty"`
	TelegramFirstName     string `json:"telegram_first_name,omitempty"`
	TelegramLastName      string `json:"telegram_last_name,omitempty"`
	NotificationFrequency string `json:"notification_frequency,omitempty"`
}

// SetIdentity records the Telegram identity when none is stored yet.
func (p *Profile) SetIdentity(id Identity) {
	if p.TelegramUsername != "" || p.TelegramFirstName != "" || p.TelegramLastName != "" {
		return
	}

	p.TelegramUsername = id.Username
	p.TelegramFirstName = id.FirstName
	p.TelegramLastName = id.LastName
}

// HasAllFields reports whether every questionnaire answer is present.
func (p *Profile) HasAllFields() bool {
	return p.Name != "" && p.Age != 0 && p.City != "" && p.Financial != "" && p.Motivation != ""
}

// InvalidFields returns the stored answers that fail validation, in repair
// priority order: city, financial, motivation.
func (p *Profile) InvalidFields() []Step {
	var invalid []Step

	if p.City != "" && isEnumAnswer(p.City) {
		invalid = append(invalid, StepCity)
	}

	if p.Financial != "" && !slices.Contains(FinancialOptions, p.Financial) {
		invalid = append(invalid, StepFinancial)
	}

	if p.Motivation != "" && !slices.Contains(MotivationOptions, p.Motivation) {
		invalid = append(invalid, StepMotivation)
	}

	return invalid
}

// Complete reports whether all answers are present and valid.
func (p *Profile) Complete() bool {
	return p.HasAllFields() && len(p.InvalidFields()) == 0
}

// reset applies policy and parks the profile on the first step.
func (p *Profile) reset(policy ResetPolicy) {
	identity := Identity{
		Username:  p.TelegramUsername,
		FirstName: p.TelegramFirstName,
		LastName:  p.TelegramLastName,
	}

	*p = Profile{Step: StepName}

	if policy != ResetClearAll {
		p.SetIdentity(identity)
	}
}

// currentStep maps stored steps onto the live state set.
func (p *Profile) currentStep() Step {
	switch p.Step {
	case "":
		return StepName
	case stepLegacyDevice:
		return StepFinancial
	default:
		return p.Step
	}
}

func validName(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= minNameRunes
}

func validCity(s string) bool {
	s = strings.TrimSpace(s)

	return utf8.RuneCountInString(s) >= minCityRunes && !isEnumAnswer(s)
}

// isEnumAnswer guards the city step against a button answer from a later step.
func isEnumAnswer(s string) bool {
	return slices.Contains(FinancialOptions, s) || slices.Contains(MotivationOptions, s)
}

// parseAge accepts ASCII digits only, within the allowed range.
func parseAge(s string) (int, bool) {
	if s == "" {
		return 0, false
	}

	age := 0

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}

		age = age*10 + int(r-'0')
		if age > maxAge {
			return 0, false
		}
	}

	return age, age >= minAge && age <= maxAge
}
