package profile

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seplitsa/seplitsa-bot/internal/platform/observability"
	"github.com/seplitsa/seplitsa-bot/internal/platform/textutil"
)

// Button labels shared with the bot router.
const (
	ButtonMainMenu = "🏠 Главное меню"
	ButtonBack     = "🔙 НАЗАД В ГЛАВНОЕ МЕНЮ"
	ButtonConfirm  = "✅ Все верно"
	ButtonDispute  = "✏️ Исправить данные"
	FrequencyNever = "🚫 Никогда"
)

// FrequencyOptions are the accepted notification frequency answers.
var FrequencyOptions = []string{"⏰ Раз в час", "📅 Раз в день", "📆 Раз в неделю", "🗓 Раз в месяц", FrequencyNever}

// Intro lines shown before the first question.
const (
	IntroFill    = "📝 Давайте заполним вашу анкету для персонализированных рекомендаций!"
	IntroWaiting = "⏳ Пока AI готовит ответ, давайте завершим вашу анкету!"
)

const (
	textRestart         = "Давайте начнем сначала. Как вас зовут?"
	textDispute         = "📝 Давайте заполним анкету заново.\n\nКак вас зовут?"
	textAlreadyComplete = "✅ Ваш профиль уже заполнен корректно!"
	textConfirmed       = "🎉 *ОТЛИЧНО!*\n\n" +
		"Не будете ли вы против, если время от времени я буду присылать полезную информацию по долголетию?\n\n" +
		"📬 *Как часто вы хотели бы получать уведомления?*"
	textFrequencyNever = "✅ *Понятно!* Я не буду присылать уведомления."
	textFrequencyFmt   = "✅ *Спасибо!* Буду присылать полезную информацию *%s*."
	textCompletionFmt  = "🎉 *СПАСИБО ЗА РЕГИСТРАЦИЮ!*\n\n" +
		"🏅 Ваше звание: *%s*\n\n" +
		"🎯 Теперь я смогу давать вам более персонализированные рекомендации по системе омоложения.\n\n" +
		"💡 Изучайте систему через меню и задавайте вопросы!"
	textNotSpecified = "Не указано"

	minOfferRunes = 3

	resultAccepted = "accepted"
	resultRejected = "rejected"

	logFieldStep = "step"
)

// Keyboard layouts; each inner slice is one row.
var (
	NavKeyboard          = [][]string{{ButtonMainMenu}, {ButtonBack}}
	FinancialKeyboard    = [][]string{FinancialOptions[:2], FinancialOptions[2:], {ButtonBack}}
	MotivationKeyboard   = [][]string{MotivationOptions[:2], MotivationOptions[2:], {ButtonBack}}
	ConfirmationKeyboard = [][]string{{ButtonConfirm, ButtonDispute}, {ButtonBack}}
	FrequencyKeyboard    = [][]string{FrequencyOptions[:2], FrequencyOptions[2:4], FrequencyOptions[4:], {ButtonBack}}
)

type stepRule struct {
	prompt   string
	invalid  string
	repair   string
	keyboard [][]string
	next     Step
	// accept validates raw input and stores the coerced value.
	accept func(p *Profile, input string) bool
}

var steps = map[Step]stepRule{
	StepName: {
		prompt:   "Как вас зовут?",
		invalid:  "🤔 Пожалуйста, введите корректное имя (минимум 2 символа):",
		keyboard: NavKeyboard,
		next:     StepAge,
		accept: func(p *Profile, in string) bool {
			if !validName(in) {
				return false
			}

			p.Name = strings.TrimSpace(in)

			return true
		},
	},
	StepAge: {
		prompt:   "👋 Приятно познакомиться! Сколько вам лет?",
		invalid:  "🤔 Пожалуйста, введите корректный возраст (18-100):",
		keyboard: NavKeyboard,
		next:     StepCity,
		accept: func(p *Profile, in string) bool {
			age, ok := parseAge(in)
			if ok {
				p.Age = age
			}

			return ok
		},
	},
	StepCity: {
		prompt:   "🌍 В каком городе вы живете?",
		invalid:  "🤔 Пожалуйста, введите корректное название города:",
		repair:   "🔄 Обнаружена ошибка: город указан некорректно.",
		keyboard: NavKeyboard,
		next:     StepFinancial,
		accept: func(p *Profile, in string) bool {
			if !validCity(in) {
				return false
			}

			p.City = strings.TrimSpace(in)

			return true
		},
	},
	StepFinancial: {
		prompt:   "💰 Как бы вы оценили свое финансовое положение?",
		invalid:  "💰 Пожалуйста, выберите из предложенных вариантов:",
		repair:   "🔄 Обнаружена ошибка в финансовом положении.",
		keyboard: FinancialKeyboard,
		next:     StepMotivation,
		accept: func(p *Profile, in string) bool {
			if !slices.Contains(FinancialOptions, in) {
				return false
			}

			p.Financial = in

			return true
		},
	},
	StepMotivation: {
		prompt:   "🎯 Насколько вы настроены на работу над собой?",
		invalid:  "🎯 Пожалуйста, выберите из предложенных вариантов:",
		repair:   "🔄 Обнаружена ошибка в уровне мотивации.",
		keyboard: MotivationKeyboard,
		next:     StepReview,
		accept: func(p *Profile, in string) bool {
			if !slices.Contains(MotivationOptions, in) {
				return false
			}

			p.Motivation = in

			return true
		},
	},
}

// Reply is what the wizard wants shown to the user.
type Reply struct {
	Text     string
	Keyboard [][]string
	Step     Step
	// Accepted is set when the input advanced the wizard.
	Accepted bool
	// Collecting tells the caller whether further free text belongs to the wizard.
	Collecting bool
}

// Mirror receives confirmed profiles, e.g. a spreadsheet.
type Mirror interface {
	AppendProfile(ctx context.Context, userID int64, p Profile, pr Progress) error
}

// Wizard drives the questionnaire over a Store.
type Wizard struct {
	store  *Store
	mirror Mirror
	policy ResetPolicy
	logger *zerolog.Logger
}

// NewWizard creates a wizard; mirror may be nil.
func NewWizard(store *Store, mirror Mirror, policy ResetPolicy, logger *zerolog.Logger) *Wizard {
	return &Wizard{
		store:  store,
		mirror: mirror,
		policy: policy,
		logger: logger,
	}
}

// Begin starts collection or resumes it at the stored step, prefixed with intro.
func (w *Wizard) Begin(userID int64, id Identity, intro string) Reply {
	var step Step

	w.store.UpdateProfile(userID, func(p *Profile) bool {
		p.SetIdentity(id)

		step = p.currentStep()
		if _, ok := steps[step]; !ok && step != StepReview {
			step = StepName
		}

		p.Step = step

		return true
	})

	if step == StepReview {
		return w.review(userID)
	}

	rule := steps[step]

	return Reply{
		Text:       intro + "\n\n" + rule.prompt,
		Keyboard:   rule.keyboard,
		Step:       step,
		Collecting: true,
	}
}

// Answer feeds one free-text answer to the current step.
func (w *Wizard) Answer(userID int64, id Identity, input string) Reply {
	input = strings.TrimSpace(input)

	var (
		reply    Reply
		accepted bool
		step     Step
	)

	w.store.UpdateProfile(userID, func(p *Profile) bool {
		p.SetIdentity(id)

		step = p.currentStep()
		migrated := step != p.Step
		p.Step = step

		switch step {
		case StepReview:
			return migrated
		case StepComplete:
			reply = Reply{Text: textAlreadyComplete, Step: StepComplete}

			return migrated
		}

		rule, ok := steps[step]
		if !ok {
			p.Step = StepName
			reply = Reply{Text: textRestart, Keyboard: NavKeyboard, Step: StepName, Collecting: true}

			return true
		}

		if !rule.accept(p, input) {
			reply = Reply{Text: rule.invalid, Keyboard: rule.keyboard, Step: step, Collecting: true}

			return migrated
		}

		accepted = true
		p.Step = rule.next

		if next, ok := steps[rule.next]; ok {
			reply = Reply{Text: next.prompt, Keyboard: next.keyboard, Step: rule.next, Accepted: true, Collecting: true}
		}

		return true
	})

	if _, ok := steps[step]; ok {
		result := resultRejected
		if accepted {
			result = resultAccepted
		}

		observability.WizardTransitions.WithLabelValues(string(step), result).Inc()
		w.logger.Info().Int64(LogFieldUserID, userID).Str(logFieldStep, string(step)).Bool(resultAccepted, accepted).Msg("wizard answer")
	}

	if reply.Text == "" {
		reply = w.review(userID)
		reply.Accepted = accepted
	}

	return reply
}

// review renders the collected answers with confirm and dispute options.
func (w *Wizard) review(userID int64) Reply {
	p, _ := w.store.Profile(userID)

	age := textNotSpecified
	if p.Age != 0 {
		age = fmt.Sprint(p.Age)
	}

	var b strings.Builder

	b.WriteString("📋 *ПРОВЕРЬТЕ ВАШИ ДАННЫЕ*\n\n")
	fmt.Fprintf(&b, "👤 *Имя:* %s\n", orNotSpecified(p.Name))
	fmt.Fprintf(&b, "🎂 *Возраст:* %s\n", age)
	fmt.Fprintf(&b, "🌍 *Город:* %s\n", orNotSpecified(p.City))
	fmt.Fprintf(&b, "💰 *Финансовое положение:* %s\n", orNotSpecified(p.Financial))
	fmt.Fprintf(&b, "🎯 *Мотивация:* %s\n\n", orNotSpecified(p.Motivation))
	b.WriteString("❓ *Все данные корректны?*")

	return Reply{Text: b.String(), Keyboard: ConfirmationKeyboard, Step: StepReview, Collecting: true}
}

func orNotSpecified(s string) string {
	if s == "" {
		return textNotSpecified
	}

	return textutil.EscapeMarkdown(s)
}

// Confirm accepts the reviewed answers, completes the profile and asks for
// the notification frequency.
func (w *Wizard) Confirm(ctx context.Context, userID int64) Reply {
	p, ok := w.store.Profile(userID)
	if !ok || !p.HasAllFields() {
		return w.Begin(userID, Identity{}, IntroFill)
	}

	if p.Step == StepComplete && p.DataCollected {
		return Reply{Text: textConfirmed, Keyboard: FrequencyKeyboard, Step: StepComplete}
	}

	w.store.UpdateProfile(userID, func(p *Profile) bool {
		p.Step = StepComplete

		return false
	})
	w.store.MarkCollected(userID)

	observability.WizardTransitions.WithLabelValues(string(StepReview), resultAccepted).Inc()
	w.logger.Info().Int64(LogFieldUserID, userID).Msg("profile confirmed")

	w.mirrorProfile(ctx, userID)

	return Reply{Text: textConfirmed, Keyboard: FrequencyKeyboard, Step: StepComplete, Accepted: true}
}

func (w *Wizard) mirrorProfile(ctx context.Context, userID int64) {
	if w.mirror == nil {
		return
	}

	p, _ := w.store.Profile(userID)

	if err := w.mirror.AppendProfile(ctx, userID, p, w.store.Progress(userID)); err != nil {
		w.logger.Error().Err(err).Int64(LogFieldUserID, userID).Msg("failed to mirror profile")
	}
}

// Dispute discards the reviewed answers according to the reset policy and
// restarts at the first question.
func (w *Wizard) Dispute(userID int64) Reply {
	w.store.UpdateProfile(userID, func(p *Profile) bool {
		p.reset(w.policy)

		return true
	})

	observability.WizardTransitions.WithLabelValues(string(StepReview), resultRejected).Inc()
	w.logger.Info().Int64(LogFieldUserID, userID).Str("policy", string(w.policy)).Msg("profile disputed")

	return Reply{Text: textDispute, Keyboard: NavKeyboard, Step: StepName, Collecting: true}
}

// SetNotificationFrequency stores the chosen frequency and closes collection.
func (w *Wizard) SetNotificationFrequency(userID int64, frequency string) Reply {
	frequency = strings.TrimSpace(frequency)
	if !slices.Contains(FrequencyOptions, frequency) {
		return Reply{Text: textConfirmed, Keyboard: FrequencyKeyboard, Step: StepComplete}
	}

	w.store.UpdateProfile(userID, func(p *Profile) bool {
		p.NotificationFrequency = frequency

		return true
	})

	thanks := textFrequencyNever
	if frequency != FrequencyNever {
		thanks = fmt.Sprintf(textFrequencyFmt, strings.ToLower(frequency))
	}

	completion := fmt.Sprintf(textCompletionFmt, w.store.Progress(userID).CurrentRank.Title())

	return Reply{Text: thanks + "\n\n" + completion, Step: StepComplete, Accepted: true}
}

// Fill handles an explicit request to fill the questionnaire: complete
// profiles are left alone, invalid answers are repaired, anything else
// starts or resumes collection.
func (w *Wizard) Fill(userID int64, id Identity) Reply {
	if w.store.IsComplete(userID) {
		return Reply{Text: textAlreadyComplete, Step: StepComplete}
	}

	if reply, ok := w.Repair(userID); ok {
		return reply
	}

	return w.Begin(userID, id, IntroFill)
}

// Repair re-enters the first step whose stored answer is invalid. Financial
// repair also drops the motivation answer.
func (w *Wizard) Repair(userID int64) (Reply, bool) {
	var target Step

	w.store.UpdateProfile(userID, func(p *Profile) bool {
		invalid := p.InvalidFields()
		if len(invalid) == 0 {
			return false
		}

		target = invalid[0]
		p.Step = target

		switch target {
		case StepFinancial:
			p.Financial = ""
			p.Motivation = ""
		case StepMotivation:
			p.Motivation = ""
		}

		return true
	})

	if target == "" {
		return Reply{}, false
	}

	w.logger.Info().Int64(LogFieldUserID, userID).Str(logFieldStep, string(target)).Msg("repairing profile")

	rule := steps[target]

	return Reply{
		Text:       rule.repair + "\n\n" + rule.prompt,
		Keyboard:   rule.keyboard,
		Step:       target,
		Collecting: true,
	}, true
}

// ShouldOffer reports whether a free-text question from this user is a good
// moment to start the questionnaire.
func (w *Wizard) ShouldOffer(userID int64, text string) bool {
	if len([]rune(strings.TrimSpace(text))) < minOfferRunes {
		return false
	}

	return !w.store.Progress(userID).DataCollected
}
