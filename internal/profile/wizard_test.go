package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	calls []Profile
	err   error
}

func (m *recordingMirror) AppendProfile(_ context.Context, _ int64, p Profile, _ Progress) error {
	m.calls = append(m.calls, p)

	return m.err
}

var testIdentity = Identity{Username: "anna", FirstName: "Анна", LastName: "Иванова"}

func newTestWizard(t *testing.T, policy ResetPolicy) (*Wizard, *Store, *recordingMirror) {
	t.Helper()

	store, _ := newTestStore(t)
	mirror := &recordingMirror{}
	logger := zerolog.Nop()

	return NewWizard(store, mirror, policy, &logger), store, mirror
}

func answerAll(t *testing.T, w *Wizard, answers ...string) Reply {
	t.Helper()

	var r Reply
	for _, a := range answers {
		r = w.Answer(testUserID, testIdentity, a)
		require.True(t, r.Accepted, "answer %q rejected: %s", a, r.Text)
	}

	return r
}

func TestWizard_BeginAsksName(t *testing.T) {
	w, store, _ := newTestWizard(t, ResetKeepIdentity)

	r := w.Begin(testUserID, testIdentity, IntroWaiting)
	assert.Equal(t, StepName, r.Step)
	assert.True(t, r.Collecting)
	assert.Equal(t, IntroWaiting+"\n\nКак вас зовут?", r.Text)
	assert.Equal(t, NavKeyboard, r.Keyboard)

	p, ok := store.Profile(testUserID)
	require.True(t, ok)
	assert.Equal(t, "anna", p.TelegramUsername)
	assert.Equal(t, StepName, p.Step)
}

func TestWizard_BeginResumesStoredStep(t *testing.T) {
	w, store, _ := newTestWizard(t, ResetKeepIdentity)
	store.UpdateProfile(testUserID, func(p *Profile) bool {
		p.Name, p.Age, p.Step = "Анна", 30, StepCity

		return true
	})

	r := w.Begin(testUserID, testIdentity, IntroWaiting)
	assert.Equal(t, StepCity, r.Step)
	assert.Contains(t, r.Text, "🌍 В каком городе вы живете?")
}

func TestWizard_AgeRejectedThenAccepted(t *testing.T) {
	w, store, _ := newTestWizard(t, ResetKeepIdentity)
	answerAll(t, w, "Анна")

	r := w.Answer(testUserID, testIdentity, "17")
	assert.False(t, r.Accepted)
	assert.Equal(t, StepAge, r.Step)
	assert.Equal(t, "🤔 Пожалуйста, введите корректный возраст (18-100):", r.Text)

	p, _ := store.Profile(testUserID)
	assert.Equal(t, StepAge, p.Step)
	assert.Zero(t, p.Age)

	r = w.Answer(testUserID, testIdentity, "25")
	assert.True(t, r.Accepted)
	assert.Equal(t, StepCity, r.Step)
	assert.Equal(t, "🌍 В каком городе вы живете?", r.Text)
	assert.Equal(t, NavKeyboard, r.Keyboard)

	p, _ = store.Profile(testUserID)
	assert.Equal(t, 25, p.Age)
	assert.Equal(t, StepCity, p.Step)
}

func TestWizard_RejectNeverMutates(t *testing.T) {
	bad := map[Step]string{
		StepName:       "А",
		StepAge:        "сто",
		StepCity:       "Экономлю",
		StepFinancial:  "богат",
		StepMotivation: "Экономлю",
	}
	prefix := []string{"Анна", "30", "Казань", "Стабильно"}

	order := []Step{StepName, StepAge, StepCity, StepFinancial, StepMotivation}
	for i, step := range order {
		t.Run(string(step), func(t *testing.T) {
			w, store, _ := newTestWizard(t, ResetKeepIdentity)
			w.Begin(testUserID, testIdentity, IntroFill)
			answerAll(t, w, prefix[:i]...)

			before, _ := store.Profile(testUserID)
			r := w.Answer(testUserID, testIdentity, bad[step])

			assert.False(t, r.Accepted)
			assert.Equal(t, step, r.Step)
			assert.Equal(t, steps[step].invalid, r.Text)
			assert.Equal(t, steps[step].keyboard, r.Keyboard)

			after, _ := store.Profile(testUserID)
			assert.Equal(t, before, after)
		})
	}
}

func TestWizard_FinancialAcceptsOnlyLiterals(t *testing.T) {
	inputs := append(append([]string{}, FinancialOptions...),
		"экономлю", "Стабильно!", "Не ограничена", "", "Очень настроен")

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			w, _, _ := newTestWizard(t, ResetKeepIdentity)
			answerAll(t, w, "Анна", "30", "Казань")

			r := w.Answer(testUserID, testIdentity, in)

			valid := false
			for _, opt := range FinancialOptions {
				valid = valid || opt == in
			}

			assert.Equal(t, valid, r.Accepted)

			if !valid {
				assert.Equal(t, "💰 Пожалуйста, выберите из предложенных вариантов:", r.Text)
				assert.Equal(t, FinancialKeyboard, r.Keyboard)
			}
		})
	}
}

func TestWizard_FullFlowToReviewAndConfirm(t *testing.T) {
	w, store, mirror := newTestWizard(t, ResetKeepIdentity)

	r := answerAll(t, w, "Анна_Мария", "30", "Казань", "Стабильно")
	assert.Equal(t, StepMotivation, r.Step)
	assert.Equal(t, MotivationKeyboard, r.Keyboard)

	r = w.Answer(testUserID, testIdentity, "Готов изучать")
	require.True(t, r.Accepted)
	assert.Equal(t, StepReview, r.Step)
	assert.Equal(t, ConfirmationKeyboard, r.Keyboard)
	assert.Contains(t, r.Text, `Анна\_Мария`)
	assert.Contains(t, r.Text, "🎂 *Возраст:* 30")
	assert.Contains(t, r.Text, "Готов изучать")

	// Free text during review shows the summary again.
	again := w.Answer(testUserID, testIdentity, "что-то")
	assert.False(t, again.Accepted)
	assert.Equal(t, StepReview, again.Step)

	assert.False(t, store.Progress(testUserID).DataCollected)

	r = w.Confirm(context.Background(), testUserID)
	assert.True(t, r.Accepted)
	assert.False(t, r.Collecting)
	assert.Equal(t, FrequencyKeyboard, r.Keyboard)

	p, _ := store.Profile(testUserID)
	assert.Equal(t, StepComplete, p.Step)
	assert.True(t, p.DataCollected)
	assert.Equal(t, RankInterested, store.Progress(testUserID).CurrentRank)
	require.Len(t, mirror.calls, 1)
	assert.Equal(t, "Казань", mirror.calls[0].City)

	// A second confirmation does not mirror twice.
	w.Confirm(context.Background(), testUserID)
	assert.Len(t, mirror.calls, 1)

	r = w.SetNotificationFrequency(testUserID, "📅 Раз в день")
	assert.True(t, r.Accepted)
	assert.Contains(t, r.Text, "*📅 раз в день*")
	assert.Contains(t, r.Text, RankInterested.Title())

	p, _ = store.Profile(testUserID)
	assert.Equal(t, "📅 Раз в день", p.NotificationFrequency)

	r = w.Answer(testUserID, testIdentity, "ещё")
	assert.Equal(t, StepComplete, r.Step)
	assert.False(t, r.Collecting)
}

func TestWizard_ConfirmMirrorFailureIsNotFatal(t *testing.T) {
	w, store, mirror := newTestWizard(t, ResetKeepIdentity)
	mirror.err = errors.New("quota exceeded")

	answerAll(t, w, "Анна", "30", "Казань", "Стабильно", "Готов изучать")

	r := w.Confirm(context.Background(), testUserID)
	assert.True(t, r.Accepted)
	assert.True(t, store.Progress(testUserID).DataCollected)
}

func TestWizard_ConfirmWithoutAnswersResumes(t *testing.T) {
	w, _, mirror := newTestWizard(t, ResetKeepIdentity)

	r := w.Confirm(context.Background(), testUserID)
	assert.False(t, r.Accepted)
	assert.Equal(t, StepName, r.Step)
	assert.Empty(t, mirror.calls)
}

func TestWizard_FrequencyNever(t *testing.T) {
	w, _, _ := newTestWizard(t, ResetKeepIdentity)

	r := w.SetNotificationFrequency(testUserID, FrequencyNever)
	assert.Contains(t, r.Text, "Я не буду присылать уведомления")

	r = w.SetNotificationFrequency(testUserID, "каждую минуту")
	assert.False(t, r.Accepted)
}

func TestWizard_DisputePolicies(t *testing.T) {
	tests := []struct {
		policy       ResetPolicy
		wantUsername string
	}{
		{policy: ResetKeepIdentity, wantUsername: "anna"},
		{policy: ResetClearAll, wantUsername: ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			w, store, _ := newTestWizard(t, tt.policy)
			answerAll(t, w, "Анна", "30", "Казань", "Стабильно", "Готов изучать")

			r := w.Dispute(testUserID)
			assert.Equal(t, StepName, r.Step)
			assert.True(t, r.Collecting)
			assert.Equal(t, "📝 Давайте заполним анкету заново.\n\nКак вас зовут?", r.Text)

			p, _ := store.Profile(testUserID)
			assert.Equal(t, StepName, p.Step)
			assert.Empty(t, p.Name)
			assert.Zero(t, p.Age)
			assert.Empty(t, p.Motivation)
			assert.Equal(t, tt.wantUsername, p.TelegramUsername)
		})
	}
}

func TestWizard_LegacyDeviceStep(t *testing.T) {
	w, store, _ := newTestWizard(t, ResetKeepIdentity)
	store.UpdateProfile(testUserID, func(p *Profile) bool {
		p.Name, p.Age, p.City, p.Step = "Анна", 30, "Казань", stepLegacyDevice

		return true
	})

	r := w.Answer(testUserID, testIdentity, "Не ограничен")
	assert.True(t, r.Accepted)
	assert.Equal(t, StepMotivation, r.Step)

	p, _ := store.Profile(testUserID)
	assert.Equal(t, "Не ограничен", p.Financial)
}

func TestWizard_UnknownStepRestarts(t *testing.T) {
	w, store, _ := newTestWizard(t, ResetKeepIdentity)
	store.UpdateProfile(testUserID, func(p *Profile) bool { p.Step = "gender"; return true })

	r := w.Answer(testUserID, testIdentity, "Анна")
	assert.False(t, r.Accepted)
	assert.Equal(t, "Давайте начнем сначала. Как вас зовут?", r.Text)

	p, _ := store.Profile(testUserID)
	assert.Equal(t, StepName, p.Step)
}

func TestWizard_Repair(t *testing.T) {
	tests := []struct {
		name           string
		profile        Profile
		wantStep       Step
		wantText       string
		wantFinancial  string
		wantMotivation string
	}{
		{
			name:           "city holds a button answer",
			profile:        Profile{Name: "А", City: "Стабильно", Financial: "Стабильно", Motivation: "Готов изучать"},
			wantStep:       StepCity,
			wantText:       "🔄 Обнаружена ошибка: город указан некорректно.\n\n🌍 В каком городе вы живете?",
			wantFinancial:  "Стабильно",
			wantMotivation: "Готов изучать",
		},
		{
			name:     "financial invalid drops motivation",
			profile:  Profile{City: "Казань", Financial: "iPhone", Motivation: "Готов изучать"},
			wantStep: StepFinancial,
			wantText: "🔄 Обнаружена ошибка в финансовом положении.\n\n💰 Как бы вы оценили свое финансовое положение?",
		},
		{
			name:          "motivation invalid",
			profile:       Profile{City: "Казань", Financial: "Стабильно", Motivation: "Москва"},
			wantStep:      StepMotivation,
			wantText:      "🔄 Обнаружена ошибка в уровне мотивации.\n\n🎯 Насколько вы настроены на работу над собой?",
			wantFinancial: "Стабильно",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, store, _ := newTestWizard(t, ResetKeepIdentity)
			store.UpdateProfile(testUserID, func(p *Profile) bool { *p = tt.profile; return true })

			r, ok := w.Repair(testUserID)
			require.True(t, ok)
			assert.Equal(t, tt.wantStep, r.Step)
			assert.Equal(t, tt.wantText, r.Text)
			assert.True(t, r.Collecting)

			p, _ := store.Profile(testUserID)
			assert.Equal(t, tt.wantStep, p.Step)
			assert.Equal(t, tt.wantFinancial, p.Financial)
			assert.Equal(t, tt.wantMotivation, p.Motivation)
		})
	}
}

func TestWizard_Fill(t *testing.T) {
	w, store, _ := newTestWizard(t, ResetKeepIdentity)

	r := w.Fill(testUserID, testIdentity)
	assert.Equal(t, IntroFill+"\n\nКак вас зовут?", r.Text)
	assert.True(t, r.Collecting)

	store.UpdateProfile(testUserID, func(p *Profile) bool {
		*p = Profile{Name: "Анна", Age: 30, City: "Казань", Financial: "Стабильно", Motivation: "Готов изучать"}

		return true
	})

	r = w.Fill(testUserID, testIdentity)
	assert.Equal(t, "✅ Ваш профиль уже заполнен корректно!", r.Text)
	assert.False(t, r.Collecting)
}

func TestWizard_ShouldOffer(t *testing.T) {
	w, store, _ := newTestWizard(t, ResetKeepIdentity)

	assert.False(t, w.ShouldOffer(testUserID, "ок"))
	assert.True(t, w.ShouldOffer(testUserID, "как питаться?"))

	store.MarkCollected(testUserID)
	assert.False(t, w.ShouldOffer(testUserID, "как питаться?"))
}
