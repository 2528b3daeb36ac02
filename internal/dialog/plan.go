package dialog

import (
	"context"
	"fmt"

	"github.com/mkuznetsova/dobrobot/internal/generation"
	"github.com/mkuznetsova/dobrobot/internal/session"
)

// Content-plan flow: period, frequency, topics and extra details, ending in
// plan generation, schedule extraction and persistence.

const (
	promptPlanPeriod          = "📅 На какой период составить контент-план?"
	promptPlanCustomPeriod    = "Укажите период своими словами. Например: две недели."
	promptPlanFrequency       = "⏰ Как часто публиковать?"
	promptPlanCustomFrequency = "Укажите частоту своими словами. Например: три раза в неделю."
	promptPlanTopics          = "💡 Какие темы хотите осветить?"
	promptPlanDetails         = "Есть дополнительные пожелания к плану?"

	msgPlanGenerating   = "⏳ Составляю контент-план..."
	msgPlanGenFailed    = "⚠️ Не удалось составить план. Попробуйте ещё раз или нажмите «❌ Отмена»."
	msgPlanSaveFailed   = "⚠️ План сгенерирован, но сохранить его не удалось. Напоминания работать не будут."
	planSavedTemplate   = "✅ План сохранён: %d публикаций. Я напомню о каждой в день выхода."
)

func periodKeyboard() [][]string {
	return singleColumn(PeriodOptions, []string{CustomOption}, []string{CancelOption})
}

func frequencyKeyboard() [][]string {
	return singleColumn(FrequencyOptions, []string{CustomOption}, []string{CancelOption})
}

func (m *Machine) registerPlan() {
	m.register(StatePlanPeriod, stateSpec{
		transitions: []transition{
			{tokenIs(CustomOption), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StatePlanCustomPeriod
				return reply(promptPlanCustomPeriod, cancelKeyboard()), nil
			}},
			{tokenIn(PeriodOptions), func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyPlanPeriod, in.Text)
				s.State = StatePlanFrequency
				return reply(promptPlanFrequency, frequencyKeyboard()), nil
			}},
		},
		fallback: reprompt(promptPlanPeriod, periodKeyboard()),
	})

	m.register(StatePlanCustomPeriod, stateSpec{
		transitions: []transition{
			{anyText, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyPlanPeriod, in.Text)
				s.State = StatePlanFrequency
				return reply(promptPlanFrequency, frequencyKeyboard()), nil
			}},
		},
		fallback: reprompt(promptPlanCustomPeriod, cancelKeyboard()),
	})

	m.register(StatePlanFrequency, stateSpec{
		transitions: []transition{
			{tokenIs(CustomOption), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StatePlanCustomFrequency
				return reply(promptPlanCustomFrequency, cancelKeyboard()), nil
			}},
			{tokenIn(FrequencyOptions), func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyPlanFrequency, in.Text)
				s.State = StatePlanTopics
				return reply(promptPlanTopics, skipKeyboard()), nil
			}},
		},
		fallback: reprompt(promptPlanFrequency, frequencyKeyboard()),
	})

	m.register(StatePlanCustomFrequency, stateSpec{
		transitions: []transition{
			{anyText, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyPlanFrequency, in.Text)
				s.State = StatePlanTopics
				return reply(promptPlanTopics, skipKeyboard()), nil
			}},
		},
		fallback: reprompt(promptPlanCustomFrequency, cancelKeyboard()),
	})

	m.register(StatePlanTopics, stateSpec{
		transitions: []transition{
			{tokenIs(SkipOption), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StatePlanDetails
				return reply(promptPlanDetails, skipKeyboard()), nil
			}},
			{anyText, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyPlanTopics, in.Text)
				s.State = StatePlanDetails
				return reply(promptPlanDetails, skipKeyboard()), nil
			}},
		},
		fallback: reprompt(promptPlanTopics, skipKeyboard()),
	})

	m.register(StatePlanDetails, stateSpec{
		transitions: []transition{
			{tokenIs(SkipOption), func(ctx context.Context, s *session.Session, _ Input) (*Result, error) {
				return m.generatePlan(ctx, s)
			}},
			{anyText, func(ctx context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyPlanDetails, in.Text)
				return m.generatePlan(ctx, s)
			}},
		},
		fallback: reprompt(promptPlanDetails, skipKeyboard()),
	})
}

func (m *Machine) startPlan(_ context.Context, s *session.Session, _ Input) (*Result, error) {
	s.Answers = make(map[string]any)
	s.State = StatePlanPeriod
	return reply(promptPlanPeriod, periodKeyboard()), nil
}

// generatePlan produces the plan text and persists it together with the
// extracted publication schedule. The generated text survives a save
// failure; only the reminders are lost in that case.
func (m *Machine) generatePlan(ctx context.Context, s *session.Session) (*Result, error) {
	pc := generation.PlanContextFromAnswers(s.Answers)
	text, err := m.gen.GeneratePlan(ctx, pc)
	if err != nil {
		return reply(msgPlanGenFailed, cancelKeyboard()), nil
	}

	plan, err := m.plans.SaveGeneratedPlan(ctx, s.UserID, pc, text)
	resetSession(s)
	if err != nil {
		m.logger.Error("saving plan failed", "user_id", s.UserID, "error", err)
		return &Result{Messages: []Outbound{
			{Text: text},
			{Text: msgPlanSaveFailed, Keyboard: singleColumn(MainMenuOptions)},
		}}, nil
	}
	return &Result{Messages: []Outbound{
		{Text: text},
		{Text: fmt.Sprintf(planSavedTemplate, len(plan.Items)), Keyboard: singleColumn(MainMenuOptions)},
	}}, nil
}
