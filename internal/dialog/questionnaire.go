package dialog

import (
	"context"
	"strings"

	"github.com/mkuznetsova/dobrobot/internal/generation"
	"github.com/mkuznetsova/dobrobot/internal/session"
)

// Questionnaire flow: a fixed sequence of questions about goal, audience,
// platform, format, event, volume and description, ending in text
// generation with a regenerate/edit loop on the result.

const (
	promptGoal         = "🎯 Какова цель публикации?"
	promptAudience     = "👥 Кто ваша целевая аудитория? Можно выбрать несколько вариантов, затем нажмите «✅ Готово»."
	promptPlatform     = "📱 Для какой платформы готовим контент?"
	promptFormat       = "📝 Какой формат контента нужен? Можно выбрать несколько вариантов, затем нажмите «✅ Готово»."
	promptHasEvent     = "📅 Публикация связана с конкретным мероприятием?"
	promptEventDetails = "Расскажите о мероприятии: что, когда и где пройдёт."
	promptVolume       = "📖 Какой объём текста нужен?"
	promptDescription  = "✍️ Опишите своими словами, о чём должен быть пост."
	promptEditText     = "✏️ Напишите, что нужно изменить в тексте."

	msgPickAtLeastOne = "Выберите хотя бы один вариант, затем нажмите «✅ Готово»."
	msgGenerating     = "⏳ Генерирую текст, это займёт несколько секунд..."
	msgGenerateFailed = "⚠️ Не удалось сгенерировать текст. Попробуйте ещё раз или нажмите «❌ Отмена»."
	msgPostReady      = "Готово! Текст сохранён. Возвращаю вас в меню."
)

func goalKeyboard() [][]string     { return singleColumn(GoalOptions, []string{CancelOption}) }
func platformKeyboard() [][]string { return singleColumn(PlatformOptions, []string{CancelOption}) }
func volumeKeyboard() [][]string   { return singleColumn(VolumeOptions, []string{CancelOption}) }
func yesNoKeyboard() [][]string    { return singleColumn(YesNoOptions, []string{CancelOption}) }
func cancelKeyboard() [][]string   { return singleColumn([]string{CancelOption}) }

func multiKeyboard(options []string) [][]string {
	return singleColumn(options, []string{DoneOption}, []string{CancelOption})
}

func confirmKeyboard() [][]string {
	return singleColumn(ConfirmOptions, []string{CancelOption})
}

func (m *Machine) registerQuestionnaire() {
	m.register(StateGoal, stateSpec{
		transitions: []transition{
			{tokenIn(GoalOptions), func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyGoal, in.Text)
				s.State = StateAudience
				return reply(promptAudience, multiKeyboard(AudienceOptions)), nil
			}},
		},
		fallback: reprompt(promptGoal, goalKeyboard()),
	})

	m.register(StateAudience, m.multiSelect(keyAudience, AudienceOptions, promptAudience,
		func(s *session.Session) (*Result, error) {
			s.State = StatePlatform
			return reply(promptPlatform, platformKeyboard()), nil
		}))

	m.register(StatePlatform, stateSpec{
		transitions: []transition{
			{tokenIn(PlatformOptions), func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyPlatform, in.Text)
				s.State = StateFormat
				return reply(promptFormat, multiKeyboard(FormatOptions)), nil
			}},
		},
		fallback: reprompt(promptPlatform, platformKeyboard()),
	})

	m.register(StateFormat, m.multiSelect(keyFormat, FormatOptions, promptFormat,
		func(s *session.Session) (*Result, error) {
			s.State = StateHasEvent
			return reply(promptHasEvent, yesNoKeyboard()), nil
		}))

	m.register(StateHasEvent, stateSpec{
		transitions: []transition{
			{tokenIs(YesNoOptions[0]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.Set(keyHasEvent, true)
				s.State = StateEventDetails
				return reply(promptEventDetails, cancelKeyboard()), nil
			}},
			{tokenIs(YesNoOptions[1]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.Set(keyHasEvent, false)
				s.State = StateVolume
				return reply(promptVolume, volumeKeyboard()), nil
			}},
		},
		fallback: reprompt(promptHasEvent, yesNoKeyboard()),
	})

	m.register(StateEventDetails, stateSpec{
		transitions: []transition{
			{anyText, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyEventDetails, in.Text)
				s.State = StateVolume
				return reply(promptVolume, volumeKeyboard()), nil
			}},
		},
		fallback: reprompt(promptEventDetails, cancelKeyboard()),
	})

	m.register(StateVolume, stateSpec{
		transitions: []transition{
			{tokenIn(VolumeOptions), func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyVolume, in.Text)
				s.State = StateDescription
				return reply(promptDescription, cancelKeyboard()), nil
			}},
		},
		fallback: reprompt(promptVolume, volumeKeyboard()),
	})

	m.register(StateDescription, stateSpec{
		transitions: []transition{
			{anyText, func(ctx context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyDescription, in.Text)
				return m.generatePost(ctx, s)
			}},
		},
		fallback: reprompt(promptDescription, cancelKeyboard()),
	})

	m.register(StateConfirm, stateSpec{
		transitions: []transition{
			{tokenIs(DoneOption), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				text := s.GetString(keyGeneratedText)
				resetSession(s)
				return &Result{Messages: []Outbound{
					{Text: text},
					{Text: msgPostReady, Keyboard: singleColumn(MainMenuOptions)},
				}}, nil
			}},
			{tokenIs(ConfirmOptions[1]), func(ctx context.Context, s *session.Session, _ Input) (*Result, error) {
				return m.generatePost(ctx, s)
			}},
			{tokenIs(ConfirmOptions[2]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StateEditText
				return reply(promptEditText, cancelKeyboard()), nil
			}},
		},
		fallback: reprompt("Выберите действие с текстом.", confirmKeyboard()),
	})

	m.register(StateEditText, stateSpec{
		transitions: []transition{
			{anyText, func(ctx context.Context, s *session.Session, in Input) (*Result, error) {
				edited, err := m.gen.EditText(ctx, generation.EditPromptContext{
					TextToEdit:     s.GetString(keyGeneratedText),
					Details:        in.Text,
					HasNGOInfo:     s.GetBool(keyHasNGOInfo),
					NGOName:        s.GetString("ngo_name"),
					NGODescription: s.GetString("ngo_description"),
					NGOActivities:  s.GetString("ngo_activities"),
					NGOContact:     s.GetString("ngo_contact"),
				})
				if err != nil {
					return reply(msgGenerateFailed, cancelKeyboard()), nil
				}
				s.Set(keyGeneratedText, edited)
				s.State = StateConfirm
				return reply(edited, confirmKeyboard()), nil
			}},
		},
		fallback: reprompt(promptEditText, cancelKeyboard()),
	})
}

// startQuestionnaire resets the answers and opens the first question.
func (m *Machine) startQuestionnaire(_ context.Context, s *session.Session, _ Input) (*Result, error) {
	s.Answers = make(map[string]any)
	s.State = StateGoal
	return reply(promptGoal, goalKeyboard()), nil
}

// multiSelect builds the shared multi-choice state: options toggle in and
// out of the selection, Done with a non-empty selection advances, Done with
// an empty one re-prompts.
func (m *Machine) multiSelect(key string, options []string, prompt string, advance func(*session.Session) (*Result, error)) stateSpec {
	return stateSpec{
		transitions: []transition{
			{and(tokenIs(DoneOption), hasSelection(key)), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				return advance(s)
			}},
			{tokenIs(DoneOption), func(_ context.Context, _ *session.Session, _ Input) (*Result, error) {
				return reply(msgPickAtLeastOne, multiKeyboard(options)), nil
			}},
			{tokenIn(options), func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Toggle(key, in.Text)
				return reply(selectionSummary(s.GetStringList(key)), multiKeyboard(options)), nil
			}},
		},
		fallback: reprompt(prompt, multiKeyboard(options)),
	}
}

func selectionSummary(selected []string) string {
	if len(selected) == 0 {
		return "Выбор снят. " + msgPickAtLeastOne
	}
	return "Выбрано: " + strings.Join(selected, ", ") + "\nДобавьте ещё или нажмите «✅ Готово»."
}

// generatePost runs text generation from the accumulated answers. On
// failure the state is left unchanged so the user can retry the same step.
func (m *Machine) generatePost(ctx context.Context, s *session.Session) (*Result, error) {
	text, err := m.gen.GeneratePost(ctx, generation.ContextFromAnswers(s.Answers))
	if err != nil {
		return reply(msgGenerateFailed, cancelKeyboard()), nil
	}
	s.Set(keyGeneratedText, text)
	s.State = StateConfirm
	return reply(text, confirmKeyboard()), nil
}
