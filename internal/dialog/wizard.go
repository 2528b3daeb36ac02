package dialog

import (
	"context"

	"github.com/mkuznetsova/dobrobot/internal/generation"
	"github.com/mkuznetsova/dobrobot/internal/session"
)

// Wizard flow: a guided post builder with optional NGO profile reuse,
// structured or free-form input, narrative style, and an optional
// illustration assembled into a branded card at the end.

const (
	promptWizardMode     = "🧙 Как будем собирать пост?"
	promptWizardNGO      = "🏢 Использовать данные вашей НКО в тексте?"
	promptEventType      = "Какое событие освещаем? Например: сбор помощи, мастер-класс, отчёт."
	promptEventDate      = "📅 Когда пройдёт событие?"
	promptEventPlace     = "📍 Где пройдёт событие?"
	promptEventAudience  = "👥 Для кого это событие?"
	promptWizardDetails  = "Добавьте детали, которые важно упомянуть."
	promptFreeText       = "✍️ Опишите пост своими словами: тему, факты, что хотите донести."
	promptStyle          = "🎨 В каком стиле написать текст?"
	promptWizardPlatform = "📱 Для какой платформы готовим пост?"
	promptImageSource    = "🖼 Добавим изображение к посту?"
	promptImagePrompt    = "Опишите, что должно быть на изображении."
	promptImageUpload    = "Отправьте фотографию одним сообщением."
	promptFinalConfirm   = "Текст и изображение готовы. Собрать брендированную карточку?"

	msgNoOrgProfile  = "У вас ещё нет профиля НКО, продолжаем без него."
	msgImageFailed   = "⚠️ Не удалось сгенерировать изображение. Попробуйте другое описание или нажмите «❌ Отмена»."
	msgCardFailed    = "⚠️ Не удалось собрать карточку. Текст поста сохранён."
	msgWizardDone    = "Готово! Возвращаю вас в меню."
	msgChooseListed  = "Выберите один из предложенных вариантов."
)

func skipKeyboard() [][]string {
	return singleColumn([]string{SkipOption}, []string{CancelOption})
}

func (m *Machine) registerWizard() {
	m.register(StateWizardMode, stateSpec{
		transitions: []transition{
			{tokenIs(WizardModeOptions[0]), func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyWizardMode, in.Text)
				s.State = StateWizardNGO
				return reply(promptWizardNGO, yesNoKeyboard()), nil
			}},
			{tokenIs(WizardModeOptions[1]), func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyWizardMode, in.Text)
				s.State = StateWizardFreeText
				return reply(promptFreeText, cancelKeyboard()), nil
			}},
		},
		fallback: reprompt(promptWizardMode, singleColumn(WizardModeOptions, []string{CancelOption})),
	})

	m.register(StateWizardNGO, stateSpec{
		transitions: []transition{
			{tokenIs(YesNoOptions[0]), m.attachOrganization},
			{tokenIs(YesNoOptions[1]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.Set(keyHasNGOInfo, false)
				s.State = StateWizardEventType
				return reply(promptEventType, skipKeyboard()), nil
			}},
		},
		fallback: reprompt(promptWizardNGO, yesNoKeyboard()),
	})

	m.register(StateWizardEventType, m.wizardStep(keyEventType, promptEventType, StateWizardEventDate, promptEventDate))
	m.register(StateWizardEventDate, m.wizardStep(keyEventDate, promptEventDate, StateWizardEventPlace, promptEventPlace))
	m.register(StateWizardEventPlace, m.wizardStep(keyEventPlace, promptEventPlace, StateWizardEventAudience, promptEventAudience))
	m.register(StateWizardEventAudience, m.wizardStep(keyEventAudience, promptEventAudience, StateWizardEventDetails, promptWizardDetails))

	m.register(StateWizardEventDetails, stateSpec{
		transitions: []transition{
			{tokenIs(SkipOption), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StateWizardStyle
				return reply(promptStyle, singleColumn(StyleOptions, []string{CancelOption})), nil
			}},
			{anyText, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyEventDetails, in.Text)
				s.State = StateWizardStyle
				return reply(promptStyle, singleColumn(StyleOptions, []string{CancelOption})), nil
			}},
		},
		fallback: reprompt(promptWizardDetails, skipKeyboard()),
	})

	m.register(StateWizardFreeText, stateSpec{
		transitions: []transition{
			{anyText, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyDescription, in.Text)
				s.State = StateWizardStyle
				return reply(promptStyle, singleColumn(StyleOptions, []string{CancelOption})), nil
			}},
		},
		fallback: reprompt(promptFreeText, cancelKeyboard()),
	})

	m.register(StateWizardStyle, stateSpec{
		transitions: []transition{
			{tokenIn(StyleOptions), func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyStyle, in.Text)
				s.State = StateWizardPlatform
				return reply(promptWizardPlatform, platformKeyboard()), nil
			}},
		},
		fallback: reprompt(promptStyle, singleColumn(StyleOptions, []string{CancelOption})),
	})

	m.register(StateWizardPlatform, stateSpec{
		transitions: []transition{
			{tokenIn(PlatformOptions), func(ctx context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyPlatform, in.Text)
				return m.generateWizardPost(ctx, s)
			}},
		},
		fallback: reprompt(promptWizardPlatform, platformKeyboard()),
	})

	m.register(StateWizardTextResult, stateSpec{
		transitions: []transition{
			{tokenIs(TextResultOptions[0]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StateWizardImageSource
				return reply(promptImageSource, singleColumn(ImageSourceOptions, []string{CancelOption})), nil
			}},
			{tokenIs(TextResultOptions[1]), func(ctx context.Context, s *session.Session, _ Input) (*Result, error) {
				return m.generateWizardPost(ctx, s)
			}},
			{tokenIs(TextResultOptions[2]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StateWizardTextEdit
				return reply(promptEditText, cancelKeyboard()), nil
			}},
		},
		fallback: reprompt(msgChooseListed, singleColumn(TextResultOptions, []string{CancelOption})),
	})

	m.register(StateWizardTextEdit, stateSpec{
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
				s.State = StateWizardTextResult
				return reply(edited, singleColumn(TextResultOptions, []string{CancelOption})), nil
			}},
		},
		fallback: reprompt(promptEditText, cancelKeyboard()),
	})

	m.register(StateWizardImageSource, stateSpec{
		transitions: []transition{
			{tokenIs(ImageSourceOptions[0]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StateWizardImagePrompt
				return reply(promptImagePrompt, cancelKeyboard()), nil
			}},
			{tokenIs(ImageSourceOptions[1]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StateWizardImageUpload
				return reply(promptImageUpload, cancelKeyboard()), nil
			}},
			{tokenIs(ImageSourceOptions[2]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StateWizardFinalConfirm
				return reply(promptFinalConfirm, singleColumn(FinalConfirmOptions, []string{CancelOption})), nil
			}},
		},
		fallback: reprompt(promptImageSource, singleColumn(ImageSourceOptions, []string{CancelOption})),
	})

	m.register(StateWizardImagePrompt, stateSpec{
		transitions: []transition{
			{anyText, func(ctx context.Context, s *session.Session, in Input) (*Result, error) {
				img, err := m.gen.GenerateImage(ctx, in.Text)
				if err != nil {
					return reply(msgImageFailed, cancelKeyboard()), nil
				}
				s.Set(keyImage, img)
				s.State = StateWizardFinalConfirm
				return &Result{Messages: []Outbound{
					{Photo: img},
					{Text: promptFinalConfirm, Keyboard: singleColumn(FinalConfirmOptions, []string{CancelOption})},
				}}, nil
			}},
		},
		fallback: reprompt(promptImagePrompt, cancelKeyboard()),
	})

	m.register(StateWizardImageUpload, stateSpec{
		transitions: []transition{
			{hasPhoto, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyImage, in.Photo)
				s.State = StateWizardFinalConfirm
				return reply(promptFinalConfirm, singleColumn(FinalConfirmOptions, []string{CancelOption})), nil
			}},
		},
		fallback: reprompt(promptImageUpload, cancelKeyboard()),
	})

	m.register(StateWizardFinalConfirm, stateSpec{
		transitions: []transition{
			{tokenIs(FinalConfirmOptions[0]), m.assembleCard},
			{tokenIs(DoneOption), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				text := s.GetString(keyGeneratedText)
				resetSession(s)
				return &Result{Messages: []Outbound{
					{Text: text},
					{Text: msgWizardDone, Keyboard: singleColumn(MainMenuOptions)},
				}}, nil
			}},
		},
		fallback: reprompt(promptFinalConfirm, singleColumn(FinalConfirmOptions, []string{CancelOption})),
	})
}

func (m *Machine) startWizard(_ context.Context, s *session.Session, _ Input) (*Result, error) {
	s.Answers = make(map[string]any)
	s.State = StateWizardMode
	return reply(promptWizardMode, singleColumn(WizardModeOptions, []string{CancelOption})), nil
}

// attachOrganization copies the stored NGO profile into the answers so the
// prompts can reference it. A missing profile is not an error: the wizard
// continues without the profile block.
func (m *Machine) attachOrganization(ctx context.Context, s *session.Session, _ Input) (*Result, error) {
	org, err := m.orgs.Get(ctx, s.UserID)
	if err != nil {
		m.logger.Error("loading organization failed", "user_id", s.UserID, "error", err)
	}
	if org == nil {
		s.Set(keyHasNGOInfo, false)
		s.State = StateWizardEventType
		return &Result{Messages: []Outbound{
			{Text: msgNoOrgProfile},
			{Text: promptEventType, Keyboard: skipKeyboard()},
		}}, nil
	}
	s.Set(keyHasNGOInfo, true)
	s.Set("ngo_name", org.Name)
	s.Set("ngo_description", org.Description)
	s.Set("ngo_activities", org.Activities)
	s.Set("ngo_contact", org.Contact)
	s.State = StateWizardEventType
	return reply(promptEventType, skipKeyboard()), nil
}

// wizardStep builds a free-text question that may be skipped.
func (m *Machine) wizardStep(key, prompt string, next session.State, nextPrompt string) stateSpec {
	return stateSpec{
		transitions: []transition{
			{tokenIs(SkipOption), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = next
				return reply(nextPrompt, skipKeyboard()), nil
			}},
			{anyText, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(key, in.Text)
				s.State = next
				return reply(nextPrompt, skipKeyboard()), nil
			}},
		},
		fallback: reprompt(prompt, skipKeyboard()),
	}
}

func (m *Machine) generateWizardPost(ctx context.Context, s *session.Session) (*Result, error) {
	text, err := m.gen.GeneratePost(ctx, generation.ContextFromAnswers(s.Answers))
	if err != nil {
		return reply(msgGenerateFailed, cancelKeyboard()), nil
	}
	s.Set(keyGeneratedText, text)
	s.State = StateWizardTextResult
	return reply(text, singleColumn(TextResultOptions, []string{CancelOption})), nil
}

// assembleCard renders the branded card. A render failure never loses the
// generated text: the post is delivered as plain text instead.
func (m *Machine) assembleCard(ctx context.Context, s *session.Session, _ Input) (*Result, error) {
	text := s.GetString(keyGeneratedText)
	card, err := m.gen.RenderCard(ctx, generation.CardRequest{
		Title:      s.GetString(keyEventType),
		Text:       text,
		NGOName:    s.GetString("ngo_name"),
		EventDate:  s.GetString(keyEventDate),
		EventPlace: s.GetString(keyEventPlace),
		Image:      s.GetBytes(keyImage),
	})
	resetSession(s)
	if err != nil {
		return &Result{Messages: []Outbound{
			{Text: msgCardFailed},
			{Text: text, Keyboard: singleColumn(MainMenuOptions)},
		}}, nil
	}
	return &Result{Messages: []Outbound{
		{Photo: card, Text: text},
		{Text: msgWizardDone, Keyboard: singleColumn(MainMenuOptions)},
	}}, nil
}
