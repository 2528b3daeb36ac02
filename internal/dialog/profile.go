package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkuznetsova/dobrobot/internal/domain"
	"github.com/mkuznetsova/dobrobot/internal/session"
)

// Organization profile flow: view, create, edit and delete the per-user
// NGO profile. Optional questions may be skipped; blanks are replaced by
// the placeholder on save.

const (
	promptOrgName        = "🏢 Как называется ваша организация?"
	promptOrgDescription = "Опишите вашу организацию в нескольких предложениях."
	promptOrgActivities  = "Чем занимается ваша организация?"
	promptOrgContact     = "Как с вами связаться? Телефон, почта или ссылка."

	msgOrgSaved    = "✅ Профиль НКО сохранён."
	msgOrgDeleted  = "🗑 Профиль НКО удалён."
	msgOrgSaveFail = "⚠️ Не удалось сохранить профиль. Попробуйте позже."
)

func (m *Machine) registerProfile() {
	m.register(StateOrgMenu, stateSpec{
		transitions: []transition{
			{tokenIs(OrgMenuOptions[0]), m.startOrgForm},
			{tokenIs(OrgMenuOptions[1]), func(ctx context.Context, s *session.Session, _ Input) (*Result, error) {
				deleted, err := m.orgs.Delete(ctx, s.UserID)
				if err != nil {
					m.logger.Error("deleting organization failed", "user_id", s.UserID, "error", err)
					return reply("⚠️ Не удалось удалить профиль. Попробуйте позже.", singleColumn(MainMenuOptions)), nil
				}
				resetSession(s)
				if !deleted {
					return reply("Профиль НКО не найден.", singleColumn(MainMenuOptions)), nil
				}
				return reply(msgOrgDeleted, singleColumn(MainMenuOptions)), nil
			}},
		},
		fallback: reprompt(msgChooseListed, singleColumn(OrgMenuOptions, []string{CancelOption})),
	})

	m.register(StateOrgName, stateSpec{
		transitions: []transition{
			{anyText, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyOrgName, in.Text)
				s.State = StateOrgDescription
				return reply(promptOrgDescription, skipKeyboard()), nil
			}},
		},
		fallback: reprompt(promptOrgName, cancelKeyboard()),
	})

	m.register(StateOrgDescription, m.orgStep(keyOrgDescription, promptOrgDescription, StateOrgActivities, promptOrgActivities))
	m.register(StateOrgActivities, m.orgStep(keyOrgActivities, promptOrgActivities, StateOrgContact, promptOrgContact))

	m.register(StateOrgContact, stateSpec{
		transitions: []transition{
			{tokenIs(SkipOption), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				s.State = StateOrgConfirm
				return reply(orgSummary(s), yesNoKeyboard()), nil
			}},
			{anyText, func(_ context.Context, s *session.Session, in Input) (*Result, error) {
				s.Set(keyOrgContact, in.Text)
				s.State = StateOrgConfirm
				return reply(orgSummary(s), yesNoKeyboard()), nil
			}},
		},
		fallback: reprompt(promptOrgContact, skipKeyboard()),
	})

	m.register(StateOrgConfirm, stateSpec{
		transitions: []transition{
			{tokenIs(YesNoOptions[0]), m.saveOrganization},
			{tokenIs(YesNoOptions[1]), func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
				resetSession(s)
				return reply("Изменения не сохранены.", singleColumn(MainMenuOptions)), nil
			}},
		},
		fallback: func(_ context.Context, s *session.Session, _ Input) (*Result, error) {
			return reply(orgSummary(s), yesNoKeyboard()), nil
		},
	})
}

// openOrganization shows the stored profile or starts the creation form
// when the user does not have one yet.
func (m *Machine) openOrganization(ctx context.Context, s *session.Session, in Input) (*Result, error) {
	org, err := m.orgs.Get(ctx, s.UserID)
	if err != nil {
		m.logger.Error("loading organization failed", "user_id", s.UserID, "error", err)
		return reply("⚠️ Не удалось загрузить профиль. Попробуйте позже.", singleColumn(MainMenuOptions)), nil
	}
	if org == nil {
		return m.startOrgForm(ctx, s, in)
	}
	s.State = StateOrgMenu
	text := fmt.Sprintf("🏢 %s\n\n📝 %s\n\n🎯 %s\n\n📞 %s",
		org.Name, org.Description, org.Activities, org.Contact)
	return reply(text, singleColumn(OrgMenuOptions, []string{CancelOption})), nil
}

func (m *Machine) startOrgForm(_ context.Context, s *session.Session, _ Input) (*Result, error) {
	s.Answers = make(map[string]any)
	s.State = StateOrgName
	return reply(promptOrgName, cancelKeyboard()), nil
}

// orgStep builds a skippable free-text profile question.
func (m *Machine) orgStep(key, prompt string, next session.State, nextPrompt string) stateSpec {
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

func (m *Machine) saveOrganization(ctx context.Context, s *session.Session, _ Input) (*Result, error) {
	org := &domain.Organization{
		UserID:      s.UserID,
		Name:        s.GetString(keyOrgName),
		Description: s.GetString(keyOrgDescription),
		Activities:  s.GetString(keyOrgActivities),
		Contact:     s.GetString(keyOrgContact),
	}
	if _, err := m.orgs.CreateOrUpdate(ctx, org); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return reply("⚠️ "+strings.Join(verr.Problems, "\n")+"\n\nИсправьте данные и подтвердите ещё раз.", yesNoKeyboard()), nil
		}
		m.logger.Error("saving organization failed", "user_id", s.UserID, "error", err)
		return reply(msgOrgSaveFail, yesNoKeyboard()), nil
	}
	resetSession(s)
	return reply(msgOrgSaved, singleColumn(MainMenuOptions)), nil
}

func orgSummary(s *session.Session) string {
	field := func(key string) string {
		if v := s.GetString(key); v != "" {
			return v
		}
		return domain.Placeholder
	}
	return fmt.Sprintf("Проверьте данные:\n\n🏢 %s\n📝 %s\n🎯 %s\n📞 %s\n\nСохранить?",
		field(keyOrgName), field(keyOrgDescription), field(keyOrgActivities), field(keyOrgContact))
}
