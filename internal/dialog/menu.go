package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkuznetsova/dobrobot/internal/session"
)

func (m *Machine) registerMenu() {
	m.register(StateIdle, stateSpec{
		transitions: []transition{
			{tokenIs(MenuCreateContent), m.startQuestionnaire},
			{tokenIs(MenuWizard), m.startWizard},
			{tokenIs(MenuCreatePlan), m.startPlan},
			{tokenIs(MenuMyPlans), m.listPlans},
			{tokenIs(MenuMyOrg), m.openOrganization},
		},
		fallback: reprompt("Выберите действие в меню.", singleColumn(MainMenuOptions)),
	})
}

func (m *Machine) listPlans(ctx context.Context, s *session.Session, _ Input) (*Result, error) {
	plans, err := m.plans.ListForUser(ctx, s.UserID, false)
	if err != nil {
		m.logger.Error("listing plans failed", "user_id", s.UserID, "error", err)
		return reply("⚠️ Не удалось загрузить планы. Попробуйте позже.", singleColumn(MainMenuOptions)), nil
	}
	if len(plans) == 0 {
		return reply("У вас пока нет контент-планов. Создайте первый через меню.", singleColumn(MainMenuOptions)), nil
	}

	var b strings.Builder
	b.WriteString("📋 Ваши контент-планы:\n\n")
	for i, p := range plans {
		marker := "🟢"
		if !p.IsActive {
			marker = "⚪️"
		}
		fmt.Fprintf(&b, "%d. %s %s (%s, %s)\n", i+1, marker, p.PlanName, p.Period, p.CreatedAt.Format("02.01.2006"))
	}
	return reply(b.String(), singleColumn(MainMenuOptions)), nil
}
