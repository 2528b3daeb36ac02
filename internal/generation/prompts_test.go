package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPostPrompt_SkipsEmptyAndPlaceholderFields(t *testing.T) {
	prompt := buildPostPrompt(PromptContext{
		Goal:       "Сбор средств",
		HasNGOInfo: true,
		NGOName:    "Добрые руки",
		NGOContact: "Не указано",
	})

	assert.Contains(t, prompt, "Цель публикации: Сбор средств")
	assert.Contains(t, prompt, "Название: Добрые руки")
	assert.NotContains(t, prompt, "Контакты")
	assert.NotContains(t, prompt, "Платформа")
}

func TestBuildPostPrompt_EventBlockOnlyWhenPresent(t *testing.T) {
	withEvent := buildPostPrompt(PromptContext{
		HasEvent:  true,
		EventType: "Ярмарка",
		EventDate: "15.09",
	})
	assert.Contains(t, withEvent, "Мероприятие:")
	assert.Contains(t, withEvent, "Тип: Ярмарка")

	withoutEvent := buildPostPrompt(PromptContext{EventType: "Ярмарка"})
	assert.NotContains(t, withoutEvent, "Мероприятие:")
}

func TestBuildPostPrompt_JoinsMultiSelectAnswers(t *testing.T) {
	prompt := buildPostPrompt(PromptContext{
		Audience:      []string{"Волонтёры", "Доноры"},
		ContentFormat: []string{"Пост", "Сторис"},
	})

	assert.Contains(t, prompt, "Целевая аудитория: Волонтёры, Доноры")
	assert.Contains(t, prompt, "Формат контента: Пост, Сторис")
}

func TestBuildPlanPrompt_IncludesOnlyFilledFields(t *testing.T) {
	prompt := buildPlanPrompt(PlanPromptContext{
		Period:    "Месяц",
		Frequency: "2 раза в неделю",
	})

	assert.Contains(t, prompt, "Период: Месяц")
	assert.Contains(t, prompt, "Частота публикаций: 2 раза в неделю")
	assert.NotContains(t, prompt, "Темы")
	assert.NotContains(t, prompt, "Дополнительные пожелания")
}

func TestBuildEditPrompt_AppendsOrganizationBlock(t *testing.T) {
	prompt := buildEditPrompt(EditPromptContext{
		TextToEdit: "исходный текст",
		Details:    "добавь призыв к действию",
		HasNGOInfo: true,
		NGOName:    "Добрые руки",
	})

	assert.Contains(t, prompt, "исходный текст")
	assert.Contains(t, prompt, "Указания: добавь призыв к действию")
	assert.Contains(t, prompt, "Об организации:")
	assert.Contains(t, prompt, "Название: Добрые руки")
}

func TestContextFromAnswers_MapsKnownKeys(t *testing.T) {
	pc := ContextFromAnswers(map[string]any{
		"goal":         "Анонс",
		"audience":     []string{"Подопечные"},
		"platform":     "ВКонтакте",
		"has_ngo_info": true,
		"ngo_name":     "Добрые руки",
	})

	assert.Equal(t, "Анонс", pc.Goal)
	assert.Equal(t, []string{"Подопечные"}, pc.Audience)
	assert.Equal(t, "ВКонтакте", pc.Platform)
	assert.True(t, pc.HasNGOInfo)
	assert.Equal(t, "Добрые руки", pc.NGOName)
}
