package generation

import (
	"fmt"
	"strings"
)

const postSystemPrompt = `Ты — SMM-специалист некоммерческой организации. ` +
	`Пиши тексты для социальных сетей: живо, искренне и без канцелярита. ` +
	`Учитывай платформу, аудиторию и цель публикации. Отвечай только готовым текстом поста.`

const planSystemPrompt = `Ты — контент-стратег некоммерческой организации. ` +
	`Составляй контент-планы в виде списка публикаций, каждая строка в формате ` +
	`"ДД.ММ - Тема публикации". Даты должны начинаться с завтрашнего дня.`

const editSystemPrompt = `Ты — редактор текстов некоммерческой организации. ` +
	`Отредактируй присланный текст согласно указаниям, сохранив его смысл и тон. ` +
	`Отвечай только готовым текстом.`

// buildPostPrompt renders the user prompt for a post generation call.
func buildPostPrompt(pc PromptContext) string {
	var b strings.Builder
	if pc.Goal != "" {
		fmt.Fprintf(&b, "Цель публикации: %s\n", pc.Goal)
	}
	if len(pc.Audience) > 0 {
		fmt.Fprintf(&b, "Целевая аудитория: %s\n", strings.Join(pc.Audience, ", "))
	}
	if pc.Platform != "" {
		fmt.Fprintf(&b, "Платформа: %s\n", pc.Platform)
	}
	if len(pc.ContentFormat) > 0 {
		fmt.Fprintf(&b, "Формат контента: %s\n", strings.Join(pc.ContentFormat, ", "))
	}
	if pc.Volume != "" {
		fmt.Fprintf(&b, "Объём: %s\n", pc.Volume)
	}
	if pc.NarrativeStyle != "" {
		fmt.Fprintf(&b, "Стиль повествования: %s\n", pc.NarrativeStyle)
	}

	if pc.HasEvent {
		b.WriteString("\nМероприятие:\n")
		writeIfSet(&b, "Тип", pc.EventType)
		writeIfSet(&b, "Дата", pc.EventDate)
		writeIfSet(&b, "Место", pc.EventPlace)
		writeIfSet(&b, "Аудитория мероприятия", pc.EventAudience)
		writeIfSet(&b, "Детали", pc.EventDetails)
	}

	if pc.HasNGOInfo {
		b.WriteString("\nОб организации:\n")
		writeIfSet(&b, "Название", pc.NGOName)
		writeIfSet(&b, "Описание", pc.NGODescription)
		writeIfSet(&b, "Деятельность", pc.NGOActivities)
		writeIfSet(&b, "Контакты", pc.NGOContact)
	}

	if pc.Description != "" {
		fmt.Fprintf(&b, "\nО чём рассказать: %s\n", pc.Description)
	}
	return b.String()
}

func buildPlanPrompt(pc PlanPromptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Составь контент-план.\n")
	writeIfSet(&b, "Период", pc.Period)
	writeIfSet(&b, "Частота публикаций", pc.Frequency)
	writeIfSet(&b, "Темы", pc.Topics)
	writeIfSet(&b, "Дополнительные пожелания", pc.Details)
	return b.String()
}

func buildEditPrompt(ec EditPromptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Текст для редактирования:\n%s\n\nУказания: %s\n", ec.TextToEdit, ec.Details)
	if ec.HasNGOInfo {
		b.WriteString("\nОб организации:\n")
		writeIfSet(&b, "Название", ec.NGOName)
		writeIfSet(&b, "Описание", ec.NGODescription)
		writeIfSet(&b, "Деятельность", ec.NGOActivities)
		writeIfSet(&b, "Контакты", ec.NGOContact)
	}
	return b.String()
}

// writeIfSet appends "label: value" unless the value is blank or the
// unfilled-field placeholder.
func writeIfSet(b *strings.Builder, label, value string) {
	if value == "" || value == "Не указано" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
