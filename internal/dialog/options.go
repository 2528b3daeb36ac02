package dialog

// Reply-keyboard option tokens. Input is matched against these exact
// strings; anything else at an option state is re-prompted.

var GoalOptions = []string{
	"🎯 Привлечь волонтеров",
	"💰 Найти спонсоров/доноров",
	"📢 Рассказать о мероприятии",
	"❤️ Повысить осведомленность о проблеме",
	"🤝 Укрепить отношения со сторонниками",
}

var AudienceOptions = []string{
	"👨‍🎓 Молодежь (14-25 лет)",
	"👨‍👩‍👧‍👦 Семьи с детьми",
	"💼 Работающие взрослые (25-45 лет)",
	"👴 Люди старшего возраста (45+)",
	"🏢 Бизнес/организации",
}

var PlatformOptions = []string{
	"📱 ВКонтакте (для молодежи)",
	"💬 Telegram (для взрослых/бизнеса)",
	"📸 Instagram (визуальный контент)",
}

var FormatOptions = []string{
	"📝 Информационный пост (70% контента)",
	"🎭 Развлекательный/эмоциональный пост (20%)",
	"💬 Пост для вовлечения аудитории (10%)",
	"📅 Напоминание о мероприятии",
}

var VolumeOptions = []string{
	"📱 Короткий пост (1-3 предложения + карточка)",
	"📝 Средний пост (3-5 предложений + 2-3 карточки)",
	"📖 Развернутый пост (5+ предложений + 4-5 карточек)",
}

var StyleOptions = []string{
	"🧑‍💼 Официальный",
	"❤️ Душевный",
	"⚡ Энергичный",
}

var WizardModeOptions = []string{
	"📋 Структурированная форма",
	"✍️ Свободная форма",
}

var ImageSourceOptions = []string{
	"🎨 Сгенерировать изображение",
	"📷 Загрузить своё",
	"⏩ Без изображения",
}

var TextResultOptions = []string{
	"✅ Далее",
	"🔄 Сгенерировать заново",
	"✏️ Редактировать",
}

var ConfirmOptions = []string{
	"✅ Готово",
	"🔄 Сгенерировать заново",
	"✏️ Редактировать",
}

var FinalConfirmOptions = []string{
	"🖼 Собрать карточку",
	"✅ Готово",
}

var PeriodOptions = []string{
	"3 дня",
	"Неделя",
	"Месяц",
}

var FrequencyOptions = []string{
	"каждый день",
	"раз в два дня",
}

const (
	MenuCreateContent = "✨ Создать контент"
	MenuWizard        = "🧙 Мастер контента"
	MenuCreatePlan    = "📅 Создать контент-план"
	MenuMyPlans       = "📋 Мои планы"
	MenuMyOrg         = "🏢 Моя НКО"
)

var MainMenuOptions = []string{
	MenuCreateContent,
	MenuWizard,
	MenuCreatePlan,
	MenuMyPlans,
	MenuMyOrg,
}

var OrgMenuOptions = []string{
	"✏️ Редактировать",
	"🗑 Удалить",
}

var YesNoOptions = []string{"✅ Да", "❌ Нет"}

const (
	DoneOption   = "✅ Готово"
	SkipOption   = "⏩ Пропустить"
	CancelOption = "❌ Отмена"
	CustomOption = "🖊️ Свой вариант"

	StartCommand  = "/start"
	CancelCommand = "/cancel"
)

// singleColumn renders options as a one-button-per-row keyboard.
func singleColumn(options ...[]string) [][]string {
	var rows [][]string
	for _, group := range options {
		for _, opt := range group {
			rows = append(rows, []string{opt})
		}
	}
	return rows
}

func contains(options []string, token string) bool {
	for _, opt := range options {
		if opt == token {
			return true
		}
	}
	return false
}
