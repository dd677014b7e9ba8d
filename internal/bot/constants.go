package bot

import "time"

// Command names; Cyrillic aliases are matched the same way as Latin ones.
const (
	CmdStart        = "start"
	CmdMenu         = "menu"
	CmdMenuRu       = "меню"
	CmdTeach        = "teach"
	CmdTeachRu      = "обучение"
	CmdProgress     = "progress"
	CmdRank         = "rank"
	CmdResetProfile = "reset_profile"
	CmdFillProfile  = "fill_profile"
	CmdDebug        = "debug"
	CmdHelp         = "help"
)

// Callback data.
const (
	CallbackPrefixDetails = "det_"
	CallbackClosePromo    = "close_promo"
)

// Button labels.
const (
	ButtonTeaching      = "🔧 Обучение"
	ButtonShowKnowledge = "📝 Показать базу знаний"
	ButtonExitTeaching  = "❌ Выйти из режима обучения"
	ButtonDetails       = "📖 Подробнее"
	ButtonPromoSite     = "🌐 Перейти на сайт"
	ButtonPromoClose    = "❌ Закрыть"
	ButtonExercises     = "🏃‍♂️ Упражнения"
	ButtonStepOne       = "1️⃣ Ступень 1"
	ButtonAbout         = "📚 О системе"
	ButtonAboutHelp     = "❓ Помощь"
)

// Log field names.
const (
	LogFieldUserID   = "user_id"
	LogFieldUsername = "username"
	LogFieldChatID   = "chat_id"
	LogFieldTraceID  = "trace_id"
	LogFieldAction   = "action"
	logFieldMenu     = "menu"
	logFieldTopic    = "topic"
	logFieldKey      = "key"
	logFieldMatch    = "match"
	logFieldRank     = "rank"
)

// Update kinds for the updates counter.
const (
	updateKindMessage  = "message"
	updateKindCallback = "callback"
	updateKindOther    = "other"
)

const (
	// plainTextThreshold is the length above which Markdown is not attempted.
	plainTextThreshold = 3000
	// markupDensityThreshold is the emphasis count above which Markdown is not attempted.
	markupDensityThreshold = 50
	// callbackTopicBytes is the longest topic kept verbatim in callback data.
	callbackTopicBytes = 50
	callbackTopicRunes = 30
	callbackHashChars  = 16
	// debugPreviewRunes bounds the /debug knowledge excerpt.
	debugPreviewRunes = 200
	// teachingPreviewRunes bounds each entry in the info knowledge listing.
	teachingPreviewRunes = 200

	promoDelay = 500 * time.Millisecond
)

const debugKey = "ступень 1 сцепление"

// Back-to-main inputs.
var backInputs = []string{"🔙 НАЗАД В ГЛАВНОЕ МЕНЮ", "🏠 Главное меню", "главное меню"}

// Expert content buttons.
var (
	exercisesInputs = []string{ButtonExercises, ButtonStepOne}
	aboutInputs     = []string{ButtonAbout, ButtonAboutHelp}
)

// exercisesPrompt is the question asked for the exercises overview.
const exercisesPrompt = "Расскажи подробно о первой ступени Сеплицы: упражнения для осанки и фасций"

// Lower-cased teaching controls.
var (
	showKnowledgeInputs = []string{"показать", "📝 показать базу знаний"}
	exitTeachingInputs  = []string{"выход", "❌ выйти из режима обучения", "отмена", "стоп"}
)

// User-facing texts. Single asterisks are legacy Markdown emphasis.
const (
	textWelcomeUser = "👋 Добро пожаловать в «Сеплица-Эксперт»!\n\n" +
		"Я — ваш AI-консультант по системе естественного омоложения.\n\n" +
		"Выберите нужный раздел из меню ниже или просто задайте вопрос!"
	textWelcomeAuthorFmt = "👋 Привет, %s! Вы в режиме автора системы Сеплица.\n\n" +
		"Выберите раздел или нажмите '" + ButtonTeaching + "' для коррекции знаний."
	textHelp = "ℹ️ *Как пользоваться ботом*\n\n" +
		"• Выбирайте разделы в меню или задавайте вопрос своими словами\n" +
		"• /menu - главное меню\n"
	textHelpProgress = "• /progress - ваш прогресс\n" +
		"• /rank - ваше звание\n" +
		"• /fill\\_profile - заполнить анкету\n" +
		"• /reset\\_profile - сбросить анкету\n"
	textHelpAuthor = "• /teach - режим обучения\n" +
		"• /debug - проверка поиска по базе знаний\n"

	textBackToMain      = "🏠 Возвращаемся в главное меню:"
	textAuthorOnly      = "⛔ Эта функция доступна только автору системы."
	textAuthorOnlyCmd   = "⛔ Эта команда доступна только автору системы."
	textTeachingEnabled = "🔧 *РЕЖИМ ОБУЧЕНИЯ АКТИВИРОВАН*\n\n" +
		"Для добавления/коррекции знаний используйте формат:\n" +
		"```\nТЕМА: исправленный текст\n```\n\n" +
		"Пример:\n" +
		"`упражнения: Добавлены новые упражнения для шеи...`\n\n" +
		"Доступные команды:\n" +
		"• 'показать' - просмотр текущих знаний\n" +
		"• 'выход' - выход из режима обучения\n" +
		"• 'главное меню' - возврат в основное меню"
	textTeachingDisabled  = "✅ *Режим обучения завершен*\n\nВы вернулись в обычный режим работы."
	textKnowledgeEmpty    = "📝 База знаний пуста."
	textKnowledgeHeader   = "📚 *ТЕКУЩИЕ ЗНАНИЯ СИСТЕМЫ:*\n\n"
	textKnowledgeSavedFmt = "✅ *Знания обновлены!*\n\n" +
		"*Тема:* %s\n" +
		"*Содержание:* %s\n\n" +
		"Продолжайте добавлять знания или нажмите '" + ButtonExitTeaching + "'"
	textKnowledgeSaveFailed = "❌ Ошибка сохранения знаний"
	textTeachingFormat      = "❌ Неверный формат. Используйте:\n`ТЕМА: текст`"

	textCollectionAborted = "✅ Сбор данных прерван. Возвращаемся в главное меню:"
	textProfileReset      = "✅ Анкета сброшена! Теперь можете заполнить её заново."
	textWizardDisabled    = "ℹ️ Анкета в этом боте не используется."

	textTopicFmt        = "📋 *%s*\n\n%s"
	textShortTopicFmt   = "📋 %s\n\n%s"
	textDetailsFmt      = "📖 *%s:*\n\n%s"
	textDetailsWaiting  = "💭 Запрашиваю подробную информацию..."
	textDetailsMissing  = "❌ Информация по этой теме временно недоступна."
	textPromoClosed     = "✅ Объявление закрыто"
	textExercisesWait   = "💭 Составляю ответ по упражнениям..."
	textExercisesTopic  = "🏃‍♂️ Упражнения Сеплицы"
	textAIUnavailable   = "⚠️ Ошибка связи с AI"
	textRankUpFmt       = "🎉 *Поздравляем!* Ваше новое звание: *%s*"
	textDebugFoundFmt   = "✅ Ключ '%s' найден!\n\nПервые 200 символов:\n%s..."
	textDebugMissingFmt = "❌ Ключ '%s' не найден"

	textPromo = "🎉 ✨ НОВОГОДНЯЯ АКЦИЯ ✨ 🎉\n\n" +
		"🎁 Закажи СЕГОДНЯ и получи скидку 10% на ВСЕ услуги следующего года!\n\n" +
		"⏰ СПЕШИТЕ! Предложение действует только в новогодние дни!\n\n" +
		"Это ваш шанс начать год с омоложения по специальной цене!\n\n" +
		"Узнать больше и сделать заказ можно на нашем сайте 👇"

	textProgressFmt = "🏆 *ВАШ ПРОГРЕСС В СИСТЕМЕ СЕПЛИЦА*\n\n" +
		"📊 *Текущее звание:* %s\n" +
		"✅ Изучено меню: %d\n" +
		"📚 Прочитано тем: %d\n" +
		"🔍 Нажатий 'Подробнее': %d\n\n"
	textProgressNextFmt = "🎯 *Следующее звание:* %s\n" +
		"📈 Прогресс: %d%%\n\n" +
		"Продолжайте изучать систему для повышения звания!"
	textProgressMax = "🎉 *Вы достигли максимального звания!*\nВы — настоящий эксперт системы Сеплица!"
	textRankFmt     = "🏆 *ВАШЕ ТЕКУЩЕЕ ЗВАНИЕ:* %s\n\n" +
		"Система званий Сеплица:\n" +
		"• %s - начальный уровень\n" +
		"• %s - углубленное изучение\n" +
		"• %s - полное освоение системы\n\n" +
		"Используйте /progress для детальной статистики"
	textProgressDisabled = "ℹ️ Учет прогресса в этом боте отключен."

	textAbout = "📚 *СИСТЕМА «СЕПЛИЦА»*\n\n" +
		"4 ступени естественного омоложения:\n\n" +
		"1. 🏃‍♂️ *СЦЕПЛЕНИЕ* - Упражнения для осанки\n" +
		"2. 💆‍♀️ *ЕСТЕСТВЕННОСТЬ* - Массажи лица и шеи\n" +
		"3. 🥗 *ПИТАНИЕ* - Ферментированные продукты\n" +
		"4. 💊 *ЗАБОТА О КЛЕТКАХ* - Добавки (NMN, Омега-3 и др.)\n\n" +
		"Выберите раздел для подробной информации!"
)
