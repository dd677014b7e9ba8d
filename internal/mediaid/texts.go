package mediaid

var kindHeaders = map[Kind]string{
	KindVideo:     "VIDEO",
	KindVideoNote: "VIDEO NOTE",
	KindPhoto:     "PHOTO",
	KindDocument:  "DOCUMENT",
	KindAudio:     "AUDIO",
	KindVoice:     "VOICE",
}

var kindIcons = map[Kind]string{
	KindVideo:     "📹",
	KindVideoNote: "⭕️",
	KindPhoto:     "🖼",
	KindDocument:  "📄",
	KindAudio:     "🎵",
	KindVoice:     "🎤",
}

var kindNames = map[Kind]string{
	KindVideo:     "Видео",
	KindVideoNote: "Круглые видео",
	KindPhoto:     "Фото",
	KindDocument:  "Документы",
	KindAudio:     "Аудио",
	KindVoice:     "Голосовые",
}

const (
	textUnnamed          = "Без названия"
	textUnknownPerformer = "Неизвестен"

	textWelcome = "🤖 *Telegram File ID Bot*\n\n" +
		"Я помогаю получать file\\_id для различных типов медиа!\n\n" +
		"📹 *Поддерживаемые типы:*\n" +
		"• Видео\n• Фото\n• Документы\n• Аудио\n• Голосовые\n• Круглые видео\n\n" +
		"💡 *Как использовать:*\n" +
		"1. Перешлите мне медиа-файл\n" +
		"2. Получите file\\_id для базы знаний\n\n" +
		"📊 *Команды:*\n" +
		"/start - Это сообщение\n" +
		"/stats - Статистика бота\n" +
		"/format - Формат для базы знаний"

	textFormat = "📝 *ФОРМАТ ДЛЯ БАЗЫ ЗНАНИЙ*\n\n" +
		"После получения file\\_id используйте такой формат:\n\n" +
		"```\n{\n  \"тема\": \"[VIDEO:file_id]\\n\\nОписание...\"\n}\n```\n\n" +
		"*Примеры:*\n\n" +
		"1️⃣ Видео в начале:\n" +
		"```\n\"упражнение\": \"[VIDEO:BAACAgI...]\\n\\n💪 Описание\"\n```\n\n" +
		"2️⃣ Видео в середине:\n" +
		"```\n\"тема\": \"Текст...\\n\\n[VIDEO:BAACAgI...]\\n\\nЕще текст\"\n```\n\n" +
		"Бот отправляет видео перед текстом темы, метка в тексте не показывается."

	textUnknown = "❓ *Неизвестный тип медиа*\n\n" +
		"Я работаю с:\n" +
		"📹 Видео\n🖼 Фото\n📄 Документы\n🎵 Аудио\n🎤 Голосовые\n⭕️ Круглые видео\n\n" +
		"Отправьте /help для справки"
)
