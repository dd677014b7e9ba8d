package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/seplitsa/seplitsa-bot/internal/profile"
	"github.com/seplitsa/seplitsa-bot/internal/session"
)

// Menu is one screen of the static navigation tree.
type Menu struct {
	Key     string
	Title   string
	Buttons []string
}

const mainMenuTitle = "🏠 ГЛАВНОЕ МЕНЮ"

// Main menu buttons double as submenu keys.
const (
	menuBasics    = "📚 СИСТЕМА СЕПЛИЦА: ОСНОВЫ"
	menuStep1     = "💪 СТУПЕНЬ 1: СЦЕПЛЕНИЕ"
	menuStep2     = "🙆 СТУПЕНЬ 2: ЕСТЕСТВЕННОСТЬ"
	menuStep3     = "🥗 СТУПЕНЬ 3: ПИТАНИЕ"
	menuStep4     = "🔬 СТУПЕНЬ 4: БИОХАКИНГ"
	menuCourse    = "🎓 КУРС \"ОМОЛОДИСЬ\""
	menuTools     = "🛠️ ПРАКТИЧЕСКИЕ ИНСТРУМЕНТЫ"
	menuQuestions = "❓ ЧАСТЫЕ ВОПРОСЫ"
)

var menus = []Menu{
	{
		Key:     session.MainMenu,
		Title:   mainMenuTitle,
		Buttons: []string{menuBasics, menuStep1, menuStep2, menuStep3, menuStep4, menuCourse, menuTools, menuQuestions},
	},
	{
		Key:   menuBasics,
		Title: menuBasics,
		Buttons: []string{
			"что такое система сеплица",
			"философия системы сеплица",
			"4 ступени системы сеплица",
			profile.ButtonBack,
		},
	},
	{
		Key:   menuStep1,
		Title: menuStep1,
		Buttons: []string{
			"ступень 1 сцепление",
			"зарядка долголетия (33 упражнения)",
			"частые ошибки в зарядке",
			"связь осанки и молодости лица",
			profile.ButtonBack,
		},
	},
	{
		Key:   menuStep2,
		Title: menuStep2,
		Buttons: []string{
			"ступень 2 естественность",
			"лимфодренажный массаж лица",
			"расслабление миофасций",
			"тонизирование лицевых мышц",
			"массаж шейно-воротниковой зоны",
			"работа с триггерными точками",
			profile.ButtonBack,
		},
	},
	{
		Key:   menuStep3,
		Title: menuStep3,
		Buttons: []string{
			"ступень 3 питание",
			"что такое микробиом",
			"ферментированные продукты в сеплице",
			"пребиотики и клетчатка",
			"продукты, вредные для микробиома",
			"рецепты ферментированных продуктов",
			profile.ButtonBack,
		},
	},
	{
		Key:   menuStep4,
		Title: "🔬 СТУПЕНЬ 4: ЗАБОТА О КЛЕТКАХ",
		Buttons: []string{
			"ступень 4 забота о клетках",
			"nmn (никотинамидмононуклеотид)",
			"омега-3 с упором на dha",
			"ресвератрол",
			"кверцетин",
			"косметика с ghk-cu (медный трипептид-1)",
			"как выбирать качественные добавки",
			profile.ButtonBack,
		},
	},
	{
		Key:   menuCourse,
		Title: menuCourse,
		Buttons: []string{
			"курс омолодись",
			"структура курса омолодись",
			"результаты курса омолодись",
			profile.ButtonBack,
		},
	},
	{
		Key:   menuTools,
		Title: menuTools,
		Buttons: []string{
			"приложение rejuvena",
			"фотодневник до/после",
			"как правильно делать селфи для отслеживания прогресса",
			profile.ButtonBack,
		},
	},
	{
		Key:   menuQuestions,
		Title: "❓ ЧАСТО ЗАДАВАЕМЫЕ ВОПРОСЫ",
		Buttons: []string{
			"частые вопросы о системе",
			"противопоказания",
			"как совмещать с косметологией",
			"когда ждать первых результатов",
			profile.ButtonBack,
		},
	},
}

var menusByKey = indexMenus(menus)

func indexMenus(list []Menu) map[string]Menu {
	m := make(map[string]Menu, len(list))
	for _, menu := range list {
		m[menu.Key] = menu
	}

	return m
}

// LookupMenu returns the menu registered under key.
func LookupMenu(key string) (Menu, bool) {
	m, ok := menusByKey[key]
	return m, ok
}

// isSubmenu reports whether text opens a submenu.
func isSubmenu(text string) bool {
	_, ok := menusByKey[text]
	return ok && text != session.MainMenu
}

// isMenuButton reports whether text is any button of any menu.
func isMenuButton(text string) bool {
	for _, m := range menus {
		for _, b := range m.Buttons {
			if b == text {
				return true
			}
		}
	}

	return false
}

// isTopicOf reports whether text is a topic button of the given menu.
func isTopicOf(menuKey, text string) bool {
	m, ok := menusByKey[menuKey]
	if !ok {
		return false
	}

	for _, b := range m.Buttons {
		if b == text && b != profile.ButtonBack && b != profile.ButtonMainMenu {
			return true
		}
	}

	return false
}

// menuRows lays buttons out two per row; the author main menu gets the
// teaching button on a row of its own.
func menuRows(key string, author bool) [][]string {
	m, ok := menusByKey[key]
	if !ok {
		m = menusByKey[session.MainMenu]
	}

	rows := make([][]string, 0, len(m.Buttons)/2+2)
	for i := 0; i < len(m.Buttons); i += 2 {
		end := min(i+2, len(m.Buttons))
		rows = append(rows, m.Buttons[i:end])
	}

	if author && m.Key == session.MainMenu {
		rows = append(rows, []string{ButtonTeaching})
	}

	return rows
}

var teachingRows = [][]string{{ButtonShowKnowledge}, {ButtonExitTeaching}, {profile.ButtonMainMenu}}

// replyKeyboard converts rows of labels into a resizable reply keyboard.
func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	buttons := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			line = append(line, tgbotapi.NewKeyboardButton(label))
		}

		buttons = append(buttons, line)
	}

	kb := tgbotapi.NewReplyKeyboard(buttons...)
	kb.ResizeKeyboard = true

	return kb
}

// detailsKeyboard builds the inline "more" button for a shortened answer.
func detailsKeyboard(topic string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ButtonDetails, detailsCallbackData(topic)),
		),
	)
}

func promoKeyboard(url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(ButtonPromoSite, url)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(ButtonPromoClose, CallbackClosePromo)),
	)
}
