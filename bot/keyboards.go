package bot

import (
	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"teatrlead/entity"
	"teatrlead/internal/flow"
)

func buildConsentKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{{
			{Text: "Согласен ✅", CallbackData: flow.CallbackConsentYes},
		}},
	}
}

func buildGenderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{{
			{Text: "Мужчина", CallbackData: flow.CallbackGenderPrefix + "male"},
			{Text: "Женщина", CallbackData: flow.CallbackGenderPrefix + "female"},
		}},
	}
}

// buildGenresKeyboard renders the genre vocabulary with toggle marks on the
// currently selected entries and a finish button at the bottom.
func buildGenresKeyboard(selected []string) tgbotapi.InlineKeyboardMarkup {
	selectedSet := make(map[string]bool, len(selected))
	for _, s := range selected {
		selectedSet[s] = true
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entity.Genres)+1)
	for _, g := range entity.Genres {
		label := g.Label
		if selectedSet[g.Key] {
			label += " ✓"
		}
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			{Text: label, CallbackData: flow.CallbackGenrePrefix + g.Key},
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		{Text: "Готово ➡️", CallbackData: flow.CallbackGenresDone},
	})

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func buildScenarioKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entity.Scenarios))
	for _, s := range entity.Scenarios {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			{Text: s.Label, CallbackData: flow.CallbackScenarioPrefix + s.Key},
		})
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func buildEmailConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{{
			{Text: "Да, верно", CallbackData: flow.CallbackEmailYes},
			{Text: "Исправить", CallbackData: flow.CallbackEmailNo},
		}},
	}
}

func buildContactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		Keyboard: [][]tgbotapi.KeyboardButton{{
			{Text: "📱 Поделиться номером", RequestContact: true},
		}},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// Main-menu shortcuts, shown once the questionnaire is done.
const (
	menuPromo    = "🎁 Мой промокод"
	menuTickets  = "🎟 Купить билеты"
	menuFAQ      = "❓ Вопросы и ответы"
	menuContacts = "📞 Контакты"
)

func buildMainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		Keyboard: [][]tgbotapi.KeyboardButton{
			{{Text: menuPromo}, {Text: menuTickets}},
			{{Text: menuFAQ}, {Text: menuContacts}},
		},
		ResizeKeyboard: true,
	}
}
