package bot

import (
	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

// Command menus pushed via SetMyCommands. Visitors get the short list by
// default; admins get the console commands scoped to their chats.

var commandsVisitor = []tgbotapi.BotCommand{
	{Command: "start", Description: "Начать знакомство"},
	{Command: "promo", Description: "Показать промокод"},
	{Command: "help", Description: "Что умеет бот"},
}

var commandsAdmin = []tgbotapi.BotCommand{
	{Command: "start", Description: "Начать знакомство"},
	{Command: "promo", Description: "Показать промокод"},
	{Command: "admin", Description: "Панель администратора"},
	{Command: "stats", Description: "Статистика"},
	{Command: "help", Description: "Что умеет бот"},
}

func (t *TgBot) setDefaultCommands() {
	_, err := t.api.SetMyCommands(commandsVisitor, &tgbotapi.SetMyCommandsOpts{
		Scope: tgbotapi.BotCommandScopeDefault{},
	})
	if err != nil {
		t.log.Warn("setting default commands", "error", err)
	}
}

func (t *TgBot) syncAdminMenus() {
	for _, chatId := range t.conf.AdminIds {
		_, err := t.api.SetMyCommands(commandsAdmin, &tgbotapi.SetMyCommandsOpts{
			Scope: tgbotapi.BotCommandScopeChat{ChatId: chatId},
		})
		if err != nil {
			t.log.Warn("setting admin commands", "chat_id", chatId, "error", err)
		}
	}
}
