package bot

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"teatrlead/lib/sl"
)

func (t *TgBot) plainResponse(chatId int64, text string) {
	if text == "" {
		t.log.With("id", chatId).Debug("empty message")
		return
	}

	_, err := t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
	if err != nil {
		t.log.With(slog.Int64("id", chatId)).Error("sending message", sl.Err(err))
	}
}

func (t *TgBot) plainResponseWithMarkup(chatId int64, text string, markup tgbotapi.ReplyMarkup) {
	if text == "" {
		return
	}
	_, err := t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{
		ReplyMarkup: markup,
	})
	if err != nil {
		t.log.With(slog.Int64("id", chatId)).Warn("sending message with markup", sl.Err(err))
		// Fallback: try without the markup
		_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
		if err != nil {
			t.log.With(slog.Int64("id", chatId)).Error("sending fallback message", sl.Err(err))
		}
	}
}

// Sanitize escapes MarkdownV2 reserved characters in user-supplied text.
func Sanitize(input string) string {
	reservedChars := "\\_{}#+-.!|()[]=*"
	sanitized := ""
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sanitized += "\\" + string(char)
		} else {
			sanitized += string(char)
		}
	}
	return sanitized
}

func (t *TgBot) notifyAdmins(msg string) {
	for _, id := range t.conf.AdminIds {
		t.plainResponse(id, msg)
	}
}

// reportError logs the error, notifies admins with details, and sends a
// neutral message to the visitor.
func (t *TgBot) reportError(chatId int64, command string, err error) {
	t.log.Error("bot command failed",
		slog.String("command", command),
		sl.User(chatId),
		sl.Err(err),
	)
	t.notifyAdmins(fmt.Sprintf("Command %q failed\nUser: %d\nError: %s", command, chatId, err.Error()))
	t.plainResponse(chatId, "Что-то пошло не так. Попробуйте, пожалуйста, чуть позже.")
}
