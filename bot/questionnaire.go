package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"teatrlead/internal/flow"
)

// deliver persists the new step and sends the engine's replies in order.
func (t *TgBot) deliver(chatId int64, res flow.Result) {
	t.states.setStep(chatId, res.Next)
	for _, reply := range res.Replies {
		if reply.Text == "" {
			continue
		}
		t.sendReply(chatId, reply)
	}
	if res.Completed {
		t.plainResponseWithMarkup(chatId, "Меню всегда под рукой 👇", buildMainMenuKeyboard())
	}
}

func (t *TgBot) sendReply(chatId int64, reply flow.Reply) {
	markup := markupFor(reply)
	if markup == nil {
		t.plainResponse(chatId, reply.Text)
		return
	}
	t.plainResponseWithMarkup(chatId, reply.Text, markup)
}

func markupFor(reply flow.Reply) tgbotapi.ReplyMarkup {
	switch reply.Keyboard {
	case flow.KeyboardConsent:
		return buildConsentKeyboard()
	case flow.KeyboardGender:
		return buildGenderKeyboard()
	case flow.KeyboardGenres:
		return buildGenresKeyboard(reply.Selected)
	case flow.KeyboardScenario:
		return buildScenarioKeyboard()
	case flow.KeyboardEmailConfirm:
		return buildEmailConfirmKeyboard()
	case flow.KeyboardContact:
		return buildContactKeyboard()
	case flow.KeyboardRemove:
		return tgbotapi.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return nil
}

// onFlowCallback routes inline button presses into the questionnaire.
func (t *TgBot) onFlowCallback(b *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.Update.CallbackQuery
	chatId := ctx.EffectiveUser.Id
	if t.duplicate(cq.Id) {
		return nil
	}
	_, _ = cq.Answer(b, nil)

	state := t.states.get(chatId)
	if state.Step == "" || state.Step == flow.StepComplete {
		return nil
	}

	res, err := t.engine.Handle(context.Background(), chatId, state.Step, flow.Input{Callback: cq.Data})
	if err != nil {
		t.reportError(chatId, "questionnaire", err)
		return nil
	}

	// A markup-only genre reply updates the keyboard in place instead of
	// spamming the chat with a new message.
	for _, reply := range res.Replies {
		if reply.Text == "" && reply.Keyboard == flow.KeyboardGenres && ctx.EffectiveMessage != nil {
			_, _, err = ctx.EffectiveMessage.EditReplyMarkup(b, &tgbotapi.EditMessageReplyMarkupOpts{
				ReplyMarkup: buildGenresKeyboard(reply.Selected),
			})
			if err != nil {
				t.log.Warn("editing genre keyboard", "error", err)
			}
		}
	}

	t.deliver(chatId, res)
	return nil
}

// onContact handles the shared phone number during the phone step.
func (t *TgBot) onContact(_ *tgbotapi.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	chatId := ctx.EffectiveUser.Id
	if t.duplicate(fmt.Sprintf("%d_%d", chatId, msg.MessageId)) {
		return nil
	}

	state := t.states.get(chatId)
	if state.Step != flow.StepPhone {
		return nil
	}

	contact := msg.Contact
	if contact.UserId != chatId {
		t.plainResponseWithMarkup(chatId, "Пожалуйста, поделитесь своим номером кнопкой ниже.", buildContactKeyboard())
		return nil
	}

	res, err := t.engine.Handle(context.Background(), chatId, state.Step, flow.Input{Phone: contact.PhoneNumber})
	if err != nil {
		t.reportError(chatId, "questionnaire", err)
		return nil
	}
	t.deliver(chatId, res)
	return nil
}

// onMessage handles free text: admin console input, main-menu shortcuts and
// typed questionnaire answers, in that priority.
func (t *TgBot) onMessage(_ *tgbotapi.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	chatId := ctx.EffectiveUser.Id
	text := strings.TrimSpace(msg.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return nil
	}
	if t.duplicate(fmt.Sprintf("%d_%d", chatId, msg.MessageId)) {
		return nil
	}

	state := t.states.get(chatId)
	if state.AdminMode != adminModeNone && t.isAdmin(chatId) {
		return t.onAdminInput(chatId, state, text)
	}

	if t.handleMenuShortcut(chatId, text) {
		return nil
	}

	if state.Step == "" || state.Step == flow.StepComplete {
		t.plainResponseWithMarkup(chatId, "Нажмите /start, чтобы начать, или выберите пункт меню.", buildMainMenuKeyboard())
		return nil
	}

	res, err := t.engine.Handle(context.Background(), chatId, state.Step, flow.Input{Text: text})
	if err != nil {
		t.reportError(chatId, "questionnaire", err)
		return nil
	}
	t.deliver(chatId, res)
	return nil
}
