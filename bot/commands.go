package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"teatrlead/entity"
	"teatrlead/internal/deeplink"
	"teatrlead/internal/flow"
	"teatrlead/lib/clock"
	"teatrlead/lib/sl"
)

// start opens the dialog. A deep-link payload is either an encoded tracking
// token or a slug pointing at a stored mapping; both register the visitor
// with show attribution before the questionnaire begins.
func (t *TgBot) start(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	username := ctx.EffectiveUser.Username

	args := ctx.Args()
	param := ""
	if len(args) > 1 {
		param = strings.TrimSpace(args[1])
	}

	var tracking *entity.TrackingParams
	var mapping *entity.LinkMapping
	if param != "" {
		if deeplink.IsToken(param) {
			tracking = deeplink.Decode(param)
			if tracking == nil {
				t.log.Warn("undecodable start token", sl.User(chatId), "param", param)
			}
		} else {
			var err error
			mapping, err = t.mappings.GetLinkMapping(param)
			if err != nil {
				t.log.Error("slug lookup", sl.User(chatId), sl.Err(err))
			}
			if mapping != nil {
				tracking = &entity.TrackingParams{
					City:         mapping.City,
					Project:      mapping.Project,
					ShowDatetime: mapping.ShowDatetime,
					UtmSource:    "slug_" + mapping.Slug,
				}
			}
		}
	}

	if err := t.registerStart(chatId, username, tracking); err != nil {
		t.reportError(chatId, "start", err)
		return nil
	}
	if tracking != nil {
		t.sendWelcome(chatId, tracking, mapping)
	} else {
		t.plainResponse(chatId, "Здравствуйте! Это бот театрального фестиваля. "+
			"Ответьте на несколько вопросов и получите промокод на билеты 🎭")
	}

	// A visitor with an issued code gets the menu back, not the questions.
	profile, err := t.db.Profile(chatId)
	if err == nil && profile != nil && profile.PromoIssued {
		text, perr := t.engine.PromoReply(chatId)
		if perr == nil && text != "" {
			t.plainResponseWithMarkup(chatId, text, buildMainMenuKeyboard())
			t.states.setStep(chatId, flow.StepComplete)
			return nil
		}
	}

	t.deliver(chatId, t.engine.Begin())
	return nil
}

// registerStart records the visitor. Show attribution is written only when
// the link actually carried any; a bare /start must never blank out columns
// an earlier tracked link filled in.
func (t *TgBot) registerStart(chatId int64, username string, tracking *entity.TrackingParams) error {
	if tracking != nil {
		return t.db.UpsertFromLink(chatId, username, *tracking)
	}
	return t.db.Register(chatId, username)
}

func (t *TgBot) sendWelcome(chatId int64, tracking *entity.TrackingParams, mapping *entity.LinkMapping) {
	var sb strings.Builder
	sb.WriteString("Здравствуйте! Рады, что вы собираетесь в театр 🎭\n\n")
	if tracking.Project != "" {
		sb.WriteString(fmt.Sprintf("Спектакль: %s\n", tracking.Project))
	}
	if tracking.City != "" {
		sb.WriteString(fmt.Sprintf("Город: %s\n", tracking.City))
	}
	if tracking.ShowDatetime != "" {
		sb.WriteString(fmt.Sprintf("Дата: %s\n", clock.FormatShow(tracking.ShowDatetime)))
	}
	sb.WriteString("\nОтветьте на несколько вопросов и получите промокод на билеты.")

	if mapping != nil && (mapping.TicketURL != "" || mapping.SeatURL != "") {
		var row []tgbotapi.InlineKeyboardButton
		if mapping.TicketURL != "" {
			row = append(row, tgbotapi.InlineKeyboardButton{Text: "🎟 Билеты", Url: mapping.TicketURL})
		}
		if mapping.SeatURL != "" {
			row = append(row, tgbotapi.InlineKeyboardButton{Text: "💺 Выбрать места", Url: mapping.SeatURL})
		}
		t.plainResponseWithMarkup(chatId, sb.String(), tgbotapi.InlineKeyboardMarkup{
			InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{row},
		})
		return
	}
	t.plainResponse(chatId, sb.String())
}

func (t *TgBot) help(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	t.plainResponseWithMarkup(chatId,
		"Я помогаю выбрать спектакль и дарю промокод на билеты.\n\n"+
			"/start — начать сначала\n"+
			"/promo — показать промокод\n\n"+
			"Остальное — кнопками меню 👇",
		buildMainMenuKeyboard())
	return nil
}

func (t *TgBot) promo(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	text, err := t.engine.PromoReply(chatId)
	if err != nil {
		t.reportError(chatId, "promo", err)
		return nil
	}
	if text == "" {
		t.plainResponse(chatId, "Промокод появится после короткого знакомства. Нажмите /start!")
		return nil
	}
	t.plainResponseWithMarkup(chatId, text, buildMainMenuKeyboard())
	return nil
}
