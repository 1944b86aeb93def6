package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"teatrlead/entity"
	"teatrlead/internal/crm"
	"teatrlead/internal/deeplink"
	"teatrlead/lib/clock"
	"teatrlead/lib/sl"
)

// Admin console callback actions. Telegram limits callback data to 64 bytes,
// so the prefix is kept short and slugs are expected to be short too.
const (
	cbAdmin          = "adm:"
	cbAdminMenu      = "adm:menu"
	cbAdminLinks     = "adm:links:" // adm:links:<page>
	cbAdminLink      = "adm:link:"  // adm:link:<slug>
	cbAdminEdit      = "adm:edit:"  // adm:edit:<slug>
	cbAdminDelete    = "adm:del:"   // adm:del:<slug>, asks for confirmation
	cbAdminDeleteYes = "adm:delc:"  // adm:delc:<slug>, performs the delete
	cbAdminAdd       = "adm:add"
	cbAdminSettings  = "adm:settings"
	cbAdminSet       = "adm:set:" // adm:set:<setting>
	cbAdminSave      = "adm:save"
	cbAdminStats     = "adm:stats"
	cbAdminCancel    = "adm:cancel"
)

const linksPageSize = 10

const addLinkPrompt = "Пришлите новую ссылку одной строкой:\n\n" +
	"слаг | город | спектакль | 2026-02-15 19:00 | билеты-URL | места-URL\n\n" +
	"Последние два поля необязательны. Напишите «отмена», чтобы выйти."

const editLinkPromptFmt = "Пришлите новые данные для «%s» одной строкой:\n\n" +
	"город | спектакль | 2026-02-15 19:00 | билеты-URL | места-URL\n\n" +
	"Последние два поля необязательны. Напишите «отмена», чтобы выйти."

func (t *TgBot) adminCmd(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		t.plainResponse(chatId, "Эта команда доступна только администраторам.")
		return nil
	}
	t.sendAdminMenu(chatId)
	return nil
}

func (t *TgBot) statsCmd(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		t.plainResponse(chatId, "Эта команда доступна только администраторам.")
		return nil
	}
	t.sendStats(chatId)
	return nil
}

func (t *TgBot) sendAdminMenu(chatId int64) {
	keyboard := tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{{Text: "🔗 Ссылки", CallbackData: cbAdminLinks + "0"}},
			{{Text: "⚙️ Настройки", CallbackData: cbAdminSettings}},
			{{Text: "📊 Статистика", CallbackData: cbAdminStats}},
		},
	}
	t.plainResponseWithMarkup(chatId, "Панель администратора", keyboard)
}

// onAdminCallback dispatches the admin console. Every branch re-checks the
// allow list: callback data is attacker-controlled input.
func (t *TgBot) onAdminCallback(b *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.Update.CallbackQuery
	chatId := ctx.EffectiveUser.Id
	if t.duplicate(cq.Id) {
		return nil
	}
	_, _ = cq.Answer(b, nil)

	if !t.isAdmin(chatId) {
		t.log.Warn("admin callback from non-admin", sl.User(chatId), "data", cq.Data)
		return nil
	}

	data := cq.Data
	switch {
	case data == cbAdminMenu:
		t.sendAdminMenu(chatId)

	case strings.HasPrefix(data, cbAdminLinks):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, cbAdminLinks))
		t.sendLinksPage(chatId, page)

	case strings.HasPrefix(data, cbAdminDeleteYes):
		slug := strings.TrimPrefix(data, cbAdminDeleteYes)
		msg, err := t.removeMapping(slug)
		if err != nil {
			t.reportError(chatId, "admin.delete", err)
			return nil
		}
		t.plainResponse(chatId, msg)
		t.sendLinksPage(chatId, 0)

	case strings.HasPrefix(data, cbAdminDelete):
		slug := strings.TrimPrefix(data, cbAdminDelete)
		mapping, err := t.mappings.GetLinkMapping(slug)
		if err != nil {
			t.reportError(chatId, "admin.delete", err)
			return nil
		}
		if mapping == nil {
			t.plainResponse(chatId, "Ссылка «"+slug+"» не найдена.")
			t.sendLinksPage(chatId, 0)
			return nil
		}
		t.plainResponseWithMarkup(chatId, "Удалить ссылку «"+slug+"»?", buildDeleteConfirmKeyboard(slug))

	case strings.HasPrefix(data, cbAdminEdit):
		slug := strings.TrimPrefix(data, cbAdminEdit)
		t.states.setAdminMode(chatId, adminModeEditLink, slug)
		t.plainResponse(chatId, fmt.Sprintf(editLinkPromptFmt, slug))

	case strings.HasPrefix(data, cbAdminLink):
		slug := strings.TrimPrefix(data, cbAdminLink)
		t.sendLinkDetails(chatId, slug)

	case data == cbAdminAdd:
		t.states.setAdminMode(chatId, adminModeAddLink, "")
		t.plainResponse(chatId, addLinkPrompt)

	case data == cbAdminSettings:
		t.sendSettingsMenu(chatId)

	case strings.HasPrefix(data, cbAdminSet):
		setting := strings.TrimPrefix(data, cbAdminSet)
		t.states.setAdminMode(chatId, adminModeSetSetting, setting)
		t.plainResponse(chatId, "Пришлите новое значение для «"+setting+"». Напишите «отмена», чтобы выйти.")

	case data == cbAdminSave:
		state := t.states.get(chatId)
		if state.AdminMode != adminModeSetSetting || state.AdminTarget == "" || state.AdminValue == "" {
			t.sendAdminMenu(chatId)
			return nil
		}
		if err := t.saveStagedSetting(chatId, state); err != nil {
			t.reportError(chatId, "admin.set", err)
			return nil
		}
		t.plainResponse(chatId, "Сохранено: "+state.AdminTarget)
		t.sendSettingsMenu(chatId)

	case data == cbAdminStats:
		t.sendStats(chatId)

	case data == cbAdminCancel:
		t.states.setAdminMode(chatId, adminModeNone, "")
		t.sendAdminMenu(chatId)
	}
	return nil
}

func (t *TgBot) sendLinksPage(chatId int64, page int) {
	mappings, err := t.mappings.AllLinkMappings()
	if err != nil {
		t.reportError(chatId, "admin.links", err)
		return
	}
	if len(mappings) == 0 {
		keyboard := tgbotapi.InlineKeyboardMarkup{
			InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
				{{Text: "➕ Добавить", CallbackData: cbAdminAdd}},
				{{Text: "⬅️ Назад", CallbackData: cbAdminMenu}},
			},
		}
		t.plainResponseWithMarkup(chatId, "Ссылок пока нет.", keyboard)
		return
	}

	pages := (len(mappings) + linksPageSize - 1) / linksPageSize
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}
	from := page * linksPageSize
	to := from + linksPageSize
	if to > len(mappings) {
		to = len(mappings)
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, linksPageSize+2)
	for _, m := range mappings[from:to] {
		label := fmt.Sprintf("%s — %s, %s", m.Slug, m.Project, m.City)
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			{Text: label, CallbackData: cbAdminLink + m.Slug},
		})
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.InlineKeyboardButton{
			Text: "◀️", CallbackData: cbAdminLinks + strconv.Itoa(page-1),
		})
	}
	if page < pages-1 {
		nav = append(nav, tgbotapi.InlineKeyboardButton{
			Text: "▶️", CallbackData: cbAdminLinks + strconv.Itoa(page+1),
		})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		{Text: "➕ Добавить", CallbackData: cbAdminAdd},
		{Text: "⬅️ Назад", CallbackData: cbAdminMenu},
	})

	text := fmt.Sprintf("Ссылки (стр. %d из %d):", page+1, pages)
	t.plainResponseWithMarkup(chatId, text, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (t *TgBot) sendLinkDetails(chatId int64, slug string) {
	mapping, err := t.mappings.GetLinkMapping(slug)
	if err != nil {
		t.reportError(chatId, "admin.link", err)
		return
	}
	if mapping == nil {
		t.plainResponse(chatId, "Ссылка «"+slug+"» не найдена.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Слаг: %s\n", mapping.Slug))
	sb.WriteString(fmt.Sprintf("Город: %s\n", mapping.City))
	sb.WriteString(fmt.Sprintf("Спектакль: %s\n", mapping.Project))
	sb.WriteString(fmt.Sprintf("Дата: %s\n", clock.FormatShow(mapping.ShowDatetime)))
	sb.WriteString(fmt.Sprintf("CRM: %s\n", mapping.CRMType))
	if mapping.TicketURL != "" {
		sb.WriteString(fmt.Sprintf("Билеты: %s\n", mapping.TicketURL))
	}
	if mapping.SeatURL != "" {
		sb.WriteString(fmt.Sprintf("Места: %s\n", mapping.SeatURL))
	}
	sb.WriteString("\nСсылка для рекламы:\n")
	sb.WriteString(deeplink.BotLink(t.conf.Username, mapping.Slug))

	t.plainResponseWithMarkup(chatId, sb.String(), buildLinkDetailsKeyboard(mapping.Slug))
}

func buildLinkDetailsKeyboard(slug string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{{Text: "✏️ Изменить", CallbackData: cbAdminEdit + slug}},
			{{Text: "🗑 Удалить", CallbackData: cbAdminDelete + slug}},
			{{Text: "⬅️ К списку", CallbackData: cbAdminLinks + "0"}},
		},
	}
}

func buildDeleteConfirmKeyboard(slug string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{{Text: "🗑 Да, удалить", CallbackData: cbAdminDeleteYes + slug}},
			{{Text: "⬅️ Отмена", CallbackData: cbAdminLink + slug}},
		},
	}
}

func buildSettingConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{{
			{Text: "💾 Сохранить", CallbackData: cbAdminSave},
			{Text: "Отмена", CallbackData: cbAdminCancel},
		}},
	}
}

// removeMapping deletes a confirmed slug, reporting not-found distinctly
// when the mapping disappeared between confirmation steps.
func (t *TgBot) removeMapping(slug string) (string, error) {
	mapping, err := t.mappings.GetLinkMapping(slug)
	if err != nil {
		return "", err
	}
	if mapping == nil {
		return "Ссылка «" + slug + "» не найдена.", nil
	}
	if err = t.mappings.DeleteLinkMapping(slug); err != nil {
		return "", err
	}
	return "Ссылка «" + slug + "» удалена.", nil
}

func (t *TgBot) sendSettingsMenu(chatId int64) {
	settings, err := t.mappings.Settings()
	if err != nil {
		t.reportError(chatId, "admin.settings", err)
		return
	}

	promo := settings.PromoCode
	if promo == "" {
		promo = "персональные"
	}
	text := fmt.Sprintf("Настройки\n\nПромокод: %s\nБилеты: %s\n\nЧто изменить?",
		promo, settings.TicketURL)

	keyboard := tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{{Text: "Промокод", CallbackData: cbAdminSet + entity.SettingPromoCode}},
			{{Text: "Ссылка на билеты", CallbackData: cbAdminSet + entity.SettingTicketURL}},
			{{Text: "Текст FAQ", CallbackData: cbAdminSet + entity.SettingFAQText}},
			{{Text: "Текст контактов", CallbackData: cbAdminSet + entity.SettingContactsText}},
			{{Text: "⬅️ Назад", CallbackData: cbAdminMenu}},
		},
	}
	t.plainResponseWithMarkup(chatId, text, keyboard)
}

func (t *TgBot) sendStats(chatId int64) {
	overview, err := t.stats.Overview()
	if err != nil {
		t.reportError(chatId, "admin.stats", err)
		return
	}
	funnel, err := t.stats.Funnel()
	if err != nil {
		t.reportError(chatId, "admin.stats", err)
		return
	}
	cities, err := t.stats.ByCity()
	if err != nil {
		t.reportError(chatId, "admin.stats", err)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Всего посетителей: %d\n", overview.Total))
	sb.WriteString(fmt.Sprintf("С согласием: %d\n", overview.Consented))
	sb.WriteString(fmt.Sprintf("С телефоном: %d\n", overview.WithPhone))
	sb.WriteString(fmt.Sprintf("С почтой: %d\n", overview.WithEmail))
	sb.WriteString(fmt.Sprintf("Промокодов выдано: %d\n", overview.PromoIssued))

	if len(funnel) > 0 {
		sb.WriteString("\nВоронка:\n")
		for _, st := range funnel {
			sb.WriteString(fmt.Sprintf("  %s: %d (%.2f%%)\n", st.Stage, st.Count, st.Percent))
		}
	}
	if len(cities) > 0 {
		sb.WriteString("\nПо городам:\n")
		for _, b := range cities {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", b.Name, b.Count))
		}
	}

	keyboard := tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{{Text: "⬅️ Назад", CallbackData: cbAdminMenu}},
		},
	}
	t.plainResponseWithMarkup(chatId, sb.String(), keyboard)
}

// onAdminInput consumes a text message while the admin console is waiting
// for one.
func (t *TgBot) onAdminInput(chatId int64, state chatState, text string) error {
	if strings.EqualFold(text, "отмена") || strings.EqualFold(text, "cancel") {
		t.states.setAdminMode(chatId, adminModeNone, "")
		t.sendAdminMenu(chatId)
		return nil
	}

	switch state.AdminMode {
	case adminModeAddLink:
		t.addLinkFromInput(chatId, text)
	case adminModeEditLink:
		t.editLinkFromInput(chatId, state.AdminTarget, text)
	case adminModeSetSetting:
		t.states.setAdminValue(chatId, text)
		t.plainResponseWithMarkup(chatId, settingConfirmText(state.AdminTarget, text), buildSettingConfirmKeyboard())
	}
	return nil
}

func settingConfirmText(setting, value string) string {
	return "Новое значение для «" + setting + "»:\n\n" + value + "\n\nСохранить?"
}

// saveStagedSetting persists a confirmed settings edit and leaves the admin
// input mode.
func (t *TgBot) saveStagedSetting(chatId int64, state chatState) error {
	if err := t.mappings.SetSetting(state.AdminTarget, state.AdminValue); err != nil {
		return err
	}
	t.states.setAdminMode(chatId, adminModeNone, "")
	return nil
}

func (t *TgBot) addLinkFromInput(chatId int64, text string) {
	parts := splitFields(text)
	if len(parts) < 4 || len(parts) > 6 || parts[0] == "" {
		t.plainResponse(chatId, "Нужно от 4 до 6 полей через «|». Попробуйте ещё раз или напишите «отмена».")
		return
	}

	existing, err := t.mappings.GetLinkMapping(parts[0])
	if err != nil {
		t.reportError(chatId, "admin.add", err)
		return
	}
	if existing != nil {
		t.plainResponse(chatId, "Слаг «"+parts[0]+"» уже занят. Выберите другой или удалите старую ссылку.")
		return
	}

	mapping, complaint := parseMappingFields(parts[0], parts[1:], t.crmDef)
	if mapping == nil {
		t.plainResponse(chatId, complaint)
		return
	}

	if err = t.mappings.UpsertLinkMapping(mapping); err != nil {
		t.reportError(chatId, "admin.add", err)
		return
	}
	t.states.setAdminMode(chatId, adminModeNone, "")
	t.plainResponse(chatId, "Сохранено. Ссылка для рекламы:\n"+deeplink.BotLink(t.conf.Username, mapping.Slug))
	t.sendLinksPage(chatId, 0)
}

// editLinkFromInput replaces the stored fields of an existing mapping. The
// slug itself never changes; renaming is create plus delete.
func (t *TgBot) editLinkFromInput(chatId int64, slug, text string) {
	existing, err := t.mappings.GetLinkMapping(slug)
	if err != nil {
		t.reportError(chatId, "admin.edit", err)
		return
	}
	if existing == nil {
		t.states.setAdminMode(chatId, adminModeNone, "")
		t.plainResponse(chatId, "Ссылка «"+slug+"» не найдена.")
		t.sendLinksPage(chatId, 0)
		return
	}

	mapping, complaint := parseMappingFields(slug, splitFields(text), t.crmDef)
	if mapping == nil {
		t.plainResponse(chatId, complaint)
		return
	}

	if err = t.mappings.UpsertLinkMapping(mapping); err != nil {
		t.reportError(chatId, "admin.edit", err)
		return
	}
	t.states.setAdminMode(chatId, adminModeNone, "")
	t.plainResponse(chatId, "Обновлено.")
	t.sendLinkDetails(chatId, slug)
}

func splitFields(text string) []string {
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseMappingFields builds a mapping from console input fields: city,
// project, show datetime, optional ticket and seat URLs. The CRM backend is
// inferred from the city, falling back to the configured default. Returns a
// user-facing complaint instead of a mapping on bad input.
func parseMappingFields(slug string, fields []string, def entity.CRMType) (*entity.LinkMapping, string) {
	if len(fields) < 3 || len(fields) > 5 {
		return nil, "Нужно указать город, спектакль и дату. Попробуйте ещё раз или напишите «отмена»."
	}
	if !clock.ValidShow(fields[2]) {
		return nil, "Дата должна быть в формате 2026-02-15 19:00. Попробуйте ещё раз."
	}

	mapping := &entity.LinkMapping{
		Slug:         slug,
		City:         fields[0],
		Project:      fields[1],
		ShowDatetime: fields[2],
	}
	if len(fields) > 3 {
		mapping.TicketURL = fields[3]
	}
	if len(fields) > 4 {
		mapping.SeatURL = fields[4]
	}
	if backend, ok := crm.Route(mapping.City); ok {
		mapping.CRMType = backend
	} else {
		mapping.CRMType = def
	}
	return mapping, ""
}
