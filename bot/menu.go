package bot

// handleMenuShortcut serves the persistent reply-keyboard buttons. Returns
// false when the text is not a menu item.
func (t *TgBot) handleMenuShortcut(chatId int64, text string) bool {
	switch text {
	case menuPromo:
		reply, err := t.engine.PromoReply(chatId)
		if err != nil {
			t.reportError(chatId, "menu.promo", err)
			return true
		}
		if reply == "" {
			reply = "Промокод появится после короткого знакомства. Нажмите /start!"
		}
		t.plainResponse(chatId, reply)
		return true

	case menuTickets:
		settings, err := t.mappings.Settings()
		if err != nil {
			t.reportError(chatId, "menu.tickets", err)
			return true
		}
		url := settings.TicketURL
		if url == "" {
			url = t.ticketURL
		}
		t.plainResponse(chatId, "Билеты можно купить здесь: "+url)
		return true

	case menuFAQ:
		settings, err := t.mappings.Settings()
		if err != nil {
			t.reportError(chatId, "menu.faq", err)
			return true
		}
		t.plainResponse(chatId, settings.FAQText)
		return true

	case menuContacts:
		settings, err := t.mappings.Settings()
		if err != nil {
			t.reportError(chatId, "menu.contacts", err)
			return true
		}
		t.plainResponse(chatId, settings.ContactsText)
		return true
	}
	return false
}
