package entity

// Setting names used as document keys in the settings store.
const (
	SettingPromoCode    = "promo_code"
	SettingTicketURL    = "ticket_url"
	SettingFAQText      = "faq_text"
	SettingContactsText = "contacts_text"
)

// BotSettings is the operator-editable singleton configuration read by every
// visitor-facing text renderer.
type BotSettings struct {
	PromoCode    string `json:"promo_code"`
	TicketURL    string `json:"ticket_url"`
	FAQText      string `json:"faq_text"`
	ContactsText string `json:"contacts_text"`
}
