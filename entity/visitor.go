package entity

// VisitorProfile is the durable per-chat record collected by the
// questionnaire. One row per Telegram identity; created on first contact and
// mutated field by field as the visitor answers. Never deleted by the bot.
type VisitorProfile struct {
	UserID         int64    `json:"user_id"`
	Username       string   `json:"username"`
	Name           string   `json:"name"`
	Gender         string   `json:"gender"`
	City           string   `json:"city"`
	Project        string   `json:"project"`
	ShowDatetime   string   `json:"show_datetime"`
	Genres         []string `json:"genres"`
	Scenario       string   `json:"scenario"`
	Birthday       string   `json:"birthday"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	EmailConfirmed bool     `json:"email_confirmed"`
	Consent        bool     `json:"consent"`
	PromoCode      string   `json:"promo_code"`
	PromoIssued    bool     `json:"promo_issued"`

	// Attribution carried in from a tracked deep link.
	UtmSource    string `json:"utm_source"`
	UtmMedium    string `json:"utm_medium"`
	UtmCampaign  string `json:"utm_campaign"`
	UtmTerm      string `json:"utm_term"`
	UtmContent   string `json:"utm_content"`
	YandexID     string `json:"yandex_id"`
	RoistatVisit string `json:"roistat_visit"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (v *VisitorProfile) HasGenre(genre string) bool {
	for _, g := range v.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
