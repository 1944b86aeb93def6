package entity

// CRMType selects which of the two CRM backends a city's leads go to.
type CRMType string

const (
	CRMCity1 CRMType = "city1"
	CRMCity2 CRMType = "city2"
)

// LinkMapping binds a short marketing slug to show metadata. Created and
// edited only through the admin console; read by the greeting flow and by
// promo-message rendering.
type LinkMapping struct {
	Slug         string  `json:"slug" bson:"slug" validate:"required"`
	City         string  `json:"city" bson:"city" validate:"required"`
	Project      string  `json:"project" bson:"project" validate:"required"`
	ShowDatetime string  `json:"show_datetime" bson:"show_datetime" validate:"required"`
	TicketURL    string  `json:"ticket_url" bson:"ticket_url"`
	SeatURL      string  `json:"seat_url" bson:"seat_url"`
	CRMType      CRMType `json:"crm_type" bson:"crm_type"`
	CreatedAt    string  `json:"created_at" bson:"created_at"`
	UpdatedAt    string  `json:"updated_at" bson:"updated_at"`
}
