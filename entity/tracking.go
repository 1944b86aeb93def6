package entity

import (
	"net/http"

	"teatrlead/lib/validate"
)

// TrackingParams is the attribute set carried by an encoded deep-link token.
// It is never persisted as such: decoded once at first contact and merged
// into the visitor profile. JSON field names are the wire format of the
// token and must stay stable.
type TrackingParams struct {
	City         string `json:"city"`
	Project      string `json:"project"`
	ShowDatetime string `json:"show_datetime"`
	UtmSource    string `json:"utm_source"`
	UtmMedium    string `json:"utm_medium"`
	UtmCampaign  string `json:"utm_campaign"`
	UtmTerm      string `json:"utm_term"`
	UtmContent   string `json:"utm_content"`
	YandexID     string `json:"yandex_id"`
	RoistatVisit string `json:"roistat_visit"`
}

// LinkRequest is the HTTP payload for deep-link generation. Either a slug or
// the city/project/show_datetime triple must be supplied.
type LinkRequest struct {
	Slug         string `json:"slug"`
	City         string `json:"city"`
	Project      string `json:"project"`
	ShowDatetime string `json:"show_datetime"`
	UtmSource    string `json:"utm_source"`
	UtmMedium    string `json:"utm_medium"`
	UtmCampaign  string `json:"utm_campaign"`
	UtmTerm      string `json:"utm_term"`
	UtmContent   string `json:"utm_content"`
	YandexID     string `json:"yandex_id"`
	RoistatVisit string `json:"roistat_visit"`
}

func (l *LinkRequest) Bind(_ *http.Request) error {
	return validate.Struct(l)
}

// LinkResponse is the HTTP reply for deep-link generation.
type LinkResponse struct {
	StartParam string `json:"start_param"`
	Link       string `json:"link"`
}

// Tracking converts a link request into the token attribute set.
func (l *LinkRequest) Tracking() TrackingParams {
	return TrackingParams{
		City:         l.City,
		Project:      l.Project,
		ShowDatetime: l.ShowDatetime,
		UtmSource:    l.UtmSource,
		UtmMedium:    l.UtmMedium,
		UtmCampaign:  l.UtmCampaign,
		UtmTerm:      l.UtmTerm,
		UtmContent:   l.UtmContent,
		YandexID:     l.YandexID,
		RoistatVisit: l.RoistatVisit,
	}
}
