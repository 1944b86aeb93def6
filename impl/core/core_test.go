package core

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"teatrlead/entity"
	"teatrlead/internal/deeplink"
)

type fakeMappings struct {
	mappings map[string]*entity.LinkMapping
}

func (f *fakeMappings) GetLinkMapping(slug string) (*entity.LinkMapping, error) {
	return f.mappings[slug], nil
}

func newTestCore() *Core {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mappings := &fakeMappings{mappings: map[string]*entity.LinkMapping{
		"samara_feb": {Slug: "samara_feb", City: "Самара", Project: "Ревизор", ShowDatetime: "2026-02-15 19:00"},
	}}
	return New("secret-token", "theatrfest_help_bot", mappings, nil, log)
}

func TestAuthenticateByToken(t *testing.T) {
	c := newTestCore()

	if err := c.AuthenticateByToken("secret-token"); err != nil {
		t.Errorf("valid token rejected: %v", err)
	}
	if err := c.AuthenticateByToken("wrong"); err == nil {
		t.Error("invalid token accepted")
	}
}

func TestMakeLinkSlug(t *testing.T) {
	c := newTestCore()

	link, err := c.MakeLink(&entity.LinkRequest{Slug: "samara_feb"})
	if err != nil {
		t.Fatal(err)
	}
	if link.StartParam != "samara_feb" {
		t.Errorf("start param = %q", link.StartParam)
	}
	if link.Link != "https://t.me/theatrfest_help_bot?start=samara_feb" {
		t.Errorf("link = %q", link.Link)
	}

	if _, err = c.MakeLink(&entity.LinkRequest{Slug: "missing"}); err == nil {
		t.Error("unknown slug accepted")
	}
}

func TestMakeLinkToken(t *testing.T) {
	c := newTestCore()

	link, err := c.MakeLink(&entity.LinkRequest{
		City:         "Казань",
		Project:      "Вишнёвый сад",
		ShowDatetime: "2026-03-01 18:00",
		UtmSource:    "vk",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(link.StartParam, "t1.") {
		t.Errorf("start param not an encoded token: %q", link.StartParam)
	}
	params := deeplink.Decode(link.StartParam)
	if params == nil || params.City != "Казань" || params.UtmSource != "vk" {
		t.Errorf("decoded params = %+v", params)
	}
}

func TestMakeLinkValidation(t *testing.T) {
	c := newTestCore()

	if _, err := c.MakeLink(&entity.LinkRequest{City: "Казань"}); err == nil {
		t.Error("incomplete triple accepted")
	}
	if _, err := c.MakeLink(&entity.LinkRequest{
		City: "Казань", Project: "Ревизор", ShowDatetime: "01.03.2026",
	}); err == nil {
		t.Error("malformed show datetime accepted")
	}
}
