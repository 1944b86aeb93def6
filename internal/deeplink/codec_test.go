package deeplink

import (
	"encoding/base64"
	"strings"
	"testing"

	"teatrlead/entity"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	params := entity.TrackingParams{
		City:         "Самара",
		Project:      "Любовь и голуби",
		ShowDatetime: "2026-02-15 19:00",
		UtmSource:    "vk",
		UtmMedium:    "cpc",
		UtmCampaign:  "ny_2026",
		YandexID:     "123456789",
		RoistatVisit: "42",
	}

	token := Encode(params)
	if !strings.HasPrefix(token, "t1.") {
		t.Errorf("token missing envelope tag: %q", token)
	}

	got := Decode(token)
	if got == nil {
		t.Fatal("decode returned nil for own token")
	}
	if *got != params {
		t.Errorf("round trip mismatch: got %+v, want %+v", *got, params)
	}
}

func TestDecodeUntagged(t *testing.T) {
	params := entity.TrackingParams{City: "Казань", Project: "Ревизор", ShowDatetime: "2026-03-01 18:00"}
	token := strings.TrimPrefix(Encode(params), "t1.")

	got := Decode(token)
	if got == nil {
		t.Fatal("decode returned nil for untagged token")
	}
	if got.City != "Казань" || got.Project != "Ревизор" {
		t.Errorf("unexpected decode result: %+v", got)
	}
}

func TestDecodeLegacyPipe(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("Сочи|Вишнёвый сад|2026-04-10 19:30"))

	got := Decode(token)
	if got == nil {
		t.Fatal("decode returned nil for legacy token")
	}
	if got.City != "Сочи" {
		t.Errorf("city = %q, want %q", got.City, "Сочи")
	}
	if got.Project != "Вишнёвый сад" {
		t.Errorf("project = %q, want %q", got.Project, "Вишнёвый сад")
	}
	if got.ShowDatetime != "2026-04-10 19:30" {
		t.Errorf("show_datetime = %q, want %q", got.ShowDatetime, "2026-04-10 19:30")
	}
	if got.UtmSource != "" {
		t.Errorf("legacy token must carry no attribution, got %q", got.UtmSource)
	}
}

func TestDecodeGarbage(t *testing.T) {
	for _, token := range []string{
		"not base64 at all!!!",
		base64.StdEncoding.EncodeToString([]byte("just some text")),
		base64.StdEncoding.EncodeToString([]byte("one|two")),
		"t1.%%%",
		"",
	} {
		if got := Decode(token); got != nil {
			t.Errorf("Decode(%q) = %+v, want nil", token, got)
		}
	}
}

func TestIsToken(t *testing.T) {
	tests := []struct {
		param string
		want  bool
	}{
		{Encode(entity.TrackingParams{City: "Уфа"}), true},
		{"t1.anything", true},
		{"eyJjaXR5IjoiQSJ9", true},
		{strings.Repeat("x", 51), true},
		{"samara_feb", false},
		{"ny-show-2026", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsToken(tc.param); got != tc.want {
			t.Errorf("IsToken(%q) = %v, want %v", tc.param, got, tc.want)
		}
	}
}

func TestBotLink(t *testing.T) {
	link := BotLink("theatrfest_help_bot", "samara_feb")
	want := "https://t.me/theatrfest_help_bot?start=samara_feb"
	if link != want {
		t.Errorf("BotLink = %q, want %q", link, want)
	}
}
