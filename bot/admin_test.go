package bot

import (
	"strings"
	"testing"

	"teatrlead/entity"
)

type fakeMappings struct {
	mappings map[string]*entity.LinkMapping
	settings map[string]string
	deleted  []string
}

func newFakeMappings() *fakeMappings {
	return &fakeMappings{
		mappings: make(map[string]*entity.LinkMapping),
		settings: make(map[string]string),
	}
}

func (f *fakeMappings) GetLinkMapping(slug string) (*entity.LinkMapping, error) {
	return f.mappings[slug], nil
}

func (f *fakeMappings) AllLinkMappings() ([]*entity.LinkMapping, error) {
	var all []*entity.LinkMapping
	for _, m := range f.mappings {
		all = append(all, m)
	}
	return all, nil
}

func (f *fakeMappings) UpsertLinkMapping(mapping *entity.LinkMapping) error {
	f.mappings[mapping.Slug] = mapping
	return nil
}

func (f *fakeMappings) DeleteLinkMapping(slug string) error {
	f.deleted = append(f.deleted, slug)
	delete(f.mappings, slug)
	return nil
}

func (f *fakeMappings) SetSetting(name, value string) error {
	f.settings[name] = value
	return nil
}

func (f *fakeMappings) Settings() (*entity.BotSettings, error) {
	return &entity.BotSettings{
		PromoCode: f.settings[entity.SettingPromoCode],
		TicketURL: f.settings[entity.SettingTicketURL],
	}, nil
}

func TestParseMappingFields(t *testing.T) {
	cases := []struct {
		name    string
		fields  []string
		backend entity.CRMType
		reject  bool
	}{
		{"routed city", []string{"Самара", "Ревизор", "2026-02-15 19:00"}, entity.CRMCity1, false},
		{"default city", []string{"Атлантида", "Ревизор", "2026-02-15 19:00"}, entity.CRMCity2, false},
		{"with urls", []string{"Казань", "Ревизор", "2026-02-15 19:00", "https://t.ru", "https://s.ru"}, entity.CRMCity2, false},
		{"bad date", []string{"Самара", "Ревизор", "15.02.2026"}, "", true},
		{"too few fields", []string{"Самара", "Ревизор"}, "", true},
		{"too many fields", []string{"a", "b", "2026-02-15 19:00", "c", "d", "e"}, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapping, complaint := parseMappingFields("rev-sam", tc.fields, entity.CRMCity2)
			if tc.reject {
				if mapping != nil || complaint == "" {
					t.Fatalf("expected rejection, got mapping %+v", mapping)
				}
				return
			}
			if mapping == nil {
				t.Fatalf("rejected valid input: %s", complaint)
			}
			if mapping.Slug != "rev-sam" {
				t.Fatalf("slug changed: %s", mapping.Slug)
			}
			if mapping.CRMType != tc.backend {
				t.Fatalf("backend = %s, want %s", mapping.CRMType, tc.backend)
			}
		})
	}
}

func TestParseMappingFieldsKeepsURLs(t *testing.T) {
	mapping, complaint := parseMappingFields("rev-kaz",
		[]string{"Казань", "Ревизор", "2026-03-01 18:00", "https://t.ru/1", "https://s.ru/1"},
		entity.CRMCity2)
	if mapping == nil {
		t.Fatalf("rejected valid input: %s", complaint)
	}
	if mapping.TicketURL != "https://t.ru/1" || mapping.SeatURL != "https://s.ru/1" {
		t.Fatalf("urls not carried: %+v", mapping)
	}
}

func TestLinkDetailsKeyboardOffersEdit(t *testing.T) {
	kb := buildLinkDetailsKeyboard("rev-sam")
	found := false
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == cbAdminEdit+"rev-sam" {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("details keyboard carries no edit action")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	kb := buildDeleteConfirmKeyboard("rev-sam")
	var confirm, cancel bool
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == cbAdminDeleteYes+"rev-sam" {
				confirm = true
			}
			if btn.CallbackData == cbAdminLink+"rev-sam" {
				cancel = true
			}
		}
	}
	if !confirm || !cancel {
		t.Fatalf("confirm keyboard incomplete: confirm=%v cancel=%v", confirm, cancel)
	}
	if strings.HasPrefix(cbAdminDeleteYes+"x", cbAdminDelete) {
		t.Fatal("confirm callback must not collide with the delete prefix")
	}
}

func TestRemoveMappingReportsNotFound(t *testing.T) {
	store := newFakeMappings()
	bot := &TgBot{mappings: store}

	msg, err := bot.removeMapping("ghost")
	if err != nil {
		t.Fatalf("removeMapping: %v", err)
	}
	if !strings.Contains(msg, "не найдена") {
		t.Fatalf("missing mapping not reported distinctly: %q", msg)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("delete issued for missing slug: %v", store.deleted)
	}

	store.mappings["rev-sam"] = &entity.LinkMapping{Slug: "rev-sam"}
	msg, err = bot.removeMapping("rev-sam")
	if err != nil {
		t.Fatalf("removeMapping: %v", err)
	}
	if !strings.Contains(msg, "удалена") {
		t.Fatalf("deletion not confirmed: %q", msg)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "rev-sam" {
		t.Fatalf("mapping not deleted: %v", store.deleted)
	}
}

func TestSettingStagedUntilConfirmed(t *testing.T) {
	store := newFakeMappings()
	bot := &TgBot{mappings: store, states: newStateStore()}

	bot.states.setAdminMode(1, adminModeSetSetting, entity.SettingPromoCode)
	bot.states.setAdminValue(1, "SPRING26")

	if _, ok := store.settings[entity.SettingPromoCode]; ok {
		t.Fatal("setting saved before confirmation")
	}

	state := bot.states.get(1)
	if state.AdminTarget != entity.SettingPromoCode || state.AdminValue != "SPRING26" {
		t.Fatalf("staged state lost: %+v", state)
	}

	if err := bot.saveStagedSetting(1, state); err != nil {
		t.Fatalf("saveStagedSetting: %v", err)
	}
	if store.settings[entity.SettingPromoCode] != "SPRING26" {
		t.Fatalf("setting not saved: %v", store.settings)
	}
	if got := bot.states.get(1); got.AdminMode != adminModeNone || got.AdminValue != "" {
		t.Fatalf("input mode not cleared after save: %+v", got)
	}
}

func TestSettingConfirmKeyboard(t *testing.T) {
	kb := buildSettingConfirmKeyboard()
	var save, cancel bool
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == cbAdminSave {
				save = true
			}
			if btn.CallbackData == cbAdminCancel {
				cancel = true
			}
		}
	}
	if !save || !cancel {
		t.Fatalf("settings confirm keyboard incomplete: save=%v cancel=%v", save, cancel)
	}
}

func TestModeChangeDropsStagedValue(t *testing.T) {
	states := newStateStore()
	states.setAdminMode(1, adminModeSetSetting, entity.SettingTicketURL)
	states.setAdminValue(1, "https://t.ru")
	states.setAdminMode(1, adminModeAddLink, "")
	if got := states.get(1); got.AdminValue != "" {
		t.Fatalf("stale staged value survived a mode change: %q", got.AdminValue)
	}
}
