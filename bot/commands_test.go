package bot

import (
	"testing"

	"teatrlead/entity"
)

type fakeDatabase struct {
	registered []int64
	upserts    []entity.TrackingParams
	profile    *entity.VisitorProfile
}

func (f *fakeDatabase) Register(userId int64, username string) error {
	f.registered = append(f.registered, userId)
	return nil
}

func (f *fakeDatabase) UpsertFromLink(userId int64, username string, tp entity.TrackingParams) error {
	f.upserts = append(f.upserts, tp)
	return nil
}

func (f *fakeDatabase) Profile(userId int64) (*entity.VisitorProfile, error) {
	return f.profile, nil
}

func TestBareStartKeepsAttribution(t *testing.T) {
	db := &fakeDatabase{}
	bot := &TgBot{db: db}

	if err := bot.registerStart(7, "kate", nil); err != nil {
		t.Fatalf("registerStart: %v", err)
	}
	if len(db.upserts) != 0 {
		t.Fatalf("bare /start must not write attribution, wrote %+v", db.upserts)
	}
	if len(db.registered) != 1 || db.registered[0] != 7 {
		t.Fatalf("expected insert-only registration for user 7, got %v", db.registered)
	}
}

func TestTrackedStartWritesAttribution(t *testing.T) {
	db := &fakeDatabase{}
	bot := &TgBot{db: db}

	tracking := &entity.TrackingParams{
		City:         "Самара",
		Project:      "Ревизор",
		ShowDatetime: "2026-02-15 19:00",
		UtmSource:    "vk_ads",
	}
	if err := bot.registerStart(7, "kate", tracking); err != nil {
		t.Fatalf("registerStart: %v", err)
	}
	if len(db.registered) != 0 {
		t.Fatal("tracked start must upsert attribution, not insert-only")
	}
	if len(db.upserts) != 1 {
		t.Fatalf("expected one upsert, got %d", len(db.upserts))
	}
	if db.upserts[0].City != "Самара" || db.upserts[0].UtmSource != "vk_ads" {
		t.Fatalf("attribution not carried through: %+v", db.upserts[0])
	}
}
