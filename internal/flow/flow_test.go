package flow

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"teatrlead/entity"
)

type fakeStore struct {
	profile entity.VisitorProfile
	genres  []string
}

func (f *fakeStore) Profile(int64) (*entity.VisitorProfile, error) {
	p := f.profile
	p.Genres = append([]string(nil), f.genres...)
	return &p, nil
}

func (f *fakeStore) SetConsent(_ int64, consent bool) error {
	f.profile.Consent = consent
	return nil
}

func (f *fakeStore) SetName(_ int64, name string) error {
	f.profile.Name = name
	return nil
}

func (f *fakeStore) SetGender(_ int64, gender string) error {
	f.profile.Gender = gender
	return nil
}

func (f *fakeStore) SetScenario(_ int64, scenario string) error {
	f.profile.Scenario = scenario
	return nil
}

func (f *fakeStore) SetBirthday(_ int64, birthday string) error {
	f.profile.Birthday = birthday
	return nil
}

func (f *fakeStore) SetPhone(_ int64, phone string) error {
	f.profile.Phone = phone
	return nil
}

func (f *fakeStore) SetEmail(_ int64, email string) error {
	f.profile.Email = email
	return nil
}

func (f *fakeStore) SetEmailConfirmed(_ int64, confirmed bool) error {
	f.profile.EmailConfirmed = confirmed
	return nil
}

func (f *fakeStore) SetPromoCode(_ int64, code string) error {
	f.profile.PromoCode = code
	f.profile.PromoIssued = true
	return nil
}

func (f *fakeStore) AddGenre(_ int64, genre string) error {
	for _, g := range f.genres {
		if g == genre {
			return nil
		}
	}
	f.genres = append(f.genres, genre)
	return nil
}

func (f *fakeStore) RemoveGenre(_ int64, genre string) error {
	out := f.genres[:0]
	for _, g := range f.genres {
		if g != genre {
			out = append(out, g)
		}
	}
	f.genres = out
	return nil
}

func (f *fakeStore) Genres(int64) ([]string, error) {
	return append([]string(nil), f.genres...), nil
}

type fakeForwarder struct {
	submissions []entity.VisitorProfile
}

func (f *fakeForwarder) Submit(_ context.Context, v *entity.VisitorProfile) int64 {
	f.submissions = append(f.submissions, *v)
	return int64(len(f.submissions))
}

type fakeSettings struct {
	settings entity.BotSettings
}

func (f *fakeSettings) Settings() (*entity.BotSettings, error) {
	s := f.settings
	return &s, nil
}

func newTestEngine(store *fakeStore, fwd *fakeForwarder, settings *fakeSettings) *Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(store, fwd, settings, "https://tickets.example", log)
}

const testUser int64 = 777

func TestHappyPath(t *testing.T) {
	store := &fakeStore{profile: entity.VisitorProfile{UserID: testUser, City: "Самара", Project: "Ревизор"}}
	fwd := &fakeForwarder{}
	settings := &fakeSettings{settings: entity.BotSettings{PromoCode: "LOVE2026"}}
	engine := newTestEngine(store, fwd, settings)
	ctx := context.Background()

	res := engine.Begin()
	if res.Next != StepConsent {
		t.Fatalf("Begin next = %q, want consent", res.Next)
	}

	res, err := engine.Handle(ctx, testUser, StepConsent, Input{Callback: CallbackConsentYes})
	if err != nil || res.Next != StepName {
		t.Fatalf("consent: next = %q, err = %v", res.Next, err)
	}
	if !store.profile.Consent {
		t.Error("consent not persisted")
	}

	res, err = engine.Handle(ctx, testUser, StepName, Input{Text: "Екатерина"})
	if err != nil || res.Next != StepGender {
		t.Fatalf("name: next = %q, err = %v", res.Next, err)
	}

	res, err = engine.Handle(ctx, testUser, StepGender, Input{Callback: "gender_female"})
	if err != nil || res.Next != StepGenres {
		t.Fatalf("gender: next = %q, err = %v", res.Next, err)
	}
	if store.profile.Gender != GenderFemale {
		t.Errorf("gender = %q", store.profile.Gender)
	}

	res, err = engine.Handle(ctx, testUser, StepGenres, Input{Callback: "genre_comedy"})
	if err != nil || res.Next != StepGenres {
		t.Fatalf("genre toggle: next = %q, err = %v", res.Next, err)
	}

	res, err = engine.Handle(ctx, testUser, StepGenres, Input{Callback: CallbackGenresDone})
	if err != nil || res.Next != StepScenario {
		t.Fatalf("genres done: next = %q, err = %v", res.Next, err)
	}

	res, err = engine.Handle(ctx, testUser, StepScenario, Input{Callback: "scenario_couple"})
	if err != nil || res.Next != StepBirthday {
		t.Fatalf("scenario: next = %q, err = %v", res.Next, err)
	}

	res, err = engine.Handle(ctx, testUser, StepBirthday, Input{Text: "14.02.1990"})
	if err != nil || res.Next != StepPhone {
		t.Fatalf("birthday: next = %q, err = %v", res.Next, err)
	}

	res, err = engine.Handle(ctx, testUser, StepPhone, Input{Phone: "+79001234567"})
	if err != nil || res.Next != StepEmail {
		t.Fatalf("phone: next = %q, err = %v", res.Next, err)
	}

	res, err = engine.Handle(ctx, testUser, StepEmail, Input{Text: "kate@example.com"})
	if err != nil || res.Next != StepEmailConfirm {
		t.Fatalf("email: next = %q, err = %v", res.Next, err)
	}

	res, err = engine.Handle(ctx, testUser, StepEmailConfirm, Input{Callback: CallbackEmailYes})
	if err != nil {
		t.Fatalf("confirm: err = %v", err)
	}
	if !res.Completed || res.Next != StepComplete {
		t.Fatalf("confirm: next = %q, completed = %v", res.Next, res.Completed)
	}
	if store.profile.PromoCode != "LOVE2026" {
		t.Errorf("promo = %q, want campaign code", store.profile.PromoCode)
	}
	if len(fwd.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(fwd.submissions))
	}
	if fwd.submissions[0].Email != "kate@example.com" || !fwd.submissions[0].EmailConfirmed {
		t.Errorf("forwarded profile incomplete: %+v", fwd.submissions[0])
	}
	if len(res.Replies) == 0 || !strings.Contains(res.Replies[0].Text, "LOVE2026") {
		t.Errorf("final reply must carry the promo code: %+v", res.Replies)
	}
}

func TestConsentRequired(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeForwarder{}, &fakeSettings{})

	res, err := engine.Handle(context.Background(), testUser, StepConsent, Input{Text: "нет"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Next != StepConsent {
		t.Errorf("next = %q, want consent", res.Next)
	}
	if store.profile.Consent {
		t.Error("consent set without agreement")
	}
}

func TestShortNameRejected(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeForwarder{}, &fakeSettings{})
	ctx := context.Background()

	res, _ := engine.Handle(ctx, testUser, StepName, Input{Text: "A"})
	if res.Next != StepName {
		t.Errorf("next = %q, want name", res.Next)
	}
	res, _ = engine.Handle(ctx, testUser, StepName, Input{Text: "Ek"})
	if res.Next != StepGender {
		t.Errorf("two-letter name rejected: next = %q", res.Next)
	}
}

func TestBirthdayRetry(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeForwarder{}, &fakeSettings{})
	ctx := context.Background()

	res, _ := engine.Handle(ctx, testUser, StepBirthday, Input{Text: "30.02.2000"})
	if res.Next != StepBirthday {
		t.Errorf("impossible date advanced the flow: next = %q", res.Next)
	}
	if store.profile.Birthday != "" {
		t.Errorf("rejected date persisted: %q", store.profile.Birthday)
	}
	res, _ = engine.Handle(ctx, testUser, StepBirthday, Input{Text: "14.02.1990"})
	if res.Next != StepPhone || store.profile.Birthday != "14.02.1990" {
		t.Errorf("valid date not accepted: next = %q, stored = %q", res.Next, store.profile.Birthday)
	}
}

func TestGenreToggle(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeForwarder{}, &fakeSettings{})
	ctx := context.Background()

	_, _ = engine.Handle(ctx, testUser, StepGenres, Input{Callback: "genre_comedy"})
	if len(store.genres) != 1 || store.genres[0] != "comedy" {
		t.Fatalf("genres after select: %v", store.genres)
	}
	_, _ = engine.Handle(ctx, testUser, StepGenres, Input{Callback: "genre_comedy"})
	if len(store.genres) != 0 {
		t.Fatalf("second press must deselect: %v", store.genres)
	}
}

func TestGenresDoneNeedsSelection(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeForwarder{}, &fakeSettings{})

	res, err := engine.Handle(context.Background(), testUser, StepGenres, Input{Callback: CallbackGenresDone})
	if err != nil {
		t.Fatal(err)
	}
	if res.Next != StepGenres {
		t.Errorf("done with no selection advanced the flow: next = %q", res.Next)
	}
}

func TestPhoneContactOnly(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeForwarder{}, &fakeSettings{})
	ctx := context.Background()

	res, _ := engine.Handle(ctx, testUser, StepPhone, Input{Text: "+79001234567"})
	if res.Next != StepPhone || store.profile.Phone != "" {
		t.Errorf("typed phone accepted: next = %q, stored = %q", res.Next, store.profile.Phone)
	}
	res, _ = engine.Handle(ctx, testUser, StepPhone, Input{Phone: "+79001234567"})
	if res.Next != StepEmail || store.profile.Phone != "+79001234567" {
		t.Errorf("shared contact rejected: next = %q", res.Next)
	}
}

func TestEmailCorrection(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeForwarder{}, &fakeSettings{})
	ctx := context.Background()

	res, _ := engine.Handle(ctx, testUser, StepEmail, Input{Text: "kate@example"})
	if res.Next != StepEmail {
		t.Errorf("malformed email advanced the flow: next = %q", res.Next)
	}
	res, _ = engine.Handle(ctx, testUser, StepEmail, Input{Text: "kate@example.com"})
	if res.Next != StepEmailConfirm {
		t.Fatalf("valid email rejected: next = %q", res.Next)
	}
	res, _ = engine.Handle(ctx, testUser, StepEmailConfirm, Input{Callback: CallbackEmailNo})
	if res.Next != StepEmail {
		t.Errorf("decline must return to email entry: next = %q", res.Next)
	}
}

func TestPromoIssuedOnce(t *testing.T) {
	store := &fakeStore{profile: entity.VisitorProfile{UserID: testUser, Email: "kate@example.com"}}
	fwd := &fakeForwarder{}
	engine := newTestEngine(store, fwd, &fakeSettings{})
	ctx := context.Background()

	res, err := engine.Handle(ctx, testUser, StepEmailConfirm, Input{Callback: CallbackEmailYes})
	if err != nil || !res.Completed {
		t.Fatalf("first completion: err = %v", err)
	}
	first := store.profile.PromoCode
	if first == "" {
		t.Fatal("no personal code issued without a campaign code")
	}

	res, err = engine.Handle(ctx, testUser, StepEmailConfirm, Input{Callback: CallbackEmailYes})
	if err != nil {
		t.Fatal(err)
	}
	if store.profile.PromoCode != first {
		t.Errorf("code changed on repeat completion: %q -> %q", first, store.profile.PromoCode)
	}
	if len(fwd.submissions) != 1 {
		t.Errorf("repeat completion re-submitted the lead: %d submissions", len(fwd.submissions))
	}
}

func TestPromoReply(t *testing.T) {
	store := &fakeStore{profile: entity.VisitorProfile{UserID: testUser, PromoCode: "LOVE2026", PromoIssued: true}}
	engine := newTestEngine(store, &fakeForwarder{}, &fakeSettings{})

	text, err := engine.PromoReply(testUser)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "LOVE2026") {
		t.Errorf("promo reply missing the code: %q", text)
	}

	store.profile.PromoIssued = false
	text, err = engine.PromoReply(testUser)
	if err != nil {
		t.Fatal(err)
	}
	if text != "" {
		t.Errorf("promo reply for unissued code: %q", text)
	}
}
