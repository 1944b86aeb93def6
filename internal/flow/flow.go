// Package flow runs the questionnaire: a fixed sequence of questions that
// turns an anonymous chat into a qualified lead. The engine is transport
// agnostic; rendering keyboards and delivering replies is the bot's concern.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"teatrlead/entity"
	"teatrlead/lib/sl"
)

// Step names the question the visitor is currently answering.
type Step string

const (
	StepConsent      Step = "consent"
	StepName         Step = "name"
	StepGender       Step = "gender"
	StepGenres       Step = "genres"
	StepScenario     Step = "scenario"
	StepBirthday     Step = "birthday"
	StepPhone        Step = "phone"
	StepEmail        Step = "email"
	StepEmailConfirm Step = "email_confirm"
	StepComplete     Step = "complete"
)

// Keyboard tells the transport which reply markup to attach.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardConsent
	KeyboardGender
	KeyboardGenres
	KeyboardScenario
	KeyboardContact
	KeyboardEmailConfirm
	KeyboardRemove
)

// Callback data values shared between the engine and keyboard rendering.
const (
	CallbackConsentYes     = "consent_yes"
	CallbackGenderPrefix   = "gender_"
	CallbackGenrePrefix    = "genre_"
	CallbackGenresDone     = "genres_done"
	CallbackScenarioPrefix = "scenario_"
	CallbackEmailYes       = "email_yes"
	CallbackEmailNo        = "email_no"
)

// Gender labels stored and forwarded to the CRM.
const (
	GenderMale   = "Мужской"
	GenderFemale = "Женский"
)

// Input is one visitor action: a typed message, a pressed inline button or a
// shared contact. At most one field is set.
type Input struct {
	Text     string
	Callback string
	Phone    string
}

// Reply is one outgoing message. Selected carries the current genre choice
// when the genres keyboard must be rendered.
type Reply struct {
	Text     string
	Keyboard Keyboard
	Selected []string
}

// Result is the engine's verdict on an input: the step to persist and the
// replies to deliver, in order.
type Result struct {
	Next      Step
	Replies   []Reply
	Completed bool
}

// Store is the profile persistence the engine mutates answer by answer.
type Store interface {
	Profile(userId int64) (*entity.VisitorProfile, error)
	SetConsent(userId int64, consent bool) error
	SetName(userId int64, name string) error
	SetGender(userId int64, gender string) error
	SetScenario(userId int64, scenario string) error
	SetBirthday(userId int64, birthday string) error
	SetPhone(userId int64, phone string) error
	SetEmail(userId int64, email string) error
	SetEmailConfirmed(userId int64, confirmed bool) error
	SetPromoCode(userId int64, code string) error
	AddGenre(userId int64, genre string) error
	RemoveGenre(userId int64, genre string) error
	Genres(userId int64) ([]string, error)
}

// Forwarder submits a finished profile to the CRM. Implementations must not
// fail the conversation; a zero lead id signals a swallowed error.
type Forwarder interface {
	Submit(ctx context.Context, v *entity.VisitorProfile) int64
}

// SettingsSource supplies the operator-editable campaign settings.
type SettingsSource interface {
	Settings() (*entity.BotSettings, error)
}

type Engine struct {
	store     Store
	forwarder Forwarder
	settings  SettingsSource
	ticketURL string
	log       *slog.Logger
}

// NewEngine wires the questionnaire to its collaborators. ticketURL is the
// fallback shop link used when the operator has not set one.
func NewEngine(store Store, forwarder Forwarder, settings SettingsSource, ticketURL string, logger *slog.Logger) *Engine {
	return &Engine{
		store:     store,
		forwarder: forwarder,
		settings:  settings,
		ticketURL: ticketURL,
		log:       logger.With(sl.Module("flow")),
	}
}

// Begin opens the questionnaire with the consent question.
func (e *Engine) Begin() Result {
	return Result{
		Next:    StepConsent,
		Replies: []Reply{{Text: msgConsent, Keyboard: KeyboardConsent}},
	}
}

// Handle advances the questionnaire by one visitor action.
func (e *Engine) Handle(ctx context.Context, userId int64, step Step, in Input) (Result, error) {
	switch step {
	case StepConsent:
		return e.handleConsent(userId, in)
	case StepName:
		return e.handleName(userId, in)
	case StepGender:
		return e.handleGender(userId, in)
	case StepGenres:
		return e.handleGenres(userId, in)
	case StepScenario:
		return e.handleScenario(userId, in)
	case StepBirthday:
		return e.handleBirthday(userId, in)
	case StepPhone:
		return e.handlePhone(userId, in)
	case StepEmail:
		return e.handleEmail(userId, in)
	case StepEmailConfirm:
		return e.handleEmailConfirm(ctx, userId, in)
	}
	return e.Begin(), nil
}

func (e *Engine) handleConsent(userId int64, in Input) (Result, error) {
	if in.Callback != CallbackConsentYes {
		return Result{
			Next:    StepConsent,
			Replies: []Reply{{Text: msgConsentRequired, Keyboard: KeyboardConsent}},
		}, nil
	}
	if err := e.store.SetConsent(userId, true); err != nil {
		return Result{}, err
	}
	return Result{
		Next:    StepName,
		Replies: []Reply{{Text: msgAskName}},
	}, nil
}

func (e *Engine) handleName(userId int64, in Input) (Result, error) {
	if !ValidName(in.Text) {
		return Result{
			Next:    StepName,
			Replies: []Reply{{Text: msgBadName}},
		}, nil
	}
	if err := e.store.SetName(userId, strings.TrimSpace(in.Text)); err != nil {
		return Result{}, err
	}
	return Result{
		Next:    StepGender,
		Replies: []Reply{{Text: msgAskGender, Keyboard: KeyboardGender}},
	}, nil
}

func (e *Engine) handleGender(userId int64, in Input) (Result, error) {
	var gender string
	switch in.Callback {
	case CallbackGenderPrefix + "male":
		gender = GenderMale
	case CallbackGenderPrefix + "female":
		gender = GenderFemale
	default:
		return Result{
			Next:    StepGender,
			Replies: []Reply{{Text: msgAskGender, Keyboard: KeyboardGender}},
		}, nil
	}
	if err := e.store.SetGender(userId, gender); err != nil {
		return Result{}, err
	}
	return Result{
		Next:    StepGenres,
		Replies: []Reply{{Text: msgAskGenres, Keyboard: KeyboardGenres}},
	}, nil
}

func (e *Engine) handleGenres(userId int64, in Input) (Result, error) {
	if in.Callback == CallbackGenresDone {
		selected, err := e.store.Genres(userId)
		if err != nil {
			return Result{}, err
		}
		if len(selected) == 0 {
			return Result{
				Next:    StepGenres,
				Replies: []Reply{{Text: msgNeedGenre, Keyboard: KeyboardGenres}},
			}, nil
		}
		return Result{
			Next:    StepScenario,
			Replies: []Reply{{Text: msgAskScenario, Keyboard: KeyboardScenario}},
		}, nil
	}

	key := strings.TrimPrefix(in.Callback, CallbackGenrePrefix)
	if key == in.Callback || !knownGenre(key) {
		return Result{
			Next:    StepGenres,
			Replies: []Reply{{Text: msgAskGenres, Keyboard: KeyboardGenres}},
		}, nil
	}

	selected, err := e.store.Genres(userId)
	if err != nil {
		return Result{}, err
	}
	if contains(selected, key) {
		err = e.store.RemoveGenre(userId, key)
	} else {
		err = e.store.AddGenre(userId, key)
	}
	if err != nil {
		return Result{}, err
	}
	selected, err = e.store.Genres(userId)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Next:    StepGenres,
		Replies: []Reply{{Keyboard: KeyboardGenres, Selected: selected}},
	}, nil
}

func (e *Engine) handleScenario(userId int64, in Input) (Result, error) {
	key := strings.TrimPrefix(in.Callback, CallbackScenarioPrefix)
	if key == in.Callback || !knownScenario(key) {
		return Result{
			Next:    StepScenario,
			Replies: []Reply{{Text: msgAskScenario, Keyboard: KeyboardScenario}},
		}, nil
	}
	if err := e.store.SetScenario(userId, key); err != nil {
		return Result{}, err
	}
	return Result{
		Next:    StepBirthday,
		Replies: []Reply{{Text: msgAskBirthday}},
	}, nil
}

func (e *Engine) handleBirthday(userId int64, in Input) (Result, error) {
	if !ValidBirthday(in.Text) {
		return Result{
			Next:    StepBirthday,
			Replies: []Reply{{Text: msgBadBirthday}},
		}, nil
	}
	if err := e.store.SetBirthday(userId, strings.TrimSpace(in.Text)); err != nil {
		return Result{}, err
	}
	return Result{
		Next:    StepPhone,
		Replies: []Reply{{Text: msgAskPhone, Keyboard: KeyboardContact}},
	}, nil
}

// handlePhone accepts only a shared contact. Typed numbers are too easy to
// mistype and impossible to verify.
func (e *Engine) handlePhone(userId int64, in Input) (Result, error) {
	if in.Phone == "" {
		return Result{
			Next:    StepPhone,
			Replies: []Reply{{Text: msgPhoneButtonOnly, Keyboard: KeyboardContact}},
		}, nil
	}
	if err := e.store.SetPhone(userId, in.Phone); err != nil {
		return Result{}, err
	}
	return Result{
		Next:    StepEmail,
		Replies: []Reply{{Text: msgAskEmail, Keyboard: KeyboardRemove}},
	}, nil
}

func (e *Engine) handleEmail(userId int64, in Input) (Result, error) {
	email := strings.TrimSpace(in.Text)
	if !ValidEmail(email) {
		return Result{
			Next:    StepEmail,
			Replies: []Reply{{Text: msgBadEmail}},
		}, nil
	}
	if err := e.store.SetEmail(userId, email); err != nil {
		return Result{}, err
	}
	return Result{
		Next:    StepEmailConfirm,
		Replies: []Reply{{Text: msgEmailConfirm(email), Keyboard: KeyboardEmailConfirm}},
	}, nil
}

func (e *Engine) handleEmailConfirm(ctx context.Context, userId int64, in Input) (Result, error) {
	switch in.Callback {
	case CallbackEmailNo:
		return Result{
			Next:    StepEmail,
			Replies: []Reply{{Text: msgEmailRetry}},
		}, nil
	case CallbackEmailYes:
		if err := e.store.SetEmailConfirmed(userId, true); err != nil {
			return Result{}, err
		}
		return e.complete(ctx, userId)
	}
	profile, err := e.store.Profile(userId)
	if err != nil {
		return Result{}, err
	}
	email := ""
	if profile != nil {
		email = profile.Email
	}
	return Result{
		Next:    StepEmailConfirm,
		Replies: []Reply{{Text: msgEmailConfirm(email), Keyboard: KeyboardEmailConfirm}},
	}, nil
}

// complete issues the promo code and hands the finished profile to the CRM.
func (e *Engine) complete(ctx context.Context, userId int64) (Result, error) {
	profile, err := e.store.Profile(userId)
	if err != nil {
		return Result{}, err
	}
	if profile == nil {
		return Result{}, fmt.Errorf("profile missing for user %d", userId)
	}

	promo, ticketURL := e.promoFor(profile)
	if !profile.PromoIssued {
		if err = e.store.SetPromoCode(userId, promo); err != nil {
			return Result{}, err
		}
		profile.PromoCode = promo
		profile.PromoIssued = true
		profile.EmailConfirmed = true
		e.forwarder.Submit(ctx, profile)
	}

	return Result{
		Next:      StepComplete,
		Completed: true,
		Replies:   []Reply{{Text: fmt.Sprintf(msgPromoIssued, promo, ticketURL)}},
	}, nil
}

// PromoReply re-delivers an already issued code, for the main-menu shortcut.
// Returns empty text when the visitor has not earned a code yet.
func (e *Engine) PromoReply(userId int64) (string, error) {
	profile, err := e.store.Profile(userId)
	if err != nil {
		return "", err
	}
	if profile == nil || !profile.PromoIssued || profile.PromoCode == "" {
		return "", nil
	}
	_, ticketURL := e.promoFor(profile)
	return fmt.Sprintf(msgPromoAgain, profile.PromoCode, ticketURL), nil
}

// promoFor resolves the code and shop link for a visitor: an already issued
// code wins, then the campaign-wide code, then a personal derived one.
func (e *Engine) promoFor(profile *entity.VisitorProfile) (string, string) {
	promo := profile.PromoCode
	ticketURL := e.ticketURL

	settings, err := e.settings.Settings()
	if err != nil {
		e.log.Error("load settings", sl.Err(err))
		settings = &entity.BotSettings{}
	}
	if settings.TicketURL != "" {
		ticketURL = settings.TicketURL
	}
	if promo == "" {
		promo = settings.PromoCode
	}
	if promo == "" {
		promo = personalPromo(profile.UserID, profile.Project, time.Now())
	}
	return promo, ticketURL
}

func knownGenre(key string) bool {
	for _, g := range entity.Genres {
		if g.Key == key {
			return true
		}
	}
	return false
}

func knownScenario(key string) bool {
	for _, s := range entity.Scenarios {
		if s.Key == key {
			return true
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
