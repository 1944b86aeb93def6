// Package bot implements the Telegram side of the lead-capture dialog.
//
// Architecture overview:
//   - tgbot.go         — TgBot struct, lifecycle (Start/Stop), store interfaces
//   - commands.go      — /start deep-link dispatch, /help, /promo
//   - questionnaire.go — bridges updates to the flow engine
//   - keyboards.go     — inline and reply keyboard builders
//   - menu.go          — main-menu reply keyboard shortcuts
//   - admin.go         — operator console: link mappings, settings, statistics
//   - menus.go         — per-role command menus via BotCommandScope
//   - helpers.go       — Sanitize, plainResponse, reportError
//
// Duplicate updates (Telegram redelivers on slow acks) are dropped through a
// bounded LRU keyed by user and message id.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
	lru "github.com/hashicorp/golang-lru/v2"

	"teatrlead/entity"
	"teatrlead/internal/config"
	"teatrlead/internal/flow"
	"teatrlead/internal/stats"
	"teatrlead/lib/sl"
)

const dedupCacheSize = 1000

// Database is the visitor-profile storage the bot reads directly. Mutations
// during the questionnaire go through the flow engine.
type Database interface {
	Register(userId int64, username string) error
	UpsertFromLink(userId int64, username string, tp entity.TrackingParams) error
	Profile(userId int64) (*entity.VisitorProfile, error)
}

// MappingStore is the slug and settings storage behind the admin console
// and /start slug resolution.
type MappingStore interface {
	GetLinkMapping(slug string) (*entity.LinkMapping, error)
	AllLinkMappings() ([]*entity.LinkMapping, error)
	UpsertLinkMapping(mapping *entity.LinkMapping) error
	DeleteLinkMapping(slug string) error
	SetSetting(name, value string) error
	Settings() (*entity.BotSettings, error)
}

type TgBot struct {
	log       *slog.Logger
	api       *tgbotapi.Bot
	db        Database
	mappings  MappingStore
	engine    *flow.Engine
	stats     *stats.Aggregator
	states    *stateStore
	seen      *lru.Cache[string, struct{}]
	conf      config.BotConfig
	crmDef    entity.CRMType
	ticketURL string
	updater   *ext.Updater
}

func NewTgBot(conf *config.Config, db Database, mappings MappingStore, engine *flow.Engine, aggregator *stats.Aggregator, log *slog.Logger) (*TgBot, error) {
	seen, err := lru.New[string, struct{}](dedupCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating dedup cache: %w", err)
	}

	tgBot := &TgBot{
		log:       log.With(sl.Module("tgbot")),
		db:        db,
		mappings:  mappings,
		engine:    engine,
		stats:     aggregator,
		states:    newStateStore(),
		seen:      seen,
		conf:      conf.Bot,
		crmDef:    entity.CRMType(conf.CRMDefault),
		ticketURL: conf.TicketURL,
	}

	api, err := tgbotapi.NewBot(conf.Bot.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update:", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	t.updater = ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("start", t.start))
	dispatcher.AddHandler(handlers.NewCommand("help", t.help))
	dispatcher.AddHandler(handlers.NewCommand("promo", t.promo))
	dispatcher.AddHandler(handlers.NewCommand("admin", t.adminCmd))
	dispatcher.AddHandler(handlers.NewCommand("stats", t.statsCmd))

	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbAdmin), t.onAdminCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.All, t.onFlowCallback))

	dispatcher.AddHandler(handlers.NewMessage(message.Contact, t.onContact))
	dispatcher.AddHandler(handlers.NewMessage(message.Text, t.onMessage))

	t.setDefaultCommands()
	t.syncAdminMenus()

	err := t.updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("telegram bot started", slog.String("username", t.conf.Username))
	t.updater.Idle()
	return nil
}

func (t *TgBot) Stop() {
	if t.updater != nil {
		t.log.Info("stopping telegram bot")
		t.updater.Stop()
	}
}

// duplicate reports whether this update key was already handled. Keys are
// "<user>_<message>" for messages and the query id for callbacks.
func (t *TgBot) duplicate(key string) bool {
	_, found := t.seen.Get(key)
	if found {
		return true
	}
	t.seen.Add(key, struct{}{})
	return false
}

func (t *TgBot) isAdmin(chatId int64) bool {
	for _, id := range t.conf.AdminIds {
		if id == chatId {
			return true
		}
	}
	return false
}
