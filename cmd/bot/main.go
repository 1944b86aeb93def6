package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"teatrlead/bot"
	"teatrlead/entity"
	"teatrlead/impl/core"
	"teatrlead/internal/config"
	"teatrlead/internal/crm"
	"teatrlead/internal/database"
	"teatrlead/internal/flow"
	"teatrlead/internal/http-server/api"
	"teatrlead/internal/stats"
	"teatrlead/lib/sl"
)

const (
	envLocal    = "local"
	envDev      = "dev"
	envProd     = "prod"
	logFileName = "teatrlead.log"
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logger := setupLogger(conf.Env, *logPath)
	logger.Info("starting teatrlead", slog.String("config", *configPath), slog.String("env", conf.Env))

	db, err := database.NewSQLClient(conf)
	if err != nil {
		logger.Error("mysql connect", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	mongo := database.NewMongoClient(conf)
	if mongo == nil {
		logger.Error("mongodb is disabled in configuration; mappings and settings need it")
		os.Exit(1)
	}

	city1 := crm.NewClient(conf.CRMCity1, logger)
	city2 := crm.NewClient(conf.CRMCity2, logger)
	forwarder := crm.NewForwarder(city1, city2, entity.CRMType(conf.CRMDefault), logger)

	aggregator := stats.New(db)
	engine := flow.NewEngine(db, forwarder, mongo, conf.TicketURL, logger)

	handler := core.New(conf.Listen.ApiToken, conf.Bot.Username, mongo, aggregator, logger)
	go func() {
		if err := api.New(conf, logger, handler); err != nil {
			logger.Error("api server", sl.Err(err))
		}
	}()

	tgBot, err := bot.NewTgBot(conf, db, mongo, engine, aggregator, logger)
	if err != nil {
		logger.Error("telegram bot init", sl.Err(err))
		os.Exit(1)
	}
	defer tgBot.Stop()

	if err := tgBot.Start(); err != nil {
		logger.Error("telegram bot", sl.Err(err))
		os.Exit(1)
	}
}

func setupLogger(env, path string) *slog.Logger {
	var logger *slog.Logger
	var logFile *os.File
	var err error

	if env != envLocal {
		logPath := logFilePath(path)
		logFile, err = os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("error opening log file: ", err)
		}
		log.Printf("env: %s; log file: %s", env, logPath)
	}

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		logger = slog.New(
			slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		logger = slog.New(
			slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log.Fatal("invalid environment: ", env)
	}

	return logger
}

func logFilePath(path string) string {
	return filepath.Join(path, logFileName)
}
