package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/valorats/slack-premier-bot/internal/config"
	"github.com/valorats/slack-premier-bot/internal/database"
	"github.com/valorats/slack-premier-bot/internal/domain/service"
	"github.com/valorats/slack-premier-bot/internal/handlers"
	"github.com/valorats/slack-premier-bot/internal/scheduler"
	"github.com/valorats/slack-premier-bot/migrator/sqlite"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found")
	}

	cfg := config.Load()

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping default")
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve timezone")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	log.Info().Msg("running migrations")
	if err := sqlite.Migrate(db.DB()); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	dm := database.NewInstance(db)
	slackClient := slack.New(cfg.SlackBotToken)
	services := service.New(dm, slackClient, cfg, loc, log)

	ctx := context.Background()

	if err := services.Reminder.ResumePending(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to resume persisted reminders")
	}

	sched := scheduler.New(services.Reminder, loc, log)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start reminder sweep")
	}
	defer sched.Stop()

	handler := handlers.New(slackClient, services, cfg, loc, log)

	http.HandleFunc("/slack/commands", handler.HandleSlashCommand)
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
