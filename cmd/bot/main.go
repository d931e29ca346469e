package main

import (
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/vatbrz/staffing-bot/internal/config"
	"github.com/vatbrz/staffing-bot/internal/database"
	"github.com/vatbrz/staffing-bot/internal/handlers"
	"github.com/vatbrz/staffing-bot/internal/domain/service"
	slackadapter "github.com/vatbrz/staffing-bot/internal/slack"
	"github.com/vatbrz/staffing-bot/migrator/sqlite"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found")
	}

	cfg := config.Load()

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	log.Info("running migrations")
	if err := sqlite.Migrate(db.DB()); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	slackClient := slack.New(cfg.SlackBotToken)
	messenger := slackadapter.NewMessenger(slackClient, cfg.AdminUserIDs)

	dm := database.NewInstance(db)
	services := service.NewInstance(dm, messenger, log, cfg.DispatchInterval)

	services.Dispatcher.Start()
	defer services.Dispatcher.Stop()

	handler := handlers.New(services.Booking, messenger, cfg, log)

	http.HandleFunc("/slack/commands", handler.HandleSlashCommand)
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
