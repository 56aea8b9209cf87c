package main

import (
	"net/http"
	"os"

	"SlackArchive/api"
	"SlackArchive/config"
	"SlackArchive/db"
	"SlackArchive/ingest"
	"SlackArchive/scheduler"
	"SlackArchive/slack"
	"SlackArchive/utils"

	log "github.com/inconshreveable/log15/v3"
)

func main() {
	config.LoadEnv()
	logger := log.New("module", "main")

	signingSecret, err := config.MustGet("SLACK_SIGNING_SECRET")
	if err != nil {
		fatal(logger, err)
	}
	botToken, err := config.MustGet("SLACK_BOT_TOKEN")
	if err != nil {
		fatal(logger, err)
	}
	dsn, err := config.MustGet("DATABASE_URL")
	if err != nil {
		fatal(logger, err)
	}
	encryptionKey, err := config.MustGet("ENCRYPTION_KEY")
	if err != nil {
		fatal(logger, err)
	}

	cipher, err := utils.NewCipher(encryptionKey)
	if err != nil {
		fatal(logger, err)
	}

	store, err := db.Open(dsn)
	if err != nil {
		fatal(logger, err)
	}
	logger.Info("connected to DB")

	slackClient := slack.NewClient(botToken)
	resolver := ingest.NewResolver(store, slackClient)
	pipeline := ingest.NewPipeline(store, resolver, cipher)

	reconciler := scheduler.NewReconciler(store, pipeline)
	if err := reconciler.Start(); err != nil {
		fatal(logger, err)
	}
	defer reconciler.Stop()

	srv := api.NewServer(store, pipeline, cipher, signingSecret)
	router := SetupRouter(srv)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server running", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		fatal(logger, err)
	}
}

func fatal(logger log.Logger, err error) {
	logger.Crit("server failed", "err", err)
	os.Exit(1)
}
