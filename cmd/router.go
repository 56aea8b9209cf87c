package main

import (
	"net/http"

	"SlackArchive/api"

	"github.com/go-chi/chi/v5"
)

func SetupRouter(srv *api.Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", srv.HandleHealthCheck)

	// All methods route to the handler so non-POST requests get the 404
	// Slack expects, not chi's 405.
	r.HandleFunc("/api/v1/slack/events", srv.HandleSlackEvents)

	r.Route("/api/v1/teams/{teamID}", func(r chi.Router) {
		r.Get("/channels", srv.HandleListChannels)
		r.Get("/channels/{channelID}/messages", srv.HandleListMessages)
		r.Get("/channels/{channelID}/messages/{ts}", srv.HandleGetThread)
		r.Get("/settings", srv.HandleGetSettings)
		r.Put("/settings", srv.HandleUpdateSettings)
	})

	return r
}
