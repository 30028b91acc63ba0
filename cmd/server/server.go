// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/courtmix/courtmix/internal/api"
	"github.com/courtmix/courtmix/internal/api/live"
	"github.com/courtmix/courtmix/internal/api/tournaments"
	"github.com/courtmix/courtmix/internal/config"
	"github.com/courtmix/courtmix/internal/tournament"
)

func newServer(cfg *config.Config, manager *tournament.Manager) (*http.Server, *live.Hub) {
	router := http.NewServeMux()

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	hub := live.NewHub()
	tournaments.InitHandlers(manager, hub, cfg.Engine)
	registerRoutes(router, manager, hub)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, hub
}

func registerRoutes(mux *http.ServeMux, manager *tournament.Manager, hub *live.Hub) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/v1/tournaments", tournaments.HandleCreate)
	mux.HandleFunc("GET /api/v1/tournaments/{id}", tournaments.HandleGet)
	mux.HandleFunc("PUT /api/v1/tournaments/{id}/score", tournaments.HandleScore)
	mux.HandleFunc("PUT /api/v1/tournaments/{id}/entrants", tournaments.HandleRenameEntrant)
	mux.HandleFunc("POST /api/v1/tournaments/{id}/advance", tournaments.HandleAdvance)
	mux.HandleFunc("POST /api/v1/tournaments/{id}/end", tournaments.HandleEnd)
	mux.HandleFunc("POST /api/v1/tournaments/{id}/reopen", tournaments.HandleReopen)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/standings", tournaments.HandleStandings)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/ws", live.ServeWS(hub, manager))
}
