// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/courtmix/courtmix/internal/config"
	"github.com/courtmix/courtmix/internal/scheduler"
	"github.com/courtmix/courtmix/internal/statesync"
	"github.com/courtmix/courtmix/internal/store"
	"github.com/courtmix/courtmix/internal/tournament"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	if cfg.Store.Driver != "sqlite" {
		log.Fatal().Str("driver", cfg.Store.Driver).Msg("Unsupported store driver")
	}
	st, err := store.New(cfg.Store.Filename)
	if err != nil {
		log.Fatal().Err(err).Str("filename", cfg.Store.Filename).Msg("Failed to open store")
	}
	defer st.Close()

	var syncOpts []statesync.Option
	if d := cfg.Debounce(); d > 0 {
		syncOpts = append(syncOpts, statesync.WithDebounce(d))
	}
	manager := tournament.NewManager(st, syncOpts...)
	defer manager.Close()

	server, hub := newServer(cfg, manager)
	defer hub.Close()

	sched, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if interval := cfg.ResyncInterval(); interval > 0 {
		_, err := sched.AddIntervalJob("resync-tournaments", interval, func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			manager.ResyncAll(ctx)
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule resync job")
		}
	}
	sched.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("app", cfg.App.Name).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := sched.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown error")
		}
		// Pending debounced writes go out before the store closes.
		manager.FlushAll(shutdownCtx)
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
