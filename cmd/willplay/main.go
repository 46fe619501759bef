package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"willplay/internal/clients/steam"
	"willplay/internal/config"
	"willplay/internal/events"
	"willplay/internal/middleware"
	"willplay/internal/routes"
	"willplay/internal/storage"
	"willplay/internal/storage/mariadb"
	"willplay/internal/storage/memory"

	ssogrpc "willplay/internal/clients/sso/grpc"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting server", slog.String("env", cfg.Env))

	authMiddleware, closeAuth, err := setupAuth(cfg, log)
	if err != nil {
		log.Error("failed to create identity provider", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeAuth()

	store, closeStore, err := setupStorage(cfg, log)
	if err != nil {
		log.Error("failed to create storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	log.Info("storage init", slog.String("driver", cfg.Storage.Driver))

	broker, err := setupBroker(cfg, log)
	if err != nil {
		log.Error("failed to create event broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := broker.Close(); err != nil {
			log.Error("failed to close event broker", slog.String("error", err.Error()))
		}
	}()

	steamClient := steam.New(cfg.Steam, log)

	r := routes.SetupRouter(log, store, steamClient, broker, authMiddleware, cfg)

	log.Info("routes init")

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("listening", slog.String("address", cfg.Address))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
		}

	case sig := <-shutdown:
		log.Info("shutting down", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown error", slog.String("error", err.Error()))
			if err := server.Close(); err != nil {
				log.Error("force shutdown error", slog.String("error", err.Error()))
			}
		}
	}
	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
	return log
}

func setupAuth(cfg *config.Config, log *slog.Logger) (*middleware.AuthMiddleware, func(), error) {
	if cfg.Identity.Provider != config.ProviderSSO {
		return middleware.NewJWTAuthMiddleware(cfg.Identity.JWTSecret, log), func() {}, nil
	}

	ssoClient, err := ssogrpc.New(context.Background(), log, cfg.Clients.SSO)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := ssoClient.Close(); err != nil {
			log.Error("failed to close sso client", slog.String("error", err.Error()))
		}
	}

	return middleware.NewSSOAuthMiddleware(ssoClient, log), closeFn, nil
}

func setupStorage(cfg *config.Config, log *slog.Logger) (storage.Store, func(), error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	db, err := mariadb.New(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}

	if err := db.Migrate(); err != nil {
		closeFn()
		return nil, nil, err
	}

	return db, closeFn, nil
}

func setupBroker(cfg *config.Config, log *slog.Logger) (events.Broker, error) {
	if cfg.Events.NatsURL == "" {
		return events.NewLocal(), nil
	}

	return events.ConnectNats(cfg.Events.NatsURL, cfg.Events.NatsToken, log)
}
