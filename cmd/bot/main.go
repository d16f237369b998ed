package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/tourneybot/internal/api"
	"github.com/mcoot/tourneybot/internal/config"
	"github.com/mcoot/tourneybot/internal/factory"
	"github.com/mcoot/tourneybot/internal/services/auth"
	"github.com/mcoot/tourneybot/internal/services/backup"
	redisstorage "github.com/mcoot/tourneybot/internal/storage/redis"
	"github.com/mcoot/tourneybot/internal/telegram"
)

func main() {
	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	countries, err := cfg.CountryTable()
	if err != nil {
		logger.Error("invalid country table", slog.String("error", err.Error()))
		os.Exit(1)
	}

	factoryCfg := factory.Config{
		Logger:         logger,
		StorageType:    cfg.StorageType,
		Countries:      countries,
		TournamentName: cfg.TournamentName,
		Roster:         cfg.Stores.Roster(),
		Auth: auth.Config{AdminToken: cfg.AdminToken},
		Backup: backup.Config{
			Interval: cfg.BackupInterval,
			Retain:   cfg.BackupRetain,
		},
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		if cfg.RedisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.SessionTTL = cfg.SessionTTL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Roster.EnsureStoresExist(ctx); err != nil {
		logger.Error("failed to initialise stores", slog.String("error", err.Error()))
		os.Exit(1)
	}

	bot, err := telegram.New(telegram.Config{
		Token:       cfg.BotToken,
		PollTimeout: cfg.PollTimeout,
	}, app.Controller, logger)
	if err != nil {
		logger.Error("failed to connect to telegram", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.Auth,
		Dialogue:    app.Controller,
		Snapshotter: app.Scheduler,
		Snapshots:   app.Roster,
		Metrics:     app.Metrics,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.HTTPPort
	server := api.NewServer(apiRouter, serverConfig, logger)
	if err := server.Listen(); err != nil {
		logger.Error("failed to bind HTTP port", slog.String("error", err.Error()))
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Scheduler.Run(gctx)
		return nil
	})
	g.Go(func() error {
		bot.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return server.Serve()
	})
	g.Go(func() error {
		<-gctx.Done()
		return server.Shutdown(context.Background())
	})

	logger.Info("bot started",
		slog.String("addr", server.Addr()),
		slog.String("tournament", cfg.TournamentName),
		slog.String("storage", cfg.StorageType),
	)

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("bot failed", slog.String("error", err.Error()))
		exitCode = 1
	}

	stop()
	logger.Info("bot stopped")
	os.Exit(exitCode)
}
