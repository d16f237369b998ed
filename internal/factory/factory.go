package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/tourneybot/internal/dependencies/clock"
	"github.com/mcoot/tourneybot/internal/metrics"
	"github.com/mcoot/tourneybot/internal/model"
	"github.com/mcoot/tourneybot/internal/services/auth"
	"github.com/mcoot/tourneybot/internal/services/backup"
	"github.com/mcoot/tourneybot/internal/services/registration"
	"github.com/mcoot/tourneybot/internal/services/roster"
	"github.com/mcoot/tourneybot/internal/storage"
	"github.com/mcoot/tourneybot/internal/storage/memory"
	redisstorage "github.com/mcoot/tourneybot/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// DefaultTournamentName is used in the welcome message when none is configured
const DefaultTournamentName = "CODM Tournament"

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	Roster     *roster.Store
	Controller *registration.Controller
	Auth       *auth.Service
	Scheduler  *backup.Scheduler

	// Observability
	Metrics *metrics.Metrics
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the session backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Roster locates the registration stores
	// If DataDir is empty, the working directory is used
	Roster roster.Config
	// Countries is the selectable country table
	// If empty, model.DefaultCountryTable() is used
	Countries model.CountryTable
	// TournamentName appears in the welcome message
	TournamentName string
	// Auth holds the admin token settings; an empty token disables admin routes
	Auth auth.Config
	// Backup holds the snapshot schedule; a zero interval disables it
	Backup backup.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), withDefaults(cfg), logger)
}

// withDefaults fills in optional settings
func withDefaults(cfg Config) Config {
	if cfg.Roster == (roster.Config{}) {
		cfg.Roster = roster.DefaultConfig(".")
	} else if cfg.Roster.DataDir == "" {
		cfg.Roster.DataDir = "."
	}
	if len(cfg.Countries.Countries()) == 0 {
		cfg.Countries = model.DefaultCountryTable()
	}
	if cfg.TournamentName == "" {
		cfg.TournamentName = DefaultTournamentName
	}
	return cfg
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) (*App, error) {
	authService, err := auth.New(cfg.Auth)
	if err != nil {
		return nil, err
	}

	rosterStore := roster.New(cfg.Roster, clk, logger)
	controller := registration.NewController(store, rosterStore, cfg.Countries, cfg.TournamentName, clk, logger)
	scheduler := backup.New(rosterStore, cfg.Backup, clk, logger)

	m := metrics.New()
	controller.SetRecorder(m)
	scheduler.SetRecorder(m)

	return &App{
		Storage:    store,
		Clock:      clk,
		Roster:     rosterStore,
		Controller: controller,
		Auth:       authService,
		Scheduler:  scheduler,
		Metrics:    m,
	}, nil
}
