package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mcoot/tourneybot/internal/model"
	"github.com/mcoot/tourneybot/internal/services/roster"
)

// Config is the bot process configuration, read from the environment
type Config struct {
	BotToken    string        `env:"BOT_TOKEN,required,notEmpty"`
	PollTimeout time.Duration `env:"TELEGRAM_POLL_TIMEOUT" envDefault:"10s"`

	TournamentName string   `env:"TOURNAMENT_NAME" envDefault:"CODM Tournament"`
	Countries      []string `env:"COUNTRIES" envSeparator:";" envDefault:"Ethiopia=https://t.me/+o3zMT7hAbIU3Y2E0;Nigeria=https://t.me/+GaqELk8BynxmMmRk"`

	Stores

	BackupInterval time.Duration `env:"BACKUP_INTERVAL" envDefault:"0s"`
	BackupRetain   int           `env:"BACKUP_RETAIN" envDefault:"0"`

	StorageType string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string        `env:"REDIS_URL"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"0s"`

	HTTPPort   int    `env:"HTTP_PORT" envDefault:"8080"`
	AdminToken string `env:"ADMIN_TOKEN"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then parses the environment.
// Variables already set in the environment win over the file.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Stores locates the registration stores. The bot and the operator CLI
// both read it so they always agree on the files.
type Stores struct {
	DataDir         string `env:"DATA_DIR" envDefault:"."`
	SpreadsheetFile string `env:"SPREADSHEET_FILE" envDefault:"TournamentData.xlsx"`
	JSONFile        string `env:"JSON_FILE" envDefault:"TournamentData.json"`
	DocumentFile    string `env:"DOCUMENT_FILE" envDefault:"TournamentData.docx"`
	BackupDir       string `env:"BACKUP_DIR" envDefault:"backups"`
}

// LoadStores parses only the store locations from the environment
func LoadStores() (Stores, error) {
	var stores Stores
	if err := env.Parse(&stores); err != nil {
		return Stores{}, fmt.Errorf("parse env: %w", err)
	}
	return stores, nil
}

// Roster converts the locations into the roster store config
func (s Stores) Roster() roster.Config {
	return roster.Config{
		DataDir:         s.DataDir,
		SpreadsheetFile: s.SpreadsheetFile,
		JSONFile:        s.JSONFile,
		DocumentFile:    s.DocumentFile,
		BackupDir:       s.BackupDir,
	}
}

// CountryTable builds the immutable country table
func (c *Config) CountryTable() (model.CountryTable, error) {
	return model.ParseCountryTable(c.Countries)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
