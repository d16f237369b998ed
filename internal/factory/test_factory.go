package factory

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tourneybot/internal/dependencies/mocks"
	"github.com/mcoot/tourneybot/internal/services/auth"
	"github.com/mcoot/tourneybot/internal/services/backup"
	"github.com/mcoot/tourneybot/internal/services/roster"
	"github.com/mcoot/tourneybot/internal/storage/memory"
)

// TestAdminToken is the admin token accepted by a TestApp
const TestAdminToken = "test-admin-token"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MemoryStorage *memory.Storage
}

// NewTestApp creates an App writing its stores under dataDir,
// with in-memory sessions and a mocked clock
func NewTestApp(dataDir string) (*TestApp, error) {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	cfg := withDefaults(Config{
		Roster: roster.DefaultConfig(dataDir),
		Auth:   auth.Config{AdminToken: TestAdminToken, Cost: bcrypt.MinCost},
		Backup: backup.Config{Interval: time.Hour, Retain: 3},
	})

	app, err := newWithDependencies(store, mockClock, cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MemoryStorage: store,
	}, nil
}
