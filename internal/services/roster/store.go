package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/mcoot/tourneybot/internal/dependencies/clock"
	"github.com/mcoot/tourneybot/internal/model"
)

const (
	// SnapshotLayout names snapshot directories so they sort chronologically
	SnapshotLayout = "20060102150405"

	lockRetryDelay = 50 * time.Millisecond
)

// Store appends registrations to the spreadsheet, JSON and document stores
// and takes timestamped snapshots of all three.
//
// Appends and snapshots are serialized in-process by a mutex and across
// processes by a lock file in the data directory.
type Store struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	mu   sync.Mutex
	lock *flock.Flock
}

// New creates a Store. No files are touched until EnsureStoresExist.
func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		cfg:    cfg,
		clock:  clk,
		logger: logger,
		lock:   flock.New(cfg.lockPath()),
	}
}

// Config returns the store locations
func (s *Store) Config() Config {
	return s.cfg
}

// Paths returns the three store files in snapshot order
func (s *Store) Paths() []string {
	return []string{s.cfg.SpreadsheetPath(), s.cfg.JSONPath(), s.cfg.DocumentPath()}
}

// EnsureStoresExist creates any missing store with its empty content and the
// backup directory. Existing stores are left untouched.
func (s *Store) EnsureStoresExist(ctx context.Context) error {
	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	initial := []struct {
		path   string
		render func() ([]byte, error)
	}{
		{s.cfg.SpreadsheetPath(), newSpreadsheet},
		{s.cfg.JSONPath(), newJSONStore},
		{s.cfg.DocumentPath(), newDocument},
	}

	for _, store := range initial {
		if _, err := os.Stat(store.path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		data, err := store.render()
		if err != nil {
			return fmt.Errorf("render %s: %w", filepath.Base(store.path), err)
		}
		if err := writeFileAtomic(store.path, data); err != nil {
			return err
		}
		s.logger.Info("created store", slog.String("path", store.path))
	}

	return os.MkdirAll(s.cfg.BackupPath(), 0o755)
}

// AppendRecord adds the registration to all three stores.
//
// The new content of every store is rendered and staged before any store is
// replaced, so a read or encode failure leaves all three unchanged. The
// returned error joins the failure of each store that could not be updated.
func (s *Store) AppendRecord(ctx context.Context, rec model.Registration) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	updates := []struct {
		path   string
		append func([]byte, model.Registration) ([]byte, error)
	}{
		{s.cfg.SpreadsheetPath(), appendSpreadsheetRow},
		{s.cfg.JSONPath(), appendJSONRecord},
		{s.cfg.DocumentPath(), appendDocumentRecord},
	}

	var errs []error
	rendered := make([][]byte, len(updates))
	for i, u := range updates {
		current, err := os.ReadFile(u.path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(u.path), err))
			continue
		}
		rendered[i], err = u.append(current, rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(u.path), err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	var staged []stagedFile
	for i, u := range updates {
		sf, err := stage(u.path, rendered[i])
		if err != nil {
			discard(staged)
			return fmt.Errorf("%s: %w", filepath.Base(u.path), err)
		}
		staged = append(staged, sf)
	}

	if err := commit(staged); err != nil {
		s.logger.Error("stores may be inconsistent",
			slog.String("username", rec.Username),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.logger.Info("registration appended",
		slog.String("country", rec.Country),
		slog.String("username", rec.Username),
	)
	return nil
}

// Snapshot copies the three stores into a new directory under the backup
// root, named by the current time. It returns the directory path.
func (s *Store) Snapshot(ctx context.Context) (string, error) {
	unlock, err := s.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	name := s.clock.Now().Format(SnapshotLayout)
	dir := filepath.Join(s.cfg.BackupPath(), name)

	if err := os.MkdirAll(s.cfg.BackupPath(), 0o755); err != nil {
		return "", err
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", model.ErrSnapshotExists, name)
		}
		return "", err
	}

	for _, src := range s.Paths() {
		if err := copyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			_ = os.RemoveAll(dir)
			return "", fmt.Errorf("snapshot %s: %w", filepath.Base(src), err)
		}
	}

	s.logger.Info("snapshot created", slog.String("dir", dir))
	return dir, nil
}

// ListSnapshots returns snapshot names, oldest first
func (s *Store) ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.BackupPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(SnapshotLayout, e.Name()); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Prune deletes all but the newest keep snapshots and returns the removed
// names. keep <= 0 disables pruning.
func (s *Store) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	names, err := s.ListSnapshots()
	if err != nil {
		return nil, err
	}
	if len(names) <= keep {
		return nil, nil
	}

	removed := names[:len(names)-keep]
	for _, name := range removed {
		if err := os.RemoveAll(filepath.Join(s.cfg.BackupPath(), name)); err != nil {
			return nil, err
		}
	}
	return removed, nil
}

func (s *Store) acquire(ctx context.Context) (func(), error) {
	s.mu.Lock()

	if err := os.MkdirAll(s.cfg.DataDir, 0o755); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		s.mu.Unlock()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrStoreLocked, err)
		}
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !locked {
		s.mu.Unlock()
		return nil, model.ErrStoreLocked
	}

	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release store lock", slog.String("error", err.Error()))
		}
		s.mu.Unlock()
	}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
