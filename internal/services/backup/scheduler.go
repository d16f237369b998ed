package backup

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/tourneybot/internal/dependencies/clock"
)

// Snapshotter takes and prunes store snapshots
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
	Prune(ctx context.Context, keep int) ([]string, error)
}

// Recorder observes snapshot attempts
type Recorder interface {
	SnapshotTaken(err error)
}

type nopRecorder struct{}

func (nopRecorder) SnapshotTaken(error) {}

// Config holds scheduling settings
type Config struct {
	// Interval between snapshots; zero disables the scheduler
	Interval time.Duration
	// Retain is how many snapshots to keep; zero keeps all
	Retain int
}

// Scheduler snapshots the stores on a fixed interval
type Scheduler struct {
	snapshotter Snapshotter
	cfg         Config
	clock       clock.Clock
	logger      *slog.Logger
	recorder    Recorder
}

// New creates a new backup Scheduler
func New(snapshotter Snapshotter, cfg Config, clock clock.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		snapshotter: snapshotter,
		cfg:         cfg,
		clock:       clock,
		logger:      logger,
		recorder:    nopRecorder{},
	}
}

// SetRecorder attaches a Recorder; nil restores the no-op recorder
func (s *Scheduler) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.recorder = r
}

// Run blocks until ctx is cancelled, taking a snapshot on every tick.
// Failures are logged and the next tick is attempted as usual.
func (s *Scheduler) Run(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		s.logger.Info("scheduled backups disabled")
		return
	}

	ticks, stop := s.clock.Tick(s.cfg.Interval)
	defer stop()

	s.logger.Info("scheduled backups enabled",
		slog.Duration("interval", s.cfg.Interval),
		slog.Int("retain", s.cfg.Retain),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			_, _ = s.RunOnce(ctx)
		}
	}
}

// RunOnce takes one snapshot and applies retention
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	dir, err := s.snapshotter.Snapshot(ctx)
	s.recorder.SnapshotTaken(err)
	if err != nil {
		s.logger.Error("scheduled snapshot failed", slog.String("error", err.Error()))
		return "", err
	}

	removed, err := s.snapshotter.Prune(ctx, s.cfg.Retain)
	if err != nil {
		s.logger.Error("snapshot pruning failed", slog.String("error", err.Error()))
		return dir, err
	}
	if len(removed) > 0 {
		s.logger.Info("pruned snapshots", slog.Any("removed", removed))
	}
	return dir, nil
}
