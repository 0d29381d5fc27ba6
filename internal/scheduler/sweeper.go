// Package scheduler runs the retention sweep that bounds local storage
// growth. Day-scoped keys expire only by becoming unaddressable, so without
// the sweep stale bundles accumulate forever.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/lithuaningo/internal/daykey"
	"github.com/example/lithuaningo/internal/storage"
)

// DefaultSweepTime is when the daily sweep runs, shortly after the learning
// day rolls over at 02:00 UTC
const DefaultSweepTime = "03:00"

// Sweeper manages the scheduled purge of stale day-scoped keys
type Sweeper struct {
	scheduler     *gocron.Scheduler
	kv            *storage.KVRepository
	retentionDays int
	logger        *zap.Logger
}

// New creates a sweeper purging keys older than retentionDays learning days
func New(retentionDays int, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		scheduler:     gocron.NewScheduler(time.UTC),
		kv:            storage.NewKVRepository(),
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Start runs one sweep immediately, then daily
func (s *Sweeper) Start() {
	s.scheduler.Every(1).Day().At(DefaultSweepTime).Do(s.sweep)
	s.scheduler.StartAsync()
	s.sweep()
}

// Stop terminates the scheduled sweeps
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.RunManualSweep(ctx); err != nil {
		s.logger.Warn("retention sweep failed", zap.Error(err))
	}
}

// RunManualSweep purges stale keys once and returns how many were removed
func (s *Sweeper) RunManualSweep(ctx context.Context) (int, error) {
	cutoff := daykey.At(time.Now().AddDate(0, 0, -s.retentionDays))
	purged, err := s.kv.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return purged, err
	}
	if purged > 0 {
		s.logger.Info("purged stale day-scoped keys",
			zap.Int("purged", purged), zap.String("cutoff", cutoff))
	}
	return purged, nil
}
