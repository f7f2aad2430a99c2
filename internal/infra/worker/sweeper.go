package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepFunc removes expired state and reports how many items it dropped.
type SweepFunc func(ctx context.Context) (int64, error)

// Sweeper runs a SweepFunc once at start and then on every tick.
type Sweeper struct {
	name     string
	interval time.Duration
	sweep    SweepFunc
	logger   *zap.Logger
}

func NewSweeper(name string, interval time.Duration, sweep SweepFunc, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		name:     name,
		interval: interval,
		sweep:    sweep,
		logger:   logger.With(zap.String("sweeper", name)),
	}
}

// Start blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	removed, err := s.sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Sweep failed", zap.Error(err))
		}
		return
	}
	if removed > 0 {
		s.logger.Info("Sweep completed", zap.Int64("removed", removed))
	}
}
