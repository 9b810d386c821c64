package app

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultSweepInterval = 5 * time.Minute
	cleanupInterval      = 24 * time.Hour
)

// Sweeper runs the escrow expiry sweep on a fixed interval and, when a
// retention window is configured, the daily settled-record cleanup.
type Sweeper struct {
	escrow        *EscrowService
	interval      time.Duration
	retentionDays int
	logger        *slog.Logger
}

func NewSweeper(escrow *EscrowService, interval time.Duration, retentionDays int, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		escrow:        escrow,
		interval:      interval,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Run blocks until ctx is done. The first sweep runs immediately so a restart
// does not extend already-expired holds.
func (s *Sweeper) Run(ctx context.Context) {
	sweepTicker := time.NewTicker(s.interval)
	defer sweepTicker.Stop()
	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sweepTicker.C:
			s.sweep(ctx)
		case <-cleanupTicker.C:
			s.cleanup(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.escrow.ProcessExpiredEscrows(ctx); err != nil {
		s.logger.Error("escrow sweep failed", "error", err)
	}
}

func (s *Sweeper) cleanup(ctx context.Context) {
	if s.retentionDays <= 0 {
		return
	}
	if _, err := s.escrow.CleanupSettledEscrows(ctx, s.retentionDays); err != nil {
		s.logger.Error("escrow retention cleanup failed", "error", err)
	}
}
