package service

import (
	"context"
	"time"

	"github.com/pharmstock/pharmstock-backend/pkg/actor"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// EvalScheduler runs the full alert evaluation pass on a fixed cadence.
// Mutations already trigger per-medicine evaluation; the scheduled pass
// catches time-driven conditions like approaching expiry dates.
type EvalScheduler struct {
	engine   *AlertEngine
	interval time.Duration
	logger   *logger.Logger
	cancel   context.CancelFunc
}

// NewEvalScheduler creates a new evaluation scheduler
func NewEvalScheduler(engine *AlertEngine, interval time.Duration, log *logger.Logger) *EvalScheduler {
	return &EvalScheduler{
		engine:   engine,
		interval: interval,
		logger:   log,
	}
}

// Start starts the scheduler in a background goroutine. The first pass runs
// immediately so a restarted service does not wait a full interval.
func (s *EvalScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info().Msg("alert evaluation scheduler disabled")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		s.logger.Info().Dur("interval", s.interval).Msg("alert evaluation scheduler started")

		s.runPass(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("alert evaluation scheduler stopped")
				return
			case <-ticker.C:
				s.runPass(ctx)
			}
		}
	}()
}

// Stop stops the scheduler goroutine
func (s *EvalScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// runPass runs one full evaluation as the system principal
func (s *EvalScheduler) runPass(ctx context.Context) {
	start := time.Now()
	ctx = actor.WithActor(ctx, actor.SystemActor())

	if err := s.engine.EvaluateAll(ctx); err != nil {
		s.logger.Error().Err(err).Msg("alert evaluation pass failed")
		return
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("alert evaluation pass completed")
}
