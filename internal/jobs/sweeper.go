package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"vector/internal/matching"
	"vector/internal/metrics"
	"vector/internal/store"
)

// Sweeper periodically expires stale pending requests and reverts matched
// pairs that missed the confirm deadline, keeping the queue moving.
type Sweeper struct {
	requests *store.RequestStore
	engine   *matching.Engine
	schedule string
	cron     *cron.Cron
	log      *zap.Logger
}

func NewSweeper(requests *store.RequestStore, engine *matching.Engine, schedule string, log *zap.Logger) *Sweeper {
	return &Sweeper{
		requests: requests,
		engine:   engine,
		schedule: schedule,
		cron:     cron.New(),
		log:      log,
	}
}

// Start schedules the sweep.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweeper: %w", err)
	}
	s.cron.Start()
	s.log.Info("sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the schedule.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce performs a single sweep pass.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	expired, err := s.requests.ExpireStale()
	if err != nil {
		return fmt.Errorf("expire sweep: %w", err)
	}
	if expired > 0 {
		metrics.RequestsExpired.Add(float64(expired))
		metrics.RequestsWaiting.Sub(float64(expired))
		s.log.Info("expired stale requests", zap.Int64("count", expired))
	}

	reverted, err := s.engine.RevertStaleMatches(ctx)
	if err != nil {
		return fmt.Errorf("revert sweep: %w", err)
	}
	if reverted > 0 {
		s.log.Info("reverted stale matches", zap.Int("count", reverted))
	}
	return nil
}
