package services

import (
	"context"
	"fmt"
	"log/slog"

	portssvc "github.com/SscSPs/finanalysis/internal/core/ports/services"
	"github.com/robfig/cron/v3"
)

// SessionSweeper periodically evicts idle sessions on a cron schedule.
type SessionSweeper struct {
	cron   *cron.Cron
	svc    portssvc.SessionMaintenanceSvc
	logger *slog.Logger
}

// NewSessionSweeper schedules eviction with a standard cron spec or a descriptor such as "@every 1h".
func NewSessionSweeper(svc portssvc.SessionMaintenanceSvc, schedule string, logger *slog.Logger) (*SessionSweeper, error) {
	s := &SessionSweeper{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		svc:    svc,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, fmt.Errorf("invalid session sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule in its own goroutine.
func (s *SessionSweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to expire.
func (s *SessionSweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Sweep runs one eviction pass.
func (s *SessionSweeper) Sweep() {
	n, err := s.svc.EvictIdleSessions(context.Background())
	if err != nil {
		s.logger.Error("Session sweep failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("Session sweep finished", slog.Int("evicted", n))
}
