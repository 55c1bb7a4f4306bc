// Package scheduler runs the saved-event reminder sweep on a cron schedule,
// standing in for the hosting platform's cron trigger.
package scheduler

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper is implemented by notify.Dispatcher.
type Sweeper interface {
	CheckAndSendEventReminders(ctx context.Context) (sent24h, sent1h int, err error)
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	log     *zap.Logger
	running atomic.Bool
}

// New builds a scheduler firing the sweep on the given cron expression
// (standard five-field syntax, e.g. "*/5 * * * *").
func New(spec string, sw Sweeper, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), sweeper: sw, log: log}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and returns once the running sweep (if any) has its
// entry drained by cron.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

func (s *Scheduler) run() {
	// Skip a tick if the previous sweep is still going.
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("reminder sweep still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	sent24h, sent1h, err := s.sweeper.CheckAndSendEventReminders(context.Background())
	if err != nil {
		s.log.Error("reminder sweep failed", zap.Error(err))
		return
	}
	if sent24h > 0 || sent1h > 0 {
		s.log.Info("scheduled reminder sweep",
			zap.Int("reminders24h", sent24h),
			zap.Int("reminders1h", sent1h))
	}
}
