// Package jobs runs the periodic housekeeping of the service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type ResetTokenPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	logger *logrus.Logger
	cron   *cron.Cron
	resets ResetTokenPurger
	now    func() time.Time
}

func NewScheduler(logger *logrus.Logger, resets ResetTokenPurger) *Scheduler {
	return &Scheduler{
		logger: logger,
		cron:   cron.New(),
		resets: resets,
		now:    time.Now,
	}
}

// Register adds the purge job on the given cron spec.
func (s *Scheduler) Register(spec string) error {
	_, err := s.cron.AddFunc(spec, s.purgeResetTokens)
	if err != nil {
		return fmt.Errorf("failed to schedule reset token purge %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for a running job, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) purgeResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.resets.PurgeExpired(ctx, s.now())
	if err != nil {
		s.logger.WithError(err).Error("failed to purge expired reset tokens")
		return
	}

	s.logger.WithField("purged", n).Debug("purged expired reset tokens")
}
