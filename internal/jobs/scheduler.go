// Package jobs runs periodic housekeeping.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TokenPurger deletes refresh tokens that expired or were revoked before now.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.SugaredLogger
}

// NewScheduler returns a stopped scheduler.
func NewScheduler(log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scheduler{cron: cron.New(cron.WithLocation(time.UTC)), log: log}
}

// AddTokenCleanup schedules PurgeExpired on spec (standard cron syntax or
// descriptors such as "@hourly").
func (s *Scheduler) AddTokenCleanup(spec string, tokens TokenPurger) error {
	_, err := s.cron.AddFunc(spec, func() { s.PurgeTokens(tokens) })
	return err
}

// PurgeTokens runs one cleanup pass.
func (s *Scheduler) PurgeTokens(tokens TokenPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := tokens.PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		s.log.Errorw("refresh token cleanup failed", "error", err)
		return
	}
	s.log.Infow("refresh token cleanup", "deleted", n)
}

// Start runs the scheduled jobs in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
