// Package scheduler runs the engine repeatedly on a cron schedule.
// Retry of failed sources is deliberately left to the next scheduled
// run; the engine itself never retries.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/backup-rotator/pkg/engine"
)

type Scheduler struct {
	engine   *engine.Engine
	requests []engine.Request
	spec     string
	log      zerolog.Logger
}

func New(eng *engine.Engine, requests []engine.Request, spec string) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, err
	}
	return &Scheduler{
		engine:   eng,
		requests: requests,
		spec:     spec,
		log:      log.Logger,
	}, nil
}

// Run blocks until ctx is cancelled, triggering an engine run per the
// cron spec. Runs never overlap; cron serializes jobs per entry only
// when told to, so a skip-if-still-running guard is installed.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(s.spec, func() {
		summary, err := s.engine.Run(ctx, s.requests)
		if err != nil {
			s.log.Error().Err(err).Msg("scheduled run aborted")
			return
		}
		for _, outcome := range summary.Outcomes {
			s.log.Info().Str("status", string(outcome.Status)).Msg(outcome.Summary())
		}
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("schedule", s.spec).Msg("scheduler started")
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.log.Info().Msg("scheduler stopped")
	return nil
}
