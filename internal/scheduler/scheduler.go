package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
)

// Scheduler drives the reminder sweep at the fixed local reminder hours.
// The sweep itself is idempotent, so an extra run (including the one fired
// at startup to catch up after downtime) is always safe.
type Scheduler struct {
	cron      *cron.Cron
	reminders contract.ReminderService
	log       zerolog.Logger
}

func New(reminders contract.ReminderService, loc *time.Location, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		reminders: reminders,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	for _, spec := range domain.SweepCronSpecs {
		spec := spec
		_, err := s.cron.AddFunc(spec, func() {
			s.runSweep(ctx, spec)
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.log.Info().Strs("specs", domain.SweepCronSpecs).Msg("reminder sweep scheduled")

	// Catch-up sweep: transitions and reminders missed during downtime
	// are resolved right away, the dedup log keeps it from re-sending.
	go s.runSweep(ctx, "startup")

	return nil
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info().Msg("reminder sweep stopped")
}

func (s *Scheduler) runSweep(ctx context.Context, trigger string) {
	s.log.Debug().Str("trigger", trigger).Msg("running reminder sweep")
	if err := s.reminders.Sweep(ctx); err != nil {
		s.log.Error().Err(err).Msg("reminder sweep failed")
	}
}
