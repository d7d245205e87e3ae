package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// FeeScheduler drives the billing engine on a cron schedule, normally
// "0 0 1 * *" (midnight on the 1st). The generation itself is idempotent, so
// an extra run costs nothing.
type FeeScheduler struct {
	billing *BillingService
	cron    *cron.Cron
	spec    string
	log     zerolog.Logger
}

func NewFeeScheduler(billing *BillingService, spec string, log zerolog.Logger) *FeeScheduler {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	return &FeeScheduler{billing: billing, cron: c, spec: spec, log: log}
}

func (s *FeeScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		s.log.Info().Msg("starting monthly fee generation")
		report, err := s.billing.GenerateFeesForCurrentPeriod(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("monthly fee generation failed")
			return
		}
		s.log.Info().Str("month", report.Month).Int("created", report.FeesCreated).
			Msg("monthly fee generation finished")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.spec).Msg("fee scheduler started")
	return nil
}

func (s *FeeScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
