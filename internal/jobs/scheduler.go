// Package jobs runs the periodic background work of the API process.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// OverdueMarker flips past-due invoices to overdue.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the overdue sweep under spec, a standard five-field cron expression.
func NewScheduler(spec string, invoices OverdueMarker) (*Scheduler, error) {
	c := cron.New(
		cron.WithLogger(cronLogger{log.Logger}),
		cron.WithChain(cron.Recover(cronLogger{log.Logger}), cron.SkipIfStillRunning(cronLogger{log.Logger})),
	)

	if _, err := c.AddFunc(spec, OverdueSweep(invoices, time.Now)); err != nil {
		return nil, fmt.Errorf("invalid overdue schedule %q: %w", spec, err)
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// OverdueSweep returns the job body; now is injectable for tests.
func OverdueSweep(invoices OverdueMarker, now func() time.Time) func() {
	return func() {
		started := time.Now()
		n, err := invoices.MarkOverdue(context.Background(), now().UTC())
		if err != nil {
			log.Error().Err(err).Msg("Overdue invoice sweep failed")
			return
		}
		log.Info().Int("invoices", n).Dur("took", time.Since(started)).Msg("Overdue invoice sweep finished")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
