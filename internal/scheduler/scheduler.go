// Package scheduler repeats scrape runs on a cron schedule. Runs never
// overlap: a tick that fires while the previous run is still going is skipped.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/Konovalexx/hh-parser-2/internal/logging"
)

// Job is one full scrape run.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron around a single Job.
type Scheduler struct {
	cron  *cron.Cron
	job   Job
	spec  string
	log   *logging.Logger
	entry cron.EntryID
}

// New creates a Scheduler for spec, any expression robfig/cron accepts
// ("@every 6h", "0 3 * * *").
func New(spec string, job Job, log *logging.Logger) *Scheduler {
	log = log.With("component", "scheduler")
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		job:  job,
		spec: spec,
		log:  log,
	}
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}
	s.entry = id

	s.cron.Start()
	s.log.Info("cron started", "spec", s.spec, "next", s.cron.Entry(id).Next)
	return nil
}

// RunNow runs the job once, synchronously, through the same chain as the
// scheduled ticks, so it is skipped if a scheduled run is in progress. Call
// it after Start to populate the database without waiting for the first tick.
func (s *Scheduler) RunNow() {
	if s.entry == 0 {
		return
	}
	s.cron.Entry(s.entry).WrappedJob.Run()
}

// Stop halts the scheduler and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("cron stopped")
	case <-ctx.Done():
		s.log.Warn("cron stop timed out with a run in progress")
	}
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.log.Info("scheduled scrape started")
	if err := s.job(ctx); err != nil {
		s.log.Error("scheduled scrape failed", "err", err)
		return
	}
	s.log.Info("scheduled scrape finished")
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	log *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "err", err)...)
}
