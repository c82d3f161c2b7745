// Package scheduler runs the background cron jobs: session reminders and
// analytics cache warm-up.
package scheduler

import (
	"context"
	"time"

	"catering-backend/internal/logging"
	"catering-backend/internal/metrics"
	"catering-backend/internal/timeutil"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single run.
const jobTimeout = 5 * time.Minute

type Job func(ctx context.Context) error

type Scheduler struct {
	cron *cron.Cron
}

// New schedules in business time, so "0 8 * * *" is 08:00 IST.
func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(timeutil.IST), cron.WithChain(cron.Recover(cronLogger{}))),
	}
}

// Add registers job under spec. Overlapping runs of the same job are skipped.
func (s *Scheduler) Add(name, spec string, job Job) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cronLogger{})).Then(cron.FuncJob(func() {
		run(name, job)
	}))
	_, err := s.cron.AddJob(spec, wrapped)
	return err
}

func run(name string, job Job) {
	log := logging.For("Scheduler")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	metrics.ScheduledJobRuns.WithLabelValues(name, metrics.Result(err)).Inc()
	if err != nil {
		log.WithError(err).Errorf("job %s failed", name)
		return
	}
	log.Infof("job %s finished in %s", name, time.Since(start).Round(time.Millisecond))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logging.For("Scheduler").Infof("started with %d job(s)", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger routes cron's own messages through logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.For("Scheduler").WithField("detail", keysAndValues).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.For("Scheduler").WithError(err).WithField("detail", keysAndValues).Error(msg)
}
