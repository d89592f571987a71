package schedulersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/geeky-hamster/Quizme/core"
)

// Job is run by the scheduler with a context bounded by the job timeout.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules (UTC). A firing is skipped while the previous run of the same job is still in flight.
type Scheduler struct {
	cron *cron.Cron
	log  core.Logger
}

func New(logger core.Logger) *Scheduler {
	cl := cronLogger{log: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: logger,
	}
}

// Add registers `job` under `name` on the standard 5 fields cron `spec`.
func (s *Scheduler) Add(name, spec string, timeout time.Duration, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		if err := job(ctx); err != nil {
			s.log.Error(fmt.Sprintf("scheduler: job %s failed", name), err)
			return
		}
		s.log.Info(fmt.Sprintf("scheduler: job %s done in %s", name, time.Since(start)))
	})
	return errors.Wrapf(err, "scheduling %s (%s)", name, spec)
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for running jobs")
	}
}

// cronLogger adapts core.Logger to cron.Logger.
type cronLogger struct {
	log core.Logger
}

// Info drops cron's per tick messages.
func (l cronLogger) Info(string, ...interface{}) {}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append([]interface{}{err}, keysAndValues...)...)
}
