package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeSkipped = "skipped"
)

// task runs one job body under the distributed lease and records metrics.
// The lease TTL doubles as the run timeout so a lease never outlives its run.
type task struct {
	name   string
	ttl    time.Duration
	locker ports.JobLocker
	logger *slog.Logger
	run    func(ctx context.Context) error
}

func (t task) execute() {
	ctx, cancel := context.WithTimeout(context.Background(), t.ttl)
	defer cancel()

	start := time.Now()
	outcome := t.guarded(ctx)
	metrics.JobRunsTotal.WithLabelValues(t.name, outcome).Inc()
	if outcome != outcomeSkipped {
		metrics.JobRunDuration.WithLabelValues(t.name).Observe(time.Since(start).Seconds())
	}
}

func (t task) guarded(ctx context.Context) string {
	if t.locker != nil {
		release, acquired, err := t.locker.TryLock(ctx, t.name, t.ttl)
		if err != nil {
			t.logger.ErrorContext(ctx, "Job lock unavailable", "error", err)
			return outcomeError
		}
		if !acquired {
			t.logger.DebugContext(ctx, "Job is running on another instance")
			return outcomeSkipped
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				t.logger.WarnContext(ctx, "Job lock release failed", "error", err)
			}
		}()
	}

	if err := t.run(ctx); err != nil {
		t.logger.ErrorContext(ctx, "Job run failed", "error", err)
		return outcomeError
	}
	return outcomeOK
}

// newCron builds a seconds-resolution scheduler that drops a tick while the
// previous run of the same job is still going.
func newCron(logger *slog.Logger) *cron.Cron {
	l := cronLogger{logger: logger}
	return cron.New(
		cron.WithSeconds(),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
}

// cronLogger adapts slog to cron.Logger. Cron's info output (every tick) is
// logged at debug level.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

func schedule(c *cron.Cron, spec string, t task) error {
	if _, err := c.AddFunc(spec, t.execute); err != nil {
		return fmt.Errorf("schedule %s %q: %w", t.name, spec, err)
	}
	c.Start()
	return nil
}
