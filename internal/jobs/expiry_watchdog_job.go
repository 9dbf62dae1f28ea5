package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
)

const expiryWatchdogJobName = "expiry_watchdog"

// OrderExpirer is implemented by commands.ExpireOrdersCommandHandler.
type OrderExpirer interface {
	Handle(ctx context.Context, cmd commands.ExpireOrdersCommand) (commands.ExpiryReport, error)
}

// ExpiryWatchdogJob cancels COD orders nobody confirmed before their deadline.
type ExpiryWatchdogJob struct {
	handler  OrderExpirer
	settings Settings
	locker   ports.JobLocker
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewExpiryWatchdogJob(
	handler OrderExpirer,
	settings Settings,
	locker ports.JobLocker,
	logger *slog.Logger,
) *ExpiryWatchdogJob {
	logger = logger.With("component", "expiry_watchdog_job")
	return &ExpiryWatchdogJob{
		handler:  handler,
		settings: settings,
		locker:   locker,
		cron:     newCron(logger),
		logger:   logger,
	}
}

// Start schedules the job on settings.ExpirySchedule.
func (j *ExpiryWatchdogJob) Start() error {
	if err := schedule(j.cron, j.settings.ExpirySchedule, task{
		name:   expiryWatchdogJobName,
		ttl:    j.settings.LockTTL,
		locker: j.locker,
		logger: j.logger,
		run:    j.Run,
	}); err != nil {
		return err
	}
	j.logger.InfoContext(context.Background(), "Expiry watchdog started", "schedule", j.settings.ExpirySchedule)
	return nil
}

// Run performs one sweep.
func (j *ExpiryWatchdogJob) Run(ctx context.Context) error {
	cmd, err := commands.NewExpireOrdersCommand(j.settings.BatchSize)
	if err != nil {
		return err
	}

	report, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	for _, v := range report.Expired {
		j.logger.WarnContext(ctx, "Order expired unconfirmed",
			"order_id", v.OrderID, "deadline", v.Deadline, "error", v)
	}
	for _, id := range report.Skipped {
		j.logger.DebugContext(ctx, "Order left waiting_confirmation before expiry", "order_id", id.String())
	}
	for _, f := range report.Failures {
		j.logger.ErrorContext(ctx, "Order expiry failed", "order_id", f.OrderID.String(), "error", f.Err)
	}
	return nil
}

// Stop waits for a running sweep to finish.
func (j *ExpiryWatchdogJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Expiry watchdog stopped")
}
