package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
)

const geocodeRetryJobName = "geocode_retry"

// PendingLocationResolver is implemented by commands.ResolvePendingLocationsCommandHandler.
type PendingLocationResolver interface {
	Handle(ctx context.Context, cmd commands.ResolvePendingLocationsCommand) (commands.ResolveReport, error)
}

// GeocodeRetryJob geocodes pending delivery locations whose next attempt is due.
type GeocodeRetryJob struct {
	handler  PendingLocationResolver
	settings Settings
	locker   ports.JobLocker
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewGeocodeRetryJob(
	handler PendingLocationResolver,
	settings Settings,
	locker ports.JobLocker,
	logger *slog.Logger,
) *GeocodeRetryJob {
	logger = logger.With("component", "geocode_retry_job")
	return &GeocodeRetryJob{
		handler:  handler,
		settings: settings,
		locker:   locker,
		cron:     newCron(logger),
		logger:   logger,
	}
}

// Start schedules the job on settings.GeocodeSchedule.
func (j *GeocodeRetryJob) Start() error {
	if err := schedule(j.cron, j.settings.GeocodeSchedule, task{
		name:   geocodeRetryJobName,
		ttl:    j.settings.LockTTL,
		locker: j.locker,
		logger: j.logger,
		run:    j.Run,
	}); err != nil {
		return err
	}
	j.logger.InfoContext(context.Background(), "Geocode retry job started", "schedule", j.settings.GeocodeSchedule)
	return nil
}

// Run performs one sweep. Attempt failures are logged, not returned.
func (j *GeocodeRetryJob) Run(ctx context.Context) error {
	cmd, err := commands.NewResolvePendingLocationsCommand(j.settings.BatchSize)
	if err != nil {
		return err
	}

	report, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	for _, r := range report.Results {
		switch {
		case r.Skipped:
			continue
		case r.Status == delivery.Failed:
			j.logger.ErrorContext(ctx, "Address moved to the failure queue",
				"order_id", r.OrderID.String(), "attempts", r.Attempts, "error", r.Failure)
		case r.Failure != nil:
			j.logger.WarnContext(ctx, "Geocode attempt failed",
				"order_id", r.OrderID.String(), "attempts", r.Attempts, "error", r.Failure)
		default:
			j.logger.InfoContext(ctx, "Address resolved",
				"order_id", r.OrderID.String(), "risk_updated", r.RiskUpdated)
		}
	}
	for _, f := range report.Failures {
		j.logger.ErrorContext(ctx, "Geocode retry failed", "order_id", f.OrderID.String(), "error", f.Err)
	}
	return nil
}

// Stop waits for a running sweep to finish.
func (j *GeocodeRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Geocode retry job stopped")
}
