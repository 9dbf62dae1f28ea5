package jobs

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
)

const courierAssignmentJobName = "courier_assignment"

// OrderDispatcher is implemented by commands.DispatchPendingOrdersCommandHandler.
type OrderDispatcher interface {
	Handle(ctx context.Context, cmd commands.DispatchPendingOrdersCommand) (commands.DispatchReport, error)
}

// CourierAssignmentJob assigns couriers to confirmed orders that have none.
type CourierAssignmentJob struct {
	handler  OrderDispatcher
	settings Settings
	locker   ports.JobLocker
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewCourierAssignmentJob(
	handler OrderDispatcher,
	settings Settings,
	locker ports.JobLocker,
	logger *slog.Logger,
) *CourierAssignmentJob {
	logger = logger.With("component", "courier_assignment_job")
	return &CourierAssignmentJob{
		handler:  handler,
		settings: settings,
		locker:   locker,
		cron:     newCron(logger),
		logger:   logger,
	}
}

// Start schedules the job on settings.AssignmentSchedule.
func (j *CourierAssignmentJob) Start() error {
	if err := schedule(j.cron, j.settings.AssignmentSchedule, task{
		name:   courierAssignmentJobName,
		ttl:    j.settings.LockTTL,
		locker: j.locker,
		logger: j.logger,
		run:    j.Run,
	}); err != nil {
		return err
	}
	j.logger.InfoContext(context.Background(), "Courier assignment job started", "schedule", j.settings.AssignmentSchedule)
	return nil
}

// Run performs one dispatch sweep.
func (j *CourierAssignmentJob) Run(ctx context.Context) error {
	cmd, err := commands.NewDispatchPendingOrdersCommand(j.settings.BatchSize)
	if err != nil {
		return err
	}

	report, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	for _, a := range report.Assigned {
		j.logger.InfoContext(ctx, "Courier assigned",
			"order_id", a.OrderID.String(), "courier_id", a.CourierID.String())
	}
	for _, f := range report.Failures {
		// Expected while every courier is busy; the next tick retries.
		if errors.Is(f.Err, commands.ErrNoCourierAvailable) {
			j.logger.DebugContext(ctx, "No courier for order", "order_id", f.OrderID.String())
			continue
		}
		j.logger.ErrorContext(ctx, "Courier assignment failed", "order_id", f.OrderID.String(), "error", f.Err)
	}
	if report.Exhausted {
		j.logger.DebugContext(ctx, "No available courier left")
	}
	return nil
}

// Stop waits for a running sweep to finish.
func (j *CourierAssignmentJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Courier assignment job stopped")
}
