package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/ports"
)

// Settings configures schedules (six-field cron specs with seconds), the
// per-run batch size and the lease TTL shared by every job.
type Settings struct {
	GeocodeSchedule    string
	AssignmentSchedule string
	ExpirySchedule     string
	BatchSize          int
	LockTTL            time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		GeocodeSchedule:    "*/15 * * * * *",
		AssignmentSchedule: "*/5 * * * * *",
		ExpirySchedule:     "0 * * * * *",
		BatchSize:          50,
		LockTTL:            30 * time.Second,
	}
}

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	jobs []namedJob
}

type namedJob struct {
	name string
	job  job
}

// NewJobManager creates the geocode retry, courier assignment and expiry
// jobs. locker may be nil when a single instance runs.
func NewJobManager(
	resolver PendingLocationResolver,
	dispatcher OrderDispatcher,
	expirer OrderExpirer,
	settings Settings,
	locker ports.JobLocker,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		jobs: []namedJob{
			{geocodeRetryJobName, NewGeocodeRetryJob(resolver, settings, locker, logger)},
			{courierAssignmentJobName, NewCourierAssignmentJob(dispatcher, settings, locker, logger)},
			{expiryWatchdogJobName, NewExpiryWatchdogJob(expirer, settings, locker, logger)},
		},
	}
}

// StartAll starts all scheduled jobs. If one fails to start, the jobs
// already started are stopped.
func (jm *JobManager) StartAll() error {
	for i, j := range jm.jobs {
		if err := j.job.Start(); err != nil {
			for _, started := range jm.jobs[:i] {
				started.job.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", j.name, err)
		}
	}
	return nil
}

// StopAll stops all scheduled jobs and waits for running sweeps.
func (jm *JobManager) StopAll() {
	for _, j := range jm.jobs {
		j.job.Stop()
	}
}
