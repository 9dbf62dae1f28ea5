// Package jobs provides the scheduled background work of the fulfillment service.
//
// Jobs use github.com/robfig/cron/v3 with second resolution. Each job wraps
// one sweeping command handler:
//
// 1. GeocodeRetryJob - resolves pending delivery addresses whose next attempt is due
// 2. CourierAssignmentJob - assigns couriers to confirmed orders without one
// 3. ExpiryWatchdogJob - cancels COD orders left unconfirmed past their deadline
//
// # Usage
//
//	jobManager := jobs.NewJobManager(resolver, dispatcher, expirer, jobs.DefaultSettings(), locker, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Overlap
//
// A tick is skipped while the previous run of the same job is still going
// (cron.SkipIfStillRunning). Across instances, a run first takes a lease from
// ports.JobLocker named after the job; a run that cannot get it is skipped.
//
// # Error Handling
//
// Per-order failures are logged and left for the next sweep. Only a failing
// sweep (e.g. the database is down) counts as an error run in
// fulfillment_job_runs_total.
package jobs
