package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	args := m.Called(ctx, name, ttl)
	release := func(context.Context) error {
		m.released++
		return nil
	}
	return release, args.Bool(0), args.Error(1)
}

type MockResolver struct{ mock.Mock }

func (m *MockResolver) Handle(ctx context.Context, cmd commands.ResolvePendingLocationsCommand) (commands.ResolveReport, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.ResolveReport), args.Error(1)
}

type MockDispatcher struct{ mock.Mock }

func (m *MockDispatcher) Handle(ctx context.Context, cmd commands.DispatchPendingOrdersCommand) (commands.DispatchReport, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.DispatchReport), args.Error(1)
}

type MockExpirer struct{ mock.Mock }

func (m *MockExpirer) Handle(ctx context.Context, cmd commands.ExpireOrdersCommand) (commands.ExpiryReport, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.ExpiryReport), args.Error(1)
}

func TestTask_LeaseHeldElsewhereSkipsRun(t *testing.T) {
	locker := new(MockLocker)
	locker.On("TryLock", mock.Anything, "test_skip", time.Second).Return(false, nil).Once()
	ran := false

	tk := task{name: "test_skip", ttl: time.Second, locker: locker, logger: discard,
		run: func(context.Context) error { ran = true; return nil }}
	tk.execute()

	assert.False(t, ran)
	assert.Zero(t, locker.released)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues("test_skip", outcomeSkipped)))
}

func TestTask_RunsUnderLeaseAndReleases(t *testing.T) {
	locker := new(MockLocker)
	locker.On("TryLock", mock.Anything, "test_run", time.Second).Return(true, nil).Once()

	tk := task{name: "test_run", ttl: time.Second, locker: locker, logger: discard,
		run: func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return errors.New("db down")
		}}
	tk.execute()

	assert.Equal(t, 1, locker.released)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues("test_run", outcomeError)))
}

func TestTask_LockerErrorSkipsRun(t *testing.T) {
	locker := new(MockLocker)
	locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down")).Once()
	ran := false

	outcome := task{name: "test_lock_err", ttl: time.Second, locker: locker, logger: discard,
		run: func(context.Context) error { ran = true; return nil }}.guarded(context.Background())

	assert.Equal(t, outcomeError, outcome)
	assert.False(t, ran)
}

func TestTask_WithoutLocker(t *testing.T) {
	outcome := task{name: "test_local", ttl: time.Second, logger: discard,
		run: func(context.Context) error { return nil }}.guarded(context.Background())

	assert.Equal(t, outcomeOK, outcome)
}

func TestGeocodeRetryJob_Run(t *testing.T) {
	resolver := new(MockResolver)
	settings := DefaultSettings()
	resolver.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ResolvePendingLocationsCommand) bool {
		return cmd.Limit() == settings.BatchSize
	})).Return(commands.ResolveReport{
		Results: []commands.ResolveGeocodeResult{
			{OrderID: kernel.NewUUID(), Status: delivery.Resolved},
			{OrderID: kernel.NewUUID(), Status: delivery.Failed, Attempts: 3,
				Failure: errs.NewGeocodeFailureError("Jl. Ijen 12", 3, errors.New("timeout"))},
		},
	}, nil).Once()

	job := NewGeocodeRetryJob(resolver, settings, nil, discard)

	require.NoError(t, job.Run(t.Context()))
	resolver.AssertExpectations(t)
}

func TestGeocodeRetryJob_SweepError(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("Handle", mock.Anything, mock.Anything).Return(commands.ResolveReport{}, errors.New("db down")).Once()

	job := NewGeocodeRetryJob(resolver, DefaultSettings(), nil, discard)

	require.EqualError(t, job.Run(t.Context()), "db down")
}

func TestCourierAssignmentJob_Run(t *testing.T) {
	dispatcher := new(MockDispatcher)
	dispatcher.On("Handle", mock.Anything, mock.Anything).Return(commands.DispatchReport{
		Assigned: []commands.AssignCourierResult{{OrderID: kernel.NewUUID(), CourierID: kernel.NewUUID()}},
		Failures: []commands.DispatchFailure{{
			OrderID: kernel.NewUUID(),
			Err:     fmt.Errorf("%w: %w", commands.ErrNoCourierAvailable, errs.ErrConcurrencyConflict),
		}},
		Exhausted: true,
	}, nil).Once()

	job := NewCourierAssignmentJob(dispatcher, DefaultSettings(), nil, discard)

	require.NoError(t, job.Run(t.Context()))
	dispatcher.AssertExpectations(t)
}

func TestExpiryWatchdogJob_Run(t *testing.T) {
	expirer := new(MockExpirer)
	id := kernel.NewUUID()
	expirer.On("Handle", mock.Anything, mock.Anything).Return(commands.ExpiryReport{
		Expired: []*errs.ExpiryViolationError{errs.NewExpiryViolationError(id.String(), time.Now())},
		Skipped: []kernel.UUID{kernel.NewUUID()},
	}, nil).Once()

	job := NewExpiryWatchdogJob(expirer, DefaultSettings(), nil, discard)

	require.NoError(t, job.Run(t.Context()))
	expirer.AssertExpectations(t)
}

func TestJobManager_InvalidScheduleStopsStartedJobs(t *testing.T) {
	settings := DefaultSettings()
	settings.ExpirySchedule = "every minute"

	jm := NewJobManager(new(MockResolver), new(MockDispatcher), new(MockExpirer), settings, nil, discard)

	err := jm.StartAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expiry_watchdog")
}

func TestJobManager_StartStop(t *testing.T) {
	settings := DefaultSettings()
	settings.GeocodeSchedule = "0 0 0 1 1 *"
	settings.AssignmentSchedule = "0 0 0 1 1 *"
	settings.ExpirySchedule = "0 0 0 1 1 *"

	jm := NewJobManager(new(MockResolver), new(MockDispatcher), new(MockExpirer), settings, nil, discard)

	require.NoError(t, jm.StartAll())
	jm.StopAll()
}
