package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueingOrder places an online order with a pin and marks it paid.
func (e *env) queueingOrder(t *testing.T) kernel.UUID {
	t.Helper()
	res := e.mustCheckout(t, checkout{customerID: kernel.NewUUID(), method: order.Online, pin: pinNearStore(t)})
	_, err := e.move(t, res.OrderID, order.Queueing)
	require.NoError(t, err)
	return res.OrderID
}

func TestAssignCourierCommandHandler_ExplicitBusyCourier(t *testing.T) {
	e := newEnv(t, commands.DefaultRiskSettings())
	busyID := e.store.seedCourier(t, "budi")
	first := e.queueingOrder(t)
	second := e.queueingOrder(t)

	_, err := e.assignTo(t, first, &busyID)
	require.NoError(t, err)

	_, err = e.assignTo(t, second, &busyID)

	require.ErrorIs(t, err, commands.ErrNoCourierAvailable)
	require.ErrorIs(t, err, errs.ErrConcurrencyConflict)
	assert.Equal(t, errs.KindConcurrencyConflict, errs.KindOf(err))
	assert.Nil(t, e.store.activeAssignment(second))
}

func TestAssignCourierCommandHandler_AllCouriersLocked(t *testing.T) {
	e := newEnv(t, commands.DefaultRiskSettings())
	lockedID := e.store.seedCourier(t, "budi")
	e.store.skipLocked[lockedID.String()] = true
	id := e.queueingOrder(t)

	_, err := e.assignTo(t, id, nil)

	require.ErrorIs(t, err, commands.ErrNoCourierAvailable)
	assert.Equal(t, courier.Available, e.store.courier(t, lockedID).Availability())
}

func TestAssignCourierCommandHandler_Reassign(t *testing.T) {
	e := newEnv(t, commands.DefaultRiskSettings())
	firstID := e.store.seedCourier(t, "budi")
	secondID := e.store.seedCourier(t, "sari")
	id := e.queueingOrder(t)

	res, err := e.assignTo(t, id, &firstID)
	require.NoError(t, err)
	assert.False(t, res.Unchanged)

	// auto mode keeps the current courier
	res, err = e.assignTo(t, id, nil)
	require.NoError(t, err)
	assert.True(t, res.Unchanged)
	assert.Equal(t, firstID, res.CourierID)

	res, err = e.assignTo(t, id, &secondID)
	require.NoError(t, err)
	require.NotNil(t, res.ReleasedCourierID)
	assert.Equal(t, firstID, *res.ReleasedCourierID)
	assert.Equal(t, courier.Available, e.store.courier(t, firstID).Availability())
	assert.Equal(t, courier.Busy, e.store.courier(t, secondID).Availability())

	active := e.store.activeAssignment(id)
	require.NotNil(t, active)
	assert.Equal(t, secondID, active.courierID)
}

func TestAssignCourierCommandHandler_OrderNotAssignable(t *testing.T) {
	e := newEnv(t, commands.DefaultRiskSettings())
	e.store.seedCourier(t, "budi")
	res := e.mustCheckout(t, checkout{customerID: kernel.NewUUID(), pin: pinNearStore(t)})

	_, err := e.assignTo(t, res.OrderID, nil)

	require.ErrorIs(t, err, errs.ErrStateTransition)
	require.NotErrorIs(t, err, commands.ErrNoCourierAvailable)
}

func TestAssignCourierCommandHandler_UnknownCourier(t *testing.T) {
	e := newEnv(t, commands.DefaultRiskSettings())
	id := e.queueingOrder(t)
	missing := kernel.NewUUID()

	_, err := e.assignTo(t, id, &missing)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestDispatchPendingOrdersCommandHandler(t *testing.T) {
	e := newEnv(t, commands.DefaultRiskSettings())
	courierID := e.store.seedCourier(t, "budi")
	first := e.queueingOrder(t)
	e.clock.Advance(1)
	e.queueingOrder(t)

	cmd, err := commands.NewDispatchPendingOrdersCommand(10)
	require.NoError(t, err)
	report, err := e.dispatch.Handle(t.Context(), cmd)
	require.NoError(t, err)

	require.Len(t, report.Assigned, 1)
	assert.Equal(t, first, report.Assigned[0].OrderID)
	assert.Equal(t, courierID, report.Assigned[0].CourierID)
	assert.True(t, report.Exhausted)
	assert.Empty(t, report.Failures)
}

func TestNewDispatchPendingOrdersCommand_InvalidLimit(t *testing.T) {
	_, err := commands.NewDispatchPendingOrdersCommand(0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	var zero commands.DispatchPendingOrdersCommand
	require.ErrorIs(t, zero.Validate(), commands.ErrDispatchPendingOrdersCommandIsNotConstructed)
}
