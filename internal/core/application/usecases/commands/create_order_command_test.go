package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()
	customerID := kernel.NewUUID()
	pin := point(t, -7.98, 112.63)

	cmd, err := commands.NewCreateOrderCommand(id, customerID, order.COD, latteItems(t), "  Jl. Ijen 12  ", &pin, 50)
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, id, cmd.OrderID())
	assert.Equal(t, customerID, cmd.CustomerID())
	assert.Equal(t, order.COD, cmd.PaymentMethod())
	assert.Equal(t, "Jl. Ijen 12", cmd.Address())
	assert.Len(t, cmd.Items(), 1)
	require.NotNil(t, cmd.Pin())
	assert.InDelta(t, -7.98, cmd.Pin().Lat(), 1e-9)
	assert.Equal(t, int64(50), cmd.RedeemPoints())
}

func TestNewCreateOrderCommand_InvalidOrderID(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.UUID{}, kernel.NewUUID(), order.Online, latteItems(t), "Jl. Ijen 12", nil, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewCreateOrderCommand_CollectsEveryProblem(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), "card", nil, " ", nil, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrItemsAreRequired)
	assert.ErrorIs(t, err, commands.ErrAddressIsRequired)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestCreateOrderCommand_NotConstructed(t *testing.T) {
	var cmd commands.CreateOrderCommand
	require.ErrorIs(t, cmd.Validate(), commands.ErrCreateOrderCommandIsNotConstructed)

	e := newEnv(t, commands.DefaultRiskSettings())
	_, err := e.createOrder.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
	assert.Zero(t, e.store.commits)
}
