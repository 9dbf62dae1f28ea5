package commands_test

import (
	"context"
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations for testing.
type MockCourierRepository struct {
	mock.Mock
}

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*courier.Courier)
	return c, args.Error(1)
}

func (m *MockCourierRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*courier.Courier)
	return c, args.Error(1)
}

func (m *MockCourierRepository) LockFirstAvailable(ctx context.Context) (*courier.Courier, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(*courier.Courier)
	return c, args.Error(1)
}

type MockCourierUoW struct {
	mock.Mock
}

func (m *MockCourierUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCourierUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCourierUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCourierUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

func (m *MockCourierUoW) AssignmentRepository() ports.AssignmentRepository {
	args := m.Called()
	return args.Get(0).(ports.AssignmentRepository)
}

type MockCourierUoWFactory struct {
	mock.Mock
}

func (m *MockCourierUoWFactory) Create() commands.CourierUoW {
	args := m.Called()
	return args.Get(0).(commands.CourierUoW)
}

func TestNewCreateCourierCommand(t *testing.T) {
	cmd, err := commands.NewCreateCourierCommand(" Sari ", "+62812000222", courier.Bicycle)
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, "Sari", cmd.Name())
	assert.Equal(t, courier.Bicycle, cmd.VehicleType())
	require.NoError(t, cmd.CourierID().Validate())

	_, err = commands.NewCreateCourierCommand("", "", "scooter")
	require.ErrorIs(t, err, commands.ErrNameIsRequired)
	require.ErrorIs(t, err, commands.ErrPhoneIsRequired)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestCreateCourierCommandHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := t.Context()
	cmd, err := commands.NewCreateCourierCommand("Sari", "+62812000222", courier.Bicycle)
	require.NoError(t, err)

	mockRepo := new(MockCourierRepository)
	mockUoW := new(MockCourierUoW)
	mockFactory := new(MockCourierUoWFactory)

	mock.InOrder(
		mockUoW.On("Begin", ctx).Return(nil).Once(),
		mockUoW.On("CourierRepository").Return(mockRepo).Once(),
		mockRepo.On("Add", ctx, mock.MatchedBy(func(c *courier.Courier) bool {
			return c.ID().IsEqual(cmd.CourierID()) && c.Availability() == courier.Available
		})).Return(nil).Once(),
		mockUoW.On("Commit", ctx).Return(nil).Once(),
		mockUoW.On("Rollback", ctx).Return(nil).Once(),
	)
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewCreateCourierCommandHandler(mockFactory)

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestCreateCourierCommandHandler_Handle_InvalidCommand(t *testing.T) {
	var invalidCmd commands.CreateCourierCommand

	mockFactory := new(MockCourierUoWFactory)
	handler := commands.NewCreateCourierCommandHandler(mockFactory)

	err := handler.Handle(t.Context(), invalidCmd)

	require.ErrorIs(t, err, commands.ErrCreateCourierCommandIsNotConstructed)
	mockFactory.AssertExpectations(t)
}

func TestCreateCourierCommandHandler_Handle_BeginTransactionError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateCourierCommand("Sari", "+62812000222", courier.Bicycle)
	require.NoError(t, err)

	mockUoW := new(MockCourierUoW)
	mockFactory := new(MockCourierUoWFactory)
	beginErr := errors.New("begin transaction failed")

	mockUoW.On("Begin", ctx).Return(beginErr).Once()
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewCreateCourierCommandHandler(mockFactory)

	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, beginErr)
	mockUoW.AssertExpectations(t)
	mockUoW.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestCreateCourierCommandHandler_Handle_RepositoryAddError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateCourierCommand("Sari", "+62812000222", courier.Bicycle)
	require.NoError(t, err)

	mockRepo := new(MockCourierRepository)
	mockUoW := new(MockCourierUoW)
	mockFactory := new(MockCourierUoWFactory)
	addErr := errors.New("repository add failed")

	mock.InOrder(
		mockUoW.On("Begin", ctx).Return(nil).Once(),
		mockUoW.On("CourierRepository").Return(mockRepo).Once(),
		mockRepo.On("Add", ctx, mock.AnythingOfType("*courier.Courier")).Return(addErr).Once(),
		mockUoW.On("Rollback", ctx).Return(nil).Once(),
	)
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewCreateCourierCommandHandler(mockFactory)

	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, addErr)
	mockUoW.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
	mockUoW.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestSetCourierAvailabilityCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	c, err := courier.NewCourier(kernel.NewUUID(), "Budi", "+62811000111", courier.Motorbike)
	require.NoError(t, err)
	cmd, err := commands.NewSetCourierAvailabilityCommand(c.ID(), courier.Offline)
	require.NoError(t, err)

	mockRepo := new(MockCourierRepository)
	mockUoW := new(MockCourierUoW)
	mockFactory := new(MockCourierUoWFactory)

	mock.InOrder(
		mockUoW.On("Begin", ctx).Return(nil).Once(),
		mockUoW.On("CourierRepository").Return(mockRepo).Once(),
		mockRepo.On("GetForUpdate", ctx, c.ID()).Return(c, nil).Once(),
		mockUoW.On("CourierRepository").Return(mockRepo).Once(),
		mockRepo.On("Update", ctx, c).Return(nil).Once(),
		mockUoW.On("Commit", ctx).Return(nil).Once(),
		mockUoW.On("Rollback", ctx).Return(nil).Once(),
	)
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewSetCourierAvailabilityCommandHandler(mockFactory)

	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, courier.Offline, c.Availability())
	mockUoW.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestSetCourierAvailabilityCommandHandler_Handle_BusyCourier(t *testing.T) {
	ctx := t.Context()
	c, err := courier.NewCourier(kernel.NewUUID(), "Budi", "+62811000111", courier.Motorbike)
	require.NoError(t, err)
	_, err = c.TakeOrder(kernel.NewUUID(), kernel.NewUUID(), start)
	require.NoError(t, err)
	cmd, err := commands.NewSetCourierAvailabilityCommand(c.ID(), courier.Offline)
	require.NoError(t, err)

	mockRepo := new(MockCourierRepository)
	mockUoW := new(MockCourierUoW)
	mockFactory := new(MockCourierUoWFactory)

	mock.InOrder(
		mockUoW.On("Begin", ctx).Return(nil).Once(),
		mockUoW.On("CourierRepository").Return(mockRepo).Once(),
		mockRepo.On("GetForUpdate", ctx, c.ID()).Return(c, nil).Once(),
		mockUoW.On("Rollback", ctx).Return(nil).Once(),
	)
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewSetCourierAvailabilityCommandHandler(mockFactory)

	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrStateTransition)
	assert.Equal(t, courier.Busy, c.Availability())
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestSetCourierAvailabilityCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, err := commands.NewSetCourierAvailabilityCommand(id, courier.Available)
	require.NoError(t, err)

	mockRepo := new(MockCourierRepository)
	mockUoW := new(MockCourierUoW)
	mockFactory := new(MockCourierUoWFactory)

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("CourierRepository").Return(mockRepo).Once()
	mockRepo.On("GetForUpdate", ctx, id).Return(nil, errs.NewObjectNotFoundError("courier", id)).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockFactory.On("Create").Return(mockUoW).Once()

	err = commands.NewSetCourierAvailabilityCommandHandler(mockFactory).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	mockUoW.AssertExpectations(t)
}
