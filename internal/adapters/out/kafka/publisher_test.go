package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	adapter "fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageWriter struct {
	mock.Mock
}

func (m *MockMessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageWriter) Close() error {
	return m.Called().Error(0)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func statusChanged() order.StatusChanged {
	return order.StatusChanged{
		OrderID:    kernel.NewUUID(),
		CustomerID: kernel.NewUUID(),
		From:       order.WaitingConfirmation,
		To:         order.Queueing,
		Actor:      "admin:rina",
		OccurredAt: time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC),
	}
}

func TestStatusPublisher_Publish_KeysByOrder(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := adapter.NewStatusPublisher(writer, "fulfillment", discard())
	event := statusChanged()

	var written []kafka.Message
	writer.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]kafka.Message) }).
		Return(nil).Once()

	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Len(t, written, 1)
	assert.Equal(t, event.OrderID.String(), string(written[0].Key))

	var envelope adapter.Envelope
	require.NoError(t, json.Unmarshal(written[0].Value, &envelope))
	assert.Equal(t, adapter.EventOrderStatusChanged, envelope.EventType)
	assert.Equal(t, 1, envelope.EventVersion)
	assert.Equal(t, "fulfillment", envelope.Producer)
	assert.Equal(t, event.OrderID.String(), envelope.CorrelationID)

	var payload adapter.StatusChangedPayload
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "waiting_confirmation", payload.From)
	assert.Equal(t, "queueing", payload.To)
	assert.Equal(t, "admin:rina", payload.Actor)
	writer.AssertExpectations(t)
}

func TestStatusPublisher_Publish_WriteError(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := adapter.NewStatusPublisher(writer, "fulfillment", discard())
	boom := errors.New("leader not available")
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(boom).Once()

	err := publisher.Publish(context.Background(), statusChanged(), statusChanged())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "write 2 status events")
}

func TestStatusPublisher_Publish_NoEvents(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := adapter.NewStatusPublisher(writer, "fulfillment", discard())

	require.NoError(t, publisher.Publish(context.Background()))
	writer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}
