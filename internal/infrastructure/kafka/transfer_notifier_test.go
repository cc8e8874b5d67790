package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
)

// MockWriter simula el *kafka.Writer
type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func sampleEvent() inventory.TransferEvent {
	return inventory.TransferEvent{
		CompanyID:     "company-1",
		FromOrderID:   "order-a",
		ToOrderID:     "order-b",
		FromLineID:    "line-a",
		ToLineID:      "line-b",
		PartID:        "part-1",
		Quantity:      decimal.NewFromInt(3),
		TransferredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestTransferNotifier_PublishesKeyedJSON(t *testing.T) {
	w := new(MockWriter)
	var sent []kafka.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message) }).
		Return(nil)

	n := NewTransferNotifier(w)
	require.NoError(t, n.NotifyTransfer(context.Background(), sampleEvent()))

	require.Len(t, sent, 1)
	assert.Equal(t, "company-1", string(sent[0].Key), "la key es la empresa")

	var body map[string]any
	require.NoError(t, json.Unmarshal(sent[0].Value, &body))
	assert.Equal(t, "company-1", body["tenant_id"])
	assert.Equal(t, "order-a", body["from_order_id"])
	assert.Equal(t, "order-b", body["to_order_id"])
	assert.Equal(t, "part-1", body["part_id"])
	assert.Equal(t, "3", body["quantity"])
	w.AssertExpectations(t)
}

func TestTransferNotifier_WrapsWriterError(t *testing.T) {
	w := new(MockWriter)
	brokerErr := errors.New("broker caído")
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(brokerErr)

	err := NewTransferNotifier(w).NotifyTransfer(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, brokerErr)
}

func TestHeaderCarrier(t *testing.T) {
	c := headerCarrier{}
	c.Set("traceparent", "00-abc-01")
	c.Set("traceparent", "00-def-01")
	c.Set("baggage", "k=v")

	assert.Equal(t, "00-def-01", c.Get("traceparent"), "Set reemplaza el valor existente")
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "baggage"}, c.Keys())
}
