// Package kafka publica las transferencias de reservas para que otros módulos
// (órdenes, notificaciones al cliente) reaccionen a ambas órdenes afectadas.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
)

var _ inventory.TransferNotifier = (*TransferNotifier)(nil)

// MessageWriter lo que se usa de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TransferNotifier publica un mensaje JSON por transferencia, con key = empresa para
// conservar el orden por tenant dentro de la partición.
type TransferNotifier struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewWriter crea el *kafka.Writer del tópico de transferencias.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewTransferNotifier construye el notificador sobre un writer.
func NewTransferNotifier(writer MessageWriter) *TransferNotifier {
	return &TransferNotifier{writer: writer, timeout: 5 * time.Second}
}

// NotifyTransfer serializa el evento y lo publica. El contexto de traza viaja en los headers.
func (n *TransferNotifier) NotifyTransfer(ctx context.Context, event inventory.TransferEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transfer event: %w", err)
	}

	carrier := headerCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, &carrier)

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:     []byte(event.CompanyID),
		Value:   payload,
		Headers: carrier.headers,
		Time:    event.TransferredAt,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish transfer event: %w", err)
	}
	return nil
}

// Close cierra el writer.
func (n *TransferNotifier) Close() error {
	return n.writer.Close()
}

// headerCarrier adapta headers de Kafka a propagation.TextMapCarrier.
type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range c.headers {
		if h.Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}
