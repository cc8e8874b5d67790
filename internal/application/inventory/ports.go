package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// TxFunc recibe repositorios atados a la transacción en curso.
type TxFunc func(
	stockRepo repository.StockEventRepository,
	reservationRepo repository.ReservationRepository,
	lineRepo repository.DemandLineRepository,
) error

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de reservas.
type TxRunner interface {
	Run(ctx context.Context, fn TxFunc) error
	// RunLocked es Run más un bloqueo exclusivo por lockKey que dura hasta el Commit/Rollback.
	// Reserve, Release y Transfer toman el mismo lockKey por repuesto: leen lo reservado y
	// escriben en la misma tx sin competir entre sí.
	RunLocked(ctx context.Context, lockKey string, fn TxFunc) error
}

// TransferEvent se publica tras una transferencia confirmada para notificar a ambas órdenes.
type TransferEvent struct {
	CompanyID     string          `json:"tenant_id"`
	FromOrderID   string          `json:"from_order_id"`
	ToOrderID     string          `json:"to_order_id"`
	FromLineID    string          `json:"from_line_id"`
	ToLineID      string          `json:"to_line_id"`
	PartID        string          `json:"part_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	TransferredAt time.Time       `json:"transferred_at"`
}

// TransferNotifier publica transferencias hacia otros componentes (best effort).
type TransferNotifier interface {
	NotifyTransfer(ctx context.Context, event TransferEvent) error
}

// NoopNotifier descarta las notificaciones (broker no configurado).
type NoopNotifier struct{}

// NotifyTransfer no hace nada.
func (NoopNotifier) NotifyTransfer(context.Context, TransferEvent) error { return nil }
