package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una orden de servicio.
const (
	OrderStatusDraft      = "draft"
	OrderStatusInProgress = "in-progress"
	OrderStatusClosed     = "closed"
	OrderStatusCancelled  = "cancelled"
)

// IsActiveOrderStatus indica si una orden con ese estado está activa (ni cerrada ni cancelada).
// Solo las órdenes activas cuentan para demanda/reservas y admiten operaciones de reserva.
func IsActiveOrderStatus(status string) bool {
	return status != OrderStatusClosed && status != OrderStatusCancelled
}

// Order cabecera de la orden; aquí solo interesan número y estado.
type Order struct {
	ID        string
	CompanyID string
	Number    string
	Status    string
}

// DemandLine línea de una orden que solicita una cantidad de un repuesto.
// Las reservas se atan a la línea, no a la orden.
type DemandLine struct {
	ID          string
	CompanyID   string
	OrderID     string
	OrderNumber string
	OrderStatus string
	PartID      string
	Quantity    decimal.Decimal
	CreatedAt   time.Time
}

// IsEditable indica si la orden padre admite cambios de reserva.
func (l *DemandLine) IsEditable() bool {
	return IsActiveOrderStatus(l.OrderStatus)
}
