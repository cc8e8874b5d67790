package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AvailabilityThreshold historial de umbrales de reposición por repuesto (solo inserción).
// El registro más reciente es el vigente. Si ambos campos son 0 el repuesto no está controlado.
type AvailabilityThreshold struct {
	ID                string
	CompanyID         string
	PartID            string
	OrderFromQuantity decimal.Decimal // punto de pedido
	OrderUpToQuantity decimal.Decimal // stock objetivo
	CreatedAt         time.Time
}

// IsControlled es false cuando el registro equivale a "sin control".
func (t *AvailabilityThreshold) IsControlled() bool {
	return !t.OrderFromQuantity.IsZero() || !t.OrderUpToQuantity.IsZero()
}
