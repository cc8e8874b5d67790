package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationClaim reclama una cantidad de stock para una línea de demanda.
// Una línea puede tener varias reservas; el total reservado es la suma.
// Se eliminan físicamente al liberar, transferir o borrar la línea.
type ReservationClaim struct {
	ID           string
	CompanyID    string
	DemandLineID string
	Quantity     decimal.Decimal // siempre > 0
	CreatedAt    time.Time
}
