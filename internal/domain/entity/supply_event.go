package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Orígenes de un evento de suministro.
const (
	SupplySourceManual       = "manual"
	SupplySourceGoodsReceipt = "goods-receipt"
)

// SupplyEvent registra suministro prometido por un proveedor para un repuesto.
// Positivo = entrada esperada; negativo = cancelación. El ledger crudo no se recorta,
// solo la vista de lectura (max(0, Σ)).
type SupplyEvent struct {
	ID         string
	CompanyID  string
	PartID     string
	SupplierID string
	Quantity   decimal.Decimal
	Source     string // manual, goods-receipt
	SourceID   string
	CreatedAt  time.Time
}

// IsValidSupplySource indica si el origen es uno de los tipos conocidos.
func IsValidSupplySource(source string) bool {
	return source == SupplySourceManual || source == SupplySourceGoodsReceipt
}

// SupplyBalance saldo pendiente de un par (repuesto, proveedor).
type SupplyBalance struct {
	PartID      string
	SupplierID  string
	Balance     decimal.Decimal // Σ eventos, sin recortar
	LastEventAt time.Time
}

// Pending devuelve el saldo recortado a cero.
func (b SupplyBalance) Pending() decimal.Decimal {
	if b.Balance.IsPositive() {
		return b.Balance
	}
	return decimal.Zero
}
