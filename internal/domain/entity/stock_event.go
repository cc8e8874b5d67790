package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Orígenes de un evento de stock.
const (
	StockSourceManual         = "manual"
	StockSourceGoodsReceipt   = "goods-receipt"
	StockSourceOrder          = "order"
	StockSourceInventoryCount = "inventory-count"
)

// StockEvent es un evento inmutable del ledger de stock. El stock de un repuesto es la suma
// de sus eventos; nunca se guarda una cantidad "actual".
type StockEvent struct {
	ID          string
	CompanyID   string
	PartID      string
	Quantity    decimal.Decimal // con signo, nunca cero
	SourceType  string          // manual, goods-receipt, order, inventory-count
	SourceID    string          // orden, recepción, conteo, etc.
	Description string
	CreatedAt   time.Time
}

// IsValidStockSource indica si el origen es uno de los tipos conocidos.
func IsValidStockSource(source string) bool {
	switch source {
	case StockSourceManual, StockSourceGoodsReceipt, StockSourceOrder, StockSourceInventoryCount:
		return true
	}
	return false
}
