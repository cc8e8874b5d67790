package procurement

import "github.com/shopspring/decimal"

// Estados de un repuesto en la tabla de compras, de mayor a menor urgencia.
const (
	StatusSubzeroQuantity    = "SUBZERO_QUANTITY"
	StatusNeedSupplyForOrder = "NEED_SUPPLY_FOR_ORDER"
	StatusNeedSupplyForStock = "NEED_SUPPLY_FOR_STOCK"
	StatusOrdered            = "ORDERED"
)

var statusPriority = map[string]int{
	StatusSubzeroQuantity:    0,
	StatusNeedSupplyForOrder: 1,
	StatusNeedSupplyForStock: 2,
	StatusOrdered:            3,
}

// Priority devuelve el orden de un estado (0 = más urgente). Estados desconocidos van al final.
func Priority(status string) int {
	if p, ok := statusPriority[status]; ok {
		return p
	}
	return len(statusPriority)
}

// Threshold umbral vigente y controlado del repuesto.
type Threshold struct {
	OrderFrom decimal.Decimal
	OrderUpTo decimal.Decimal
}

// Input señales de un repuesto.
type Input struct {
	Stock         decimal.Decimal
	Demand        decimal.Decimal // Σ cantidades en líneas de órdenes activas
	Reserved      decimal.Decimal // Σ reservas en órdenes activas
	PendingSupply decimal.Decimal
	Threshold     *Threshold // nil = sin control
}

// Result necesidades calculadas y estado del repuesto.
type Result struct {
	InOrdersNotReserved       decimal.Decimal // solo informativo
	AvailableToUse            decimal.Decimal
	AvailableForReplenishment decimal.Decimal // cero si no hay umbral
	NeedForOrders             decimal.Decimal
	NeedForStock              decimal.Decimal
	NeedToOrder               decimal.Decimal
	Status                    string
	// Included es false cuando no hay nada pendiente ni nada que pedir.
	Included bool
}

// Calculate implementa el cálculo de necesidades de compra (servicio de dominio puro):
//
//	availableToUse = stock + pendiente
//	needForOrders  = max(0, demanda - availableToUse)
//	needForStock   = max(0, orderUpTo - (stock - demanda + pendiente)) si está bajo ambos umbrales
//	needToOrder    = max(needForOrders, needForStock)
func Calculate(in Input) Result {
	var r Result
	r.InOrdersNotReserved = nonNegative(in.Demand.Sub(in.Reserved))
	r.AvailableToUse = in.Stock.Add(in.PendingSupply)
	r.NeedForOrders = nonNegative(in.Demand.Sub(r.AvailableToUse))

	r.NeedForStock = decimal.Zero
	if in.Threshold != nil && in.Threshold.OrderFrom.IsPositive() {
		r.AvailableForReplenishment = in.Stock.Sub(in.Demand).Add(in.PendingSupply)
		if r.AvailableForReplenishment.LessThanOrEqual(in.Threshold.OrderFrom) &&
			r.AvailableForReplenishment.LessThanOrEqual(in.Threshold.OrderUpTo) {
			r.NeedForStock = nonNegative(in.Threshold.OrderUpTo.Sub(r.AvailableForReplenishment))
		}
	}

	r.NeedToOrder = decimal.Max(r.NeedForOrders, r.NeedForStock)

	switch {
	case in.Stock.IsNegative():
		r.Status = StatusSubzeroQuantity
	case r.NeedToOrder.IsZero():
		r.Status = StatusOrdered
	case r.NeedForOrders.IsPositive():
		r.Status = StatusNeedSupplyForOrder
	default:
		r.Status = StatusNeedSupplyForStock
	}

	r.Included = in.PendingSupply.IsPositive() || r.NeedToOrder.IsPositive()
	return r
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
