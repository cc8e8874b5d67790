package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEventRequest body para POST /api/inventory/stock/events.
type StockEventRequest struct {
	PartID      string          `json:"part_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	SourceType  string          `json:"source_type"`
	SourceID    string          `json:"source_id,omitempty"`
	Description string          `json:"description,omitempty"`
}

// StockEventResponse evento del libro de stock.
type StockEventResponse struct {
	ID          string          `json:"id"`
	PartID      string          `json:"part_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	SourceType  string          `json:"source_type"`
	SourceID    string          `json:"source_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StockResponse stock actual de un repuesto (suma de eventos).
type StockResponse struct {
	PartID   string          `json:"part_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// StockEventListResponse historial paginado de eventos de stock.
type StockEventListResponse struct {
	Items []StockEventResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// SupplyRequest body para POST /api/inventory/supply y /supply/cancel.
type SupplyRequest struct {
	PartID     string          `json:"part_id"`
	SupplierID string          `json:"supplier_id"`
	Quantity   decimal.Decimal `json:"quantity"` // siempre positiva; cancel la niega
	Source     string          `json:"source,omitempty"`
	SourceID   string          `json:"source_id,omitempty"`
}

// SupplyEventResponse evento del libro de abastecimiento.
type SupplyEventResponse struct {
	ID         string          `json:"id"`
	PartID     string          `json:"part_id"`
	SupplierID string          `json:"supplier_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Source     string          `json:"source"`
	SourceID   string          `json:"source_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SupplierPendingDTO saldo pendiente de un proveedor.
type SupplierPendingDTO struct {
	SupplierID  string          `json:"supplier_id"`
	Pending     decimal.Decimal `json:"pending"`
	LastEventAt time.Time       `json:"last_event_at"`
}

// PendingSupplyResponse abastecimiento pendiente de un repuesto.
type PendingSupplyResponse struct {
	PartID     string               `json:"part_id"`
	Total      decimal.Decimal      `json:"total"`
	BySupplier []SupplierPendingDTO `json:"by_supplier"`
}

// ReserveRequest body para POST /api/inventory/reservations.
type ReserveRequest struct {
	DemandLineID string          `json:"demand_line_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// ReleaseRequest body para POST /api/inventory/reservations/release.
// Quantity nula libera todas las reservas de la línea.
type ReleaseRequest struct {
	DemandLineID string           `json:"demand_line_id"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
}

// TransferRequest body para POST /api/inventory/reservations/transfer.
type TransferRequest struct {
	FromLineID string          `json:"from_line_id"`
	ToLineID   string          `json:"to_line_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ReservationClaimResponse reserva creada.
type ReservationClaimResponse struct {
	ID           string          `json:"id"`
	DemandLineID string          `json:"demand_line_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ReleaseResponse resultado de una liberación.
type ReleaseResponse struct {
	DemandLineID  string          `json:"demand_line_id"`
	ClaimsRemoved int             `json:"claims_removed"`
	Released      decimal.Decimal `json:"released"`
}

// TransferResponse órdenes afectadas y reserva creada en destino.
type TransferResponse struct {
	FromOrderID string                   `json:"from_order_id"`
	ToOrderID   string                   `json:"to_order_id"`
	Claim       ReservationClaimResponse `json:"claim"`
}

// ReservableResponse stock − reservas en órdenes activas.
type ReservableResponse struct {
	PartID     string          `json:"part_id"`
	Reservable decimal.Decimal `json:"reservable"`
}

// ReservationSourceDTO línea de otra orden desde la que se puede transferir stock reservado.
type ReservationSourceDTO struct {
	DemandLineID string          `json:"demand_line_id"`
	OrderID      string          `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	OrderStatus  string          `json:"order_status"`
	PartID       string          `json:"part_id"`
	LineQuantity decimal.Decimal `json:"line_quantity"`
	Claimed      decimal.Decimal `json:"claimed"`
}

// LineQuantityRequest body de los avisos de alta y cambio de cantidad de una línea.
type LineQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// LinesDeletedRequest body del aviso de borrado de líneas (una línea o un subárbol).
type LinesDeletedRequest struct {
	LineIDs []string `json:"line_ids"`
}

// LineReservationResponse resultado de la reserva automática de una línea.
// Reserved=false con Shortfall > 0 indica que faltó stock; la línea sigue siendo válida.
type LineReservationResponse struct {
	DemandLineID string                    `json:"demand_line_id"`
	Reserved     bool                      `json:"reserved"`
	Shortfall    decimal.Decimal           `json:"shortfall"`
	Claim        *ReservationClaimResponse `json:"claim,omitempty"`
}

// LinesDeletedResponse cantidad de reservas eliminadas.
type LinesDeletedResponse struct {
	ClaimsRemoved int `json:"claims_removed"`
}

// ProcurementItemDTO fila de la tabla de compras.
type ProcurementItemDTO struct {
	PartID                    string          `json:"part_id"`
	PartCode                  string          `json:"part_code"`
	PartName                  string          `json:"part_name"`
	Stock                     decimal.Decimal `json:"stock"`
	Demand                    decimal.Decimal `json:"demand"`   // líneas en órdenes activas
	Reserved                  decimal.Decimal `json:"reserved"` // reservas en órdenes activas
	PendingSupply             decimal.Decimal `json:"pending_supply"`
	OrderFromQuantity         decimal.Decimal `json:"order_from_quantity"`
	OrderUpToQuantity         decimal.Decimal `json:"order_up_to_quantity"`
	InOrdersNotReserved       decimal.Decimal `json:"in_orders_not_reserved"`
	AvailableToUse            decimal.Decimal `json:"available_to_use"`
	AvailableForReplenishment decimal.Decimal `json:"available_for_replenishment"`
	NeedForOrders             decimal.Decimal `json:"need_for_orders"`
	NeedForStock              decimal.Decimal `json:"need_for_stock"`
	NeedToOrder               decimal.Decimal `json:"need_to_order"`
	Status                    string          `json:"status"`
	SupplyDelayed             bool            `json:"supply_delayed"`
}

// ProcurementTableResponse página de la tabla de compras.
type ProcurementTableResponse struct {
	Items []ProcurementItemDTO `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ThresholdRequest body para POST /api/inventory/procurement/thresholds.
// Ambos valores en 0 dejan el repuesto sin control de reposición.
type ThresholdRequest struct {
	PartID            string          `json:"part_id"`
	OrderFromQuantity decimal.Decimal `json:"order_from_quantity"`
	OrderUpToQuantity decimal.Decimal `json:"order_up_to_quantity"`
}

// ThresholdResponse umbral vigente tras el alta.
type ThresholdResponse struct {
	ID                string          `json:"id"`
	PartID            string          `json:"part_id"`
	OrderFromQuantity decimal.Decimal `json:"order_from_quantity"`
	OrderUpToQuantity decimal.Decimal `json:"order_up_to_quantity"`
	Controlled        bool            `json:"controlled"`
	CreatedAt         time.Time       `json:"created_at"`
}
