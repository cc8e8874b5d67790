package repository

import (
	"context"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReservationSource línea con reservas en una orden activa, candidata a "prestar" stock.
type ReservationSource struct {
	DemandLineID string
	OrderID      string
	OrderNumber  string
	OrderStatus  string
	PartID       string
	LineQuantity decimal.Decimal
	Claimed      decimal.Decimal
}

// ReservationRepository define el puerto del ledger de reservas por línea de demanda.
type ReservationRepository interface {
	Create(ctx context.Context, claim *entity.ReservationClaim) error
	// ListByLine devuelve las reservas de la línea en orden FIFO (created_at, id).
	ListByLine(ctx context.Context, companyID, lineID string) ([]*entity.ReservationClaim, error)
	UpdateQuantity(ctx context.Context, companyID, claimID string, quantity decimal.Decimal) error
	Delete(ctx context.Context, companyID, claimID string) error
	// DeleteByLine borra todas las reservas de la línea y devuelve cuántas eliminó.
	DeleteByLine(ctx context.Context, companyID, lineID string) (int, error)
	SumByLine(ctx context.Context, companyID, lineID string) (decimal.Decimal, error)
	// SumActiveByPart suma las reservas de líneas cuyo pedido está activo.
	SumActiveByPart(ctx context.Context, companyID, partID string) (decimal.Decimal, error)
	SumActiveByParts(ctx context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error)
	// ListActiveSources lista líneas con reservas > 0 en órdenes activas; excludeOrderID vacío = sin exclusión.
	ListActiveSources(ctx context.Context, companyID, partID, excludeOrderID string) ([]ReservationSource, error)
}
