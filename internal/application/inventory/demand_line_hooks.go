package inventory

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain"
)

// DemandLineHooks reacciona a cambios en las líneas de demanda de las órdenes.
// Las reservas son "blandas": si no hay stock la línea se guarda igual y el faltante
// aparece en la tabla de compras.
type DemandLineHooks struct {
	engine *ReservationEngine
	log    zerolog.Logger
}

func NewDemandLineHooks(engine *ReservationEngine, log zerolog.Logger) *DemandLineHooks {
	return &DemandLineHooks{engine: engine, log: log}
}

// OnLineCreated intenta reservar la cantidad de la línea recién creada.
func (h *DemandLineHooks) OnLineCreated(ctx context.Context, companyID, lineID string, qty decimal.Decimal) (ReserveOutcome, error) {
	if !qty.IsPositive() {
		return ReserveOutcome{Shortfall: decimal.Zero}, nil
	}
	return h.engine.TryReserve(ctx, companyID, lineID, qty)
}

// OnQuantityChanged libera todo lo reservado y vuelve a reservar la nueva cantidad.
// Si la línea no existe o su orden ya no es editable falla sin tocar las reservas.
func (h *DemandLineHooks) OnQuantityChanged(ctx context.Context, companyID, lineID string, newQty decimal.Decimal) (ReserveOutcome, error) {
	line, err := h.engine.getLine(ctx, h.engine.lineRepo, companyID, lineID)
	if err != nil {
		return ReserveOutcome{}, err
	}
	if !line.IsEditable() {
		return ReserveOutcome{}, domain.ErrOrderNotEditable
	}
	released, err := h.engine.ReleaseAll(ctx, companyID, lineID)
	if err != nil {
		return ReserveOutcome{}, err
	}
	h.log.Debug().
		Str("company_id", companyID).
		Str("demand_line_id", lineID).
		Str("released", released.Released.String()).
		Str("new_quantity", newQty.String()).
		Msg("cantidad de línea modificada")
	return h.OnLineCreated(ctx, companyID, lineID, newQty)
}

// OnLinesDeleted elimina las reservas de las líneas borradas (línea o subárbol completo).
func (h *DemandLineHooks) OnLinesDeleted(ctx context.Context, companyID string, lineIDs []string) (int, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	return h.engine.ReleaseForLines(ctx, companyID, lineIDs)
}
