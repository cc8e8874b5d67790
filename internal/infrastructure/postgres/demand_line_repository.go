package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.DemandLineRepository = (*DemandLineRepo)(nil)

// DemandLineRepo lectura de líneas de orden (las tablas orders/demand_lines las escribe el módulo de órdenes).
type DemandLineRepo struct {
	q Querier
}

// NewDemandLineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDemandLineRepository(q Querier) *DemandLineRepo {
	return &DemandLineRepo{q: q}
}

// GetByID devuelve la línea con número y estado de la orden; nil si no existe.
func (r *DemandLineRepo) GetByID(ctx context.Context, companyID, lineID string) (*entity.DemandLine, error) {
	query := `
		SELECT l.id, l.company_id, l.order_id, o.number, o.status, l.part_id, l.quantity, l.created_at
		FROM demand_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE l.company_id = $1 AND l.id = $2`
	var l entity.DemandLine
	err := r.q.QueryRow(ctx, query, companyID, lineID).Scan(
		&l.ID, &l.CompanyID, &l.OrderID, &l.OrderNumber, &l.OrderStatus, &l.PartID, &l.Quantity, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get demand line: %w", err)
	}
	return &l, nil
}

// DemandActiveByParts Σ cantidades solicitadas en órdenes activas, por repuesto.
func (r *DemandLineRepo) DemandActiveByParts(ctx context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(partIDs))
	if len(partIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT l.part_id, SUM(l.quantity)
		FROM demand_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE l.company_id = $1 AND l.part_id = ANY($2) AND ` + activeOrderFilter + `
		GROUP BY l.part_id`
	rows, err := r.q.Query(ctx, query, companyID, partIDs)
	if err != nil {
		return nil, fmt.Errorf("active demand by parts: %w", err)
	}
	defer rows.Close()
	if err := scanSums(rows, out); err != nil {
		return nil, fmt.Errorf("active demand by parts: %w", err)
	}
	return out, nil
}

// ActivePartIDs repuestos con demanda en órdenes activas.
func (r *DemandLineRepo) ActivePartIDs(ctx context.Context, companyID string) ([]string, error) {
	query := `
		SELECT DISTINCT l.part_id
		FROM demand_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE l.company_id = $1 AND ` + activeOrderFilter + `
		ORDER BY l.part_id`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("active demand parts: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}
