package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.StockEventRepository = (*StockEventRepo)(nil)

// StockEventRepo ledger de stock sobre PostgreSQL (usable con pool o tx).
type StockEventRepo struct {
	q Querier
}

// NewStockEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockEventRepository(q Querier) *StockEventRepo {
	return &StockEventRepo{q: q}
}

// Append inserta un evento inmutable.
func (r *StockEventRepo) Append(ctx context.Context, e *entity.StockEvent) error {
	query := `
		INSERT INTO stock_events (id, company_id, part_id, quantity, source_type, source_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.CompanyID, e.PartID, e.Quantity, e.SourceType, e.SourceID, e.Description, e.CreatedAt,
	)
	if err != nil {
		return mapWriteError("append stock event", err)
	}
	return nil
}

// SumByPart Σ cantidades del repuesto (0 si no hay eventos).
func (r *StockEventRepo) SumByPart(ctx context.Context, companyID, partID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_events WHERE company_id = $1 AND part_id = $2`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, partID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum stock: %w", err)
	}
	return sum, nil
}

// SumByParts agrupa por repuesto en una sola consulta.
func (r *StockEventRepo) SumByParts(ctx context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(partIDs))
	if len(partIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT part_id, SUM(quantity)
		FROM stock_events
		WHERE company_id = $1 AND part_id = ANY($2)
		GROUP BY part_id`
	rows, err := r.q.Query(ctx, query, companyID, partIDs)
	if err != nil {
		return nil, fmt.Errorf("sum stock by parts: %w", err)
	}
	defer rows.Close()
	if err := scanSums(rows, out); err != nil {
		return nil, fmt.Errorf("sum stock by parts: %w", err)
	}
	return out, nil
}

// ListByPart historial del repuesto, más reciente primero.
func (r *StockEventRepo) ListByPart(ctx context.Context, companyID, partID string, limit, offset int) ([]*entity.StockEvent, error) {
	query := `
		SELECT id, company_id, part_id, quantity, source_type, COALESCE(source_id, ''), COALESCE(description, ''), created_at
		FROM stock_events
		WHERE company_id = $1 AND part_id = $2
		ORDER BY created_at DESC, seq DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, partID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock events: %w", err)
	}
	defer rows.Close()

	list := []*entity.StockEvent{}
	for rows.Next() {
		var e entity.StockEvent
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.PartID, &e.Quantity, &e.SourceType, &e.SourceID, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock event: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
