package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.SupplyEventRepository = (*SupplyEventRepo)(nil)

// SupplyEventRepo ledger de suministro sobre PostgreSQL.
type SupplyEventRepo struct {
	q Querier
}

// NewSupplyEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplyEventRepository(q Querier) *SupplyEventRepo {
	return &SupplyEventRepo{q: q}
}

// Append inserta un evento (positivo = suministro esperado, negativo = cancelación).
func (r *SupplyEventRepo) Append(ctx context.Context, e *entity.SupplyEvent) error {
	query := `
		INSERT INTO supply_events (id, company_id, part_id, supplier_id, quantity, source, source_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.CompanyID, e.PartID, e.SupplierID, e.Quantity, e.Source, e.SourceID, e.CreatedAt,
	)
	if err != nil {
		return mapWriteError("append supply event", err)
	}
	return nil
}

// BalancesByParts saldo sin recortar y último evento por (repuesto, proveedor).
func (r *SupplyEventRepo) BalancesByParts(ctx context.Context, companyID string, partIDs []string) ([]entity.SupplyBalance, error) {
	out := []entity.SupplyBalance{}
	if len(partIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT part_id, supplier_id, SUM(quantity), MAX(created_at)
		FROM supply_events
		WHERE company_id = $1 AND part_id = ANY($2)
		GROUP BY part_id, supplier_id`
	rows, err := r.q.Query(ctx, query, companyID, partIDs)
	if err != nil {
		return nil, fmt.Errorf("supply balances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b entity.SupplyBalance
		if err := rows.Scan(&b.PartID, &b.SupplierID, &b.Balance, &b.LastEventAt); err != nil {
			return nil, fmt.Errorf("scan supply balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PartsWithPositiveBalance repuestos con algún proveedor de saldo > 0.
func (r *SupplyEventRepo) PartsWithPositiveBalance(ctx context.Context, companyID string) ([]string, error) {
	query := `
		SELECT DISTINCT part_id FROM (
			SELECT part_id
			FROM supply_events
			WHERE company_id = $1
			GROUP BY part_id, supplier_id
			HAVING SUM(quantity) > 0
		) s
		ORDER BY part_id`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("parts with pending supply: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}
