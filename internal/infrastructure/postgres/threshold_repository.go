package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.ThresholdRepository = (*ThresholdRepo)(nil)

// ThresholdRepo historial de umbrales sobre PostgreSQL.
type ThresholdRepo struct {
	q Querier
}

// NewThresholdRepository construye el adaptador. Pasar pool o tx (Querier).
func NewThresholdRepository(q Querier) *ThresholdRepo {
	return &ThresholdRepo{q: q}
}

// Append inserta un registro; el más reciente por repuesto es el vigente.
func (r *ThresholdRepo) Append(ctx context.Context, t *entity.AvailabilityThreshold) error {
	query := `
		INSERT INTO availability_thresholds (id, company_id, part_id, order_from_quantity, order_up_to_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, t.ID, t.CompanyID, t.PartID, t.OrderFromQuantity, t.OrderUpToQuantity, t.CreatedAt)
	if err != nil {
		return mapWriteError("append threshold", err)
	}
	return nil
}

// CurrentByParts último registro por repuesto (DISTINCT ON).
func (r *ThresholdRepo) CurrentByParts(ctx context.Context, companyID string, partIDs []string) (map[string]*entity.AvailabilityThreshold, error) {
	out := make(map[string]*entity.AvailabilityThreshold, len(partIDs))
	if len(partIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT DISTINCT ON (part_id) id, company_id, part_id, order_from_quantity, order_up_to_quantity, created_at
		FROM availability_thresholds
		WHERE company_id = $1 AND part_id = ANY($2)
		ORDER BY part_id, created_at DESC, seq DESC`
	rows, err := r.q.Query(ctx, query, companyID, partIDs)
	if err != nil {
		return nil, fmt.Errorf("current thresholds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t entity.AvailabilityThreshold
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.PartID, &t.OrderFromQuantity, &t.OrderUpToQuantity, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan threshold: %w", err)
		}
		out[t.PartID] = &t
	}
	return out, rows.Err()
}

// ControlledPartIDs repuestos cuyo umbral vigente no es (0, 0).
func (r *ThresholdRepo) ControlledPartIDs(ctx context.Context, companyID string) ([]string, error) {
	query := `
		SELECT part_id FROM (
			SELECT DISTINCT ON (part_id) part_id, order_from_quantity, order_up_to_quantity
			FROM availability_thresholds
			WHERE company_id = $1
			ORDER BY part_id, created_at DESC, seq DESC
		) t
		WHERE order_from_quantity <> 0 OR order_up_to_quantity <> 0
		ORDER BY part_id`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("controlled parts: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}
