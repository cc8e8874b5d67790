package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// Filtro de órdenes activas reutilizado por las consultas agregadas.
const activeOrderFilter = `o.status NOT IN ('closed', 'cancelled')`

// ReservationRepo ledger de reservas sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create inserta una reserva.
func (r *ReservationRepo) Create(ctx context.Context, c *entity.ReservationClaim) error {
	query := `
		INSERT INTO reservation_claims (id, company_id, demand_line_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, c.ID, c.CompanyID, c.DemandLineID, c.Quantity, c.CreatedAt); err != nil {
		return mapWriteError("create reservation", err)
	}
	return nil
}

// ListByLine reservas de la línea en orden FIFO.
func (r *ReservationRepo) ListByLine(ctx context.Context, companyID, lineID string) ([]*entity.ReservationClaim, error) {
	query := `
		SELECT id, company_id, demand_line_id, quantity, created_at
		FROM reservation_claims
		WHERE company_id = $1 AND demand_line_id = $2
		ORDER BY created_at, seq`
	rows, err := r.q.Query(ctx, query, companyID, lineID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	list := []*entity.ReservationClaim{}
	for rows.Next() {
		var c entity.ReservationClaim
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.DemandLineID, &c.Quantity, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// UpdateQuantity reduce una reserva en una liberación parcial.
func (r *ReservationRepo) UpdateQuantity(ctx context.Context, companyID, claimID string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE reservation_claims SET quantity = $3 WHERE company_id = $1 AND id = $2`,
		companyID, claimID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra una reserva.
func (r *ReservationRepo) Delete(ctx context.Context, companyID, claimID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM reservation_claims WHERE company_id = $1 AND id = $2`, companyID, claimID)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByLine borra todas las reservas de la línea.
func (r *ReservationRepo) DeleteByLine(ctx context.Context, companyID, lineID string) (int, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM reservation_claims WHERE company_id = $1 AND demand_line_id = $2`, companyID, lineID)
	if err != nil {
		return 0, fmt.Errorf("delete reservations by line: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// SumByLine Σ reservas de la línea.
func (r *ReservationRepo) SumByLine(ctx context.Context, companyID, lineID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM reservation_claims WHERE company_id = $1 AND demand_line_id = $2`,
		companyID, lineID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum reservations by line: %w", err)
	}
	return sum, nil
}

// SumActiveByPart Σ reservas del repuesto en órdenes activas.
func (r *ReservationRepo) SumActiveByPart(ctx context.Context, companyID, partID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(c.quantity), 0)
		FROM reservation_claims c
		JOIN demand_lines l ON l.id = c.demand_line_id
		JOIN orders o ON o.id = l.order_id
		WHERE c.company_id = $1 AND l.part_id = $2 AND ` + activeOrderFilter
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, partID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum active reservations: %w", err)
	}
	return sum, nil
}

// SumActiveByParts versión agrupada de SumActiveByPart.
func (r *ReservationRepo) SumActiveByParts(ctx context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(partIDs))
	if len(partIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT l.part_id, SUM(c.quantity)
		FROM reservation_claims c
		JOIN demand_lines l ON l.id = c.demand_line_id
		JOIN orders o ON o.id = l.order_id
		WHERE c.company_id = $1 AND l.part_id = ANY($2) AND ` + activeOrderFilter + `
		GROUP BY l.part_id`
	rows, err := r.q.Query(ctx, query, companyID, partIDs)
	if err != nil {
		return nil, fmt.Errorf("sum active reservations by parts: %w", err)
	}
	defer rows.Close()
	if err := scanSums(rows, out); err != nil {
		return nil, fmt.Errorf("sum active reservations by parts: %w", err)
	}
	return out, nil
}

// ListActiveSources líneas con reservas > 0 en órdenes activas del repuesto.
func (r *ReservationRepo) ListActiveSources(ctx context.Context, companyID, partID, excludeOrderID string) ([]repository.ReservationSource, error) {
	query := `
		SELECT l.id, o.id, o.number, o.status, l.part_id, l.quantity, SUM(c.quantity) AS claimed
		FROM reservation_claims c
		JOIN demand_lines l ON l.id = c.demand_line_id
		JOIN orders o ON o.id = l.order_id
		WHERE c.company_id = $1 AND l.part_id = $2 AND ` + activeOrderFilter + `
		  AND ($3::text = '' OR o.id::text <> $3::text)
		GROUP BY l.id, o.id, o.number, o.status, l.part_id, l.quantity
		HAVING SUM(c.quantity) > 0
		ORDER BY o.number, l.id`
	rows, err := r.q.Query(ctx, query, companyID, partID, excludeOrderID)
	if err != nil {
		return nil, fmt.Errorf("list reservation sources: %w", err)
	}
	defer rows.Close()

	list := []repository.ReservationSource{}
	for rows.Next() {
		var s repository.ReservationSource
		if err := rows.Scan(&s.DemandLineID, &s.OrderID, &s.OrderNumber, &s.OrderStatus, &s.PartID, &s.LineQuantity, &s.Claimed); err != nil {
			return nil, fmt.Errorf("scan reservation source: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
