package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.PartRepository = (*PartRepo)(nil)

// PartRepo lectura del catálogo de repuestos.
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

// GetByID obtiene un repuesto de la empresa; nil si no existe.
func (r *PartRepo) GetByID(ctx context.Context, companyID, partID string) (*entity.Part, error) {
	var p entity.Part
	err := r.q.QueryRow(ctx,
		`SELECT id, company_id, code, name FROM parts WHERE company_id = $1 AND id = $2`,
		companyID, partID,
	).Scan(&p.ID, &p.CompanyID, &p.Code, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return &p, nil
}

// ListByIDs repuestos existentes de la lista, ordenados por código.
func (r *PartRepo) ListByIDs(ctx context.Context, companyID string, partIDs []string) ([]*entity.Part, error) {
	list := []*entity.Part{}
	if len(partIDs) == 0 {
		return list, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, company_id, code, name FROM parts WHERE company_id = $1 AND id = ANY($2) ORDER BY code`,
		companyID, partIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.Part
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Code, &p.Name); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
