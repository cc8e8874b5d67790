package repository

import (
	"context"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// PartRepository puerto de lectura sobre el catálogo de repuestos (mantenido por otro componente).
type PartRepository interface {
	GetByID(ctx context.Context, companyID, partID string) (*entity.Part, error)
	ListByIDs(ctx context.Context, companyID string, partIDs []string) ([]*entity.Part, error)
}
