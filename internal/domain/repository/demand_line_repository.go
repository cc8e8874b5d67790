package repository

import (
	"context"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DemandLineRepository puerto de lectura sobre líneas de orden (las escribe el componente de órdenes).
type DemandLineRepository interface {
	// GetByID devuelve la línea con número y estado de su orden; nil si no existe para la empresa.
	GetByID(ctx context.Context, companyID, lineID string) (*entity.DemandLine, error)
	// DemandActiveByParts suma la cantidad solicitada en órdenes activas por repuesto.
	DemandActiveByParts(ctx context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error)
	// ActivePartIDs repuestos con demanda en órdenes activas.
	ActivePartIDs(ctx context.Context, companyID string) ([]string, error)
}
