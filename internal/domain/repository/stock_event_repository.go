package repository

import (
	"context"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockEventRepository define el puerto del ledger de stock (solo inserción + agregados).
type StockEventRepository interface {
	Append(ctx context.Context, event *entity.StockEvent) error
	// SumByPart devuelve Σ cantidades del repuesto para la empresa (0 si no hay eventos).
	SumByPart(ctx context.Context, companyID, partID string) (decimal.Decimal, error)
	// SumByParts agrupa en una sola consulta; los repuestos sin eventos no aparecen en el mapa.
	SumByParts(ctx context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error)
	ListByPart(ctx context.Context, companyID, partID string, limit, offset int) ([]*entity.StockEvent, error)
}
