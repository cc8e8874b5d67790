package repository

import (
	"context"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// SupplyEventRepository define el puerto del ledger de suministro por (repuesto, proveedor).
type SupplyEventRepository interface {
	Append(ctx context.Context, event *entity.SupplyEvent) error
	// BalancesByParts devuelve Σ eventos y fecha del último evento por par (repuesto, proveedor).
	// Los saldos no se recortan; eso lo hace la vista de lectura.
	BalancesByParts(ctx context.Context, companyID string, partIDs []string) ([]entity.SupplyBalance, error)
	// PartsWithPositiveBalance lista los repuestos con algún proveedor de saldo > 0.
	PartsWithPositiveBalance(ctx context.Context, companyID string) ([]string, error)
}
