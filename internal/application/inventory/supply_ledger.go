package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// SupplyLedgerUseCase registra suministro prometido por proveedores y expone el pendiente.
type SupplyLedgerUseCase struct {
	supplyRepo repository.SupplyEventRepository
	partRepo   repository.PartRepository
	log        zerolog.Logger
}

// NewSupplyLedgerUseCase construye el caso de uso.
func NewSupplyLedgerUseCase(
	supplyRepo repository.SupplyEventRepository,
	partRepo repository.PartRepository,
	log zerolog.Logger,
) *SupplyLedgerUseCase {
	return &SupplyLedgerUseCase{
		supplyRepo: supplyRepo,
		partRepo:   partRepo,
		log:        log,
	}
}

// SupplyInput entrada para crear o cancelar suministro. Quantity siempre > 0.
type SupplyInput struct {
	PartID     string
	SupplierID string
	Quantity   decimal.Decimal
	Source     string // vacío = manual
	SourceID   string
}

// CreateSupply agrega un evento positivo (entrada esperada).
func (uc *SupplyLedgerUseCase) CreateSupply(ctx context.Context, companyID string, in SupplyInput) (*entity.SupplyEvent, error) {
	return uc.append(ctx, companyID, in, false)
}

// CancelSupply agrega la negación de la cantidad. Puede dejar el saldo crudo negativo;
// la vista de pendiente lo recorta a cero.
func (uc *SupplyLedgerUseCase) CancelSupply(ctx context.Context, companyID string, in SupplyInput) (*entity.SupplyEvent, error) {
	return uc.append(ctx, companyID, in, true)
}

func (uc *SupplyLedgerUseCase) append(ctx context.Context, companyID string, in SupplyInput, cancel bool) (*entity.SupplyEvent, error) {
	if in.Source == "" {
		in.Source = entity.SupplySourceManual
	}
	if in.SupplierID == "" || !in.Quantity.IsPositive() || !entity.IsValidSupplySource(in.Source) {
		return nil, domain.ErrInvalidInput
	}
	if err := ensurePart(ctx, uc.partRepo, companyID, in.PartID); err != nil {
		return nil, err
	}

	qty := in.Quantity
	if cancel {
		qty = qty.Neg()
	}
	event := &entity.SupplyEvent{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		PartID:     in.PartID,
		SupplierID: in.SupplierID,
		Quantity:   qty,
		Source:     in.Source,
		SourceID:   in.SourceID,
		CreatedAt:  time.Now(),
	}
	if err := uc.supplyRepo.Append(ctx, event); err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("company_id", companyID).
		Str("part_id", in.PartID).
		Str("supplier_id", in.SupplierID).
		Str("quantity", qty.String()).
		Msg("evento de suministro registrado")
	return event, nil
}

// GetPendingTotal devuelve max(0, Σ eventos) del repuesto sobre todos sus proveedores.
func (uc *SupplyLedgerUseCase) GetPendingTotal(ctx context.Context, companyID, partID string) (decimal.Decimal, error) {
	if err := ensurePart(ctx, uc.partRepo, companyID, partID); err != nil {
		return decimal.Zero, err
	}
	totals, err := uc.GetPendingBatch(ctx, companyID, []string{partID})
	if err != nil {
		return decimal.Zero, err
	}
	return totals[partID], nil
}

// GetPendingBySupplier devuelve el saldo de cada proveedor del repuesto, ordenado por proveedor.
func (uc *SupplyLedgerUseCase) GetPendingBySupplier(ctx context.Context, companyID, partID string) ([]entity.SupplyBalance, error) {
	if err := ensurePart(ctx, uc.partRepo, companyID, partID); err != nil {
		return nil, err
	}
	balances, err := uc.supplyRepo.BalancesByParts(ctx, companyID, []string{partID})
	if err != nil {
		return nil, err
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].SupplierID < balances[j].SupplierID })
	return balances, nil
}

// GetPendingBatch devuelve max(0, Σ eventos) por repuesto en una sola consulta.
// Todo repuesto pedido aparece en el resultado.
func (uc *SupplyLedgerUseCase) GetPendingBatch(ctx context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error) {
	balances, err := uc.supplyRepo.BalancesByParts(ctx, companyID, partIDs)
	if err != nil {
		return nil, err
	}
	raw := make(map[string]decimal.Decimal, len(partIDs))
	for _, b := range balances {
		raw[b.PartID] = raw[b.PartID].Add(b.Balance)
	}
	out := fillZeros(raw, partIDs)
	for k, v := range out {
		if v.IsNegative() {
			out[k] = decimal.Zero
		}
	}
	return out, nil
}

// GetDelayedSupplyPartIDs devuelve los repuestos con algún proveedor de saldo positivo cuyo
// último evento es más antiguo que thresholdDays (promesas de proveedor vencidas).
func (uc *SupplyLedgerUseCase) GetDelayedSupplyPartIDs(ctx context.Context, companyID string, partIDs []string, thresholdDays int) ([]string, error) {
	if thresholdDays < 0 {
		return nil, domain.ErrInvalidInput
	}
	if len(partIDs) == 0 {
		return []string{}, nil
	}
	balances, err := uc.supplyRepo.BalancesByParts(ctx, companyID, partIDs)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(0, 0, -thresholdDays)

	seen := make(map[string]bool)
	delayed := []string{}
	for _, b := range balances {
		if seen[b.PartID] || !b.Balance.IsPositive() || !b.LastEventAt.Before(cutoff) {
			continue
		}
		seen[b.PartID] = true
		delayed = append(delayed, b.PartID)
	}
	sort.Strings(delayed)
	return delayed, nil
}
