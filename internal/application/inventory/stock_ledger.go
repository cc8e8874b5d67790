package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// StockLedgerUseCase registra y agrega eventos del ledger de stock.
// No existe una cantidad "actual" cacheada: el stock se recalcula siempre desde los eventos.
type StockLedgerUseCase struct {
	stockRepo repository.StockEventRepository
	partRepo  repository.PartRepository
	log       zerolog.Logger
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(
	stockRepo repository.StockEventRepository,
	partRepo repository.PartRepository,
	log zerolog.Logger,
) *StockLedgerUseCase {
	return &StockLedgerUseCase{
		stockRepo: stockRepo,
		partRepo:  partRepo,
		log:       log,
	}
}

// StockEntryInput entrada para registrar un evento de stock.
type StockEntryInput struct {
	PartID      string
	Quantity    decimal.Decimal // con signo, distinto de cero
	SourceType  string
	SourceID    string
	Description string
}

// Append valida y agrega un evento inmutable al ledger.
func (uc *StockLedgerUseCase) Append(ctx context.Context, companyID string, in StockEntryInput) (*entity.StockEvent, error) {
	if in.PartID == "" || in.Quantity.IsZero() || !entity.IsValidStockSource(in.SourceType) {
		return nil, domain.ErrInvalidInput
	}
	if err := ensurePart(ctx, uc.partRepo, companyID, in.PartID); err != nil {
		return nil, err
	}

	event := &entity.StockEvent{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		PartID:      in.PartID,
		Quantity:    in.Quantity,
		SourceType:  in.SourceType,
		SourceID:    in.SourceID,
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	if err := uc.stockRepo.Append(ctx, event); err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("company_id", companyID).
		Str("part_id", in.PartID).
		Str("quantity", in.Quantity.String()).
		Str("source", in.SourceType).
		Msg("evento de stock registrado")
	return event, nil
}

// GetStock devuelve Σ eventos del repuesto para la empresa.
func (uc *StockLedgerUseCase) GetStock(ctx context.Context, companyID, partID string) (decimal.Decimal, error) {
	if err := ensurePart(ctx, uc.partRepo, companyID, partID); err != nil {
		return decimal.Zero, err
	}
	return uc.stockRepo.SumByPart(ctx, companyID, partID)
}

// GetStockBatch devuelve el stock de varios repuestos en una sola consulta agrupada.
// Todo repuesto pedido aparece en el resultado (0 si no tiene eventos).
func (uc *StockLedgerUseCase) GetStockBatch(ctx context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error) {
	sums, err := uc.stockRepo.SumByParts(ctx, companyID, partIDs)
	if err != nil {
		return nil, err
	}
	return fillZeros(sums, partIDs), nil
}

// ListEvents devuelve el historial del repuesto, más reciente primero.
func (uc *StockLedgerUseCase) ListEvents(ctx context.Context, companyID, partID string, limit, offset int) ([]*entity.StockEvent, error) {
	if err := ensurePart(ctx, uc.partRepo, companyID, partID); err != nil {
		return nil, err
	}
	return uc.stockRepo.ListByPart(ctx, companyID, partID, limit, offset)
}

func ensurePart(ctx context.Context, partRepo repository.PartRepository, companyID, partID string) error {
	if partID == "" {
		return domain.ErrInvalidInput
	}
	part, err := partRepo.GetByID(ctx, companyID, partID)
	if err != nil {
		return err
	}
	if part == nil {
		return domain.ErrNotFound
	}
	return nil
}

func fillZeros(sums map[string]decimal.Decimal, keys []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(keys))
	for _, k := range keys {
		if v, ok := sums[k]; ok {
			out[k] = v
		} else {
			out[k] = decimal.Zero
		}
	}
	return out
}
