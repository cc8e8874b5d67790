package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/procurement"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
	"github.com/jhoicas/taller-inventario/pkg/textsearch"
)

// ProcurementReport datos de la lista de compras para exportar.
type ProcurementReport struct {
	CompanyID   string
	Search      string
	GeneratedAt time.Time
	Items       []dto.ProcurementItemDTO
}

// ProcurementPDFGenerator genera el PDF de la lista de compras.
type ProcurementPDFGenerator interface {
	GenerateProcurementPDF(ctx context.Context, report ProcurementReport) ([]byte, error)
}

// ProcurementSettings parámetros de la tabla de compras.
type ProcurementSettings struct {
	DelayedSupplyDays int
	DefaultPageSize   int
	MaxPageSize       int
}

// ThresholdInput nuevo umbral de disponibilidad. Ambos en 0 = repuesto sin control.
type ThresholdInput struct {
	PartID    string
	OrderFrom decimal.Decimal
	OrderUpTo decimal.Decimal
}

// ProcurementUseCase genera la lista de compras priorizada: combina stock, demanda de órdenes
// activas, reservas, suministro pendiente y umbrales.
type ProcurementUseCase struct {
	stockRepo       repository.StockEventRepository
	supplyRepo      repository.SupplyEventRepository
	reservationRepo repository.ReservationRepository
	lineRepo        repository.DemandLineRepository
	thresholdRepo   repository.ThresholdRepository
	partRepo        repository.PartRepository
	supply          *SupplyLedgerUseCase
	generator       ProcurementPDFGenerator
	settings        ProcurementSettings
	log             zerolog.Logger
}

// NewProcurementUseCase construye el caso de uso. generator puede ser nil si no se exporta PDF.
func NewProcurementUseCase(
	stockRepo repository.StockEventRepository,
	supplyRepo repository.SupplyEventRepository,
	reservationRepo repository.ReservationRepository,
	lineRepo repository.DemandLineRepository,
	thresholdRepo repository.ThresholdRepository,
	partRepo repository.PartRepository,
	generator ProcurementPDFGenerator,
	settings ProcurementSettings,
	log zerolog.Logger,
) *ProcurementUseCase {
	if settings.DefaultPageSize <= 0 {
		settings.DefaultPageSize = 20
	}
	if settings.MaxPageSize <= 0 {
		settings.MaxPageSize = 100
	}
	if settings.DelayedSupplyDays < 0 {
		settings.DelayedSupplyDays = 0
	}
	return &ProcurementUseCase{
		stockRepo:       stockRepo,
		supplyRepo:      supplyRepo,
		reservationRepo: reservationRepo,
		lineRepo:        lineRepo,
		thresholdRepo:   thresholdRepo,
		partRepo:        partRepo,
		supply:          NewSupplyLedgerUseCase(supplyRepo, partRepo, log),
		generator:       generator,
		settings:        settings,
		log:             log,
	}
}

// GetProcurementTable devuelve una página de la lista de compras. El orden (estado, código) se
// aplica sobre todos los candidatos antes de paginar. search filtra por código o nombre.
func (uc *ProcurementUseCase) GetProcurementTable(ctx context.Context, companyID string, page dto.PageRequest, search string) (*dto.ProcurementTableResponse, error) {
	items, err := uc.buildItems(ctx, companyID, search)
	if err != nil {
		return nil, err
	}

	limit, offset := uc.normalizePage(page)
	total := len(items)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &dto.ProcurementTableResponse{
		Items: items[start:end],
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// ExportProcurementPDF genera el PDF con la lista completa (sin paginar).
func (uc *ProcurementUseCase) ExportProcurementPDF(ctx context.Context, companyID, search string) ([]byte, error) {
	if uc.generator == nil {
		return nil, domain.ErrInvalidInput
	}
	items, err := uc.buildItems(ctx, companyID, search)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateProcurementPDF(ctx, ProcurementReport{
		CompanyID:   companyID,
		Search:      search,
		GeneratedAt: time.Now(),
		Items:       items,
	})
}

// SetThreshold agrega un registro al historial de umbrales; el más reciente pasa a ser el vigente.
func (uc *ProcurementUseCase) SetThreshold(ctx context.Context, companyID string, in ThresholdInput) (*entity.AvailabilityThreshold, error) {
	if in.OrderFrom.IsNegative() || in.OrderUpTo.IsNegative() || in.OrderUpTo.LessThan(in.OrderFrom) {
		return nil, domain.ErrInvalidInput
	}
	if err := ensurePart(ctx, uc.partRepo, companyID, in.PartID); err != nil {
		return nil, err
	}
	t := &entity.AvailabilityThreshold{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		PartID:            in.PartID,
		OrderFromQuantity: in.OrderFrom,
		OrderUpToQuantity: in.OrderUpTo,
		CreatedAt:         time.Now(),
	}
	if err := uc.thresholdRepo.Append(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *ProcurementUseCase) normalizePage(page dto.PageRequest) (int, int) {
	page = page.Clamp(uc.settings.DefaultPageSize, uc.settings.MaxPageSize)
	return page.Limit, page.Offset
}

func (uc *ProcurementUseCase) buildItems(ctx context.Context, companyID, search string) ([]dto.ProcurementItemDTO, error) {
	candidateIDs, err := uc.candidates(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(candidateIDs) == 0 {
		return []dto.ProcurementItemDTO{}, nil
	}

	parts, err := uc.partRepo.ListByIDs(ctx, companyID, candidateIDs)
	if err != nil {
		return nil, err
	}
	matcher := textsearch.NewMatcher(search)
	filtered := make([]*entity.Part, 0, len(parts))
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if matcher.Match(p.Code, p.Name) {
			filtered = append(filtered, p)
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return []dto.ProcurementItemDTO{}, nil
	}

	// Señales agrupadas: una consulta por fuente para todos los repuestos.
	stock, err := uc.stockRepo.SumByParts(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	demand, err := uc.lineRepo.DemandActiveByParts(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	reserved, err := uc.reservationRepo.SumActiveByParts(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	pending, err := uc.supply.GetPendingBatch(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	thresholds, err := uc.thresholdRepo.CurrentByParts(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	delayedIDs, err := uc.supply.GetDelayedSupplyPartIDs(ctx, companyID, ids, uc.settings.DelayedSupplyDays)
	if err != nil {
		return nil, err
	}
	delayed := make(map[string]bool, len(delayedIDs))
	for _, id := range delayedIDs {
		delayed[id] = true
	}

	items := make([]dto.ProcurementItemDTO, 0, len(filtered))
	for _, p := range filtered {
		in := procurement.Input{
			Stock:         stock[p.ID],
			Demand:        demand[p.ID],
			Reserved:      reserved[p.ID],
			PendingSupply: pending[p.ID],
		}
		item := dto.ProcurementItemDTO{
			PartID:            p.ID,
			PartCode:          p.Code,
			PartName:          p.Name,
			OrderFromQuantity: decimal.Zero,
			OrderUpToQuantity: decimal.Zero,
			SupplyDelayed:     delayed[p.ID],
		}
		if t, ok := thresholds[p.ID]; ok && t != nil && t.IsControlled() {
			in.Threshold = &procurement.Threshold{OrderFrom: t.OrderFromQuantity, OrderUpTo: t.OrderUpToQuantity}
			item.OrderFromQuantity = t.OrderFromQuantity
			item.OrderUpToQuantity = t.OrderUpToQuantity
		}

		res := procurement.Calculate(in)
		if !res.Included {
			continue
		}
		item.Stock = in.Stock
		item.Demand = in.Demand
		item.Reserved = in.Reserved
		item.PendingSupply = in.PendingSupply
		item.InOrdersNotReserved = res.InOrdersNotReserved
		item.AvailableToUse = res.AvailableToUse
		item.AvailableForReplenishment = res.AvailableForReplenishment
		item.NeedForOrders = res.NeedForOrders
		item.NeedForStock = res.NeedForStock
		item.NeedToOrder = res.NeedToOrder
		item.Status = res.Status
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := procurement.Priority(items[i].Status), procurement.Priority(items[j].Status)
		if pi != pj {
			return pi < pj
		}
		if items[i].PartCode != items[j].PartCode {
			return items[i].PartCode < items[j].PartCode
		}
		return items[i].PartID < items[j].PartID
	})

	uc.log.Debug().
		Str("company_id", companyID).
		Int("candidates", len(candidateIDs)).
		Int("items", len(items)).
		Msg("tabla de compras calculada")
	return items, nil
}

// candidates = repuestos con suministro pendiente ∪ con demanda activa ∪ con umbral controlado.
func (uc *ProcurementUseCase) candidates(ctx context.Context, companyID string) ([]string, error) {
	withSupply, err := uc.supplyRepo.PartsWithPositiveBalance(ctx, companyID)
	if err != nil {
		return nil, err
	}
	withDemand, err := uc.lineRepo.ActivePartIDs(ctx, companyID)
	if err != nil {
		return nil, err
	}
	controlled, err := uc.thresholdRepo.ControlledPartIDs(ctx, companyID)
	if err != nil {
		return nil, err
	}

	n := len(withSupply) + len(withDemand) + len(controlled)
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for _, group := range [][]string{withSupply, withDemand, controlled} {
		for _, id := range group {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}
