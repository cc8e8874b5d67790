package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/memory"
)

const companyID = "company-1"

// fixture casos de uso sobre un Store en memoria con un catálogo mínimo:
//
//	part-1 (BRK-01): line-1 (order-1, 5), line-2 (order-2, 5)
//	part-2 (FLT-01): line-3 (order-2, 1)
type fixture struct {
	store       *memory.Store
	stock       *inventory.StockLedgerUseCase
	supply      *inventory.SupplyLedgerUseCase
	engine      *inventory.ReservationEngine
	hooks       *inventory.DemandLineHooks
	procurement *inventory.ProcurementUseCase
	supplyRepo  *memory.SupplyEventRepo
}

func newFixture(t *testing.T, notifier inventory.TransferNotifier) *fixture {
	t.Helper()
	return buildFixture(notifier)
}

func buildFixture(notifier inventory.TransferNotifier) *fixture {
	store := memory.NewStore()
	now := time.Now()
	store.AddPart(entity.Part{ID: "part-1", CompanyID: companyID, Code: "BRK-01", Name: "Pastilla de freno"})
	store.AddPart(entity.Part{ID: "part-2", CompanyID: companyID, Code: "FLT-01", Name: "Filtro de aceite"})
	store.AddOrder(entity.Order{ID: "order-1", CompanyID: companyID, Number: "OT-001", Status: entity.OrderStatusDraft})
	store.AddOrder(entity.Order{ID: "order-2", CompanyID: companyID, Number: "OT-002", Status: entity.OrderStatusInProgress})
	store.AddLine(entity.DemandLine{ID: "line-1", CompanyID: companyID, OrderID: "order-1", PartID: "part-1", Quantity: qty(5), CreatedAt: now})
	store.AddLine(entity.DemandLine{ID: "line-2", CompanyID: companyID, OrderID: "order-2", PartID: "part-1", Quantity: qty(5), CreatedAt: now})
	store.AddLine(entity.DemandLine{ID: "line-3", CompanyID: companyID, OrderID: "order-2", PartID: "part-2", Quantity: qty(1), CreatedAt: now})

	log := zerolog.Nop()
	stockRepo := memory.NewStockEventRepository(store)
	supplyRepo := memory.NewSupplyEventRepository(store)
	reservationRepo := memory.NewReservationRepository(store)
	lineRepo := memory.NewDemandLineRepository(store)
	thresholdRepo := memory.NewThresholdRepository(store)
	partRepo := memory.NewPartRepository(store)

	engine := inventory.NewReservationEngine(memory.NewTxRunner(store), stockRepo, reservationRepo, lineRepo, partRepo, notifier, log)
	return &fixture{
		store:      store,
		stock:      inventory.NewStockLedgerUseCase(stockRepo, partRepo, log),
		supply:     inventory.NewSupplyLedgerUseCase(supplyRepo, partRepo, log),
		engine:     engine,
		hooks:      inventory.NewDemandLineHooks(engine, log),
		supplyRepo: supplyRepo,
		procurement: inventory.NewProcurementUseCase(
			stockRepo, supplyRepo, reservationRepo, lineRepo, thresholdRepo, partRepo, nil,
			inventory.ProcurementSettings{DelayedSupplyDays: 14, DefaultPageSize: 20, MaxPageSize: 100},
			log,
		),
	}
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func (f *fixture) addStock(t *testing.T, partID string, n int64) {
	t.Helper()
	_, err := f.stock.Append(context.Background(), companyID, inventory.StockEntryInput{
		PartID: partID, Quantity: qty(n), SourceType: entity.StockSourceManual,
	})
	require.NoError(t, err)
}

func (f *fixture) claimed(t *testing.T, lineID string) decimal.Decimal {
	t.Helper()
	c, err := f.engine.GetClaimed(context.Background(), companyID, lineID)
	require.NoError(t, err)
	return c
}

// MockNotifier mock de inventory.TransferNotifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyTransfer(ctx context.Context, event inventory.TransferEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
