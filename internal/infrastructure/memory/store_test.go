package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/memory"
)

const company = "company-1"

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.AddPart(entity.Part{ID: "part-1", CompanyID: company, Code: "BRK-01", Name: "Pastilla"})
	s.AddOrder(entity.Order{ID: "order-1", CompanyID: company, Number: "OT-001", Status: entity.OrderStatusDraft})
	s.AddLine(entity.DemandLine{ID: "line-1", CompanyID: company, OrderID: "order-1", PartID: "part-1", Quantity: decimal.NewFromInt(5)})
	return s
}

func claim(id string, n int64, at time.Time) *entity.ReservationClaim {
	return &entity.ReservationClaim{ID: id, CompanyID: company, DemandLineID: "line-1", Quantity: decimal.NewFromInt(n), CreatedAt: at}
}

func TestTxRunner_RollbackAnteError(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("falla a mitad de camino")

	err := memory.NewTxRunner(s).Run(ctx, func(stock repository.StockEventRepository, res repository.ReservationRepository, _ repository.DemandLineRepository) error {
		require.NoError(t, stock.Append(ctx, &entity.StockEvent{ID: "ev-1", CompanyID: company, PartID: "part-1", Quantity: decimal.NewFromInt(3), CreatedAt: time.Now()}))
		require.NoError(t, res.Create(ctx, claim("c-1", 3, time.Now())))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sum, err := memory.NewStockEventRepository(s).SumByPart(ctx, company, "part-1")
	require.NoError(t, err)
	assert.True(t, sum.IsZero(), "el evento no se confirma")
	claimed, err := memory.NewReservationRepository(s).SumByLine(ctx, company, "line-1")
	require.NoError(t, err)
	assert.True(t, claimed.IsZero(), "la reserva no se confirma")
}

func TestTxRunner_Commit(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := memory.NewTxRunner(s).RunLocked(ctx, "reserve:company-1:part-1", func(_ repository.StockEventRepository, res repository.ReservationRepository, _ repository.DemandLineRepository) error {
		return res.Create(ctx, claim("c-1", 2, time.Now()))
	})
	require.NoError(t, err)

	claimed, err := memory.NewReservationRepository(s).SumByLine(ctx, company, "line-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(claimed))
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := memory.NewTxRunner(s).Run(ctx, func(repository.StockEventRepository, repository.ReservationRepository, repository.DemandLineRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSetFault(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	repo := memory.NewReservationRepository(s)
	boom := errors.New("disco lleno")

	s.SetFault(memory.OpReservationCreate, boom)
	assert.ErrorIs(t, repo.Create(ctx, claim("c-1", 1, time.Now())), boom)

	s.SetFault(memory.OpReservationCreate, nil)
	assert.NoError(t, repo.Create(ctx, claim("c-1", 1, time.Now())))
}

func TestReservationRepo_ListByLine_FIFO(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	repo := memory.NewReservationRepository(s)
	base := time.Now()

	require.NoError(t, repo.Create(ctx, claim("tarde", 1, base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, claim("temprano-a", 1, base)))
	require.NoError(t, repo.Create(ctx, claim("temprano-b", 1, base)))

	claims, err := repo.ListByLine(ctx, company, "line-1")
	require.NoError(t, err)
	ids := make([]string, 0, len(claims))
	for _, c := range claims {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"temprano-a", "temprano-b", "tarde"}, ids)
}

func TestReservationRepo_SoloOrdenesActivas(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	repo := memory.NewReservationRepository(s)
	require.NoError(t, repo.Create(ctx, claim("c-1", 4, time.Now())))

	sum, err := repo.SumActiveByPart(ctx, company, "part-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4).Equal(sum))

	sources, err := repo.ListActiveSources(ctx, company, "part-1", "")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "OT-001", sources[0].OrderNumber)

	require.NoError(t, s.SetOrderStatus(company, "order-1", entity.OrderStatusCancelled))
	sum, err = repo.SumActiveByPart(ctx, company, "part-1")
	require.NoError(t, err)
	assert.True(t, sum.IsZero(), "las reservas de órdenes canceladas no retienen stock")

	sources, err = repo.ListActiveSources(ctx, company, "part-1", "")
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestLoadSeed(t *testing.T) {
	s := memory.NewStore()
	err := s.LoadSeed(strings.NewReader(`{
		"company_id": "company-9",
		"parts": [{"id": "p-1", "code": "AMT-01", "name": "Amortiguador"}],
		"orders": [{"id": "o-1", "number": "OT-100", "lines": [{"id": "l-1", "part_id": "p-1", "quantity": "2"}]}]
	}`))
	require.NoError(t, err)

	ctx := context.Background()
	line, err := memory.NewDemandLineRepository(s).GetByID(ctx, "company-9", "l-1")
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "OT-100", line.OrderNumber)
	assert.Equal(t, entity.OrderStatusDraft, line.OrderStatus, "estado por defecto")
	assert.True(t, decimal.NewFromInt(2).Equal(line.Quantity))

	part, err := memory.NewPartRepository(s).GetByID(ctx, "company-9", "p-1")
	require.NoError(t, err)
	require.NotNil(t, part)
	assert.Equal(t, "AMT-01", part.Code)
}

func TestLoadSeed_Errores(t *testing.T) {
	cases := map[string]string{
		"json inválido":        `{`,
		"sin company_id":       `{"parts": []}`,
		"repuesto inexistente": `{"company_id": "c", "orders": [{"id": "o", "lines": [{"id": "l", "part_id": "nope", "quantity": "1"}]}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, memory.NewStore().LoadSeed(strings.NewReader(body)))
		})
	}
}

func TestLoadSeedFile_Inexistente(t *testing.T) {
	err := memory.NewStore().LoadSeedFile(t.TempDir() + "/no-existe.json")
	assert.Error(t, err)
}
