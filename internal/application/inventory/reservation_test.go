package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Reserve
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_HastaLoReservable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addStock(t, "part-1", 10)

	_, err := f.engine.Reserve(ctx, companyID, "line-1", qty(4))
	require.NoError(t, err)

	reservable, err := f.engine.GetReservable(ctx, companyID, "part-1")
	require.NoError(t, err)
	assert.True(t, qty(6).Equal(reservable), "10 - 4 = 6, obtenido %s", reservable)

	// 6 es exactamente lo reservable: se acepta.
	_, err = f.engine.Reserve(ctx, companyID, "line-2", qty(6))
	require.NoError(t, err)
}

func TestReserve_SuperaReservable_Falla(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addStock(t, "part-1", 10)
	_, err := f.engine.Reserve(ctx, companyID, "line-1", qty(4))
	require.NoError(t, err)

	_, err = f.engine.Reserve(ctx, companyID, "line-2", qty(7))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var shortage *inventory.StockShortageError
	require.True(t, errors.As(err, &shortage))
	assert.True(t, qty(6).Equal(shortage.Reservable))
	assert.True(t, qty(1).Equal(shortage.Shortfall()))
	assert.True(t, f.claimed(t, "line-2").IsZero(), "un rechazo no deja reservas")
}

func TestReserve_CantidadNoPositiva_Falla(t *testing.T) {
	f := newFixture(t, nil)
	for _, q := range []decimal.Decimal{decimal.Zero, qty(-1)} {
		_, err := f.engine.Reserve(context.Background(), companyID, "line-1", q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad %s", q)
	}
}

func TestReserve_LineaInexistente_Falla(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.engine.Reserve(context.Background(), companyID, "line-x", qty(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReserve_OtraEmpresa_NoVeLaLinea(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 10)
	_, err := f.engine.Reserve(context.Background(), "company-2", "line-1", qty(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReserve_OrdenCerrada_Falla(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 10)
	require.NoError(t, f.store.SetOrderStatus(companyID, "order-1", entity.OrderStatusClosed))

	_, err := f.engine.Reserve(context.Background(), companyID, "line-1", qty(1))
	assert.ErrorIs(t, err, domain.ErrOrderNotEditable)
}

func TestReservable_IgnoraOrdenesInactivas(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addStock(t, "part-1", 10)
	_, err := f.engine.Reserve(ctx, companyID, "line-1", qty(4))
	require.NoError(t, err)

	require.NoError(t, f.store.SetOrderStatus(companyID, "order-1", entity.OrderStatusCancelled))

	reservable, err := f.engine.GetReservable(ctx, companyID, "part-1")
	require.NoError(t, err)
	assert.True(t, qty(10).Equal(reservable), "las reservas de órdenes canceladas no cuentan")
}

func TestReserve_Concurrente_NoSobrepasaElStock(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addStock(t, "part-1", 5)

	const workers = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			line := "line-1"
			if i%2 == 1 {
				line = "line-2"
			}
			_, err := f.engine.Reserve(ctx, companyID, line, qty(1))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				fail++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, ok, "solo cabe el stock disponible")
	assert.Equal(t, workers-5, fail)
	reservable, err := f.engine.GetReservable(ctx, companyID, "part-1")
	require.NoError(t, err)
	assert.True(t, reservable.IsZero())
}

func TestTryReserve_FaltanteNoEsError(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 3)

	out, err := f.engine.TryReserve(context.Background(), companyID, "line-1", qty(5))
	require.NoError(t, err)
	assert.False(t, out.Reserved)
	assert.Nil(t, out.Claim)
	assert.True(t, qty(2).Equal(out.Shortfall))
}

func TestTryReserve_OtrosErroresSePropagan(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.engine.TryReserve(context.Background(), companyID, "line-x", qty(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Release
// ──────────────────────────────────────────────────────────────────────────────

func reserveClaims(t *testing.T, f *fixture, lineID string, amounts ...int64) {
	t.Helper()
	for _, a := range amounts {
		_, err := f.engine.Reserve(context.Background(), companyID, lineID, qty(a))
		require.NoError(t, err)
	}
}

func TestRelease_Todo(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 10)
	reserveClaims(t, f, "line-1", 5, 3, 2)

	res, err := f.engine.ReleaseAll(context.Background(), companyID, "line-1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ClaimsRemoved)
	assert.True(t, qty(10).Equal(res.Released))
	assert.True(t, f.claimed(t, "line-1").IsZero())
}

func TestRelease_FIFO(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 10)
	reserveClaims(t, f, "line-1", 5, 3, 2)

	six := qty(6)
	res, err := f.engine.Release(context.Background(), companyID, "line-1", &six)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ClaimsRemoved, "solo la reserva de 5 se elimina completa")
	assert.True(t, qty(6).Equal(res.Released))
	assert.True(t, qty(4).Equal(f.claimed(t, "line-1")), "quedan [2, 2]")

	// Las reservas restantes son [2, 2]: liberar 2 elimina exactamente una.
	two := qty(2)
	res, err = f.engine.Release(context.Background(), companyID, "line-1", &two)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ClaimsRemoved)
	assert.True(t, qty(2).Equal(f.claimed(t, "line-1")))
}

func TestRelease_MasDeLoReservado_LiberaSoloLoReservado(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 10)
	reserveClaims(t, f, "line-1", 3)

	twenty := qty(20)
	res, err := f.engine.Release(context.Background(), companyID, "line-1", &twenty)
	require.NoError(t, err)
	assert.True(t, qty(3).Equal(res.Released))
	assert.True(t, f.claimed(t, "line-1").IsZero())
}

func TestRelease_CantidadInvalida_Falla(t *testing.T) {
	f := newFixture(t, nil)
	zero := decimal.Zero
	_, err := f.engine.Release(context.Background(), companyID, "line-1", &zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReleaseForLines(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 10)
	f.addStock(t, "part-2", 1)
	reserveClaims(t, f, "line-1", 2, 1)
	reserveClaims(t, f, "line-3", 1)

	n, err := f.engine.ReleaseForLines(context.Background(), companyID, []string{"line-1", "line-3", "line-borrada"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, f.claimed(t, "line-1").IsZero())
	assert.True(t, f.claimed(t, "line-3").IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_MueveLaReserva(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("NotifyTransfer", mock.Anything, mock.MatchedBy(func(ev inventory.TransferEvent) bool {
		return ev.CompanyID == companyID && ev.FromOrderID == "order-1" && ev.ToOrderID == "order-2" &&
			ev.PartID == "part-1" && ev.Quantity.Equal(qty(3))
	})).Return(nil).Once()

	f := newFixture(t, notifier)
	ctx := context.Background()
	f.addStock(t, "part-1", 5)
	reserveClaims(t, f, "line-1", 4)
	reservableBefore, err := f.engine.GetReservable(ctx, companyID, "part-1")
	require.NoError(t, err)

	res, err := f.engine.Transfer(ctx, companyID, "line-1", "line-2", qty(3))
	require.NoError(t, err)
	assert.Equal(t, "order-1", res.FromOrderID)
	assert.Equal(t, "order-2", res.ToOrderID)
	assert.Equal(t, "line-2", res.Claim.DemandLineID)

	assert.True(t, f.claimed(t, "line-1").IsZero(), "el origen pierde todas sus reservas")
	assert.True(t, qty(3).Equal(f.claimed(t, "line-2")))

	reservableAfter, err := f.engine.GetReservable(ctx, companyID, "part-1")
	require.NoError(t, err)
	assert.True(t, reservableBefore.Add(qty(1)).Equal(reservableAfter),
		"el sobrante del origen (4 - 3) vuelve a ser reservable")
	notifier.AssertExpectations(t)
}

func TestTransfer_FalloDeNotificacion_NoRevierte(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("NotifyTransfer", mock.Anything, mock.Anything).Return(errors.New("broker caído"))

	f := newFixture(t, notifier)
	f.addStock(t, "part-1", 5)
	reserveClaims(t, f, "line-1", 2)

	_, err := f.engine.Transfer(context.Background(), companyID, "line-1", "line-2", qty(2))
	require.NoError(t, err)
	assert.True(t, qty(2).Equal(f.claimed(t, "line-2")))
	notifier.AssertNumberOfCalls(t, "NotifyTransfer", 1)
}

func TestTransfer_Atomica_AnteFalloDeEscritura(t *testing.T) {
	notifier := new(MockNotifier)
	f := newFixture(t, notifier)
	ctx := context.Background()
	f.addStock(t, "part-1", 5)
	reserveClaims(t, f, "line-1", 4)

	boom := errors.New("disco lleno")
	f.store.SetFault(memory.OpReservationCreate, boom)
	defer f.store.SetFault(memory.OpReservationCreate, nil)

	_, err := f.engine.Transfer(ctx, companyID, "line-1", "line-2", qty(3))
	require.ErrorIs(t, err, boom)

	assert.True(t, qty(4).Equal(f.claimed(t, "line-1")), "el borrado del origen se revierte")
	assert.True(t, f.claimed(t, "line-2").IsZero())
	notifier.AssertNotCalled(t, "NotifyTransfer", mock.Anything, mock.Anything)
}

func TestTransfer_EntreRepuestos_FallaSinCambios(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 5)
	f.addStock(t, "part-2", 1)
	reserveClaims(t, f, "line-1", 4)

	_, err := f.engine.Transfer(context.Background(), companyID, "line-1", "line-3", qty(1))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, qty(4).Equal(f.claimed(t, "line-1")))
	assert.True(t, f.claimed(t, "line-3").IsZero())
}

func TestTransfer_Validaciones(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 5)
	reserveClaims(t, f, "line-1", 2)
	ctx := context.Background()

	_, err := f.engine.Transfer(ctx, companyID, "line-1", "line-1", qty(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "misma línea")

	_, err = f.engine.Transfer(ctx, companyID, "line-1", "line-2", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = f.engine.Transfer(ctx, companyID, "line-1", "line-2", qty(3))
	assert.ErrorIs(t, err, domain.ErrInsufficientReservation, "más de lo reservado")

	_, err = f.engine.Transfer(ctx, companyID, "line-1", "line-x", qty(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.store.SetOrderStatus(companyID, "order-2", entity.OrderStatusClosed))
	_, err = f.engine.Transfer(ctx, companyID, "line-1", "line-2", qty(1))
	assert.ErrorIs(t, err, domain.ErrOrderNotEditable)

	assert.True(t, qty(2).Equal(f.claimed(t, "line-1")), "ningún rechazo modifica el origen")
}

func TestGetReservationSources(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addStock(t, "part-1", 10)

	sources, err := f.engine.GetReservationSources(ctx, companyID, "part-1", "")
	require.NoError(t, err)
	assert.NotNil(t, sources)
	assert.Empty(t, sources)

	reserveClaims(t, f, "line-1", 2, 1)
	reserveClaims(t, f, "line-2", 4)

	sources, err = f.engine.GetReservationSources(ctx, companyID, "part-1", "")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "OT-001", sources[0].OrderNumber)
	assert.True(t, qty(3).Equal(sources[0].Claimed))
	assert.Equal(t, "OT-002", sources[1].OrderNumber)

	sources, err = f.engine.GetReservationSources(ctx, companyID, "part-1", "order-2")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "line-1", sources[0].DemandLineID)

	_, err = f.engine.GetReservationSources(ctx, companyID, "part-x", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// lockRecorder envuelve un TxRunner y anota qué transacciones toman bloqueo.
type lockRecorder struct {
	inner    inventory.TxRunner
	mu       sync.Mutex
	keys     []string
	unlocked int
}

func (r *lockRecorder) Run(ctx context.Context, fn inventory.TxFunc) error {
	r.mu.Lock()
	r.unlocked++
	r.mu.Unlock()
	return r.inner.Run(ctx, fn)
}

func (r *lockRecorder) RunLocked(ctx context.Context, lockKey string, fn inventory.TxFunc) error {
	r.mu.Lock()
	r.keys = append(r.keys, lockKey)
	r.mu.Unlock()
	return r.inner.RunLocked(ctx, lockKey, fn)
}

func TestTransferYRelease_TomanElBloqueoDelRepuesto(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 10)
	reserveClaims(t, f, "line-1", 4)

	recorder := &lockRecorder{inner: memory.NewTxRunner(f.store)}
	engine := inventory.NewReservationEngine(
		recorder,
		memory.NewStockEventRepository(f.store),
		memory.NewReservationRepository(f.store),
		memory.NewDemandLineRepository(f.store),
		memory.NewPartRepository(f.store),
		nil,
		zerolog.Nop(),
	)
	ctx := context.Background()

	_, err := engine.Transfer(ctx, companyID, "line-1", "line-2", qty(3))
	require.NoError(t, err)
	partial := qty(1)
	_, err = engine.Release(ctx, companyID, "line-2", &partial)
	require.NoError(t, err)
	_, err = engine.ReleaseAll(ctx, companyID, "line-2")
	require.NoError(t, err)

	want := "reserve:" + companyID + ":part-1"
	assert.Equal(t, []string{want, want, want}, recorder.keys)
	assert.Zero(t, recorder.unlocked)
}

func TestTransfer_Concurrente_NoDuplicaLaReserva(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 10)
	reserveClaims(t, f, "line-1", 4)
	f.store.AddLine(entity.DemandLine{ID: "line-4", CompanyID: companyID, OrderID: "order-2", PartID: "part-1", Quantity: qty(3)})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, to := range []string{"line-2", "line-4"} {
		wg.Add(1)
		go func(i int, to string) {
			defer wg.Done()
			_, errs[i] = f.engine.Transfer(context.Background(), companyID, "line-1", to, qty(3))
		}(i, to)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientReservation)
			failed++
		}
	}
	assert.Equal(t, 1, failed, "solo una transferencia encuentra la reserva del origen")
	total := f.claimed(t, "line-2").Add(f.claimed(t, "line-4"))
	assert.True(t, qty(3).Equal(total), "obtenido %s", total)
}
