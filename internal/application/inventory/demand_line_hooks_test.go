package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

func TestHooks_LineaCreada_ConStock(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 10)

	out, err := f.hooks.OnLineCreated(context.Background(), companyID, "line-1", qty(5))
	require.NoError(t, err)
	assert.True(t, out.Reserved)
	require.NotNil(t, out.Claim)
	assert.True(t, out.Shortfall.IsZero())
	assert.True(t, qty(5).Equal(f.claimed(t, "line-1")))
}

func TestHooks_LineaCreada_SinStock_NoFalla(t *testing.T) {
	f := newFixture(t, nil)
	f.addStock(t, "part-1", 3)

	out, err := f.hooks.OnLineCreated(context.Background(), companyID, "line-1", qty(5))
	require.NoError(t, err, "la línea se guarda aunque falte stock")
	assert.False(t, out.Reserved)
	assert.True(t, qty(2).Equal(out.Shortfall))
	assert.True(t, f.claimed(t, "line-1").IsZero())
}

func TestHooks_LineaCreada_CantidadCero(t *testing.T) {
	f := newFixture(t, nil)
	out, err := f.hooks.OnLineCreated(context.Background(), companyID, "line-1", decimal.Zero)
	require.NoError(t, err)
	assert.False(t, out.Reserved)
	assert.True(t, out.Shortfall.IsZero())
}

func TestHooks_CantidadModificada_ReservaDeNuevo(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addStock(t, "part-1", 10)
	_, err := f.hooks.OnLineCreated(ctx, companyID, "line-1", qty(5))
	require.NoError(t, err)

	require.NoError(t, f.store.SetLineQuantity(companyID, "line-1", qty(8)))
	out, err := f.hooks.OnQuantityChanged(ctx, companyID, "line-1", qty(8))
	require.NoError(t, err)
	assert.True(t, out.Reserved, "las 5 liberadas vuelven a contar como disponibles")
	assert.True(t, qty(8).Equal(f.claimed(t, "line-1")))
}

func TestHooks_CantidadModificada_LineaInexistente(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.hooks.OnQuantityChanged(context.Background(), companyID, "line-x", qty(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHooks_CantidadModificada_OrdenCerrada_ConservaLaReserva(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addStock(t, "part-1", 10)
	_, err := f.hooks.OnLineCreated(ctx, companyID, "line-1", qty(5))
	require.NoError(t, err)

	require.NoError(t, f.store.SetOrderStatus(companyID, "order-1", entity.OrderStatusClosed))
	_, err = f.hooks.OnQuantityChanged(ctx, companyID, "line-1", qty(2))
	require.ErrorIs(t, err, domain.ErrOrderNotEditable)
	assert.True(t, qty(5).Equal(f.claimed(t, "line-1")), "el rechazo no libera lo reservado")
}

func TestHooks_LineasBorradas(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addStock(t, "part-1", 10)
	_, err := f.hooks.OnLineCreated(ctx, companyID, "line-1", qty(5))
	require.NoError(t, err)
	_, err = f.hooks.OnLineCreated(ctx, companyID, "line-2", qty(5))
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteLine(companyID, "line-1"))
	n, err := f.hooks.OnLinesDeleted(ctx, companyID, []string{"line-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	reservable, err := f.engine.GetReservable(ctx, companyID, "part-1")
	require.NoError(t, err)
	assert.True(t, qty(5).Equal(reservable))

	n, err = f.hooks.OnLinesDeleted(ctx, companyID, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
