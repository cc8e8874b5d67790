package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/procurement"
)

func TestGenerateProcurementPDF(t *testing.T) {
	g := NewMarotoPDFGenerator("Taller Central")
	report := inventory.ProcurementReport{
		CompanyID:   "company-1",
		Search:      "freno",
		GeneratedAt: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
		Items: []dto.ProcurementItemDTO{
			{
				PartCode: "BRK-01", PartName: "Pastilla de freno",
				Stock: decimal.NewFromInt(-3), NeedToOrder: decimal.NewFromInt(3),
				Status: procurement.StatusSubzeroQuantity,
			},
			{
				PartCode: "BRK-02", PartName: "Disco de freno",
				Stock: decimal.NewFromInt(2), Demand: decimal.NewFromInt(5),
				NeedToOrder: decimal.NewFromInt(3), Status: procurement.StatusNeedSupplyForOrder,
				SupplyDelayed: true,
			},
		},
	}

	out, err := g.GenerateProcurementPDF(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "el documento debe ser un PDF")
}

func TestGenerateProcurementPDF_Empty(t *testing.T) {
	out, err := NewMarotoPDFGenerator("Taller Central").GenerateProcurementPDF(context.Background(), inventory.ProcurementReport{
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "15", formatQty(decimal.NewFromInt(15)))
	assert.Equal(t, "-3", formatQty(decimal.NewFromInt(-3)))
	assert.Equal(t, "2.5", formatQty(decimal.RequireFromString("2.5")))
	assert.Equal(t, "0.13", formatQty(decimal.RequireFromString("0.125")))
}
