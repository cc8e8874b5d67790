// Package pdf genera la lista de compras del taller en PDF para el encargado de compras.
//
// Layout de la página A4:
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│  HEADER: Lista de compras            │  Fecha + filtro de búsqueda   │
//	│  ──────────────────────────────────────────────────────────────────  │
//	│  RESUMEN: repuestos por estado                                        │
//	│  ──────────────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Repuesto | Stock | Demanda | Reservado | Pendiente   │
//	│         | Pedir | Estado                                              │
//	└──────────────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/procurement"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 20, Blue: 20}
)

var statusLabels = map[string]string{
	procurement.StatusSubzeroQuantity:    "Stock negativo",
	procurement.StatusNeedSupplyForOrder: "Falta para órdenes",
	procurement.StatusNeedSupplyForStock: "Reponer stock",
	procurement.StatusOrdered:            "Pedido",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.ProcurementPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa inventory.ProcurementPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	companyName string
}

// NewMarotoPDFGenerator construye el generador. companyName aparece como autor del documento.
func NewMarotoPDFGenerator(companyName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{companyName: companyName}
}

// GenerateProcurementPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateProcurementPDF(_ context.Context, report inventory.ProcurementReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Lista de compras", true).
		WithAuthor(g.companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.Items))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(report.Items) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("No hay repuestos por comprar.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	for _, r := range tableDetailRows(report.Items) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report inventory.ProcurementReport) core.Row {
	filter := "Todos los repuestos"
	if report.Search != "" {
		filter = "Búsqueda: " + report.Search
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New("LISTA DE COMPRAS", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Ordenada por urgencia", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generada: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(filter, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func summaryRow(items []dto.ProcurementItemDTO) core.Row {
	counts := make(map[string]int, len(statusLabels))
	for _, it := range items {
		counts[it.Status]++
	}
	cell := func(status string) core.Col {
		return col.New(3).Add(
			text.New(statusLabels[status], props.Text{Size: 7, Color: colorGray, Top: 1}),
			text.New(fmt.Sprintf("%d", counts[status]), props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 5,
			}),
		)
	}
	return row.New(13).Add(
		cell(procurement.StatusSubzeroQuantity),
		cell(procurement.StatusNeedSupplyForOrder),
		cell(procurement.StatusNeedSupplyForStock),
		cell(procurement.StatusOrdered),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 1, align.Left),
		h("Repuesto", 3, align.Left),
		h("Stock", 1, align.Right),
		h("Demanda", 1, align.Right),
		h("Reservado", 1, align.Right),
		h("Pendiente", 1, align.Right),
		h("Pedir", 1, align.Right),
		h("Estado", 3, align.Left),
	)
}

func tableDetailRows(items []dto.ProcurementItemDTO) []core.Row {
	result := make([]core.Row, 0, len(items))
	num := func(d decimal.Decimal, bold bool) core.Col {
		p := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if bold {
			p.Style = fontstyle.Bold
		}
		return col.New(1).Add(text.New(formatQty(d), p))
	}
	for _, it := range items {
		status := statusLabels[it.Status]
		if it.SupplyDelayed {
			status += " (proveedor atrasado)"
		}
		statusProps := props.Text{Size: 8, Top: 1, Left: 1}
		if it.Status == procurement.StatusSubzeroQuantity {
			statusProps.Color = colorAlert
			statusProps.Style = fontstyle.Bold
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(it.PartCode, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(it.PartName, props.Text{Size: 8, Top: 1, Left: 1})),
			num(it.Stock, false),
			num(it.Demand, false),
			num(it.Reserved, false),
			num(it.PendingSupply, false),
			num(it.NeedToOrder, true),
			col.New(3).Add(text.New(status, statusProps)),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatQty muestra enteros sin decimales y fracciones con hasta 2 decimales.
// Ej: 15 → "15", 2.5 → "2.5", 0.125 → "0.13"
func formatQty(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.Round(2).String()
}
