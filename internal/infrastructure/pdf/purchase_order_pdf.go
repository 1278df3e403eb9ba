// Package pdf genera el documento imprimible de una orden de compra a proveedor.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: ORDEN DE COMPRA      │  N° orden + Fecha + Estado  │
//	│  PROVEEDOR: id + notas                                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Unidad | Materia prima | P.Unit | Subtotal    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                       │
//	└─────────────────────────────────────────────────────────────┘
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
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ purchasing.PurchaseOrderPDFGenerator = (*MarotoPurchaseOrderPDF)(nil)

// MarotoPurchaseOrderPDF implementa purchasing.PurchaseOrderPDFGenerator con Maroto v2.
type MarotoPurchaseOrderPDF struct {
	printer *message.Printer
}

// NewMarotoPurchaseOrderPDF construye el generador; los importes se formatean en es-CO.
func NewMarotoPurchaseOrderPDF() *MarotoPurchaseOrderPDF {
	return &MarotoPurchaseOrderPDF{printer: message.NewPrinter(language.MustParse("es-CO"))}
}

// GeneratePurchaseOrderPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPurchaseOrderPDF) GeneratePurchaseOrderPDF(
	_ context.Context,
	order *entity.PurchaseOrder,
	lines []purchasing.PurchaseOrderLineForPDF,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Orden de compra "+order.Number, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableRows(lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoPurchaseOrderPDF) headerRow(order *entity.PurchaseOrder) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Materias primas", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(order.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+order.OrderDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Estado: "+order.State.String(), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func supplierRow(order *entity.PurchaseOrder) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PROVEEDOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(order.SupplierID, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Notas: "+nonEmpty(order.Notes, "—"), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Unidad", 1, align.Center),
		h("Materia prima", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *MarotoPurchaseOrderPDF) tableRows(lines []purchasing.PurchaseOrderLineForPDF) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			col.New(2).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(nonEmpty(l.UnitMeasure, "—"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(l.MaterialName, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.money(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func (g *MarotoPurchaseOrderPDF) totalRow(order *entity.PurchaseOrder) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(g.money(order.Total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// money importe con separadores de miles del locale y dos decimales.
func (g *MarotoPurchaseOrderPDF) money(d decimal.Decimal) string {
	return g.printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
