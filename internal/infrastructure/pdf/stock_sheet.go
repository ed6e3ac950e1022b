// Package pdf genera la hoja de stock de un hub en A4.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del hub + ciudad  │  Fecha de generación     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Nombre | Cantidad | Umbral | Estado            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: SKUs / unidades / bajo stock                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"time"

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

	"github.com/jhoicas/hub-inventory/internal/application/reporting"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 190, Green: 30, Blue: 45}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoStockSheetGenerator implementa reporting.StockSheetGenerator usando Maroto v2.
type MarotoStockSheetGenerator struct{}

var _ reporting.StockSheetGenerator = (*MarotoStockSheetGenerator)(nil)

// NewMarotoStockSheetGenerator construye el generador.
func NewMarotoStockSheetGenerator() *MarotoStockSheetGenerator { return &MarotoStockSheetGenerator{} }

// GenerateStockSheet genera el PDF y devuelve sus bytes.
func (g *MarotoStockSheetGenerator) GenerateStockSheet(
	hub *entity.Hub,
	rows []repository.StockRow,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Stock sheet "+hub.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(hub, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(rows)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(hub *entity.Hub, at time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(hub.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(hub.City, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("HOJA DE STOCK", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(at.UTC().Format("2006-01-02 15:04 UTC"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 3, align.Left),
		h("Nombre", 5, align.Left),
		h("Cantidad", 2, align.Right),
		h("Umbral", 1, align.Right),
		h("", 1, align.Center),
	)
}

// tableRows una fila por par (hub, sku); las filas bajo el umbral se marcan en rojo.
func tableRows(rows []repository.StockRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		cell := props.Text{Size: 8, Top: 1, Left: 1, Right: 1}
		flag := ""
		if r.Quantity < int64(r.LowStockThreshold) {
			cell.Color = colorAlert
			flag = "BAJO"
		}
		right := cell
		right.Align = align.Right
		center := cell
		center.Align = align.Center
		center.Style = fontstyle.Bold

		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(r.SKUCode, cell)),
			col.New(5).Add(text.New(r.SKUName, cell)),
			col.New(2).Add(text.New(strconv.FormatInt(r.Quantity, 10), right)),
			col.New(1).Add(text.New(strconv.Itoa(r.LowStockThreshold), right)),
			col.New(1).Add(text.New(flag, center)),
		))
	}
	return result
}

func summaryRow(rows []repository.StockRow) core.Row {
	var units int64
	low := 0
	for _, r := range rows {
		units += r.Quantity
		if r.Quantity < int64(r.LowStockThreshold) {
			low++
		}
	}
	return row.New(10).Add(
		col.New(12).Add(text.New(
			fmt.Sprintf("SKUs: %d   |   Unidades: %d   |   Bajo stock: %d", len(rows), units, low),
			props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2, Right: 1},
		)),
	)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
