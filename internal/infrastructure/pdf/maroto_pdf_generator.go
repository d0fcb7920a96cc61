// Package pdf genera la nota de entrega de una venta.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Bodega               │  N° Nota + Fecha             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + estado de pago / entrega                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LOTE: Nombre | Productor | Atributos | Volumen             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | IVA | Subtotal         │
//	│  TOTALES: Subtotal / IVA / TOTAL                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el id de la venta + firmas                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	appsales "github.com/jhoicas/Inventario-lotes/internal/application/sales"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

var _ appsales.SaleNotePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// printer separador de miles con punto (es-CO).
var printer = message.NewPrinter(language.Spanish)

var paymentLabels = map[string]string{
	entity.PaymentStatusPending:       "Pendiente",
	entity.PaymentStatusPaid:          "Pagada",
	entity.PaymentStatusPartiallyPaid: "Pago parcial",
	entity.PaymentStatusCancelled:     "Anulada",
}

var deliveryLabels = map[string]string{
	entity.DeliveryStatusPending:    "Pendiente",
	entity.DeliveryStatusInProgress: "En curso",
	entity.DeliveryStatusDelivered:  "Entregada",
	entity.DeliveryStatusCancelled:  "Anulada",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa sales.SaleNotePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateSaleNote genera la nota de entrega y devuelve sus bytes.
// Warehouse y Template pueden ser nil.
func (g *MarotoPDFGenerator) GenerateSaleNote(_ context.Context, note appsales.SaleNote) ([]byte, error) {
	if note.Sale == nil || note.Lot == nil {
		return nil, fmt.Errorf("pdf: nota sin venta o sin lote")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Nota de entrega", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(note))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(note.Sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(lotRows(note)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(detailRow(note))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(note.Sale))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(note.Sale)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(note appsales.SaleNote) core.Row {
	warehouse := "Bodega"
	address := ""
	if note.Warehouse != nil {
		warehouse = note.Warehouse.Name
		address = note.Warehouse.Address
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(warehouse, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(address, "—"), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("NOTA DE ENTREGA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(note.Sale.ID), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+note.Sale.SaleDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func customerRow(s *entity.Sale) core.Row {
	delivered := "—"
	if s.DeliveryDate != nil {
		delivered = s.DeliveryDate.Format("02/01/2006")
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(s.CustomerName, "Cliente de mostrador"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Pago: %s   |   Entrega: %s   |   Entregado el: %s",
				label(paymentLabels, s.PaymentStatus),
				label(deliveryLabels, s.DeliveryStatus),
				delivered,
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// lotRows: datos del lote y sus atributos en orden de la plantilla (o alfabético sin plantilla).
func lotRows(note appsales.SaleNote) []core.Row {
	lot := note.Lot
	rows := []core.Row{
		row.New(12).Add(col.New(12).Add(
			text.New("LOTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%s   |   Productor: %s", lot.Name, nonEmpty(lot.Producer, "—")),
				props.Text{Size: 9, Top: 6}),
		)),
	}
	if attrs := attributeLine(note); attrs != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(attrs, props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}
	if lot.CalculatedVolume != nil {
		unit := ""
		if note.Template != nil {
			unit = " " + note.Template.Unit
		}
		vol := lot.CalculatedVolume.Mul(decimal.NewFromInt(note.Sale.Quantity))
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Volumen por unidad: %s%s   |   Volumen entregado: %s%s",
				formatNumber(*lot.CalculatedVolume, 3), unit, formatNumber(vol, 3), unit),
				props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}
	return rows
}

func attributeLine(note appsales.SaleNote) string {
	attrs := note.Lot.Attributes
	if len(attrs) == 0 {
		return ""
	}
	var parts []string
	if note.Template != nil {
		for _, a := range note.Template.Attributes {
			if v, ok := attrs[a.Variable]; ok {
				parts = append(parts, fmt.Sprintf("%s: %s", note.Template.DisplayName(a.Variable), v.Display()))
			}
		}
	} else {
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, attrs[k].Display()))
		}
	}
	return strings.Join(parts, "   |   ")
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("IVA%", 1, align.Center),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func detailRow(note appsales.SaleNote) core.Row {
	s := note.Sale
	return row.New(7).Add(
		col.New(1).Add(text.New(printer.Sprintf("%d", s.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(5).Add(text.New(note.Lot.Name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
		col.New(2).Add(text.New("$"+formatNumber(s.UnitPrice, 2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(1).Add(text.New(s.VATRate.String()+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(3).Add(text.New("$"+formatNumber(s.PriceWithoutVAT, 2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func totalsRow(s *entity.Sale) core.Row {
	lbl := func(v string, grand bool) core.Component {
		p := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2}
		if grand {
			p.Size, p.Color = 10, colorPrimary
		}
		return text.New(v, p)
	}
	val := func(v string, grand bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 1}
		if grand {
			p.Style, p.Size, p.Color = fontstyle.Bold, 10, colorPrimary
		}
		return text.New(v, p)
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(lbl("Subtotal:", false), lbl("IVA:", false), lbl("TOTAL:", true)),
		col.New(3).Add(
			val("$"+formatNumber(s.PriceWithoutVAT, 2), false),
			val("$"+formatNumber(s.VATAmount, 2), false),
			val("$"+formatNumber(s.TotalPrice, 2), true),
		),
	)
}

func footerRows(s *entity.Sale) []core.Row {
	return []core.Row{
		line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}),
		row.New(40).Add(
			col.New(3).Add(code.NewQr(s.ID, props.Rect{Percent: 90, Center: true})),
			col.New(9).Add(
				text.New("Venta "+s.ID, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
				text.New("Recibí conforme: ______________________________", props.Text{Size: 9, Top: 18, Left: 3}),
				text.New("Entregó: ______________________________", props.Text{Size: 9, Top: 28, Left: 3}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func label(labels map[string]string, status string) string {
	if l, ok := labels[status]; ok {
		return l
	}
	return status
}

func shortID(id string) string {
	if len(id) > 8 {
		return "N° " + strings.ToUpper(id[:8])
	}
	return "N° " + strings.ToUpper(id)
}

// formatNumber separador de miles con punto y coma decimal. Ej: 1234567.5 → "1.234.567,50".
func formatNumber(d decimal.Decimal, places int32) string {
	d = d.Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	intPart := printer.Sprintf("%d", d.IntPart())
	if places <= 0 {
		return sign + intPart
	}
	frac := d.StringFixed(places)
	frac = frac[strings.IndexByte(frac, '.')+1:]
	return sign + intPart + "," + frac
}
