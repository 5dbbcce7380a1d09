// Package pdf genera la representación impresa de la nota de taxación.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Autoridad + título  │  N° Nota + Ejercicio          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ASSUJETTI: Nombre + ID fiscal + contacto                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  IMPORTES: Bruto / Neto / Penalidad / TOTAL / Moneda local   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con código de pago + vencimiento                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

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

	"github.com/jhoicas/redevance-api/internal/application/ports"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.NotePDFGenerator = (*MarotoNoteGenerator)(nil)

// MarotoNoteGenerator implementa ports.NotePDFGenerator usando Maroto v2.
type MarotoNoteGenerator struct {
	authority string
}

// NewMarotoNoteGenerator construye el generador. authority aparece en el encabezado.
func NewMarotoNoteGenerator(authority string) *MarotoNoteGenerator {
	if authority == "" {
		authority = "Régie de la redevance audiovisuelle"
	}
	return &MarotoNoteGenerator{authority: authority}
}

// Generate genera el PDF y devuelve sus bytes.
func (g *MarotoNoteGenerator) Generate(doc ports.NoteDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Note de taxation "+doc.Note.Number, true).
		WithAuthor(g.authority, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.authority, &doc.Note))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(assujettiRow(&doc.Assujetti))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(amountsRow(&doc.Note))
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(paymentRows(&doc.Note, doc.PaymentToken)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(authority string, n *entity.TaxationNote) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(authority, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("NOTE DE TAXATION", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(n.Number, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1,
			}),
			text.New(fmt.Sprintf("Exercice: %d", n.FiscalYear), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Émise le: "+n.IssueDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func assujettiRow(a *entity.Assujetti) core.Row {
	fiscalID := "-"
	if a.FiscalID != nil {
		fiscalID = *a.FiscalID
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("ASSUJETTI", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(a.Name, "-"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("ID fiscal: %s   |   Email: %s   |   Tél: %s",
				fiscalID,
				nonEmpty(a.Email, "-"),
				nonEmpty(a.Phone, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func amountsRow(n *entity.TaxationNote) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	labels := []core.Component{
		label("Montant brut:"),
		label("Montant net:"),
		label("Pénalités:"),
		text.New("TOTAL DÛ:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
		}),
	}
	values := []core.Component{
		value(money(n.GrossAmount, n.Currency)),
		value(money(n.NetAmount, n.Currency)),
		value(money(n.PenaltyAmount, n.Currency)),
		text.New(money(n.TotalDue, n.Currency), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
		}),
	}
	if n.LocalCurrency != "" && n.LocalCurrency != n.Currency {
		labels = append(labels, label("Contre-valeur:"))
		values = append(values, value(money(n.TotalDueLocal, n.LocalCurrency)))
	}
	return row.New(30).Add(
		col.New(3),
		col.New(3).Add(labels...),
		col.New(3).Add(values...),
		col.New(3),
	)
}

func paymentRows(n *entity.TaxationNote, token string) []core.Row {
	due := "Échéance: " + n.DueDate.Format("02/01/2006")
	if token == "" {
		return []core.Row{row.New(10).Add(col.New(12).Add(
			text.New(due, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 2}),
		))}
	}
	return []core.Row{
		row.New(50).Add(
			col.New(4).Add(code.NewQr(token, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New("Présentez ce code au guichet de paiement.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New(token, props.Text{Size: 7, Top: 12, Left: 3}),
				text.New(due, props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 22, Left: 3, Color: colorPrimary,
				}),
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

// money formatea con dos decimales y separador de miles.
// Ej: 128250 CDF → "128.250,00 CDF"
func money(d decimal.Decimal, currency string) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	out := formatThousands(intPart) + "," + frac
	if d.IsNegative() {
		out = "-" + out
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
