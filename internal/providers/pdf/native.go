package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/h2non/filetype"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
)

// NativeProvider lays the document out with maroto, for hosts without a
// browser. It ignores job.HTML and draws from job.Document.
type NativeProvider struct{}

func NewNativeProvider() *NativeProvider {
	return &NativeProvider{}
}

func (p *NativeProvider) Name() string { return "native" }

func (p *NativeProvider) Print(ctx context.Context, job render.Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := job.Document
	// The core fonts have no rupee glyph.
	symbol := doc.Currency + " "

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	if ext, ok := logoExtension(doc.Company.LogoBytes); ok {
		m.AddRow(16,
			image.NewFromBytesCol(2, doc.Company.LogoBytes, ext, props.Rect{Percent: 90}),
			text.NewCol(5, doc.Company.Name, props.Text{Size: 16, Style: fontstyle.Bold, Top: 3}),
			text.NewCol(5, doc.Company.Email, props.Text{Size: 9, Align: align.Right}),
		)
	} else {
		m.AddRow(12,
			text.NewCol(7, doc.Company.Name, props.Text{Size: 16, Style: fontstyle.Bold}),
			text.NewCol(5, doc.Company.Email, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(14,
		text.NewCol(7, doc.Company.Address, props.Text{Size: 9}),
		text.NewCol(5, taxLine("GSTIN", doc.Company.TaxID), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	m.AddRow(14,
		text.NewCol(12, doc.Title, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center, Top: 4}),
	)

	meta := col.New(6).Add(
		text.New("Invoice no: "+doc.InvoiceNo, props.Text{Size: 9, Align: align.Right}),
		text.New("Date: "+doc.InvoiceDate.Format("02 Jan 2006"), props.Text{Size: 9, Top: 5, Align: align.Right}),
	)
	if doc.DueDate != nil {
		meta.Add(text.New("Valid until: "+doc.DueDate.Format("02 Jan 2006"), props.Text{Size: 9, Top: 10, Align: align.Right}))
	}
	m.AddRow(32,
		col.New(6).Add(
			text.New("Bill to", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(doc.Client.Name, props.Text{Size: 9, Top: 5}),
			text.New(doc.Client.Address, props.Text{Size: 9, Top: 10}),
			text.New(fmt.Sprintf("%s %s, %s", doc.Client.Region, doc.Client.PostalCode, doc.Client.Country), props.Text{Size: 9, Top: 15}),
			text.New(doc.Client.Email+" | "+doc.Client.Phone, props.Text{Size: 9, Top: 20}),
			text.New(taxLine("GSTIN", doc.Client.TaxID), props.Text{Size: 9, Top: 25}),
		),
		meta,
	)

	header := props.Text{Size: 9, Style: fontstyle.Bold}
	right := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	m.AddRow(8,
		text.NewCol(1, "SL", header),
		text.NewCol(5, "Service", header),
		text.NewCol(2, "SAC", header),
		text.NewCol(1, "Qty", right),
		text.NewCol(1, "Rate", right),
		text.NewCol(2, "Amount", right),
	)
	m.AddRow(1, line.NewCol(12))

	cell := props.Text{Size: 9}
	cellRight := props.Text{Size: 9, Align: align.Right}
	for _, item := range doc.Items {
		m.AddRow(8,
			text.NewCol(1, fmt.Sprintf("%d", item.Position), cell),
			text.NewCol(5, item.ServiceName, cell),
			text.NewCol(2, item.SAC, cell),
			text.NewCol(1, item.Quantity.String(), cellRight),
			text.NewCol(1, item.Rate.StringFixed(2), cellRight),
			text.NewCol(2, money(symbol, item.Amount), cellRight),
		)
	}
	m.AddRow(1, line.NewCol(12))

	totalRow := func(label string, value decimal.Decimal, bold bool) {
		p := props.Text{Size: 9, Align: align.Right}
		if bold {
			p.Style = fontstyle.Bold
		}
		m.AddRow(7, col.New(7), text.NewCol(3, label, p), text.NewCol(2, money(symbol, value), p))
	}
	totalRow("Subtotal", doc.Subtotal, false)
	if doc.Jurisdiction == "DOMESTIC" {
		totalRow("CGST ("+doc.CGSTPercent+"%)", doc.CGST, false)
		totalRow("SGST ("+doc.SGSTPercent+"%)", doc.SGST, false)
	} else if !doc.IGST.IsZero() {
		totalRow("IGST ("+doc.IGSTPercent+"%)", doc.IGST, false)
	}
	totalRow("Total", doc.Total, true)

	m.AddRow(12, text.NewCol(12, "Amount in words: "+doc.AmountInWords, props.Text{Size: 9, Style: fontstyle.Italic, Top: 4}))

	if doc.Company.BankName != "" {
		m.AddRow(20, col.New(12).Add(
			text.New("Bank details", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(doc.Company.BankName+" "+doc.Company.BankBranch, props.Text{Size: 9, Top: 5}),
			text.New("A/C: "+doc.Company.BankAccount+"  IFSC: "+doc.Company.BankIFSC, props.Text{Size: 9, Top: 10}),
		))
	}
	m.AddRow(20,
		col.New(7),
		col.New(5).Add(
			text.New("For "+doc.Company.Name, props.Text{Size: 9, Align: align.Right}),
			text.New(signatory(doc.Company.Signatory), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 14}),
		),
	)

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

func money(symbol string, v decimal.Decimal) string {
	return symbol + v.StringFixed(2)
}

func taxLine(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func signatory(s string) string {
	if s == "" {
		return "Authorised Signatory"
	}
	return s
}

var _ render.Engine = (*NativeProvider)(nil)

// logoExtension reports the maroto image type for a logo. Only PNG and JPEG
// can be embedded; anything else is left off the native layout.
func logoExtension(logo []byte) (extension.Type, bool) {
	if len(logo) == 0 {
		return "", false
	}
	switch {
	case filetype.Is(logo, "png"):
		return extension.Png, true
	case filetype.Is(logo, "jpg"):
		return extension.Jpg, true
	}
	return "", false
}
