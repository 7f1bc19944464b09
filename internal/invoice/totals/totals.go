// Package totals computes invoice line amounts, tax components and grand
// totals. Everything here is pure: no I/O, no clock, no rounding until the
// caller asks for presentation values.
package totals

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
)

// Line is one parsed line item. Amount, when positive, overrides Quantity x Rate.
type Line struct {
	Quantity decimal.Decimal
	Rate     decimal.Decimal
	Amount   decimal.Decimal
}

// Totals holds unrounded results; Lines are the resolved per-line amounts.
type Totals struct {
	Lines    []decimal.Decimal
	Subtotal decimal.Decimal
	CGST     decimal.Decimal
	SGST     decimal.Decimal
	IGST     decimal.Decimal
	Total    decimal.Decimal
}

// Compute resolves line amounts and the tax split for the jurisdiction.
// DOMESTIC splits tax into two equal components; GLOBAL uses the single
// cross-border component.
func Compute(lines []Line, jurisdiction domain.Jurisdiction, rules config.TaxRules) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, domain.ErrEmptyItems
	}
	if !jurisdiction.Valid() {
		return Totals{}, domain.ErrInvalidJurisdiction
	}

	out := Totals{
		Lines:    make([]decimal.Decimal, len(lines)),
		Subtotal: decimal.Zero,
		CGST:     decimal.Zero,
		SGST:     decimal.Zero,
		IGST:     decimal.Zero,
	}
	for i, line := range lines {
		if line.Quantity.IsNegative() || line.Rate.IsNegative() || line.Amount.IsNegative() {
			return Totals{}, domain.ErrBadNumber
		}
		amount := line.Amount
		if !amount.IsPositive() {
			amount = line.Quantity.Mul(line.Rate)
		}
		out.Lines[i] = amount
		out.Subtotal = out.Subtotal.Add(amount)
	}

	switch jurisdiction {
	case domain.JurisdictionDomestic:
		component := out.Subtotal.Mul(rules.DomesticComponentRate)
		out.CGST = component
		out.SGST = component
	case domain.JurisdictionGlobal:
		out.IGST = out.Subtotal.Mul(rules.CrossBorderRate)
	}

	out.Total = out.Subtotal.Add(out.CGST).Add(out.SGST).Add(out.IGST)
	return out, nil
}

// Settle fixes each line at the precision it is stored and printed with:
// quantity and rate to four places, the line amount to two. Subtotal and tax
// are still accumulated unrounded from the settled amounts. Settling is
// idempotent, so settled request lines and rows read back from storage yield
// the same totals.
func Settle(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, line := range lines {
		qty := line.Quantity.Round(4)
		rate := line.Rate.Round(4)
		amount := line.Amount
		if !amount.IsPositive() {
			amount = qty.Mul(rate)
		}
		out[i] = Line{Quantity: qty, Rate: rate, Amount: amount.Round(2)}
	}
	return out
}

// Rounded returns the totals rounded half-up to two places, for persistence
// and display. The domestic components are rounded individually so they stay
// equal, and the total is re-derived from the rounded parts.
func (t Totals) Rounded() Totals {
	r := Totals{
		Lines:    make([]decimal.Decimal, len(t.Lines)),
		Subtotal: t.Subtotal.Round(2),
		CGST:     t.CGST.Round(2),
		SGST:     t.SGST.Round(2),
		IGST:     t.IGST.Round(2),
	}
	for i, l := range t.Lines {
		r.Lines[i] = l.Round(2)
	}
	r.Total = r.Subtotal.Add(r.CGST).Add(r.SGST).Add(r.IGST)
	return r
}

// ParseAmount parses a decimal string. Blank means zero; anything that is not
// a plain decimal number fails with domain.ErrBadNumber.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.ErrBadNumber
	}
	if v.IsNegative() {
		return decimal.Zero, domain.ErrBadNumber
	}
	return v, nil
}

// ParseLines converts request line items into Lines, naming the offending
// field on failure.
func ParseLines(items []domain.LineItemInput) ([]Line, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyItems
	}
	lines := make([]Line, len(items))
	for i, item := range items {
		qty, err := ParseAmount(string(item.Quantity))
		if err != nil {
			return nil, domain.NewFieldError(fieldName(i, "quantity"), err)
		}
		rate, err := ParseAmount(string(item.Rate))
		if err != nil {
			return nil, domain.NewFieldError(fieldName(i, "rate"), err)
		}
		amount, err := ParseAmount(string(item.Amount))
		if err == nil && !amount.Equal(amount.Round(2)) {
			err = domain.ErrBadNumber
		}
		if err != nil {
			return nil, domain.NewFieldError(fieldName(i, "amount"), err)
		}
		lines[i] = Line{Quantity: qty, Rate: rate, Amount: amount}
	}
	return lines, nil
}

// FromItems rebuilds Lines from persisted rows, so totals are always derived
// from what is stored rather than from client input. Stored amounts are
// already settled.
func FromItems(items []domain.InvoiceItem) []Line {
	lines := make([]Line, len(items))
	for i, item := range items {
		lines[i] = Line{Quantity: item.Quantity, Rate: item.Rate, Amount: item.Amount}
	}
	return lines
}

func fieldName(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}
