package totals

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeDomesticSplit(t *testing.T) {
	got, err := Compute([]Line{{Quantity: d("2"), Rate: d("500.00")}}, domain.JurisdictionDomestic, config.DefaultTaxRules())
	require.NoError(t, err)

	r := got.Rounded()
	assert.Equal(t, "1000.00", r.Subtotal.StringFixed(2))
	assert.Equal(t, "90.00", r.CGST.StringFixed(2))
	assert.Equal(t, "90.00", r.SGST.StringFixed(2))
	assert.True(t, r.IGST.IsZero())
	assert.Equal(t, "1180.00", r.Total.StringFixed(2))
}

func TestComputeDomesticComponentsAlwaysEqual(t *testing.T) {
	lines := []Line{
		{Quantity: d("3"), Rate: d("333.33")},
		{Quantity: d("0.5"), Rate: d("19.99")},
		{Amount: d("0.01")},
	}
	got, err := Compute(lines, domain.JurisdictionDomestic, config.DefaultTaxRules())
	require.NoError(t, err)
	assert.True(t, got.CGST.Equal(got.SGST))
	assert.True(t, got.Total.Equal(got.Subtotal.Add(got.CGST).Add(got.SGST)))

	r := got.Rounded()
	assert.True(t, r.CGST.Equal(r.SGST))
	assert.True(t, r.Total.Equal(r.Subtotal.Add(r.CGST).Add(r.SGST)))
}

func TestComputeGlobalZeroTax(t *testing.T) {
	got, err := Compute([]Line{{Quantity: d("4"), Rate: d("125.5")}}, domain.JurisdictionGlobal, config.DefaultTaxRules())
	require.NoError(t, err)
	assert.True(t, got.CGST.IsZero())
	assert.True(t, got.SGST.IsZero())
	assert.True(t, got.IGST.IsZero())
	assert.True(t, got.Total.Equal(d("502")))
}

func TestComputeGlobalCrossBorderRate(t *testing.T) {
	rules := config.TaxRules{DomesticComponentRate: d("0.09"), CrossBorderRate: d("0.18")}
	got, err := Compute([]Line{{Amount: d("100")}}, domain.JurisdictionGlobal, rules)
	require.NoError(t, err)
	assert.True(t, got.IGST.Equal(d("18")))
	assert.True(t, got.Total.Equal(d("118")))
}

func TestComputeIsDeterministic(t *testing.T) {
	lines := []Line{{Quantity: d("1.1"), Rate: d("0.1")}, {Quantity: d("7"), Rate: d("14.2857")}}
	a, err := Compute(lines, domain.JurisdictionDomestic, config.DefaultTaxRules())
	require.NoError(t, err)
	b, err := Compute(lines, domain.JurisdictionDomestic, config.DefaultTaxRules())
	require.NoError(t, err)
	assert.Equal(t, a.Total.String(), b.Total.String())
	assert.Equal(t, a.CGST.String(), b.CGST.String())
}

func TestComputeAvoidsFloatDrift(t *testing.T) {
	lines := make([]Line, 10)
	for i := range lines {
		lines[i] = Line{Quantity: d("1"), Rate: d("0.1")}
	}
	got, err := Compute(lines, domain.JurisdictionGlobal, config.DefaultTaxRules())
	require.NoError(t, err)
	assert.Equal(t, "1", got.Subtotal.String())
}

func TestAmountOverridesQuantityTimesRate(t *testing.T) {
	got, err := Compute([]Line{{Quantity: d("2"), Rate: d("500"), Amount: d("750")}}, domain.JurisdictionGlobal, config.DefaultTaxRules())
	require.NoError(t, err)
	assert.True(t, got.Lines[0].Equal(d("750")))
}

func TestComputeRejects(t *testing.T) {
	_, err := Compute(nil, domain.JurisdictionDomestic, config.DefaultTaxRules())
	assert.ErrorIs(t, err, domain.ErrEmptyItems)

	_, err = Compute([]Line{{Quantity: d("-1"), Rate: d("1")}}, domain.JurisdictionDomestic, config.DefaultTaxRules())
	assert.ErrorIs(t, err, domain.ErrBadNumber)

	_, err = Compute([]Line{{Quantity: d("1"), Rate: d("1")}}, domain.Jurisdiction("EU"), config.DefaultTaxRules())
	assert.ErrorIs(t, err, domain.ErrInvalidJurisdiction)
}

func TestParseLines(t *testing.T) {
	lines, err := ParseLines([]domain.LineItemInput{{ServiceName: "Design", Quantity: "2", Rate: "500.00"}})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Rate.Equal(d("500")))
	assert.True(t, lines[0].Amount.IsZero())

	_, err = ParseLines([]domain.LineItemInput{{Quantity: "2"}, {Quantity: "x", Rate: "1"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadNumber)
	var fe *domain.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "items[1].quantity", fe.Field)

	_, err = ParseLines(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyItems)
}

func TestSettleFixesLineAmounts(t *testing.T) {
	settled := Settle([]Line{
		{Quantity: d("1.5"), Rate: d("10.33")},
		{Quantity: d("2"), Rate: d("500"), Amount: d("750")},
	})
	assert.Equal(t, "15.50", settled[0].Amount.StringFixed(2))
	assert.True(t, settled[0].Amount.Equal(d("15.5")))
	assert.True(t, settled[1].Amount.Equal(d("750")))

	again := Settle(settled)
	for i := range settled {
		assert.True(t, again[i].Amount.Equal(settled[i].Amount))
		assert.True(t, again[i].Quantity.Equal(settled[i].Quantity))
		assert.True(t, again[i].Rate.Equal(settled[i].Rate))
	}
}

func TestSettledTotalsAddUpToPrintedLines(t *testing.T) {
	lines := Settle([]Line{
		{Quantity: d("1.5"), Rate: d("10.33")},
		{Quantity: d("1.5"), Rate: d("10.33")},
	})
	got, err := Compute(lines, domain.JurisdictionDomestic, config.DefaultTaxRules())
	require.NoError(t, err)

	r := got.Rounded()
	assert.Equal(t, "31.00", r.Subtotal.StringFixed(2))
	assert.True(t, r.Subtotal.Equal(r.Lines[0].Add(r.Lines[1])))
	assert.Equal(t, "36.58", r.Total.StringFixed(2))
}

func TestParseLinesRejectsSubPaisaAmount(t *testing.T) {
	_, err := ParseLines([]domain.LineItemInput{{Quantity: "1", Rate: "5", Amount: "0.004"}})
	assert.ErrorIs(t, err, domain.ErrBadNumber)

	lines, err := ParseLines([]domain.LineItemInput{{Amount: "1000.000"}})
	require.NoError(t, err)
	assert.True(t, lines[0].Amount.Equal(d("1000")))
}
