package render

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleInvoice(docType domain.DocumentType, j domain.Jurisdiction) domain.Invoice {
	due := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	return domain.Invoice{
		InvoiceNo:        "INV/2024/001",
		DocumentType:     docType,
		Jurisdiction:     j,
		InvoiceDate:      time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		DueDate:          &due,
		ClientName:       "Acme Pvt Ltd",
		ClientEmail:      "billing@acme.test",
		ClientPhone:      "+91 99999 00000",
		ClientAddress:    "1 MG Road",
		ClientCountry:    "India",
		ClientRegion:     "Karnataka",
		ClientRegionCode: strPtr("29"),
		ClientPostalCode: "560001",
		ClientTaxID:      strPtr("29ABCDE1234F1Z5"),
		Currency:         j.Currency(),
		// Stale header totals must not leak into the document.
		Total: decimal.RequireFromString("1"),
		Items: []domain.InvoiceItem{{
			ServiceName: "Website design",
			SAC:         strPtr("998314"),
			Quantity:    decimal.RequireFromString("2"),
			Rate:        decimal.RequireFromString("500.00"),
			Amount:      decimal.Zero,
		}},
	}
}

func TestBuildDocumentRecomputesTotals(t *testing.T) {
	doc, err := BuildDocument(sampleInvoice(domain.DocumentTypeInvoice, domain.JurisdictionDomestic), Company{Name: "Billdesk"}, config.DefaultTaxRules())
	require.NoError(t, err)

	assert.Equal(t, "TAX INVOICE", doc.Title)
	assert.Equal(t, "₹", doc.CurrencySymbol)
	assert.Equal(t, "1000.00", doc.Subtotal.StringFixed(2))
	assert.Equal(t, "90.00", doc.CGST.StringFixed(2))
	assert.Equal(t, "1180.00", doc.Total.StringFixed(2))
	assert.Equal(t, "1000.00", doc.Items[0].Amount.StringFixed(2))
	assert.Equal(t, "Rupees One Thousand One Hundred Eighty Only", doc.AmountInWords)
	assert.Nil(t, doc.DueDate, "due date is only printed on proformas")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "PROFORMA INVOICE", Title(domain.DocumentTypeProforma, domain.JurisdictionDomestic))
	assert.Equal(t, "PROFORMA INVOICE", Title(domain.DocumentTypeProforma, domain.JurisdictionGlobal))
	assert.Equal(t, "INVOICE", Title(domain.DocumentTypeInvoice, domain.JurisdictionGlobal))
	assert.Equal(t, "TAX INVOICE", Title(domain.DocumentTypeInvoice, domain.JurisdictionDomestic))
}

func TestRenderHTMLDomestic(t *testing.T) {
	doc, err := BuildDocument(sampleInvoice(domain.DocumentTypeProforma, domain.JurisdictionDomestic), Company{Name: "Billdesk", BankName: "HDFC"}, config.DefaultTaxRules())
	require.NoError(t, err)

	page, err := NewHTMLRenderer().RenderHTML(doc)
	require.NoError(t, err)

	assert.Contains(t, page, "PROFORMA INVOICE")
	assert.Contains(t, page, "INV/2024/001")
	assert.Contains(t, page, "CGST (9%)")
	assert.Contains(t, page, "SGST (9%)")
	assert.Contains(t, page, "₹1,180.00")
	assert.Contains(t, page, "Valid until")
	assert.Contains(t, page, "Authorised Signatory")
	assert.Contains(t, page, "HDFC")
}

func TestRenderHTMLGlobalHasNoDomesticTax(t *testing.T) {
	inv := sampleInvoice(domain.DocumentTypeInvoice, domain.JurisdictionGlobal)
	doc, err := BuildDocument(inv, Company{Name: "Billdesk"}, config.DefaultTaxRules())
	require.NoError(t, err)

	page, err := NewHTMLRenderer().RenderHTML(doc)
	require.NoError(t, err)
	assert.NotContains(t, page, "CGST")
	assert.NotContains(t, page, "IGST")
	assert.Contains(t, page, "$1,000.00")
	assert.Contains(t, page, "USD One Thousand Only")
}

func TestRenderHTMLIsDeterministic(t *testing.T) {
	doc, err := BuildDocument(sampleInvoice(domain.DocumentTypeInvoice, domain.JurisdictionDomestic), Company{Name: "Billdesk"}, config.DefaultTaxRules())
	require.NoError(t, err)
	r := NewHTMLRenderer()
	a, _ := r.RenderHTML(doc)
	b, _ := r.RenderHTML(doc)
	assert.Equal(t, a, b)
}

func TestRenderHTMLEscapesClientInput(t *testing.T) {
	inv := sampleInvoice(domain.DocumentTypeInvoice, domain.JurisdictionGlobal)
	inv.ClientName = `<script>alert(1)</script>`
	doc, err := BuildDocument(inv, Company{Name: "Billdesk", LogoDataURI: "javascript:alert(1)"}, config.DefaultTaxRules())
	require.NoError(t, err)

	page, err := NewHTMLRenderer().RenderHTML(doc)
	require.NoError(t, err)
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.NotContains(t, page, "javascript:alert")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "₹12,34,567.50", formatMoney("₹", decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "$1,234,567.50", formatMoney("$", decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "$999.00", formatMoney("$", decimal.RequireFromString("999")))
	assert.Equal(t, "₹0.00", formatMoney("₹", decimal.Zero))
}
