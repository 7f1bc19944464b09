package render

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/invoice/totals"
)

// Company is the issuer letterhead.
type Company struct {
	Name        string
	Tagline     string
	Address     string
	Email       string
	Phone       string
	Website     string
	TaxID       string
	BankName    string
	BankAccount string
	BankIFSC    string
	BankBranch  string
	BankSwift   string
	Signatory   string
	// LogoDataURI is an inline data: URI so rendering needs no network access.
	LogoDataURI string
	LogoBytes   []byte
}

type Party struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	Country    string
	Region     string
	RegionCode string
	PostalCode string
	TaxID      string
}

type Line struct {
	Position    int
	ServiceName string
	SAC         string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// Document is a fully resolved, self-contained description of one rendered
// invoice. Nothing is looked up while rendering it.
type Document struct {
	Title          string
	DocumentType   domain.DocumentType
	Jurisdiction   domain.Jurisdiction
	InvoiceNo      string
	InvoiceDate    time.Time
	DueDate        *time.Time
	Currency       string
	CurrencySymbol string

	Client Party
	Items  []Line

	Subtotal decimal.Decimal
	CGST     decimal.Decimal
	SGST     decimal.Decimal
	IGST     decimal.Decimal
	Total    decimal.Decimal

	// Percentages printed next to the tax rows, e.g. "9".
	CGSTPercent string
	SGSTPercent string
	IGSTPercent string

	AmountInWords string
	Company       Company
}

// Job is what an Engine receives: the HTML page plus the document it was
// built from, for engines that lay out natively.
type Job struct {
	HTML     string
	Document Document
}

// Engine turns a Job into PDF bytes. Implementations must release every
// resource they acquire before returning, on success and on failure.
type Engine interface {
	Name() string
	Print(ctx context.Context, job Job) ([]byte, error)
}

// Title returns the heading printed on the document.
func Title(docType domain.DocumentType, jurisdiction domain.Jurisdiction) string {
	switch {
	case docType == domain.DocumentTypeProforma:
		return "PROFORMA INVOICE"
	case jurisdiction == domain.JurisdictionGlobal:
		return "INVOICE"
	default:
		return "TAX INVOICE"
	}
}

func CurrencySymbol(currency string) string {
	switch currency {
	case "INR":
		return "₹"
	case "USD":
		return "$"
	default:
		return currency + " "
	}
}

// BuildDocument resolves a persisted invoice into a Document. Totals are
// recomputed from inv.Items; the stored header totals are ignored.
func BuildDocument(inv domain.Invoice, company Company, rules config.TaxRules) (Document, error) {
	computed, err := totals.Compute(totals.Settle(totals.FromItems(inv.Items)), inv.Jurisdiction, rules)
	if err != nil {
		return Document{}, err
	}
	rounded := computed.Rounded()

	doc := Document{
		Title:          Title(inv.DocumentType, inv.Jurisdiction),
		DocumentType:   inv.DocumentType,
		Jurisdiction:   inv.Jurisdiction,
		InvoiceNo:      inv.InvoiceNo,
		InvoiceDate:    inv.InvoiceDate,
		Currency:       inv.Currency,
		CurrencySymbol: CurrencySymbol(inv.Currency),
		Client: Party{
			Name:       inv.ClientName,
			Email:      inv.ClientEmail,
			Phone:      inv.ClientPhone,
			Address:    inv.ClientAddress,
			Country:    inv.ClientCountry,
			Region:     inv.ClientRegion,
			RegionCode: deref(inv.ClientRegionCode),
			PostalCode: inv.ClientPostalCode,
			TaxID:      deref(inv.ClientTaxID),
		},
		Items:         make([]Line, len(inv.Items)),
		Subtotal:      rounded.Subtotal,
		CGST:          rounded.CGST,
		SGST:          rounded.SGST,
		IGST:          rounded.IGST,
		Total:         rounded.Total,
		CGSTPercent:   percent(rules.DomesticComponentRate),
		SGSTPercent:   percent(rules.DomesticComponentRate),
		IGSTPercent:   percent(rules.CrossBorderRate),
		AmountInWords: AmountToWords(rounded.Total, inv.Currency),
		Company:       company,
	}
	if inv.DocumentType == domain.DocumentTypeProforma {
		doc.DueDate = inv.DueDate
	}
	for i, item := range inv.Items {
		doc.Items[i] = Line{
			Position:    i + 1,
			ServiceName: item.ServiceName,
			SAC:         deref(item.SAC),
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      rounded.Lines[i],
		}
	}
	return doc, nil
}

func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
