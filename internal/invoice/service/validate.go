package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/invoice/totals"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// draftInvoice is a validated request with its totals resolved. The header
// has no identity yet.
type draftInvoice struct {
	header invoicedomain.Invoice
	inputs []invoicedomain.LineItemInput
	lines  []totals.Line
	totals totals.Totals
}

// prepare validates input and computes totals. Nothing is written on failure.
func (s *Service) prepare(in invoicedomain.InvoiceInput) (*draftInvoice, error) {
	docType := invoicedomain.DocumentType(strings.ToUpper(strings.TrimSpace(string(in.DocumentType))))
	if docType == "" {
		docType = invoicedomain.DocumentTypeInvoice
	}
	if !docType.Valid() {
		return nil, invoicedomain.NewFieldError("document_type", invoicedomain.ErrInvalidDocumentType)
	}

	jurisdiction := invoicedomain.Jurisdiction(strings.ToUpper(strings.TrimSpace(string(in.Jurisdiction))))
	if jurisdiction == "" {
		jurisdiction = invoicedomain.JurisdictionDomestic
	}
	if !jurisdiction.Valid() {
		return nil, invoicedomain.NewFieldError("jurisdiction", invoicedomain.ErrInvalidJurisdiction)
	}

	client := normalizeClient(in.Client, jurisdiction)
	if err := validateClient(client, jurisdiction); err != nil {
		return nil, err
	}

	if len(in.Items) == 0 {
		return nil, invoicedomain.NewFieldError("items", invoicedomain.ErrEmptyItems)
	}
	for i, item := range in.Items {
		if strings.TrimSpace(item.ServiceName) == "" {
			return nil, invoicedomain.NewFieldError(itemField(i, "service_name"), invoicedomain.ErrMissingClientField)
		}
	}
	parsed, err := totals.ParseLines(in.Items)
	if err != nil {
		return nil, err
	}
	lines := totals.Settle(parsed)
	computed, err := totals.Compute(lines, jurisdiction, s.taxRules.Get())
	if err != nil {
		return nil, err
	}
	rounded := computed.Rounded()

	invoiceDate := s.clock.Now()
	if raw := strings.TrimSpace(in.InvoiceDate); raw != "" {
		invoiceDate, err = time.Parse(dateLayout, raw)
		if err != nil {
			return nil, invoicedomain.NewFieldError("invoice_date", invoicedomain.ErrInvalidDate)
		}
	}
	var dueDate *time.Time
	if docType == invoicedomain.DocumentTypeProforma {
		dueDate, err = parseOptionalDate("due_date", in.DueDate)
		if err != nil {
			return nil, err
		}
		if dueDate != nil && dueDate.Before(truncateDay(invoiceDate)) {
			return nil, invoicedomain.NewFieldError("due_date", invoicedomain.ErrInvalidDate)
		}
	}

	return &draftInvoice{
		header: invoicedomain.Invoice{
			DocumentType:     docType,
			Jurisdiction:     jurisdiction,
			InvoiceDate:      invoiceDate,
			DueDate:          dueDate,
			ClientName:       client.Name,
			ClientEmail:      client.Email,
			ClientPhone:      client.Phone,
			ClientAddress:    client.Address,
			ClientCountry:    client.Country,
			ClientRegion:     client.Region,
			ClientRegionCode: optional(client.RegionCode),
			ClientPostalCode: client.PostalCode,
			ClientTaxID:      optional(client.TaxID),
			Currency:         jurisdiction.Currency(),
			Subtotal:         rounded.Subtotal,
			CGST:             rounded.CGST,
			SGST:             rounded.SGST,
			IGST:             rounded.IGST,
			Total:            rounded.Total,
		},
		inputs: in.Items,
		lines:  lines,
		totals: rounded,
	}, nil
}

// items builds fresh rows for invoiceID in request order.
func (d *draftInvoice) items(gen *snowflake.Node, invoiceID snowflake.ID, now time.Time) []invoicedomain.InvoiceItem {
	return lo.Map(d.inputs, func(in invoicedomain.LineItemInput, i int) invoicedomain.InvoiceItem {
		return invoicedomain.InvoiceItem{
			ID:          gen.Generate(),
			InvoiceID:   invoiceID,
			Position:    i + 1,
			ServiceName: strings.TrimSpace(in.ServiceName),
			SAC:         optional(in.SAC),
			Description: strings.TrimSpace(in.Description),
			Quantity:    d.lines[i].Quantity,
			Rate:        d.lines[i].Rate,
			Amount:      d.lines[i].Amount,
		}
	})
}

func normalizeClient(c invoicedomain.ClientDetails, jurisdiction invoicedomain.Jurisdiction) invoicedomain.ClientDetails {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.Country = strings.TrimSpace(c.Country)
	c.Region = strings.TrimSpace(c.Region)
	c.RegionCode = strings.TrimSpace(c.RegionCode)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
	c.TaxID = strings.ToUpper(strings.TrimSpace(c.TaxID))
	if jurisdiction == invoicedomain.JurisdictionDomestic && c.Country == "" {
		c.Country = "India"
	}
	return c
}

func validateClient(c invoicedomain.ClientDetails, jurisdiction invoicedomain.Jurisdiction) error {
	required := []struct {
		field string
		value string
	}{
		{"client.name", c.Name},
		{"client.email", c.Email},
		{"client.phone", c.Phone},
		{"client.address", c.Address},
		{"client.country", c.Country},
		{"client.region", c.Region},
		{"client.postal_code", c.PostalCode},
	}
	for _, r := range required {
		if r.value == "" {
			return invoicedomain.NewFieldError(r.field, invoicedomain.ErrMissingClientField)
		}
	}
	if err := validate.Var(c.Email, "email"); err != nil {
		return invoicedomain.NewFieldError("client.email", invoicedomain.ErrInvalidEmail)
	}
	if jurisdiction == invoicedomain.JurisdictionDomestic && c.RegionCode == "" {
		return invoicedomain.NewFieldError("client.region_code", invoicedomain.ErrMissingTaxID)
	}
	return nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, invoicedomain.NewFieldError(field, invoicedomain.ErrInvalidDate)
	}
	return &t, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func itemField(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}
