package domain

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/pkg/db/pagination"
)

// NumberInput keeps the raw JSON token of a numeric field, quoted or not, so
// that parsing (and its VALIDATION_BAD_NUMBER failure) happens in one place.
type NumberInput string

func (n *NumberInput) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	*n = NumberInput(strings.TrimSpace(raw))
	return nil
}

type ClientDetails struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Country    string `json:"country"`
	Region     string `json:"region"`
	RegionCode string `json:"region_code"`
	PostalCode string `json:"postal_code"`
	TaxID      string `json:"tax_id"`
}

type LineItemInput struct {
	ServiceName string      `json:"service_name"`
	SAC         string      `json:"sac"`
	Description string      `json:"description"`
	Quantity    NumberInput `json:"quantity"`
	Rate        NumberInput `json:"rate"`
	Amount      NumberInput `json:"amount"`
}

// InvoiceInput is the client-supplied part shared by create and update.
type InvoiceInput struct {
	DocumentType DocumentType    `json:"document_type"`
	Jurisdiction Jurisdiction    `json:"jurisdiction"`
	InvoiceDate  string          `json:"invoice_date"`
	DueDate      string          `json:"due_date"`
	Client       ClientDetails   `json:"client"`
	Items        []LineItemInput `json:"items"`
}

type CreateInvoiceRequest struct {
	InvoiceInput
	// SkipNotification suppresses the e-mail for back-office imports.
	SkipNotification bool `json:"skip_notification"`
}

type UpdateInvoiceRequest struct {
	InvoiceInput
	// ExpectedVersion enables the optimistic concurrency check when non-zero.
	ExpectedVersion int64 `json:"expected_version"`
	Notify          bool  `json:"notify"`
}

// InvoiceResult is returned by operations that (re)produce the artifact.
type InvoiceResult struct {
	ID        string          `json:"id"`
	InvoiceNo string          `json:"invoice_no"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	PDFURL    string          `json:"pdf_url"`
	Version   int64           `json:"version"`
	Warnings  []string        `json:"warnings,omitempty"`
}

type ResendResult struct {
	InvoiceNo   string   `json:"invoice_no"`
	PDFURL      string   `json:"pdf_url"`
	Regenerated bool     `json:"regenerated"`
	Sent        bool     `json:"sent"`
	Warnings    []string `json:"warnings,omitempty"`
}

type ListInvoiceRequest struct {
	pagination.Pagination
	Client string        `form:"client"`
	Status InvoiceStatus `form:"status"`
	From   string        `form:"from"`
	To     string        `form:"to"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// Artifact is a rendered PDF ready to be streamed to a caller.
type Artifact struct {
	FileName string
	Content  []byte
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (InvoiceResult, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (InvoiceResult, error)
	Resend(ctx context.Context, id string) (ResendResult, error)
	Delete(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	UpdateStatus(ctx context.Context, id string, status InvoiceStatus) (Invoice, error)
	Download(ctx context.Context, id string) (Artifact, error)
	Preview(ctx context.Context, id string) (string, error)
}
