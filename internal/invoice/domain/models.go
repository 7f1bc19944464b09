// Package domain contains persistence models and contracts for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DocumentType distinguishes tax invoices from proforma (quotation) documents.
type DocumentType string

const (
	DocumentTypeInvoice  DocumentType = "INVOICE"
	DocumentTypeProforma DocumentType = "PROFORMA"
)

func (t DocumentType) Valid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeProforma
}

// Jurisdiction drives tax computation and currency.
type Jurisdiction string

const (
	JurisdictionDomestic Jurisdiction = "DOMESTIC"
	JurisdictionGlobal   Jurisdiction = "GLOBAL"
)

func (j Jurisdiction) Valid() bool {
	return j == JurisdictionDomestic || j == JurisdictionGlobal
}

// Currency returns the billing currency for the jurisdiction.
func (j Jurisdiction) Currency() string {
	if j == JurisdictionDomestic {
		return "INR"
	}
	return "USD"
}

// InvoiceStatus represents invoice lifecycle tags.
type InvoiceStatus string

const (
	InvoiceStatusOpen      InvoiceStatus = "OPEN"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// Invoice is a billable document with a snapshot of the client and its totals.
type Invoice struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id,string"`
	InvoiceNo    string        `gorm:"type:varchar(64);not null;uniqueIndex" json:"invoice_no"`
	DocumentType DocumentType  `gorm:"type:varchar(16);not null" json:"document_type"`
	Jurisdiction Jurisdiction  `gorm:"type:varchar(16);not null" json:"jurisdiction"`
	InvoiceDate  time.Time     `gorm:"not null;index" json:"invoice_date"`
	DueDate      *time.Time    `json:"due_date,omitempty"`
	Status       InvoiceStatus `gorm:"type:varchar(16);not null;default:'OPEN';index" json:"status"`

	ClientName       string  `gorm:"type:varchar(255);not null;index" json:"client_name"`
	ClientEmail      string  `gorm:"type:text;not null" json:"client_email"`
	ClientPhone      string  `gorm:"type:text;not null" json:"client_phone"`
	ClientAddress    string  `gorm:"type:text;not null" json:"client_address"`
	ClientCountry    string  `gorm:"type:text;not null" json:"client_country"`
	ClientRegion     string  `gorm:"type:text;not null" json:"client_region"`
	ClientRegionCode *string `gorm:"type:text" json:"client_region_code,omitempty"`
	ClientPostalCode string  `gorm:"type:text;not null" json:"client_postal_code"`
	ClientTaxID      *string `gorm:"type:text" json:"client_tax_id,omitempty"`

	Currency string          `gorm:"type:varchar(3);not null" json:"currency"`
	Subtotal decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	CGST     decimal.Decimal `gorm:"column:cgst;type:numeric(14,2);not null" json:"cgst"`
	SGST     decimal.Decimal `gorm:"column:sgst;type:numeric(14,2);not null" json:"sgst"`
	IGST     decimal.Decimal `gorm:"column:igst;type:numeric(14,2);not null" json:"igst"`
	Total    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`

	PDFURL   *string           `gorm:"column:pdf_url;type:text" json:"pdf_url"`
	Version  int64             `gorm:"not null;default:1" json:"version"`
	Metadata datatypes.JSONMap `gorm:"not null" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id,string"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id,string"`
	Position    int             `gorm:"not null" json:"position"`
	ServiceName string          `gorm:"type:text;not null" json:"service_name"`
	SAC         *string         `gorm:"column:sac;type:text" json:"sac,omitempty"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"quantity"`
	Rate        decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// InvoiceSequence backs invoice-number allocation, one row per scope (year).
type InvoiceSequence struct {
	Name      string    `gorm:"primaryKey;type:varchar(128)"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (InvoiceSequence) TableName() string { return "invoice_sequences" }
