package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/billdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows Repository.List.
type ListFilter struct {
	ClientContains string
	Status         InvoiceStatus
	From           *time.Time
	To             *time.Time
	After          *pagination.Cursor
	Limit          int
}

// Repository persists invoices. Methods taking a *gorm.DB run on that handle,
// which lets the service compose them inside one transaction.
type Repository interface {
	NextSequence(ctx context.Context, tx *gorm.DB, scope string) (int64, error)
	InsertInvoice(ctx context.Context, tx *gorm.DB, inv *Invoice) error
	InsertItems(ctx context.Context, tx *gorm.DB, items []InvoiceItem) error
	ReplaceItems(ctx context.Context, tx *gorm.DB, invoiceID int64, items []InvoiceItem) error
	UpdateHeader(ctx context.Context, tx *gorm.DB, inv *Invoice, expectedVersion int64) error
	DeleteInvoice(ctx context.Context, tx *gorm.DB, invoiceID int64) error

	FindByID(ctx context.Context, db *gorm.DB, invoiceID int64) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Invoice, error)
	SetPDFURL(ctx context.Context, db *gorm.DB, invoiceID int64, url string) error
	SetStatus(ctx context.Context, db *gorm.DB, invoiceID int64, status InvoiceStatus) error
}
