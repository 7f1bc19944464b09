package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// NextSequence increments the counter for scope and returns the new value.
// The row stays locked until tx ends, serialising concurrent allocations.
func (r *repo) NextSequence(ctx context.Context, tx *gorm.DB, scope string) (int64, error) {
	now := time.Now().UTC()
	db := tx.WithContext(ctx)

	var value int64
	if db.Dialector.Name() == "mysql" {
		if err := db.Exec(
			`INSERT INTO invoice_sequences (name, value, updated_at)
			 VALUES (?, 1, ?)
			 ON DUPLICATE KEY UPDATE value = value + 1, updated_at = VALUES(updated_at)`,
			scope,
			now,
		).Error; err != nil {
			return 0, err
		}
		if err := db.Raw(
			`SELECT value FROM invoice_sequences WHERE name = ?`,
			scope,
		).Scan(&value).Error; err != nil {
			return 0, err
		}
		return value, nil
	}

	err := db.Raw(
		`INSERT INTO invoice_sequences (name, value, updated_at)
		 VALUES (?, 1, ?)
		 ON CONFLICT (name) DO UPDATE
		 SET value = invoice_sequences.value + 1, updated_at = excluded.updated_at
		 RETURNING value`,
		scope,
		now,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (r *repo) InsertInvoice(ctx context.Context, tx *gorm.DB, inv *domain.Invoice) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(inv).Error
}

func (r *repo) InsertItems(ctx context.Context, tx *gorm.DB, items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *repo) ReplaceItems(ctx context.Context, tx *gorm.DB, invoiceID int64, items []domain.InvoiceItem) error {
	if err := tx.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&domain.InvoiceItem{}).Error; err != nil {
		return err
	}
	return r.InsertItems(ctx, tx, items)
}

// UpdateHeader rewrites the mutable header columns. With expectedVersion > 0
// the write only applies when the stored version still matches.
func (r *repo) UpdateHeader(ctx context.Context, tx *gorm.DB, inv *domain.Invoice, expectedVersion int64) error {
	stmt := tx.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", inv.ID)
	if expectedVersion > 0 {
		stmt = stmt.Where("version = ?", expectedVersion)
	}

	result := stmt.Updates(map[string]any{
		"document_type":      inv.DocumentType,
		"jurisdiction":       inv.Jurisdiction,
		"invoice_date":       inv.InvoiceDate,
		"due_date":           inv.DueDate,
		"client_name":        inv.ClientName,
		"client_email":       inv.ClientEmail,
		"client_phone":       inv.ClientPhone,
		"client_address":     inv.ClientAddress,
		"client_country":     inv.ClientCountry,
		"client_region":      inv.ClientRegion,
		"client_region_code": inv.ClientRegionCode,
		"client_postal_code": inv.ClientPostalCode,
		"client_tax_id":      inv.ClientTaxID,
		"currency":           inv.Currency,
		"subtotal":           inv.Subtotal,
		"cgst":               inv.CGST,
		"sgst":               inv.SGST,
		"igst":               inv.IGST,
		"total":              inv.Total,
		"version":            gorm.Expr("version + 1"),
		"updated_at":         inv.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if expectedVersion > 0 {
			return domain.ErrVersionConflict
		}
		return domain.ErrInvoiceNotFound
	}

	return tx.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("version").
		Where("id = ?", inv.ID).
		Scan(&inv.Version).Error
}

func (r *repo) DeleteInvoice(ctx context.Context, tx *gorm.DB, invoiceID int64) error {
	db := tx.WithContext(ctx)
	if err := db.Where("invoice_id = ?", invoiceID).Delete(&domain.InvoiceItem{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", invoiceID).Delete(&domain.Invoice{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, invoiceID int64) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where("id = ?", invoiceID).
		Take(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})

	if client := strings.TrimSpace(filter.ClientContains); client != "" {
		stmt = stmt.Where("LOWER(client_name) LIKE ?", "%"+escapeLike(strings.ToLower(client))+"%")
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		stmt = stmt.Where("invoice_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("invoice_date <= ?", *filter.To)
	}
	if filter.After != nil {
		id, err := snowflake.ParseString(filter.After.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.After.CreatedAt, filter.After.CreatedAt, id)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) SetPDFURL(ctx context.Context, db *gorm.DB, invoiceID int64, url string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET pdf_url = ?, updated_at = ? WHERE id = ?`,
		url,
		time.Now().UTC(),
		invoiceID,
	).Error
}

func (r *repo) SetStatus(ctx context.Context, db *gorm.DB, invoiceID int64, status domain.InvoiceStatus) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		time.Now().UTC(),
		invoiceID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// escapeLike drops LIKE wildcards from user input.
func escapeLike(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}
