package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrInvalidInvoiceID    = errors.New("invalid_invoice_id")
	ErrMissingClientField  = errors.New("missing_client_field")
	ErrEmptyItems          = errors.New("empty_items")
	ErrBadNumber           = errors.New("bad_number")
	ErrMissingTaxID        = errors.New("missing_tax_id")
	ErrInvalidDocumentType = errors.New("invalid_document_type")
	ErrInvalidJurisdiction = errors.New("invalid_jurisdiction")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidDate         = errors.New("invalid_date")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrVersionConflict     = errors.New("version_conflict")
	ErrResendInProgress    = errors.New("resend_in_progress")

	ErrAllocFailed          = errors.New("alloc_failed")
	ErrRenderFailed         = errors.New("render_failed")
	ErrArtifactURLInvalid   = errors.New("artifact_url_invalid")
	ErrArtifactUploadFailed = errors.New("artifact_upload_failed")
)

// FieldError names the request field a validation error refers to.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

func NewFieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// IsValidation reports whether err must be surfaced as a client error.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrMissingClientField,
		ErrEmptyItems,
		ErrBadNumber,
		ErrMissingTaxID,
		ErrInvalidDocumentType,
		ErrInvalidJurisdiction,
		ErrInvalidStatus,
		ErrInvalidDate,
		ErrInvalidEmail,
		ErrInvalidInvoiceID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
