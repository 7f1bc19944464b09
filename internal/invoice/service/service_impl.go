package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/invoice/format"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"github.com/smallbiznis/billdesk/internal/observability/metrics"
	"github.com/smallbiznis/billdesk/internal/providers/storage"
	"github.com/smallbiznis/billdesk/pkg/db"
	"github.com/smallbiznis/billdesk/pkg/db/pagination"
	"github.com/smallbiznis/billdesk/pkg/log/ctxlogger"
	"github.com/smallbiznis/billdesk/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	allocAttempts  = 3
	allocSavePoint = "invoice_number"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Config    config.Config
	GenID     *snowflake.Node
	Repo      invoicedomain.Repository
	Renderer  render.Renderer
	Artifacts *storage.ArtifactStore
	Notifier  Notifier
	TaxRules  *config.TaxRulesHolder
	Metrics   *metrics.Metrics `optional:"true"`
	Clock     clock.Clock      `optional:"true"`
	Locks     ResendLocker     `optional:"true"`
}

// ResendLocker keeps two resends of one invoice from racing each other.
type ResendLocker interface {
	TryLockResend(ctx context.Context, invoiceID string) (string, bool, error)
	ReleaseResend(ctx context.Context, invoiceID, token string) error
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	repo      invoicedomain.Repository
	renderer  render.Renderer
	artifacts *storage.ArtifactStore
	notifier  Notifier
	taxRules  *config.TaxRulesHolder
	metrics   *metrics.Metrics
	clock     clock.Clock
	locks     ResendLocker

	numberTemplate string
	company        render.Company
}

func NewService(p ServiceParam) invoicedomain.Service {
	log := p.Log.Named("invoice.service")

	tmpl := strings.TrimSpace(p.Config.InvoiceNumberTemplate)
	if tmpl == "" {
		tmpl = format.DefaultInvoiceNumberTemplate
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Service{
		db:  p.DB,
		log: log,

		genID:     p.GenID,
		repo:      p.Repo,
		renderer:  p.Renderer,
		artifacts: p.Artifacts,
		notifier:  p.Notifier,
		taxRules:  p.TaxRules,
		metrics:   p.Metrics,
		clock:     clk,
		locks:     p.Locks,

		numberTemplate: tmpl,
		company:        loadCompany(p.Config.Company, log),
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.InvoiceResult, error) {
	draft, err := s.prepare(req.InvoiceInput)
	if err != nil {
		return invoicedomain.InvoiceResult{}, err
	}

	inv, err := s.insertWithNumber(ctx, draft)
	if err != nil {
		return invoicedomain.InvoiceResult{}, err
	}

	log := ctxlogger.WithContext(ctx, s.log).With(
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_no", inv.InvoiceNo),
	)
	log.Info("invoice created", zap.String("total", inv.Total.StringFixed(2)))

	// The row is committed; a client disconnect must not abort the render or
	// leave an upload half done.
	work := correlation.Detach(ctx)

	url, err := s.publish(work, inv)
	if err != nil {
		log.Error("invoice artifact failed, discarding invoice", zap.Error(err))
		s.discard(work, inv, log)
		return invoicedomain.InvoiceResult{}, err
	}
	s.metrics.RecordInvoiceCreated(ctx, string(inv.DocumentType), string(inv.Jurisdiction))

	result := invoiceResult(inv, url)
	if !req.SkipNotification {
		result.Warnings = s.notify(work, inv, url)
	}
	return result, nil
}

// discard undoes a create whose artifact could not be published, so no
// invoice is left without a PDF. The consumed number is not reused.
func (s *Service) discard(ctx context.Context, inv *invoicedomain.Invoice, log *zap.Logger) {
	if err := s.artifacts.Remove(ctx, format.ArtifactFileName(inv.InvoiceNo)); err != nil {
		log.Warn("artifact cleanup failed", zap.Error(err))
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.DeleteInvoice(ctx, tx, int64(inv.ID))
	})
	if err != nil {
		log.Error("invoice discard failed, row left without artifact", zap.Error(err))
		return
	}
	log.Info("invoice discarded")
}

// insertWithNumber allocates the next invoice number and writes header and
// items in one transaction. A number already taken (rows imported by hand, a
// sequence reset) is skipped: the insert is rolled back to a savepoint while
// the sequence increment stays, so the next attempt draws a fresh number.
func (s *Service) insertWithNumber(ctx context.Context, draft *draftInvoice) (*invoicedomain.Invoice, error) {
	var inv *invoicedomain.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lastErr error
		for attempt := 1; attempt <= allocAttempts; attempt++ {
			candidate, err := s.allocate(ctx, tx, draft)
			if err != nil {
				return err
			}
			if err := tx.SavePoint(allocSavePoint).Error; err != nil {
				return err
			}

			err = s.repo.InsertInvoice(ctx, tx, candidate)
			if err == nil {
				if err := s.repo.InsertItems(ctx, tx, candidate.Items); err != nil {
					return err
				}
				inv = candidate
				return nil
			}
			if !db.IsDuplicateKeyErr(err) {
				return err
			}
			if err := tx.RollbackTo(allocSavePoint).Error; err != nil {
				return err
			}
			ctxlogger.WithContext(ctx, s.log).Warn("invoice number taken, drawing next",
				zap.String("invoice_no", candidate.InvoiceNo),
				zap.Int("attempt", attempt),
			)
			lastErr = err
		}
		return fmt.Errorf("%w: invoice number collision: %v", invoicedomain.ErrAllocFailed, lastErr)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) allocate(ctx context.Context, tx *gorm.DB, draft *draftInvoice) (*invoicedomain.Invoice, error) {
	seq, err := s.repo.NextSequence(ctx, tx, format.SequenceScope(s.numberTemplate, draft.header.InvoiceDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", invoicedomain.ErrAllocFailed, err)
	}
	number, err := format.FormatInvoiceNumber(s.numberTemplate, draft.header.InvoiceDate, seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", invoicedomain.ErrAllocFailed, err)
	}

	now := s.clock.Now()
	inv := draft.header
	inv.ID = s.genID.Generate()
	inv.InvoiceNo = number
	inv.Status = invoicedomain.InvoiceStatusOpen
	inv.Version = 1
	inv.Metadata = datatypes.JSONMap{}
	inv.CreatedAt = now
	inv.UpdatedAt = now
	inv.Items = draft.items(s.genID, inv.ID, now)
	return &inv, nil
}

func (s *Service) Update(ctx context.Context, id string, req invoicedomain.UpdateInvoiceRequest) (invoicedomain.InvoiceResult, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.InvoiceResult{}, err
	}
	draft, err := s.prepare(req.InvoiceInput)
	if err != nil {
		return invoicedomain.InvoiceResult{}, err
	}

	var updated *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if current == nil {
			return invoicedomain.ErrInvoiceNotFound
		}

		now := s.clock.Now()
		inv := draft.header
		inv.ID = current.ID
		inv.InvoiceNo = current.InvoiceNo
		inv.Status = current.Status
		inv.PDFURL = current.PDFURL
		inv.Metadata = current.Metadata
		inv.CreatedAt = current.CreatedAt
		inv.UpdatedAt = now
		inv.Items = draft.items(s.genID, current.ID, now)

		if err := s.repo.UpdateHeader(ctx, tx, &inv, req.ExpectedVersion); err != nil {
			return err
		}
		if err := s.repo.ReplaceItems(ctx, tx, invoiceID, inv.Items); err != nil {
			return err
		}
		updated = &inv
		return nil
	})
	if err != nil {
		return invoicedomain.InvoiceResult{}, err
	}
	s.metrics.RecordInvoiceUpdated(ctx, string(updated.DocumentType))

	log := ctxlogger.WithContext(ctx, s.log).With(
		zap.String("invoice_id", updated.ID.String()),
		zap.String("invoice_no", updated.InvoiceNo),
	)
	log.Info("invoice updated", zap.Int64("version", updated.Version))

	work := correlation.Detach(ctx)
	url, err := s.publish(work, updated)
	if err != nil {
		log.Error("invoice re-render failed, previous artifact kept", zap.Error(err))
		return invoicedomain.InvoiceResult{}, err
	}

	result := invoiceResult(updated, url)
	if req.Notify {
		result.Warnings = s.notify(work, updated, url)
	}
	return result, nil
}

func (s *Service) Resend(ctx context.Context, id string) (invoicedomain.ResendResult, error) {
	inv, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.ResendResult{}, err
	}

	work := correlation.Detach(ctx)
	unlock, err := s.lockResend(work, inv)
	if err != nil {
		return invoicedomain.ResendResult{}, err
	}
	defer unlock()

	result := invoicedomain.ResendResult{InvoiceNo: inv.InvoiceNo}

	url := ""
	if inv.PDFURL != nil {
		url = *inv.PDFURL
	}
	if url == "" || storage.ValidatePublicURL(url) != nil || !s.artifactPresent(work, inv) {
		url, err = s.publish(work, inv)
		if err != nil {
			return invoicedomain.ResendResult{}, err
		}
		result.Regenerated = true
	}
	result.PDFURL = url

	result.Warnings = s.notify(work, inv, url)
	result.Sent = len(result.Warnings) == 0
	return result, nil
}

// artifactPresent checks the bucket still holds the PDF behind pdf_url. A
// failed lookup keeps the stored URL.
func (s *Service) artifactPresent(ctx context.Context, inv *invoicedomain.Invoice) bool {
	ok, err := s.artifacts.Has(ctx, format.ArtifactFileName(inv.InvoiceNo))
	if err != nil {
		ctxlogger.WithContext(ctx, s.log).Warn("artifact lookup failed",
			zap.String("invoice_no", inv.InvoiceNo),
			zap.Error(err),
		)
		return true
	}
	return ok
}

// lockResend fails open when the lock backend errors.
func (s *Service) lockResend(ctx context.Context, inv *invoicedomain.Invoice) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	id := inv.ID.String()
	token, ok, err := s.locks.TryLockResend(ctx, id)
	if err != nil {
		ctxlogger.WithContext(ctx, s.log).Warn("resend lock unavailable",
			zap.String("invoice_no", inv.InvoiceNo),
			zap.Error(err),
		)
		return func() {}, nil
	}
	if !ok {
		return nil, invoicedomain.ErrResendInProgress
	}
	return func() {
		if err := s.locks.ReleaseResend(ctx, id, token); err != nil {
			s.log.Warn("resend lock release failed", zap.String("invoice_no", inv.InvoiceNo), zap.Error(err))
		}
	}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	inv, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.artifacts.Remove(ctx, format.ArtifactFileName(inv.InvoiceNo)); err != nil {
		ctxlogger.WithContext(ctx, s.log).Warn("artifact delete failed",
			zap.String("invoice_no", inv.InvoiceNo),
			zap.Error(err),
		)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.DeleteInvoice(ctx, tx, int64(inv.ID))
	})
	if err != nil {
		return err
	}

	ctxlogger.WithContext(ctx, s.log).Info("invoice deleted", zap.String("invoice_no", inv.InvoiceNo))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	inv, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return *inv, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	filter := invoicedomain.ListFilter{
		ClientContains: strings.TrimSpace(req.Client),
		Limit:          req.Limit() + 1,
	}
	if req.Status != "" {
		status := invoicedomain.InvoiceStatus(strings.ToUpper(string(req.Status)))
		if !status.Valid() {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidStatus
		}
		filter.Status = status
	}
	var err error
	if filter.From, err = parseOptionalDate("from", req.From); err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}
	if filter.To, err = parseOptionalDate("to", req.To); err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, err
		}
		filter.After = cursor
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	invoices, pageInfo, err := pagination.BuildCursorPageInfo(items, req.Limit(), func(inv invoicedomain.Invoice) pagination.Cursor {
		return pagination.Cursor{ID: inv.ID.String(), CreatedAt: inv.CreatedAt}
	})
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	return invoicedomain.ListInvoiceResponse{PageInfo: pageInfo, Invoices: invoices}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status invoicedomain.InvoiceStatus) (invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	status = invoicedomain.InvoiceStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	if err := s.repo.SetStatus(ctx, s.db, invoiceID, status); err != nil {
		return invoicedomain.Invoice{}, err
	}
	return s.Get(ctx, id)
}

// Download renders the PDF from the persisted rows without touching storage.
func (s *Service) Download(ctx context.Context, id string) (invoicedomain.Artifact, error) {
	inv, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.Artifact{}, err
	}
	doc, err := s.document(inv)
	if err != nil {
		return invoicedomain.Artifact{}, err
	}
	buf, err := s.render(ctx, doc)
	if err != nil {
		return invoicedomain.Artifact{}, err
	}
	return invoicedomain.Artifact{FileName: format.ArtifactFileName(inv.InvoiceNo), Content: buf}, nil
}

func (s *Service) Preview(ctx context.Context, id string) (string, error) {
	inv, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	doc, err := s.document(inv)
	if err != nil {
		return "", err
	}
	return s.renderer.RenderHTML(doc)
}

func (s *Service) load(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return inv, nil
}

func invoiceResult(inv *invoicedomain.Invoice, url string) invoicedomain.InvoiceResult {
	return invoicedomain.InvoiceResult{
		ID:        inv.ID.String(),
		InvoiceNo: inv.InvoiceNo,
		Total:     inv.Total,
		Currency:  inv.Currency,
		PDFURL:    url,
		Version:   inv.Version,
	}
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, invoicedomain.ErrInvalidInvoiceID
	}
	return int64(id), nil
}
