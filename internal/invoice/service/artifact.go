package service

import (
	"context"
	"errors"
	"time"

	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/invoice/format"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"github.com/smallbiznis/billdesk/pkg/log/ctxlogger"
	"go.uber.org/zap"
)

// publish renders inv, uploads it under its sanitized number and records the
// URL. On any failure the stored pdf_url is left as it was.
func (s *Service) publish(ctx context.Context, inv *invoicedomain.Invoice) (string, error) {
	doc, err := s.document(inv)
	if err != nil {
		return "", err
	}
	buf, err := s.render(ctx, doc)
	if err != nil {
		return "", err
	}

	url, err := s.artifacts.Store(ctx, buf, format.ArtifactFileName(inv.InvoiceNo))
	if err != nil {
		return "", err
	}
	if err := s.repo.SetPDFURL(ctx, s.db, int64(inv.ID), url); err != nil {
		return "", err
	}
	inv.PDFURL = &url

	ctxlogger.WithContext(ctx, s.log).Info("invoice artifact stored",
		zap.String("invoice_no", inv.InvoiceNo),
		zap.String("pdf_url", url),
	)
	return url, nil
}

func (s *Service) render(ctx context.Context, doc render.Document) ([]byte, error) {
	start := time.Now()
	buf, err := s.renderer.RenderPDF(ctx, doc)

	outcome := "ok"
	switch {
	case errors.Is(err, invoicedomain.ErrEmptyItems):
		outcome = "empty_items"
	case err != nil:
		outcome = "failed"
	}
	s.metrics.RecordRender(ctx, s.renderer.EngineName(), outcome, time.Since(start))
	return buf, err
}

// document resolves the printable form from persisted rows; totals are
// recomputed from the items rather than read from the header.
func (s *Service) document(inv *invoicedomain.Invoice) (render.Document, error) {
	return render.BuildDocument(*inv, s.company, s.taxRules.Get())
}
