package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/h2non/filetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"go.uber.org/zap"
)

// Renderer produces the HTML preview and the PDF artifact of a Document.
type Renderer interface {
	RenderHTML(doc Document) (string, error)
	RenderPDF(ctx context.Context, doc Document) ([]byte, error)
	EngineName() string
}

type PDFRendererOptions struct {
	Timeout time.Duration
	// StrictValidation parses the output with pdfcpu and requires at least one page.
	StrictValidation bool
}

type PDFRenderer struct {
	html   *HTMLRenderer
	engine Engine
	opts   PDFRendererOptions
	log    *zap.Logger
}

func NewPDFRenderer(html *HTMLRenderer, engine Engine, opts PDFRendererOptions, log *zap.Logger) *PDFRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &PDFRenderer{
		html:   html,
		engine: engine,
		opts:   opts,
		log:    log.Named("invoice.render"),
	}
}

func (r *PDFRenderer) EngineName() string { return r.engine.Name() }

func (r *PDFRenderer) RenderHTML(doc Document) (string, error) {
	page, err := r.html.RenderHTML(doc)
	if err != nil {
		return "", fmt.Errorf("%w: template: %v", domain.ErrRenderFailed, err)
	}
	return page, nil
}

// RenderPDF fails fast on an empty item list, before any engine is started.
func (r *PDFRenderer) RenderPDF(ctx context.Context, doc Document) ([]byte, error) {
	if len(doc.Items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	page, err := r.RenderHTML(doc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := r.engine.Print(ctx, Job{HTML: page, Document: doc})
	if err != nil {
		r.log.Warn("pdf engine failed",
			zap.String("engine", r.engine.Name()),
			zap.String("invoice_no", doc.InvoiceNo),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRenderFailed, r.engine.Name(), err)
	}

	if err := r.verify(out); err != nil {
		return nil, err
	}

	r.log.Debug("pdf rendered",
		zap.String("engine", r.engine.Name()),
		zap.String("invoice_no", doc.InvoiceNo),
		zap.Int("bytes", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (r *PDFRenderer) verify(out []byte) error {
	if !filetype.Is(out, "pdf") {
		return fmt.Errorf("%w: engine output is not a pdf", domain.ErrRenderFailed)
	}
	if !r.opts.StrictValidation {
		return nil
	}
	pages, err := CountPages(out)
	if err != nil {
		return fmt.Errorf("%w: unreadable pdf: %v", domain.ErrRenderFailed, err)
	}
	if pages < 1 {
		return fmt.Errorf("%w: pdf has no pages", domain.ErrRenderFailed)
	}
	return nil
}

// CountPages parses a PDF and returns its page count.
func CountPages(buf []byte) (int, error) {
	return api.PageCount(bytes.NewReader(buf), model.NewDefaultConfiguration())
}
