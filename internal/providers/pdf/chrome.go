package pdf

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"go.uber.org/zap"
)

// A4 in inches, as expected by Page.printToPDF.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

type ChromeConfig struct {
	// ExecPath points at a local Chrome/Chromium binary; empty uses the default lookup.
	ExecPath string
	// RemoteURL is a DevTools websocket URL of an already running browser.
	RemoteURL string
}

// ChromeProvider prints HTML through a headless Chrome. Every call gets its
// own browser (or remote tab) which is torn down before Print returns.
type ChromeProvider struct {
	cfg ChromeConfig
	log *zap.Logger
}

func NewChromeProvider(cfg ChromeConfig, log *zap.Logger) *ChromeProvider {
	return &ChromeProvider{cfg: cfg, log: log.Named("pdf.chrome")}
}

func (p *ChromeProvider) Name() string { return "chrome" }

func (p *ChromeProvider) Print(ctx context.Context, job render.Job) ([]byte, error) {
	allocCtx, cancelAlloc := p.allocator(ctx)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var (
		ready bool
		out   []byte
	)
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, job.HTML).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(`document.readyState === "complete"`, &ready),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			if err != nil {
				return err
			}
			out = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome print %s: %w", job.Document.InvoiceNo, err)
	}

	p.log.Debug("printed", zap.String("invoice_no", job.Document.InvoiceNo), zap.Int("bytes", len(out)))
	return out, nil
}

func (p *ChromeProvider) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, p.cfg.RemoteURL)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if p.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(p.cfg.ExecPath))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}

var _ render.Engine = (*ChromeProvider)(nil)
