package invoice

import (
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"github.com/smallbiznis/billdesk/internal/invoice/repository"
	"github.com/smallbiznis/billdesk/internal/invoice/service"
	"github.com/smallbiznis/billdesk/internal/providers/email"
	"github.com/smallbiznis/billdesk/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(render.NewHTMLRenderer),
	fx.Provide(NewRenderer),
	fx.Provide(func(d *email.Dispatcher) service.Notifier { return d }),
	fx.Provide(func(l *ratelimit.BillingLimiter) service.ResendLocker { return l }),
	fx.Provide(service.NewService),
)

func NewRenderer(cfg config.Config, html *render.HTMLRenderer, engine render.Engine, log *zap.Logger) render.Renderer {
	return render.NewPDFRenderer(html, engine, render.PDFRendererOptions{
		Timeout:          cfg.PDF.RenderTimeout,
		StrictValidation: true,
	}, log)
}
