package pdf

import (
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("pdf",
	fx.Provide(NewEngine),
)

// NewEngine selects the PDF engine from PDF_ENGINE.
func NewEngine(cfg config.Config, log *zap.Logger) render.Engine {
	switch cfg.PDF.Engine {
	case "native", "maroto":
		log.Info("pdf engine selected", zap.String("engine", "native"))
		return NewNativeProvider()
	default:
		log.Info("pdf engine selected", zap.String("engine", "chrome"),
			zap.Bool("remote", cfg.PDF.ChromeWSURL != ""))
		return NewChromeProvider(ChromeConfig{
			ExecPath:  cfg.PDF.ChromePath,
			RemoteURL: cfg.PDF.ChromeWSURL,
		}, log)
	}
}
