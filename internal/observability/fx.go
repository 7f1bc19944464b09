package observability

import (
	"github.com/smallbiznis/billdesk/internal/observability/logger"
	"github.com/smallbiznis/billdesk/internal/observability/metrics"
	"github.com/smallbiznis/billdesk/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module provides the logger, the tracer provider and the invoice and HTTP
// meters, all configured from one Config.
var Module = fx.Module("observability",
	fx.Provide(
		NewConfig,
		Config.Logger,
		Config.Tracing,
		Config.Metrics,
	),
	fx.Provide(
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	// The provider installs the global tracer the gin and gorm hooks use,
	// so it has to be built even though nothing injects it.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
