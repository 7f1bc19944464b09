package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes invoice lifecycle instruments.
type Metrics struct {
	invoicesCreated metric.Int64Counter
	invoicesUpdated metric.Int64Counter
	renders         metric.Int64Counter
	renderDuration  metric.Float64Histogram
	notifications   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the invoice metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "billdesk"
	}
	meter := provider.Meter(name)

	invoicesCreated, err := meter.Int64Counter("billdesk_invoices_created_total")
	if err != nil {
		return nil, err
	}
	invoicesUpdated, err := meter.Int64Counter("billdesk_invoices_updated_total")
	if err != nil {
		return nil, err
	}
	renders, err := meter.Int64Counter("billdesk_invoice_renders_total")
	if err != nil {
		return nil, err
	}
	renderDuration, err := meter.Float64Histogram("billdesk_invoice_render_duration_seconds",
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	notifications, err := meter.Int64Counter("billdesk_notifications_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesCreated: invoicesCreated,
		invoicesUpdated: invoicesUpdated,
		renders:         renders,
		renderDuration:  renderDuration,
		notifications:   notifications,
	}, nil
}

// NewNoop returns instruments bound to a no-op provider, for tests.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

func (m *Metrics) RecordInvoiceCreated(ctx context.Context, documentType, jurisdiction string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("document_type", strings.TrimSpace(documentType)),
		attribute.String("jurisdiction", strings.TrimSpace(jurisdiction)),
	)
	m.invoicesCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordInvoiceUpdated(ctx context.Context, documentType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("document_type", strings.TrimSpace(documentType)))
	m.invoicesUpdated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRender counts a render+store attempt. outcome is "ok" or an error code.
func (m *Metrics) RecordRender(ctx context.Context, engine, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("engine", strings.TrimSpace(engine)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.renders.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.renderDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordNotification(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.notifications.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"document_type": {},
	"jurisdiction":  {},
	"engine":        {},
	"outcome":       {},
	"provider":      {},
	"status_code":   {},
	"route":         {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
