package observability

import (
	"strings"

	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/observability/logger"
	"github.com/smallbiznis/billdesk/internal/observability/metrics"
	"github.com/smallbiznis/billdesk/internal/observability/tracing"
)

// Config is the slice of the application config the telemetry pipeline
// reads. It fans out into the logger, tracer and meter configs.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled   bool
	OtelEndpoint  string
	OtelProtocol  string
	SamplingRatio float64
}

func NewConfig(cfg config.Config) Config {
	obs := cfg.Observability
	name := strings.TrimSpace(cfg.AppName)
	if name == "" {
		name = "billdesk"
	}
	ratio := obs.SamplingRatio
	if ratio < 0 || ratio > 1 {
		ratio = 0.1
	}
	return Config{
		ServiceName:   name,
		Environment:   strings.ToLower(strings.TrimSpace(cfg.Environment)),
		Version:       strings.TrimSpace(cfg.AppVersion),
		LogLevel:      strings.TrimSpace(obs.LogLevel),
		LogFormat:     strings.TrimSpace(obs.LogFormat),
		OtelEnabled:   obs.OtelEnabled,
		OtelEndpoint:  strings.TrimSpace(cfg.OTLPEndpoint),
		OtelProtocol:  strings.TrimSpace(obs.OtelProtocol),
		SamplingRatio: ratio,
	}
}

// Debug turns on verbose request logging. Anything short of production or
// staging counts as a developer machine.
func (c Config) Debug() bool {
	if strings.EqualFold(c.LogLevel, "debug") {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "production", "staging":
		return false
	}
	return true
}

func (c Config) Logger() logger.Config {
	return logger.Config{
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Level:       c.LogLevel,
		Format:      c.LogFormat,
		Debug:       c.Debug(),
	}
}

func (c Config) Tracing() tracing.Config {
	return tracing.Config{
		Enabled:          c.OtelEnabled,
		ServiceName:      c.ServiceName,
		ServiceVersion:   c.Version,
		Environment:      c.Environment,
		ExporterEndpoint: c.OtelEndpoint,
		ExporterProtocol: c.OtelProtocol,
		SamplingRatio:    c.SamplingRatio,
	}
}

func (c Config) Metrics() metrics.Config {
	return metrics.Config{
		Enabled:          c.OtelEnabled,
		ExporterEndpoint: c.OtelEndpoint,
		ExporterProtocol: c.OtelProtocol,
		ServiceName:      c.ServiceName,
		Environment:      c.Environment,
	}
}
