package observability

import (
	"testing"

	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewConfigFromAppConfig(t *testing.T) {
	cfg := NewConfig(config.Config{
		AppVersion:   "1.2.0",
		Environment:  " Production ",
		OTLPEndpoint: "collector:4317",
		Observability: config.ObservabilityConfig{
			LogLevel:      "info",
			OtelEnabled:   true,
			OtelProtocol:  "http",
			SamplingRatio: 7,
		},
	})

	assert.Equal(t, "billdesk", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 0.1, cfg.SamplingRatio)
	assert.False(t, cfg.Debug())

	tr := cfg.Tracing()
	assert.True(t, tr.Enabled)
	assert.Equal(t, "collector:4317", tr.ExporterEndpoint)
	assert.Equal(t, "http", tr.ExporterProtocol)
	assert.Equal(t, "1.2.0", tr.ServiceVersion)

	m := cfg.Metrics()
	assert.Equal(t, tr.ExporterEndpoint, m.ExporterEndpoint)
	assert.Equal(t, "production", m.Environment)
}

func TestDebugFollowsLevelAndEnvironment(t *testing.T) {
	assert.False(t, Config{Environment: "production", LogLevel: "info"}.Debug())
	assert.False(t, Config{Environment: "staging"}.Debug())
	assert.True(t, Config{Environment: "production", LogLevel: "DEBUG"}.Debug())
	assert.True(t, Config{Environment: "development"}.Debug())
	assert.True(t, Config{Environment: "test"}.Logger().Debug)
}
