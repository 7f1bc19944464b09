package ctxlogger

import (
	"context"
	"testing"

	"github.com/smallbiznis/billdesk/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAddsCorrelationAndRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := correlation.ContextWithCorrelationID(context.Background(), "01HCID")
	ctx = ContextWithRequestID(ctx, "req-1")

	WithContext(ctx, base).Info("hello")

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "01HCID", fields["correlation_id"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "", fields["trace_id"])
}
