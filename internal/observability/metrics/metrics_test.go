package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("document_type", "INVOICE"),
		attribute.String("invoice_no", "INV/2024/001"),
		attribute.String("client_email", "a@b.c"),
		attribute.String("outcome", "ok"),
	)
	assert.Len(t, attrs, 2)
	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("document_type"))
	assert.Contains(t, keys, attribute.Key("outcome"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordInvoiceCreated(context.Background(), "INVOICE", "DOMESTIC")
		m.RecordRender(context.Background(), "chrome", "ok", time.Second)
		m.RecordNotification(context.Background(), "brevo", "ok")
	})
}

func TestNoopInstruments(t *testing.T) {
	m := NewNoop()
	assert.NotNil(t, m)
	assert.NotPanics(t, func() {
		m.RecordInvoiceUpdated(context.Background(), "PROFORMA")
	})
}
