package tracing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/billdesk/pkg/log/ctxlogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "billdesk/http"

// GinMiddleware opens a server span per request, named after the matched
// route. Spans for invoice routes carry the path id and, once the handler
// has stored it under "invoice_no", the invoice number.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := otel.Tracer(tracerName).Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		if requestID := ctxlogger.RequestIDFromContext(ctx); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		annotate(c, span)
	}
}

func annotate(c *gin.Context, span trace.Span) {
	status := c.Writer.Status()
	attrs := []attribute.KeyValue{attribute.Int("http.status_code", status)}
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		attrs = append(attrs, attribute.String("billing.invoice_id", id))
	}
	if no := strings.TrimSpace(c.GetString("invoice_no")); no != "" {
		attrs = append(attrs, attribute.String("billing.invoice_no", no))
	}
	span.SetAttributes(SafeAttributes(attrs...)...)

	if status < http.StatusInternalServerError {
		return
	}
	if last := c.Errors.Last(); last != nil {
		if err := SafeError(last.Err); err != nil {
			span.RecordError(err)
		}
	}
	span.SetStatus(codes.Error, http.StatusText(status))
}
