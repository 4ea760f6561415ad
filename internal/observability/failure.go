package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecordFailure annotates the span active in ctx with a dispatched failure.
// Server-side statuses also mark the span as errored; client faults keep the
// span status unset so they do not page anyone.
func RecordFailure(ctx context.Context, err error, kind string, status int, message string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.String("error.kind", kind),
		attribute.Int("http.response.status_code", status),
	)
	if err != nil {
		span.RecordError(err)
	}
	if status >= http.StatusInternalServerError || status == http.StatusRequestTimeout {
		span.SetStatus(codes.Error, message)
	}
}
