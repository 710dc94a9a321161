package schedule

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type tracedFetcher struct {
	next   CoreFetcher
	tracer trace.Tracer
}

// TracingMiddleware wraps every fetch in an OpenTelemetry span.
func TracingMiddleware(serviceName string) Middleware {
	tracer := otel.Tracer(serviceName)
	return func(next CoreFetcher) CoreFetcher {
		return &tracedFetcher{next: next, tracer: tracer}
	}
}

// Fetch executes the request within a span.
func (t *tracedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, span := t.tracer.Start(ctx, "schedule.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", url)),
	)
	defer span.End()

	body, err := t.next.Fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.body.size", len(body)))
	return body, nil
}
