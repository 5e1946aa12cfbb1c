package portfolio

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "folio/internal/service/portfolio"

// startSpan opens a span for one service operation on a portfolio
func startSpan(ctx context.Context, operation, portfolioID, principal string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "portfolio."+operation,
		trace.WithAttributes(
			attribute.String("portfolio.id", portfolioID),
			attribute.Bool("principal.authenticated", principal != ""),
		),
	)
}

// finishSpan records err (if any) and ends the span
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
