package prop

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startPassSpan opens a span for one propagation pass. Returns nil when
// tracing is not configured; endPassSpan tolerates that.
func (m *Manager) startPassSpan(root string) trace.Span {
	if m.tracer == nil {
		return nil
	}
	_, span := m.tracer.Start(context.Background(), "prop.propagate",
		trace.WithAttributes(attribute.String("prop.root", root)),
	)
	return span
}

func (m *Manager) endPassSpan(span trace.Span, visited int, err error) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Int("prop.visited", visited))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
