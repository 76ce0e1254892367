package otel

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecordError marks the span as failed and attaches err as both an event
// and a recorded error, so the failure shows up in the span timeline and
// in its status. A nil err is a no-op, which lets error paths call this
// unconditionally.
func RecordError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
	span.AddEvent(err.Error())
}
