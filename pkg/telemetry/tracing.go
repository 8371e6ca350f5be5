package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Samir-atra/code-translator-purple-agent"

// Span attribute keys.
const (
	AttrTaskID         = "gen_ai.task.id"
	AttrConversationID = "gen_ai.conversation.id"
	AttrRequestModel   = "gen_ai.request.model"
	AttrInvocationID   = "translator.invocation_id"
	AttrSourceLanguage = "translator.source_language"
	AttrTargetLanguage = "translator.target_language"
	AttrOutputMode     = "translator.output_mode"
	AttrErrorKind      = "translator.error_kind"
)

// SetSpanAttributes sets non-empty attributes on the span in ctx.
func SetSpanAttributes(ctx context.Context, attributes map[string]string) context.Context {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		for key, value := range attributes {
			if value != "" {
				span.SetAttributes(attribute.String(key, value))
			}
		}
	}
	return ctx
}

// StartAttemptSpan starts a span covering one generation attempt.
func StartAttemptSpan(ctx context.Context, model, mode string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "generate "+model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrRequestModel, model),
			attribute.String(AttrOutputMode, mode),
		),
	)
}

// EndAttemptSpan records the attempt outcome and ends span.
func EndAttemptSpan(span trace.Span, kind string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorKind, kind))
	}
	span.End()
}
