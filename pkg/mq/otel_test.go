package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestMessageHeaderCarrier(t *testing.T) {
	headers := amqp.Table{}
	carrier := MessageHeaderCarrier(headers)

	carrier.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	assert.Equal(t, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", headers["traceparent"])
	assert.Equal(t, []string{"traceparent"}, carrier.Keys())
	assert.Empty(t, carrier.Get("missing"))

	headers["count"] = int32(3)
	assert.Empty(t, carrier.Get("count"))
}

func TestTraceContextRoundTrip(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	spanID, _ := trace.SpanIDFromHex("b7ad6b7169203331")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := amqp.Table{}
	prop := propagation.TraceContext{}
	prop.Inject(ctx, MessageHeaderCarrier(headers))

	got := trace.SpanContextFromContext(prop.Extract(context.Background(), MessageHeaderCarrier(headers)))
	assert.Equal(t, traceID, got.TraceID())
	assert.Equal(t, spanID, got.SpanID())
}
