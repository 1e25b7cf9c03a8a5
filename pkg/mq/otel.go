package mq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "streakkeeper.rabbitmq"

// MessageHeaderCarrier 让 propagator 读写 AMQP 消息头
type MessageHeaderCarrier amqp.Table

var _ propagation.TextMapCarrier = MessageHeaderCarrier{}

func (m MessageHeaderCarrier) Get(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func (m MessageHeaderCarrier) Set(key, value string) {
	m[key] = value
}

func (m MessageHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// StartPublishSpan 创建 producer span，并把 trace 上下文注入消息头，下游消费者可以接续链路
func StartPublishSpan(ctx context.Context, exchange, routingKey, messageID string, headers amqp.Table) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "rabbitmq.publish "+routingKey,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingDestinationName(exchange),
			semconv.MessagingRabbitmqDestinationRoutingKey(routingKey),
			semconv.MessagingMessageID(messageID),
		),
	)

	otel.GetTextMapPropagator().Inject(ctx, MessageHeaderCarrier(headers))
	return ctx, span
}

// EndPublishSpan 根据发布结果设置状态并结束 span
func EndPublishSpan(span trace.Span, bodySize int, err error) {
	span.SetAttributes(attribute.Int("messaging.message.body.size", bodySize))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
