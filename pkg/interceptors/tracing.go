package interceptors

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingInterceptor instruments RPCs with OpenTelemetry spans.
type TracingInterceptor struct {
	tracer trace.Tracer
}

// NewTracingInterceptor creates a tracing interceptor.
func NewTracingInterceptor(tracer trace.Tracer) *TracingInterceptor {
	if tracer == nil {
		tracer = otel.Tracer("expense/interceptors")
	}
	return &TracingInterceptor{tracer: tracer}
}

// WrapUnary implements connect.Interceptor.
func (i *TracingInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		ctx, span := i.start(ctx, req.Spec().Procedure)
		defer span.End()

		resp, err := next(ctx, req)
		finishSpan(span, err)
		return resp, err
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *TracingInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (i *TracingInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, span := i.start(ctx, conn.Spec().Procedure)
		defer span.End()

		err := next(ctx, conn)
		finishSpan(span, err)
		return err
	}
}

func (i *TracingInterceptor) start(ctx context.Context, procedure string) (context.Context, trace.Span) {
	service, method := splitProcedure(procedure)
	ctx, span := i.tracer.Start(ctx, procedure, trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		attribute.String("rpc.system", "connect"),
		attribute.String("rpc.service", service),
		attribute.String("rpc.method", method),
	)
	if id, ok := RequestIDFromContext(ctx); ok {
		span.SetAttributes(attribute.String("request.id", id))
	}
	return ctx, span
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("rpc.connect.code", connect.CodeOf(err).String()))
		return
	}
	span.SetStatus(codes.Ok, "ok")
}

// splitProcedure turns "/expense.v1.ExpenseService/ParseExpense" into
// ("expense.v1.ExpenseService", "ParseExpense").
func splitProcedure(procedure string) (string, string) {
	procedure = strings.TrimPrefix(procedure, "/")
	service, method, found := strings.Cut(procedure, "/")
	if !found {
		return procedure, ""
	}
	return service, method
}
