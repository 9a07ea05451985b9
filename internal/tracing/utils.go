package tracing

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"

	"github.com/customeros/recipestack/internal/utils"
)

const (
	SpanTagUserId    = "user-id"
	SpanTagUsername  = "username"
	SpanTagRequestId = "request-id"
	SpanTagEntityId  = "entity-id"
	SpanTagComponent = "component"
)

// Component is the layer a span was opened in.
type Component string

const (
	ComponentPostgresRepository Component = "postgresRepository"
	ComponentRest               Component = "rest"
	ComponentGraphQL            Component = "graphql"
	ComponentService            Component = "service"
	ComponentPublisher          Component = "publisher"
)

// StartHttpServerTracerSpanWithHeader continues a trace propagated in the request
// headers, or starts a new root span when there is none.
func StartHttpServerTracerSpanWithHeader(ctx context.Context, operationName string, headers http.Header) (context.Context, opentracing.Span) {
	tracer := opentracing.GlobalTracer()
	var opts []opentracing.StartSpanOption
	if spanCtx, err := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(headers)); err == nil {
		opts = append(opts, ext.RPCServerOption(spanCtx))
	}
	span := tracer.StartSpan(operationName, opts...)
	return opentracing.ContextWithSpan(ctx, span), span
}

// SetDefaultSpanTags tags the span with the caller identity from ctx and the component.
func SetDefaultSpanTags(ctx context.Context, span opentracing.Span, component Component) {
	customContext := utils.GetContext(ctx)
	if customContext.UserId != "" {
		span.SetTag(SpanTagUserId, customContext.UserId)
	}
	if customContext.Username != "" {
		span.SetTag(SpanTagUsername, customContext.Username)
	}
	if customContext.RequestId != "" {
		span.SetTag(SpanTagRequestId, customContext.RequestId)
	}
	TagComponent(span, component)
}

func SetDefaultRestSpanTags(ctx context.Context, span opentracing.Span) {
	SetDefaultSpanTags(ctx, span, ComponentRest)
}

func SetDefaultGraphqlSpanTags(ctx context.Context, span opentracing.Span) {
	SetDefaultSpanTags(ctx, span, ComponentGraphQL)
}

func SetDefaultServiceSpanTags(ctx context.Context, span opentracing.Span) {
	SetDefaultSpanTags(ctx, span, ComponentService)
}

func SetDefaultPostgresRepositorySpanTags(ctx context.Context, span opentracing.Span) {
	SetDefaultSpanTags(ctx, span, ComponentPostgresRepository)
}

func TagComponent(span opentracing.Span, component Component) {
	span.SetTag(SpanTagComponent, string(component))
}

func TagEntity(span opentracing.Span, entityId string) {
	if entityId != "" {
		span.SetTag(SpanTagEntityId, entityId)
	}
}

func TraceErr(span opentracing.Span, err error, fields ...log.Field) {
	if span == nil || err == nil {
		return
	}
	ext.LogError(span, err, fields...)
}

func LogObjectAsJson(span opentracing.Span, name string, object any) {
	if object == nil {
		span.LogFields(log.String(name, "nil"))
		return
	}
	jsonObject, err := json.Marshal(object)
	if err != nil {
		span.LogFields(log.Object(name, object))
		return
	}
	span.LogFields(log.String(name, string(jsonObject)))
}

// ExtractTextMapCarrier serializes the span context so it can travel in event metadata.
// An empty carrier is returned when the tracer cannot inject.
func ExtractTextMapCarrier(spanCtx opentracing.SpanContext) opentracing.TextMapCarrier {
	carrier := make(opentracing.TextMapCarrier)
	if err := opentracing.GlobalTracer().Inject(spanCtx, opentracing.TextMap, carrier); err != nil {
		return make(opentracing.TextMapCarrier)
	}
	return carrier
}

// RecoveryWithJaeger records a panic on its own span and re-panics so gin.Recovery can answer the request.
func RecoveryWithJaeger(tracer opentracing.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				span := tracer.StartSpan("panic-recovery")
				buf := make([]byte, 4096)
				stackSize := runtime.Stack(buf, false)
				span.LogKV(
					"event", "error",
					"error.object", r,
					"stack", string(buf[:stackSize]),
					"http.path", c.Request.URL.Path,
				)
				ext.Error.Set(span, true)
				span.Finish()
				panic(r)
			}
		}()
		c.Next()
	}
}
