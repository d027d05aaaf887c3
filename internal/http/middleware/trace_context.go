package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/voyagerverse-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	KeyTraceID   = "trace_id"
	KeyRequestID = "request_id"
)

// AttachTraceContext gives every request a request id and a trace id. An
// incoming header wins, then the active otel span, then a fresh uuid. Both
// ids are echoed back so clients can quote them when reporting a bad
// re-plan.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)

		td := &ctxutil.TraceData{
			RequestID: firstNonEmpty(c.GetHeader(headerRequestID)),
			TraceID:   firstNonEmpty(c.GetHeader(headerTraceID), spanTraceID(span)),
		}
		if span.IsRecording() {
			span.SetAttributes(attribute.String("request.id", td.RequestID))
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, td))
		c.Set(KeyTraceID, td.TraceID)
		c.Set(KeyRequestID, td.RequestID)
		c.Header(headerTraceID, td.TraceID)
		c.Header(headerRequestID, td.RequestID)
		c.Next()
	}
}

func spanTraceID(span trace.Span) string {
	if sc := span.SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// firstNonEmpty returns the first non-blank candidate, or a new uuid.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return uuid.NewString()
}
