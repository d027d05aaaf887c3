package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voyagerverse-backend/internal/platform/ctxutil"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

// quietRoutes are polled by infrastructure and only logged at debug level
// when they succeed.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// RequestLogger writes one line per request. Event streams are logged when
// they close, with their full connected duration.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := append(requestFields(c), "method", strings.ToUpper(c.Request.Method), "path", route, "status", status, "duration_ms", time.Since(start).Milliseconds())
		if isEventStream(c) {
			fields = append(fields, "stream", true)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func requestFields(c *gin.Context) []interface{} {
	ctx := c.Request.Context()
	var fields []interface{}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if id := ctxutil.GetTravelerID(ctx); id != "" {
		fields = append(fields, "traveler_id", id)
	}
	if id := c.Param("notificationId"); id != "" {
		fields = append(fields, "notification_id", id)
	}
	return fields
}

func isEventStream(c *gin.Context) bool {
	return strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream")
}
