package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voyagerverse-backend/internal/platform/ctxutil"
)

// AttachTravelerContext copies the :travelerId route param into the request
// context for logging and tracing.
func AttachTravelerContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.Param("travelerId")); id != "" {
			c.Request = c.Request.WithContext(ctxutil.WithTravelerID(c.Request.Context(), id))
			c.Set("traveler_id", id)
		}
		c.Next()
	}
}
