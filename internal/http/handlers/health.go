package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	sessions func() int
}

func NewHealthHandler(sessions func() int) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.sessions != nil {
		body["sessions"] = h.sessions()
	}
	c.JSON(http.StatusOK, body)
}
