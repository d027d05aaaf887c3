package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

// NewRealtimeHandler streams a traveler's notifications. Subscribing does
// not require an existing session.
func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/travelers/:travelerId/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	id, ok := travelerID(c)
	if !ok {
		return
	}
	client := h.hub.NewSSEClient(id)
	client.Logger = h.log.With("sse_client_id", client.ID.String())
	h.hub.AddChannel(client, realtime.ChannelFor(id))
	h.log.Info("SSE stream open", "traveler_id", id, "sse_client_id", client.ID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "traveler_id", id, "sse_client_id", client.ID.String())
}
