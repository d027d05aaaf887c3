package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/http/response"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

type NotificationHandler struct {
	log      *logger.Logger
	sessions *session.Registry
}

func NewNotificationHandler(log *logger.Logger, sessions *session.Registry) *NotificationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationHandler{log: log.With("handler", "NotificationHandler"), sessions: sessions}
}

type respondRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// GET /api/travelers/:travelerId/notifications?status=pending
func (h *NotificationHandler) List(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	status := travel.NotificationStatus(c.Query("status"))
	switch status {
	case "", travel.NotificationPending, travel.NotificationApproved, travel.NotificationRejected:
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_status", errors.New("status must be pending, approved or rejected"))
		return
	}
	response.RespondOK(c, gin.H{"notifications": s.Notifications(status)})
}

// POST /api/notifications/:notificationId/respond
func (h *NotificationHandler) Respond(c *gin.Context) {
	id := c.Param("notificationId")
	var req respondRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.sessions.Respond(c.Request.Context(), id, *req.Approved)
	if err != nil {
		respondErr(c, err, "respond_failed")
		return
	}
	h.log.Info("Notification answered", "notification_id", id, "status", n.Status)
	response.RespondOK(c, gin.H{"notification": n})
}
