package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/http/response"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/scenario"
)

type DemoHandler struct {
	log    *logger.Logger
	collab ai.Collaborators
	now    func() time.Time
}

func NewDemoHandler(log *logger.Logger, collab ai.Collaborators, now func() time.Time) *DemoHandler {
	if log == nil {
		log = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &DemoHandler{log: log.With("handler", "DemoHandler"), collab: collab, now: now}
}

// GET /demo/tom-priya-scenario
func (h *DemoHandler) TomAndPriya(c *gin.Context) {
	f, err := scenario.TomAndPriya()
	if err != nil {
		respondErr(c, err, "scenario_invalid")
		return
	}
	res, err := scenario.Run(c.Request.Context(), h.log, h.collab, f, h.now)
	if err != nil {
		respondErr(c, err, "scenario_failed")
		return
	}
	response.RespondOK(c, res)
}
