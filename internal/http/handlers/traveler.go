package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voyagerverse-backend/internal/decision"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/http/response"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

// TravelerHandler serves a traveler's context and the decision engine
// acting on it.
type TravelerHandler struct {
	log      *logger.Logger
	sessions *session.Registry
}

func NewTravelerHandler(log *logger.Logger, sessions *session.Registry) *TravelerHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &TravelerHandler{log: log.With("handler", "TravelerHandler"), sessions: sessions}
}

// GET /api/travelers/:travelerId/context
func (h *TravelerHandler) GetContext(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"context": s.Snapshot()})
}

// POST /api/travelers/:travelerId/context
func (h *TravelerHandler) UpdateContext(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	var req session.ContextUpdate
	if !bindJSON(c, &req) {
		return
	}
	out := s.UpdateContext(c.Request.Context(), req)
	response.RespondOK(c, gin.H{"outcome": out, "context": s.Snapshot()})
}

// POST /api/travelers/:travelerId/traveler-state
func (h *TravelerHandler) UpdateTravelerState(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	var req session.TravelerUpdate
	if !bindJSON(c, &req) {
		return
	}
	response.RespondOK(c, gin.H{"traveler_state": s.UpdateTravelerState(req)})
}

// POST /api/travelers/:travelerId/traveler-state/decay
func (h *TravelerHandler) DecayEnergy(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"energy_level": s.DecayEnergy()})
}

// POST /api/travelers/:travelerId/weather/refresh?force=true
func (h *TravelerHandler) RefreshWeather(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	response.RespondOK(c, s.RefreshWeather(c.Request.Context(), force))
}

// POST /api/travelers/:travelerId/compatibility
func (h *TravelerHandler) Compatibility(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	var a travel.Activity
	if !bindJSON(c, &a) {
		return
	}
	response.RespondOK(c, s.Compatibility(a))
}

// POST /api/travelers/:travelerId/plan/evaluate
func (h *TravelerHandler) EvaluatePlan(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"outcome": s.EvaluatePlan(c.Request.Context())})
}

// GET /api/travelers/:travelerId/decisions
func (h *TravelerHandler) ListDecisions(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"decisions": s.Decisions()})
}

// GET /api/travelers/:travelerId/decisions/:decisionId/explanation
func (h *TravelerHandler) ExplainDecision(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("decisionId"))
	if err != nil || id < 1 {
		response.RespondError(c, http.StatusBadRequest, "invalid_decision_id", err)
		return
	}
	ex, err := s.Explain(c.Request.Context(), id)
	if errors.Is(err, decision.ErrDecisionNotFound) {
		c.JSON(http.StatusNotFound, ex)
		return
	}
	if err != nil {
		respondErr(c, err, "explain_failed")
		return
	}
	response.RespondOK(c, ex)
}

// GET /api/travelers/:travelerId/engine
func (h *TravelerHandler) EngineStatus(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, s.EngineStatus())
}

// POST /api/travelers/:travelerId/goals
func (h *TravelerHandler) AddGoal(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	var g travel.Goal
	if !bindJSON(c, &g) {
		return
	}
	if err := s.AddGoal(g); err != nil {
		respondErr(c, err, "add_goal_failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"goals": s.EngineStatus().Goals})
}
