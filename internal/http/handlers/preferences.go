package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/http/response"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/preference"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

type PreferenceHandler struct {
	log      *logger.Logger
	sessions *session.Registry
}

func NewPreferenceHandler(log *logger.Logger, sessions *session.Registry) *PreferenceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PreferenceHandler{log: log.With("handler", "PreferenceHandler"), sessions: sessions}
}

type activityFeedbackRequest struct {
	Activity travel.Activity     `json:"activity"`
	Reaction preference.Reaction `json:"reaction" validate:"required,oneof=loved liked neutral disliked hated"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// GET /api/travelers/:travelerId/preferences
func (h *PreferenceHandler) Get(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, s.Preferences())
}

// GET /api/travelers/:travelerId/preferences/evolution
func (h *PreferenceHandler) Evolution(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	response.RespondOK(c, s.Evolution())
}

// POST /api/travelers/:travelerId/feedback/explicit
func (h *PreferenceHandler) ExplicitFeedback(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	var req map[string]preference.Value
	if !bindJSON(c, &req) {
		return
	}
	if len(req) == 0 {
		response.RespondError(c, http.StatusBadRequest, "empty_feedback", errors.New("feedback must name at least one preference"))
		return
	}
	response.RespondOK(c, s.ExplicitFeedback(req))
}

// POST /api/travelers/:travelerId/feedback/activity
func (h *PreferenceHandler) ActivityFeedback(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	var req activityFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Activity.Name == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_activity", errors.New("activity name is required"))
		return
	}
	response.RespondOK(c, s.ActivityFeedback(req.Activity, req.Reaction))
}

// POST /api/travelers/:travelerId/preferences/score
func (h *PreferenceHandler) Score(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	var a travel.Activity
	if !bindJSON(c, &a) {
		return
	}
	response.RespondOK(c, gin.H{"activity": a.Name, "preference_score": s.PreferenceScore(a)})
}

// POST /api/travelers/:travelerId/chat
func (h *PreferenceHandler) Chat(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	var req chatRequest
	if !bindJSON(c, &req) {
		return
	}
	response.RespondOK(c, s.Chat(req.Message))
}

// GET /api/travelers/:travelerId/recommendations?limit=5
func (h *PreferenceHandler) Recommendations(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(session.DefaultRecommendations)))
	if err != nil || limit < 1 {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer"))
		return
	}
	recs, err := s.Recommend(limit)
	if err != nil {
		respondErr(c, err, "recommend_failed")
		return
	}
	response.RespondOK(c, gin.H{"recommendations": recs})
}
