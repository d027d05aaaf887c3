package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voyagerverse-backend/internal/http/response"
	"github.com/yungbote/voyagerverse-backend/internal/itinerary"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

type ItineraryHandler struct {
	log      *logger.Logger
	sessions *session.Registry
}

func NewItineraryHandler(log *logger.Logger, sessions *session.Registry) *ItineraryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ItineraryHandler{log: log.With("handler", "ItineraryHandler"), sessions: sessions}
}

type createItineraryRequest struct {
	TravelerName string `json:"traveler_name" validate:"max=200"`
	StartDate    string `json:"start_date,omitempty"`
}

// POST /api/travelers/:travelerId/itinerary
func (h *ItineraryHandler) Create(c *gin.Context) {
	s, ok := travelerSession(c, h.sessions)
	if !ok {
		return
	}
	var req createItineraryRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	var start time.Time
	if d := strings.TrimSpace(req.StartDate); d != "" {
		t, err := time.Parse(itinerary.DateLayout, d)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_start_date", err)
			return
		}
		start = t
	}
	it, err := s.CreateItinerary(req.TravelerName, start)
	if err != nil {
		respondErr(c, err, "create_itinerary_failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"itinerary": it})
}

// GET /api/travelers/:travelerId/itinerary
func (h *ItineraryHandler) Get(c *gin.Context) {
	s, ok := knownSession(c, h.sessions)
	if !ok {
		return
	}
	it, err := s.Itinerary()
	if err != nil {
		respondErr(c, err, "get_itinerary_failed")
		return
	}
	response.RespondOK(c, gin.H{"itinerary": it})
}
