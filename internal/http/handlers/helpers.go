package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/voyagerverse-backend/internal/decision"
	"github.com/yungbote/voyagerverse-backend/internal/http/response"
	"github.com/yungbote/voyagerverse-backend/internal/itinerary"
	"github.com/yungbote/voyagerverse-backend/internal/notify"
	"github.com/yungbote/voyagerverse-backend/internal/platform/apierr"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

const (
	maxBodyBytes     = 1 << 20
	maxTravelerIDLen = 128
)

var validate = validator.New()

func travelerID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("travelerId"))
	if id == "" || len(id) > maxTravelerIDLen {
		response.RespondError(c, http.StatusBadRequest, "invalid_traveler_id", errors.New("traveler id must be 1-128 characters"))
		return "", false
	}
	return id, true
}

// travelerSession resolves the :travelerId param to its session, creating
// one on first contact. Only routes that change traveler state use it.
func travelerSession(c *gin.Context, sessions *session.Registry) (*session.Session, bool) {
	id, ok := travelerID(c)
	if !ok {
		return nil, false
	}
	s, err := sessions.Open(id)
	if err != nil {
		respondErr(c, err, "open_session_failed")
		return nil, false
	}
	return s, true
}

// knownSession resolves the :travelerId param to an existing session and
// answers 404 otherwise.
func knownSession(c *gin.Context, sessions *session.Registry) (*session.Session, bool) {
	id, ok := travelerID(c)
	if !ok {
		return nil, false
	}
	s, found := sessions.Lookup(id)
	if !found {
		respondErr(c, fmt.Errorf("traveler %s: %w", id, session.ErrUnknownTraveler), "traveler_lookup_failed")
		return nil, false
	}
	return s, true
}

// bindJSON decodes and validates the request body into dst.
func bindJSON(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			response.RespondError(c, http.StatusBadRequest, "validation_failed", err)
			return false
		}
	}
	return true
}

// classify maps domain errors onto API errors.
func classify(err error) error {
	switch {
	case errors.Is(err, notify.ErrNotFound):
		return apierr.NotFound("notification_not_found", err)
	case errors.Is(err, notify.ErrAlreadyResolved):
		return apierr.Conflict("notification_already_resolved", err)
	case errors.Is(err, decision.ErrDecisionNotFound):
		return apierr.NotFound("decision_not_found", err)
	case errors.Is(err, session.ErrUnknownTraveler):
		return apierr.NotFound("traveler_not_found", err)
	case errors.Is(err, session.ErrTooManySessions):
		return apierr.New(http.StatusServiceUnavailable, "session_limit_reached", err)
	case errors.Is(err, itinerary.ErrNotFound), errors.Is(err, itinerary.ErrDayNotFound):
		return apierr.NotFound("itinerary_not_found", err)
	}
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		return apierr.BadRequest("validation_failed", err)
	}
	return err
}

func respondErr(c *gin.Context, err error, fallbackCode string) {
	response.RespondAPIError(c, classify(err), fallbackCode)
}
