package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/alternatives"
	"github.com/yungbote/voyagerverse-backend/internal/contextstore"
	"github.com/yungbote/voyagerverse-backend/internal/decision"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/emotion"
	"github.com/yungbote/voyagerverse-backend/internal/itinerary"
	"github.com/yungbote/voyagerverse-backend/internal/notify"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/preference"
)

// Session is one traveler's planning state. Every exported method holds the
// session lock, so calls for a traveler run one at a time.
type Session struct {
	mu sync.Mutex

	travelerID    string
	log           *logger.Logger
	now           func() time.Time
	rng           *rand.Rand
	context       *contextstore.Store
	engine        *decision.Engine
	prefs         *preference.Model
	itineraries   *itinerary.Store
	notifications *notify.Pipeline
}

func newSession(log *logger.Logger, travelerID string, cfg Config, deps Deps) *Session {
	log = log.With("traveler_id", travelerID)
	rng := cfg.NewRand()
	collab := deps.Collaborators
	return &Session{
		travelerID: travelerID,
		log:        log.With("service", "TravelerSession"),
		now:        cfg.Now,
		rng:        rng,
		context: contextstore.New(log, contextstore.Config{
			Provider:        deps.Weather,
			Emotions:        emotion.NewTracker(log),
			WeatherInterval: cfg.WeatherInterval,
			City:            cfg.City,
			Now:             cfg.Now,
			Rand:            rand.New(rand.NewSource(rng.Int63())),
		}),
		engine: decision.New(log, decision.Config{
			Safety:              collab.Safety,
			Explainer:           collab.Explainer,
			Selector:            alternatives.New(log, collab.Alternatives, collab.Personalizer),
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			ReflectionInterval:  cfg.ReflectionInterval,
			HistoryLimit:        cfg.DecisionHistoryLimit,
			Now:                 cfg.Now,
		}),
		prefs: preference.New(log, preference.Config{
			HistoryLimit: cfg.PreferenceHistoryLimit,
			Now:          cfg.Now,
			Rand:         rand.New(rand.NewSource(rng.Int63())),
		}),
		itineraries:   deps.Itineraries,
		notifications: deps.Notifications,
	}
}

func (s *Session) TravelerID() string { return s.travelerID }

func (s *Session) Snapshot() travel.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context.Snapshot()
}

// ContextUpdate is a partial context change; nil fields are left alone.
type ContextUpdate struct {
	Weather          *contextstore.WeatherPatch  `json:"weather,omitempty"`
	LastWeatherCheck *contextstore.WeatherPatch  `json:"last_weather_check,omitempty"`
	Traveler         *contextstore.TravelerPatch `json:"traveler_state,omitempty"`
	Plan             *travel.Plan                `json:"current_plan,omitempty"`
	Location         *travel.Location            `json:"location,omitempty"`
	Preferences      *travel.TravelPreferences   `json:"preferences,omitempty"`
}

// Outcome is what an evaluation pass produced.
type Outcome struct {
	Reevaluated  bool                 `json:"reevaluated"`
	Evaluation   travel.Evaluation    `json:"evaluation"`
	Notification *travel.Notification `json:"notification,omitempty"`
	Applied      bool                 `json:"applied"`
}

// UpdateContext applies upd and, when the new context warrants it,
// reevaluates the current plan.
func (s *Session) UpdateContext(ctx context.Context, upd ContextUpdate) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if upd.Weather != nil || upd.LastWeatherCheck != nil {
		s.context.SetWeather(upd.Weather, upd.LastWeatherCheck)
	}
	if upd.Traveler != nil {
		s.context.UpdateTravelerState(*upd.Traveler, emotion.Sensors{})
	}
	if upd.Plan != nil {
		s.context.SetPlan(upd.Plan)
	}
	if upd.Location != nil {
		s.context.UpdateLocation(upd.Location)
	}
	if upd.Preferences != nil {
		s.context.SetPreferences(*upd.Preferences)
	}
	s.context.UpdateTimeContext()

	if !s.engine.ShouldReevaluate(s.context.Snapshot()) {
		return Outcome{}
	}
	return s.evaluateLocked(ctx)
}

// TravelerUpdate carries a traveler-state patch with optional sensor
// readings and self-reported feedback.
type TravelerUpdate struct {
	contextstore.TravelerPatch
	Sensors  emotion.Sensors   `json:"sensors"`
	Feedback *emotion.Feedback `json:"feedback,omitempty"`
}

func (s *Session) UpdateTravelerState(upd TravelerUpdate) travel.TravelerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.context.UpdateTravelerState(upd.TravelerPatch, upd.Sensors)
	if upd.Feedback != nil {
		ts = s.context.ApplyEmotionalFeedback(*upd.Feedback)
	}
	return ts
}

func (s *Session) DecayEnergy() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context.DecayEnergy()
}

func (s *Session) Compatibility(a travel.Activity) contextstore.Compatibility {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context.UpdateTimeContext()
	return s.context.ActivityCompatibility(a)
}

// EvaluatePlan checks the current plan regardless of whether the context
// changed.
func (s *Session) EvaluatePlan(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluateLocked(ctx)
}

type RefreshResult struct {
	TravelerID string         `json:"traveler_id"`
	Weather    travel.Weather `json:"weather"`
	PlanDate   string         `json:"plan_date,omitempty"`
	Outcome    Outcome        `json:"outcome"`
}

// RefreshWeather updates the weather, loads today's itinerary day as the
// current plan, and evaluates it.
func (s *Session) RefreshWeather(ctx context.Context, force bool) RefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := RefreshResult{TravelerID: s.travelerID}
	res.Weather = s.context.UpdateWeather(ctx, force)
	s.context.UpdateTimeContext()

	today := s.now().Format(itinerary.DateLayout)
	day, err := s.itineraries.Day(s.travelerID, today)
	if err != nil {
		s.log.Debug("No itinerary day to check", "date", today, "error", err)
		return res
	}
	s.context.SetPlan(&day)
	res.PlanDate = day.Date
	res.Outcome = s.evaluateLocked(ctx)
	return res
}

func (s *Session) evaluateLocked(ctx context.Context) Outcome {
	snap := s.context.Snapshot()
	out := Outcome{Reevaluated: true}
	out.Evaluation = s.engine.EvaluateCurrentPlan(ctx, snap)
	if !out.Evaluation.NeedsChange {
		return out
	}

	rec, err := s.engine.Decision(out.Evaluation.DecisionID)
	if err != nil {
		s.log.Error("Evaluated decision missing from history", "decision_id", out.Evaluation.DecisionID, "error", err)
		return out
	}
	conf := s.engine.ConfidenceScore(rec)
	explanation := s.engine.ExplainDecision(ctx, rec.ID, snap.Weather)
	out.Evaluation.Confidence = conf
	out.Evaluation.Explanation = explanation

	requires := s.engine.RequiresApproval(conf)
	n := s.notifications.Propose(ctx, s.travelerID, rec, conf, requires, explanation)
	if !requires {
		resolved, err := s.resolveLocked(ctx, n.ID, true)
		if err != nil {
			s.log.Warn("Auto-approval failed", "notification_id", n.ID, "error", err)
		} else {
			n = resolved
			out.Applied = true
		}
	}
	out.Notification = &n
	return out
}

// Respond records the traveler's answer to one of their notifications.
func (s *Session) Respond(ctx context.Context, notificationID string, approved bool) (travel.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.notifications.Get(notificationID)
	if err != nil {
		return travel.Notification{}, err
	}
	if n.TravelerID != s.travelerID {
		return travel.Notification{}, fmt.Errorf("notification %s belongs to another traveler: %w", notificationID, notify.ErrNotFound)
	}
	return s.resolveLocked(ctx, notificationID, approved)
}

func (s *Session) resolveLocked(ctx context.Context, notificationID string, approved bool) (travel.Notification, error) {
	n, err := s.notifications.Respond(ctx, notificationID, approved)
	if err != nil {
		return n, err
	}
	if err := s.engine.MarkDecision(n.DecisionID, approved); err != nil {
		s.log.Warn("Decision no longer in history", "decision_id", n.DecisionID, "error", err)
	}
	if !approved {
		return n, nil
	}

	revised := n.NewPlan.Clone()
	if err := s.itineraries.ApplyChange(s.travelerID, revised); err != nil {
		if !errors.Is(err, itinerary.ErrNotFound) && !errors.Is(err, itinerary.ErrDayNotFound) {
			return n, err
		}
		s.log.Debug("Approved change has no itinerary day to update", "date", revised.Date)
	}
	if cur := s.context.Snapshot().CurrentPlan; cur != nil && cur.Date == revised.Date {
		s.context.SetPlan(&revised)
	}
	s.log.Info("Itinerary change applied", "notification_id", n.ID, "date", revised.Date)
	return n, nil
}

func (s *Session) Notifications(status travel.NotificationStatus) []travel.Notification {
	return s.notifications.List(s.travelerID, status)
}
