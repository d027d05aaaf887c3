package decision

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/alternatives"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/observability"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

const (
	DefaultConfidenceThreshold = 0.7
	DefaultReflectionInterval  = 6 * time.Hour

	temperatureDelta   = 5.0
	lowEnergy          = 0.4
	extremeHeat        = 40.0
	highEnergyActivity = 0.7
	energyCeiling      = 0.5
	safetyConcurrency  = 4
)

type State string

const (
	StateStable       State = "stable"
	StateReevaluating State = "reevaluating"
	StateUnchanged    State = "unchanged"
	StateModified     State = "modified"
)

type Config struct {
	Safety              ai.SafetyAnalyzer
	Explainer           ai.Explainer
	Selector            *alternatives.Selector
	ConfidenceThreshold float64
	ReflectionInterval  time.Duration
	HistoryLimit        int
	Now                 func() time.Time
}

// Engine decides whether a plan still fits the current context and revises
// it when it does not. It is not safe for concurrent use.
type Engine struct {
	log       *logger.Logger
	safety    ai.SafetyAnalyzer
	explainer ai.Explainer
	selector  *alternatives.Selector
	threshold float64
	interval  time.Duration
	now       func() time.Time

	history        *history
	goals          []travel.Goal
	state          State
	lastOutcome    State
	lastReflection time.Time
	reflection     *Reflection
}

func New(log *logger.Logger, cfg Config) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.ReflectionInterval <= 0 {
		cfg.ReflectionInterval = DefaultReflectionInterval
	}
	if cfg.Selector == nil {
		cfg.Selector = alternatives.New(log, nil, nil)
	}
	return &Engine{
		log:            log.With("service", "DecisionEngine"),
		safety:         cfg.Safety,
		explainer:      cfg.Explainer,
		selector:       cfg.Selector,
		threshold:      cfg.ConfidenceThreshold,
		interval:       cfg.ReflectionInterval,
		now:            cfg.Now,
		history:        newHistory(cfg.HistoryLimit),
		state:          StateStable,
		lastReflection: cfg.Now(),
	}
}

// ShouldReevaluate reports whether snap warrants checking the current plan:
// a temperature swing of more than 5°C since the last check, or traveler
// energy below 0.4.
func ShouldReevaluate(snap travel.Snapshot) bool {
	if snap.Weather != nil && snap.LastWeatherCheck != nil {
		if d := snap.Weather.Temperature - snap.LastWeatherCheck.Temperature; d > temperatureDelta || d < -temperatureDelta {
			return true
		}
	}
	return snap.Traveler.Energy() < lowEnergy
}

func (e *Engine) ShouldReevaluate(snap travel.Snapshot) bool {
	ok := ShouldReevaluate(snap)
	if ok {
		e.log.Info("Context change warrants reevaluation",
			"temperature", snap.Temperature(),
			"energy_level", snap.Traveler.Energy(),
		)
	}
	return ok
}

// EvaluateCurrentPlan checks the snapshot's current plan and returns either
// the unchanged plan or a revised one. A snapshot without a plan yields an
// empty evaluation.
func (e *Engine) EvaluateCurrentPlan(ctx context.Context, snap travel.Snapshot) travel.Evaluation {
	ctx, span := observability.Tracer().Start(ctx, "decision.EvaluateCurrentPlan")
	defer span.End()

	if snap.CurrentPlan.IsEmpty() {
		e.log.Warn("No current plan found in context")
		observability.Current().IncReevaluation("no_plan")
		return travel.Evaluation{}
	}
	plan := snap.CurrentPlan.Clone()
	span.SetAttributes(
		attribute.Int("plan.day", plan.Day),
		attribute.Int("plan.activities", len(plan.Activities)),
		attribute.Float64("weather.temperature", snap.Temperature()),
	)

	e.state = StateReevaluating
	defer func() { e.state = StateStable }()

	var reason travel.Reason
	issues, weatherIssue := e.CheckWeatherCompatibility(ctx, snap, plan)
	switch {
	case weatherIssue:
		reason = travel.ReasonWeather
	case e.CheckEnergyCompatibility(snap, plan):
		reason = travel.ReasonEnergy
	}

	if reason == "" {
		e.lastOutcome = StateUnchanged
		observability.Current().IncReevaluation("unchanged")
		span.SetAttributes(attribute.String("decision.outcome", "unchanged"))
		return travel.Evaluation{NewPlan: &plan, SafetyIssues: issues}
	}

	newPlan, rec := e.GenerateAlternativePlan(ctx, snap, plan, reason)
	e.lastOutcome = StateModified
	observability.Current().IncReevaluation("modified")
	span.SetAttributes(
		attribute.String("decision.outcome", "modified"),
		attribute.String("decision.reason", string(reason)),
		attribute.Int("decision.id", rec.ID),
	)
	return travel.Evaluation{
		NeedsChange:  true,
		Reason:       reason,
		NewPlan:      &newPlan,
		DecisionID:   rec.ID,
		SafetyIssues: issues,
	}
}

// CheckWeatherCompatibility reports whether the weather rules out any
// outdoor activity in plan. Extreme heat or rain/storm decide immediately;
// otherwise each outdoor activity is put to the safety analyzer, whose
// failures count as no issue.
func (e *Engine) CheckWeatherCompatibility(ctx context.Context, snap travel.Snapshot, plan travel.Plan) ([]string, bool) {
	if snap.Weather == nil {
		return nil, false
	}
	temp := snap.Weather.Temperature
	cond := strings.ToLower(snap.Weather.Condition)
	wet := strings.Contains(cond, "rain") || strings.Contains(cond, "storm")

	var issues []string
	for _, a := range plan.Activities {
		if !a.IsOutdoor {
			continue
		}
		if temp > extremeHeat {
			e.log.Info("Weather incompatibility detected", "temperature", temp, "activity", a.Name)
			issues = append(issues, fmt.Sprintf("%.1f°C is too hot for %s", temp, a.Name))
		}
		if wet {
			e.log.Info("Weather incompatibility detected", "condition", cond, "activity", a.Name)
			issues = append(issues, fmt.Sprintf("%s is not suitable for %s", cond, a.Name))
		}
	}
	if len(issues) > 0 {
		return issues, true
	}
	if e.safety == nil {
		return nil, false
	}

	outdoor := make([]travel.Activity, 0, len(plan.Activities))
	for _, a := range plan.Activities {
		if a.IsOutdoor {
			outdoor = append(outdoor, a)
		}
	}
	if len(outdoor) == 0 {
		return nil, false
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(safetyConcurrency)
	for _, a := range outdoor {
		g.Go(func() error {
			res, err := e.safety.AnalyzeSafety(ctx, ai.SafetyRequest{
				Name:           a.Name,
				IsOutdoor:      true,
				Temperature:    temp,
				Condition:      cond,
				TravelerHealth: snap.Traveler.Health(),
			})
			if err != nil {
				e.log.Warn("Safety analysis failed; assuming no issue", "activity", a.Name, "error", err)
				observability.Current().IncFallback("analyze_safety")
				return nil
			}
			if !res.IsSafe {
				e.log.Info("Safety analysis flagged activity", "activity", a.Name, "risk_level", res.RiskLevel, "reason", res.Reason)
				mu.Lock()
				issues = append(issues, fmt.Sprintf("%s: %s", a.Name, defaultString(res.Reason, "unsafe in current conditions")))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return issues, len(issues) > 0
}

// CheckEnergyCompatibility reports whether a demanding activity (energy
// above 0.7) is planned while the traveler's energy is below 0.4.
func (e *Engine) CheckEnergyCompatibility(snap travel.Snapshot, plan travel.Plan) bool {
	energy := snap.Traveler.Energy()
	if energy >= lowEnergy {
		return false
	}
	for _, a := range plan.Activities {
		if a.Energy() > highEnergyActivity {
			e.log.Info("Traveler energy too low for activity", "energy_level", energy, "activity", a.Name)
			return true
		}
	}
	return false
}

// GenerateAlternativePlan returns a modified copy of plan with affected
// activities substituted in place, and records the decision.
func (e *Engine) GenerateAlternativePlan(ctx context.Context, snap travel.Snapshot, plan travel.Plan, reason travel.Reason) (travel.Plan, travel.DecisionRecord) {
	original := plan.Clone()
	next := plan.Clone()
	next.IsModified = true
	next.ModificationReason = reason

	user := ai.UserData{Preferences: snap.Preferences, History: e.history.all()}
	if n := len(user.History); n > 10 {
		user.History = user.History[n-10:]
	}

	for i, a := range next.Activities {
		c, affected := constraintsFor(reason, a, snap)
		if !affected {
			continue
		}
		alt := e.selector.Find(ctx, a, c, user)
		if alt == nil {
			e.log.Info("No alternative found; keeping activity", "activity", a.Name, "reason", reason)
			continue
		}
		next.Activities[i] = *alt
		e.log.Info("Replaced activity", "original", a.Name, "replacement", alt.Name, "reason", reason)
	}

	rec := e.record(travel.DecisionRecord{
		Type:         travel.DecisionTypeItineraryChange,
		OriginalPlan: original,
		NewPlan:      next.Clone(),
		Reason:       reason,
		Timestamp:    e.now(),
		Context:      snap.Clone(),
	})
	return next, rec
}

func constraintsFor(reason travel.Reason, a travel.Activity, snap travel.Snapshot) (ai.Constraints, bool) {
	c := ai.Constraints{
		Preferences: append([]string(nil), snap.Preferences.ActivityPreferences...),
		BudgetLevel: snap.Preferences.Budget(),
	}
	if snap.Weather != nil {
		c.Weather = *snap.Weather
	}
	switch reason {
	case travel.ReasonWeather:
		if !a.IsOutdoor {
			return c, false
		}
		indoor := false
		c.IsOutdoor = &indoor
	case travel.ReasonEnergy:
		if a.Energy() <= highEnergyActivity {
			return c, false
		}
		c.EnergyRequiredMax = travel.Float(energyCeiling)
	default:
		return c, false
	}
	return c, true
}

func (e *Engine) record(rec travel.DecisionRecord) travel.DecisionRecord {
	rec = e.history.append(rec)
	conf := e.ConfidenceScore(rec)
	observability.Current().ObserveDecision(string(rec.Reason), conf)
	e.log.Info("Recorded decision", "decision_id", rec.ID, "reason", rec.Reason, "confidence", conf)

	now := e.now()
	if now.Sub(e.lastReflection) >= e.interval {
		r := e.reflect(now)
		e.reflection = &r
		e.lastReflection = now
	}
	return rec
}

// MarkDecision records whether the traveler accepted decision id.
func (e *Engine) MarkDecision(id int, accepted bool) error {
	if err := e.history.mark(id, accepted); err != nil {
		return fmt.Errorf("mark decision %d: %w", id, err)
	}
	return nil
}

func (e *Engine) Decision(id int) (travel.DecisionRecord, error) {
	rec, ok := e.history.get(id)
	if !ok {
		return travel.DecisionRecord{}, fmt.Errorf("decision %d: %w", id, ErrDecisionNotFound)
	}
	return rec, nil
}

func (e *Engine) Decisions() []travel.DecisionRecord { return e.history.all() }

// LastDecision returns the most recent record, if any.
func (e *Engine) LastDecision() (travel.DecisionRecord, bool) {
	last := e.history.last(1)
	if len(last) == 0 {
		return travel.DecisionRecord{}, false
	}
	return last[0], true
}

// RequiresApproval reports whether a decision with this confidence must
// wait for the traveler instead of applying automatically.
func (e *Engine) RequiresApproval(confidence float64) bool {
	return confidence < e.threshold
}

func (e *Engine) ConfidenceThreshold() float64 { return e.threshold }

func (e *Engine) State() State { return e.state }

// LastOutcome is the result of the most recent evaluation: unchanged,
// modified, or stable if none has run.
func (e *Engine) LastOutcome() State {
	if e.lastOutcome == "" {
		return StateStable
	}
	return e.lastOutcome
}

func defaultString(v string, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
