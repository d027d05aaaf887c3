package scenario

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/contextstore"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/preference"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

//go:embed tom_priya.yaml
var tomPriyaYAML []byte

// Fixture is a scripted context change for one traveler.
type Fixture struct {
	Name             string         `yaml:"name"`
	TravelerID       string         `yaml:"traveler_id"`
	Goals            []travel.Goal  `yaml:"goals"`
	Preferences      map[string]any `yaml:"preferences"`
	Plan             travel.Plan    `yaml:"plan"`
	Weather          travel.Weather `yaml:"weather"`
	LastWeatherCheck travel.Weather `yaml:"last_weather_check"`
	Traveler         struct {
		EnergyLevel *float64 `yaml:"energy_level"`
	} `yaml:"traveler"`
}

type Result struct {
	Scenario     string                 `json:"scenario"`
	OriginalPlan travel.Plan            `json:"original_plan"`
	NewPlan      *travel.Plan           `json:"new_plan"`
	Explanation  string                 `json:"explanation"`
	Confidence   float64                `json:"confidence"`
	DecisionID   int                    `json:"decision_id,omitempty"`
	Notification *travel.Notification   `json:"notification,omitempty"`
	Goals        []travel.Goal          `json:"goals"`
	Preferences  session.PreferenceView `json:"preferences"`
}

func TomAndPriya() (Fixture, error) {
	return Parse(tomPriyaYAML)
}

func Parse(raw []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse scenario: %w", err)
	}
	if f.TravelerID == "" {
		return Fixture{}, fmt.Errorf("scenario %q has no traveler_id", f.Name)
	}
	return f, nil
}

// Run plays f against a fresh session and reports the resulting decision.
func Run(ctx context.Context, log *logger.Logger, collab ai.Collaborators, f Fixture, now func() time.Time) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("service", "Scenario", "scenario", f.Name)

	reg := session.NewRegistry(log, session.Config{Now: now}, session.Deps{Collaborators: collab})
	s, err := reg.Open(f.TravelerID)
	if err != nil {
		return Result{}, err
	}

	for _, g := range f.Goals {
		if err := s.AddGoal(g); err != nil {
			return Result{}, fmt.Errorf("scenario goal %q: %w", g.Name, err)
		}
	}
	values, err := preference.FromMap(f.Preferences)
	if err != nil {
		return Result{}, fmt.Errorf("scenario preferences: %w", err)
	}
	prefs := s.InitializePreferences(values, nil)

	plan := f.Plan.Clone()
	out := s.UpdateContext(ctx, session.ContextUpdate{
		Weather:          contextstore.FullReading(f.Weather),
		LastWeatherCheck: contextstore.FullReading(f.LastWeatherCheck),
		Traveler:         &contextstore.TravelerPatch{EnergyLevel: f.Traveler.EnergyLevel},
		Plan:             &plan,
	})

	res := Result{
		Scenario:     f.Name,
		OriginalPlan: f.Plan.Clone(),
		NewPlan:      out.Evaluation.NewPlan,
		Explanation:  out.Evaluation.Explanation,
		Confidence:   out.Evaluation.Confidence,
		DecisionID:   out.Evaluation.DecisionID,
		Notification: out.Notification,
		Goals:        s.EngineStatus().Goals,
		Preferences:  prefs,
	}
	log.Info("Scenario finished", "needs_change", out.Evaluation.NeedsChange, "confidence", res.Confidence)
	return res, nil
}
