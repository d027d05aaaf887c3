package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

// ErrUnavailable is returned by collaborators that have no backing model.
var ErrUnavailable = errors.New("ai collaborator unavailable")

// CollaboratorError wraps a failed collaborator call with the operation name.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("ai %s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Op: op, Err: err}
}

type SafetyRequest struct {
	Name           string  `json:"name"`
	IsOutdoor      bool    `json:"is_outdoor"`
	Temperature    float64 `json:"temperature"`
	Condition      string  `json:"weather_condition"`
	TravelerHealth string  `json:"traveler_health"`
}

type SafetyAssessment struct {
	IsSafe         bool   `json:"is_safe"`
	RiskLevel      string `json:"risk_level"`
	Reason         string `json:"reason"`
	Recommendation string `json:"recommendation,omitempty"`
}

type SafetyAnalyzer interface {
	AnalyzeSafety(ctx context.Context, req SafetyRequest) (SafetyAssessment, error)
}

// Constraints bound a replacement activity. Nil fields are unconstrained.
type Constraints struct {
	IsOutdoor         *bool          `json:"is_outdoor,omitempty"`
	EnergyRequiredMax *float64       `json:"energy_required_max,omitempty"`
	Weather           travel.Weather `json:"weather"`
	Preferences       []string       `json:"preferences,omitempty"`
	BudgetLevel       string         `json:"budget_level"`
}

// MaxEnergy returns the energy ceiling, 1.0 when unset.
func (c Constraints) MaxEnergy() float64 {
	if c.EnergyRequiredMax == nil {
		return 1.0
	}
	return *c.EnergyRequiredMax
}

// ExcludesOutdoor reports whether the constraints explicitly forbid outdoor activities.
func (c Constraints) ExcludesOutdoor() bool {
	return c.IsOutdoor != nil && !*c.IsOutdoor
}

type AlternativeGenerator interface {
	GenerateAlternatives(ctx context.Context, c Constraints) ([]travel.Activity, error)
}

type UserData struct {
	Preferences travel.TravelPreferences `json:"preferences"`
	History     []travel.DecisionRecord  `json:"history"`
}

type Personalization struct {
	Index          int             `json:"selected_activity_index"`
	Recommendation travel.Activity `json:"recommendation"`
	Explanation    string          `json:"explanation"`
}

type Personalizer interface {
	Personalize(ctx context.Context, user UserData, options []travel.Activity) (Personalization, error)
}

type ExplainRequest struct {
	Type         string         `json:"type"`
	Reason       travel.Reason  `json:"reason"`
	OriginalPlan travel.Plan    `json:"original_plan"`
	NewPlan      travel.Plan    `json:"new_plan"`
	Weather      travel.Weather `json:"weather"`
}

type Explainer interface {
	Explain(ctx context.Context, req ExplainRequest) (string, error)
}

// Collaborators groups the AI boundary. Any field may be nil.
type Collaborators struct {
	Safety       SafetyAnalyzer
	Alternatives AlternativeGenerator
	Personalizer Personalizer
	Explainer    Explainer
}

// FallbackAlternatives is the fixed list used when generation yields nothing.
func FallbackAlternatives() []travel.Activity {
	return []travel.Activity{
		{Name: "Dubai Museum", Category: travel.CategoryCulture, Location: "Al Fahidi Fort"},
		{Name: "Mall of the Emirates", Category: travel.CategoryShopping, Location: "Sheikh Zayed Road"},
		{Name: "Burj Khalifa Observation Deck", Category: travel.CategoryAttraction, Location: "Downtown Dubai"},
	}
}
