package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/platform/openai"
)

// LLM implements every collaborator on top of one chat-completion client.
type LLM struct {
	log    *logger.Logger
	client openai.Client
}

func NewLLM(log *logger.Logger, client openai.Client) *LLM {
	if log == nil {
		log = logger.Nop()
	}
	return &LLM{log: log.With("service", "AICollaborators"), client: client}
}

// Collaborators returns all four roles backed by l, or the zero value when
// l has no client.
func (l *LLM) Collaborators() Collaborators {
	if l == nil || l.client == nil {
		return Collaborators{}
	}
	return Collaborators{Safety: l, Alternatives: l, Personalizer: l, Explainer: l}
}

func (l *LLM) AnalyzeSafety(ctx context.Context, req SafetyRequest) (SafetyAssessment, error) {
	if l == nil || l.client == nil {
		return SafetyAssessment{}, wrap("analyze_safety", ErrUnavailable)
	}
	system := "You are VoyagerVerse, a travel assistant that prioritizes traveler safety."
	user := strings.Join([]string{
		"Analyze the safety of this activity.",
		"ACTIVITY: " + req.Name,
		fmt.Sprintf("OUTDOOR: %t", req.IsOutdoor),
		fmt.Sprintf("TEMPERATURE_C: %.1f", req.Temperature),
		"WEATHER_CONDITION: " + defaultString(req.Condition, "(unknown)"),
		"TRAVELER_HEALTH: " + defaultString(req.TravelerHealth, "good"),
		"",
		`Return JSON with fields: is_safe (boolean), risk_level ("Low"|"Medium"|"High"), reason (string), recommendation (string).`,
	}, "\n")

	var raw struct {
		IsSafe         *bool  `json:"is_safe"`
		RiskLevel      string `json:"risk_level"`
		Reason         string `json:"reason"`
		Recommendation string `json:"recommendation"`
	}
	if err := l.client.GenerateJSON(ctx, system, user, &raw); err != nil {
		return SafetyAssessment{}, wrap("analyze_safety", err)
	}
	if raw.IsSafe == nil {
		return SafetyAssessment{}, wrap("analyze_safety", fmt.Errorf("response missing is_safe"))
	}
	return SafetyAssessment{
		IsSafe:         *raw.IsSafe,
		RiskLevel:      strings.TrimSpace(raw.RiskLevel),
		Reason:         strings.TrimSpace(raw.Reason),
		Recommendation: strings.TrimSpace(raw.Recommendation),
	}, nil
}

type generatedActivity struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Category       string   `json:"category"`
	Location       string   `json:"location"`
	IsIndoor       *bool    `json:"is_indoor"`
	Description    string   `json:"description"`
	PriceRange     string   `json:"price_range"`
	EnergyRequired *float64 `json:"energy_required"`
}

func (g generatedActivity) activity() travel.Activity {
	cat := g.Category
	if cat == "" {
		cat = g.Type
	}
	a := travel.Activity{
		Name:           strings.TrimSpace(g.Name),
		Location:       strings.TrimSpace(g.Location),
		Description:    strings.TrimSpace(g.Description),
		Category:       NormalizeCategory(cat),
		PriceRange:     strings.TrimSpace(g.PriceRange),
		EnergyRequired: g.EnergyRequired,
	}
	if g.IsIndoor != nil {
		a.IsOutdoor = !*g.IsIndoor
	}
	return a
}

func (l *LLM) GenerateAlternatives(ctx context.Context, c Constraints) ([]travel.Activity, error) {
	if l == nil || l.client == nil {
		return nil, wrap("generate_alternatives", ErrUnavailable)
	}
	weather, _ := json.Marshal(c.Weather)
	outdoor := "any"
	if c.IsOutdoor != nil {
		outdoor = fmt.Sprintf("%t", *c.IsOutdoor)
	}
	system := "You are VoyagerVerse, a travel assistant for visitors to Dubai."
	user := strings.Join([]string{
		"Suggest 3 alternative activities that satisfy these constraints.",
		"WEATHER: " + string(weather),
		"TRAVELER_PREFERENCES: " + defaultString(strings.Join(c.Preferences, ", "), "(none)"),
		"OUTDOOR_ALLOWED: " + outdoor,
		fmt.Sprintf("MAX_ENERGY_REQUIRED: %.2f", c.MaxEnergy()),
		"BUDGET_LEVEL: " + defaultString(c.BudgetLevel, "standard"),
		"",
		`Return JSON {"activities":[...]} where each item has: name, type, location, is_indoor (boolean), description, price_range, energy_required (0..1).`,
	}, "\n")

	var raw struct {
		Activities []generatedActivity `json:"activities"`
	}
	if err := l.client.GenerateJSON(ctx, system, user, &raw); err != nil {
		return nil, wrap("generate_alternatives", err)
	}
	out := make([]travel.Activity, 0, len(raw.Activities))
	for _, g := range raw.Activities {
		a := g.activity()
		if a.Name == "" {
			continue
		}
		if c.ExcludesOutdoor() && a.IsOutdoor {
			continue
		}
		if a.EnergyRequired != nil && a.Energy() > c.MaxEnergy() {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (l *LLM) Personalize(ctx context.Context, u UserData, options []travel.Activity) (Personalization, error) {
	if len(options) == 0 {
		return Personalization{}, wrap("personalize", fmt.Errorf("no options"))
	}
	if l == nil || l.client == nil {
		return Personalization{}, wrap("personalize", ErrUnavailable)
	}
	prefs, _ := json.Marshal(u.Preferences)
	history := make([]map[string]any, 0, len(u.History))
	for _, d := range u.History {
		history = append(history, map[string]any{
			"issue":       d.Reason,
			"timestamp":   d.Timestamp,
			"accepted":    d.WasAccepted,
			"new_day":     d.NewPlan.Day,
			"replacement": activityNames(d.NewPlan.Activities),
		})
	}
	hist, _ := json.Marshal(history)
	opts, _ := json.Marshal(options)

	system := "You are VoyagerVerse, a travel assistant that gives personalized recommendations."
	user := strings.Join([]string{
		"Select the best activity for this traveler.",
		"TRAVELER_PREFERENCES: " + string(prefs),
		"DECISION_HISTORY: " + string(hist),
		"OPTIONS: " + string(opts),
		"",
		"Return JSON with fields: selected_activity_index (integer, 0-based), explanation (string).",
	}, "\n")

	var raw struct {
		Index       int    `json:"selected_activity_index"`
		Explanation string `json:"explanation"`
	}
	if err := l.client.GenerateJSON(ctx, system, user, &raw); err != nil {
		return Personalization{}, wrap("personalize", err)
	}
	idx := raw.Index
	if idx < 0 || idx >= len(options) {
		idx = 0
	}
	return Personalization{
		Index:          idx,
		Recommendation: options[idx],
		Explanation:    strings.TrimSpace(raw.Explanation),
	}, nil
}

func (l *LLM) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	if l == nil || l.client == nil {
		return "", wrap("explain", ErrUnavailable)
	}
	weather, _ := json.Marshal(req.Weather)
	orig, _ := json.Marshal(req.OriginalPlan.Activities)
	next, _ := json.Marshal(req.NewPlan.Activities)

	system := "You are VoyagerVerse, a travel assistant that helps travelers adapt to changing conditions."
	user := strings.Join([]string{
		"Explain this itinerary decision to the traveler. Be concise and empathetic; emphasize safety and how the change benefits them.",
		"DECISION_TYPE: " + defaultString(req.Type, travel.DecisionTypeItineraryChange),
		"REASON: " + string(req.Reason),
		"WEATHER: " + string(weather),
		"ORIGINAL_ACTIVITIES: " + string(orig),
		"NEW_ACTIVITIES: " + string(next),
	}, "\n")

	text, err := l.client.GenerateText(ctx, system, user)
	if err != nil {
		return "", wrap("explain", err)
	}
	return text, nil
}

// NormalizeCategory maps free-form category labels onto the known set.
func NormalizeCategory(s string) travel.Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cultural", "culture", "museum", "heritage":
		return travel.CategoryCulture
	case "adventure", "sport", "sports":
		return travel.CategoryAdventure
	case "dining", "food", "restaurant":
		return travel.CategoryDining
	case "relaxation", "wellness", "spa":
		return travel.CategoryRelaxation
	case "sightseeing":
		return travel.CategorySightseeing
	case "shopping":
		return travel.CategoryShopping
	case "entertainment", "nightlife":
		return travel.CategoryEntertainment
	case "attraction":
		return travel.CategoryAttraction
	case "leisure":
		return travel.CategoryLeisure
	default:
		return travel.Category(strings.ToLower(strings.TrimSpace(s)))
	}
}

func activityNames(as []travel.Activity) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.Name)
	}
	return out
}

func defaultString(v string, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
