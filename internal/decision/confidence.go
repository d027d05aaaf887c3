package decision

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/observability"
)

// NotFoundExplanation is returned when asked to explain an unknown decision.
const NotFoundExplanation = "No decision found with that ID."

// ConfidenceScore estimates how safe it is to apply rec without asking the
// traveler. Weather decisions start higher than energy ones, extreme heat
// adds more, and the acceptance rate of other same-reason decisions
// shifts the score by at most ±0.1. Unanswered decisions count as not
// accepted.
func (e *Engine) ConfidenceScore(rec travel.DecisionRecord) float64 {
	conf := 0.5
	switch rec.Reason {
	case travel.ReasonWeather:
		conf += 0.3
		if w := rec.Context.Weather; w != nil && w.Temperature > 42 {
			conf += 0.1
		}
	case travel.ReasonEnergy:
		conf -= 0.1
	}

	var similar, accepted int
	for _, d := range e.history.records {
		if d.ID == rec.ID || d.Reason != rec.Reason {
			continue
		}
		similar++
		if d.Accepted() {
			accepted++
		}
	}
	if similar > 0 {
		rate := float64(accepted) / float64(similar)
		conf += (rate - 0.5) * 0.2
	}
	return clamp01(conf)
}

// ExplainDecision describes decision id to the traveler. Explainer failures
// fall back to a fixed sentence for the decision's type and reason.
func (e *Engine) ExplainDecision(ctx context.Context, id int, weather *travel.Weather) string {
	rec, ok := e.history.get(id)
	if !ok {
		return NotFoundExplanation
	}
	if e.explainer != nil {
		req := ai.ExplainRequest{
			Type:         rec.Type,
			Reason:       rec.Reason,
			OriginalPlan: rec.OriginalPlan,
			NewPlan:      rec.NewPlan,
		}
		if weather != nil {
			req.Weather = *weather
		}
		text, err := e.explainer.Explain(ctx, req)
		if err == nil && text != "" {
			return text
		}
		if err != nil && !errors.Is(err, ai.ErrUnavailable) {
			e.log.Warn("Explanation failed; using template", "decision_id", id, "error", err)
		}
		observability.Current().IncFallback("explain")
	}
	return TemplateExplanation(rec.Type, rec.Reason)
}

func TemplateExplanation(decisionType string, reason travel.Reason) string {
	switch {
	case decisionType == travel.DecisionTypeItineraryChange && reason == travel.ReasonWeather:
		return "I noticed that the weather conditions would make your planned activity uncomfortable or unsafe. I've suggested an alternative indoor activity that aligns with your preferences."
	case decisionType == travel.DecisionTypeItineraryChange && reason == travel.ReasonEnergy:
		return "I noticed that your energy levels might make your planned activity too strenuous. I've suggested a more relaxing alternative that still provides an enjoyable experience."
	default:
		r := string(reason)
		if r == "" {
			r = "unknown"
		}
		return fmt.Sprintf("I made a change to your itinerary due to %s. The new plan should better accommodate your current situation.", r)
	}
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
