package alternatives

import (
	"context"
	"errors"

	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/observability"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

// Selector picks a replacement for an activity that no longer fits.
type Selector struct {
	log          *logger.Logger
	generator    ai.AlternativeGenerator
	personalizer ai.Personalizer
}

func New(log *logger.Logger, generator ai.AlternativeGenerator, personalizer ai.Personalizer) *Selector {
	if log == nil {
		log = logger.Nop()
	}
	return &Selector{
		log:          log.With("service", "AlternativeSelector"),
		generator:    generator,
		personalizer: personalizer,
	}
}

// Find returns a replacement for original, or nil when none applies and
// the slot should stay as it is.
func (s *Selector) Find(ctx context.Context, original travel.Activity, c ai.Constraints, user ai.UserData) *travel.Activity {
	candidates, err := s.generate(ctx, c)
	if err != nil {
		if !errors.Is(err, ai.ErrUnavailable) {
			s.log.Warn("Alternative generation failed; using rule-based substitute", "activity", original.Name, "error", err)
		}
		observability.Current().IncFallback("generate_alternatives")
		return RuleBased(original, c)
	}
	if len(candidates) == 0 {
		observability.Current().IncFallback("generate_alternatives_empty")
		candidates = ai.FallbackAlternatives()
	}

	best := candidates[0]
	if len(candidates) > 1 && s.personalizer != nil {
		p, err := s.personalizer.Personalize(ctx, user, candidates)
		if err != nil {
			s.log.Warn("Personalization failed; keeping first candidate", "error", err)
			observability.Current().IncFallback("personalize")
		} else if p.Recommendation.Name != "" {
			best = p.Recommendation
		}
	}
	best = best.Clone()
	s.log.Info("Selected alternative activity", "original", original.Name, "replacement", best.Name)
	return &best
}

func (s *Selector) generate(ctx context.Context, c ai.Constraints) ([]travel.Activity, error) {
	if s.generator == nil {
		return nil, ai.ErrUnavailable
	}
	return s.generator.GenerateAlternatives(ctx, c)
}

// RuleBased returns the fixed substitute for original under c, or nil.
func RuleBased(original travel.Activity, c ai.Constraints) *travel.Activity {
	if c.ExcludesOutdoor() && original.Category == travel.CategoryAdventure {
		a := museumTour()
		return &a
	}
	if c.MaxEnergy() < 0.6 && original.Energy() > 0.7 {
		a := spaExperience()
		return &a
	}
	return nil
}

func museumTour() travel.Activity {
	return travel.Activity{
		Name:            "Dubai Museum Cultural Tour",
		Description:     "Explore Dubai's rich cultural heritage in the air-conditioned Dubai Museum",
		Location:        "Al Fahidi Historical District",
		DurationHours:   2,
		Category:        travel.CategoryCulture,
		IsOutdoor:       false,
		EnergyRequired:  travel.Float(0.4),
		PriceRange:      "$$",
		BookingRequired: true,
		BookingDetails: &travel.BookingDetails{
			Provider:     "Dubai Tourism",
			Availability: []string{"10:00", "13:00", "16:00"},
		},
	}
}

func spaExperience() travel.Activity {
	return travel.Activity{
		Name:            "Luxury Spa Experience",
		Description:     "Relax and rejuvenate with a premium spa treatment",
		Location:        "Five Palm Jumeirah Dubai",
		DurationHours:   2,
		Category:        travel.CategoryRelaxation,
		IsOutdoor:       false,
		EnergyRequired:  travel.Float(0.2),
		PriceRange:      "$$$",
		BookingRequired: true,
		BookingDetails: &travel.BookingDetails{
			Provider:     "Five Palm Jumeirah",
			Availability: []string{"11:00", "14:00", "17:00"},
		},
	}
}
