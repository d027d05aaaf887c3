package session

import (
	"sort"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/itinerary"
)

const DefaultRecommendations = 5

type Recommendation struct {
	Activity        travel.Activity `json:"activity"`
	PreferenceScore float64         `json:"preference_score"`
	Compatibility   float64         `json:"compatibility_score"`
	Score           float64         `json:"score"`
	Exploratory     bool            `json:"exploratory"`
}

// Recommend ranks the catalog by 0.5*preference + 0.5*compatibility. When the
// model decides to explore, the last slot goes to the least-preferred
// activity among those not ranked above it.
func (s *Session) Recommend(limit int) ([]Recommendation, error) {
	acts, err := itinerary.Catalog()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecommendations
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.context.UpdateTimeContext()

	all := make([]Recommendation, 0, len(acts))
	for _, a := range acts {
		pref := s.prefs.ActivityScore(a)
		compat := s.context.ActivityCompatibility(a).Overall
		all = append(all, Recommendation{
			Activity:        a,
			PreferenceScore: pref,
			Compatibility:   compat,
			Score:           0.5*pref + 0.5*compat,
		})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if limit > len(all) {
		limit = len(all)
	}
	out := append([]Recommendation(nil), all[:limit]...)

	if limit < len(all) && s.prefs.ShouldExplore() {
		rest := all[limit-1:]
		pick := 0
		for i := range rest {
			if rest[i].PreferenceScore < rest[pick].PreferenceScore {
				pick = i
			}
		}
		r := rest[pick]
		r.Exploratory = true
		out[limit-1] = r
		s.log.Info("Exploratory recommendation", "activity", r.Activity.Name)
	}
	return out, nil
}
