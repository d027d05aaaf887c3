package session

import (
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/itinerary"
)

// CreateItinerary builds and stores a sample week-long trip starting at start.
func (s *Session) CreateItinerary(name string, start time.Time) (travel.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if start.IsZero() {
		start = s.now()
	}
	it, err := itinerary.BuildSample(s.travelerID, name, start, s.rng)
	if err != nil {
		return travel.Itinerary{}, err
	}
	s.itineraries.Put(it)
	s.log.Info("Itinerary created", "start_date", it.StartDate, "days", len(it.Days))
	return it, nil
}

func (s *Session) Itinerary() (travel.Itinerary, error) {
	return s.itineraries.Get(s.travelerID)
}
