package itinerary

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

var (
	ErrNotFound    = errors.New("itinerary not found")
	ErrDayNotFound = errors.New("itinerary day not found")
)

// Store keeps one itinerary per traveler in memory.
type Store struct {
	mu    sync.RWMutex
	items map[string]travel.Itinerary
}

func NewStore() *Store {
	return &Store{items: make(map[string]travel.Itinerary)}
}

func (s *Store) Put(it travel.Itinerary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.TravelerID] = it.Clone()
}

func (s *Store) Get(travelerID string) (travel.Itinerary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[travelerID]
	if !ok {
		return travel.Itinerary{}, fmt.Errorf("traveler %s: %w", travelerID, ErrNotFound)
	}
	return it.Clone(), nil
}

// Day returns the traveler's plan for date (YYYY-MM-DD).
func (s *Store) Day(travelerID, date string) (travel.Plan, error) {
	it, err := s.Get(travelerID)
	if err != nil {
		return travel.Plan{}, err
	}
	for _, d := range it.Days {
		if d.Date == date {
			return d, nil
		}
	}
	return travel.Plan{}, fmt.Errorf("traveler %s date %s: %w", travelerID, date, ErrDayNotFound)
}

// ApplyChange replaces the activities of the day matching revised.Date and
// marks it modified.
func (s *Store) ApplyChange(travelerID string, revised travel.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[travelerID]
	if !ok {
		return fmt.Errorf("traveler %s: %w", travelerID, ErrNotFound)
	}
	for i, d := range it.Days {
		if d.Date != revised.Date {
			continue
		}
		next := revised.Clone()
		it.Days[i].Activities = next.Activities
		it.Days[i].IsModified = true
		it.Days[i].ModificationReason = revised.ModificationReason
		s.items[travelerID] = it
		return nil
	}
	return fmt.Errorf("traveler %s date %s: %w", travelerID, revised.Date, ErrDayNotFound)
}
