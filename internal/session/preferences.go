package session

import (
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/preference"
)

type PreferenceView struct {
	Preferences     map[string]preference.Value `json:"preferences"`
	Confidences     map[string]float64          `json:"confidence_scores"`
	ExplorationRate float64                     `json:"exploration_rate"`
}

func (s *Session) Preferences() PreferenceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preferenceViewLocked()
}

func (s *Session) preferenceViewLocked() PreferenceView {
	return PreferenceView{
		Preferences:     s.prefs.Values(),
		Confidences:     s.prefs.Confidences(),
		ExplorationRate: s.prefs.ExplorationRate(),
	}
}

// InitializePreferences replaces the learned model with stated preferences.
func (s *Session) InitializePreferences(values map[string]preference.Value, confidences map[string]float64) PreferenceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Initialize(values, confidences)
	return s.preferenceViewLocked()
}

func (s *Session) Evolution() preference.Evolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Evolution()
}

func (s *Session) ExplicitFeedback(feedback map[string]preference.Value) PreferenceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.UpdateFromExplicitFeedback(feedback)
	return s.preferenceViewLocked()
}

// ActivityFeedback learns from a reaction and then retunes exploration.
func (s *Session) ActivityFeedback(a travel.Activity, reaction preference.Reaction) PreferenceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.UpdateFromImplicitFeedback(a, reaction)
	s.prefs.AdjustExplorationRate()
	return s.preferenceViewLocked()
}

func (s *Session) PreferenceScore(a travel.Activity) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.ActivityScore(a)
}
