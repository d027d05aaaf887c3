package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/voyagerverse-backend/internal/itinerary"
	"github.com/yungbote/voyagerverse-backend/internal/preference"
)

const (
	noItineraryReply = "I don't have any itinerary information available at the moment."
	defaultChatReply = "I'm your VoyagerVerse assistant for Dubai. I can help with weather updates, itinerary information, and personalized recommendations based on your preferences and current conditions."
	defaultMaxTemp   = 38.0
)

type ChatReply struct {
	Reply   string   `json:"reply"`
	Updated []string `json:"updated_preferences"`
}

// Chat learns what it can from message and answers it.
func (s *Session) Chat(message string) ChatReply {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := s.prefs.UpdateFromNaturalLanguage(message)
	if updated == nil {
		updated = []string{}
	}
	return ChatReply{Reply: s.replyLocked(message), Updated: updated}
}

func (s *Session) replyLocked(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "weather"):
		snap := s.context.Snapshot()
		w := snap.Weather
		if w == nil {
			return fmt.Sprintf("The current weather in %s is %s°C.", snap.Location.City, num(snap.Temperature()))
		}
		return fmt.Sprintf("The current weather in %s is %s°C and %s with %s%% humidity.",
			snap.Location.City, num(w.Temperature), w.Condition, num(w.Humidity))

	case containsAny(msg, "itinerary", "plan", "schedule"):
		day, err := s.itineraries.Day(s.travelerID, s.now().Format(itinerary.DateLayout))
		if err != nil {
			return noItineraryReply
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Today you have %d activities planned:\n", len(day.Activities))
		for _, a := range day.Activities {
			fmt.Fprintf(&b, "- %s: %s at %s\n", a.Time, a.Name, a.Location)
		}
		return b.String()

	case containsAny(msg, "preference", "like"):
		maxTemp := defaultMaxTemp
		if e, ok := s.prefs.Get(preference.KeyMaxTemperature); ok && e.Value.IsNumber() {
			maxTemp = e.Value.Num
		}
		if e, ok := s.prefs.Get(preference.KeyCuisine); ok && len(e.Value.List) > 0 {
			return fmt.Sprintf("Based on your preferences, you enjoy %s cuisine and prefer temperatures below %s°C.",
				strings.Join(e.Value.List, ", "), num(maxTemp))
		}
		return fmt.Sprintf("Based on your preferences, you prefer temperatures below %s°C.", num(maxTemp))
	}
	return defaultChatReply
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
