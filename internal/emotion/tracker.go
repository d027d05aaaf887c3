package emotion

import (
	"sync"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

const (
	adaptationThreshold = 0.6
	historyLimit        = 10
)

type Biometric struct {
	HeartRate            *float64 `json:"heart_rate,omitempty"`
	HeartRateVariability *float64 `json:"heart_rate_variability,omitempty"`
	SleepHours           *float64 `json:"sleep_hours,omitempty"`
	Steps                *int     `json:"steps,omitempty"`
	SkinConductance      *float64 `json:"skin_conductance,omitempty"`
	BodyTemperature      *float64 `json:"body_temperature,omitempty"`
	MovementComfort      *float64 `json:"movement_comfort,omitempty"`
	PainIndicator        *float64 `json:"pain_indicator,omitempty"`
}

type Speech struct {
	WordCount      int      `json:"word_count"`
	SpeechRate     string   `json:"speech_rate,omitempty"`
	Tone           string   `json:"tone,omitempty"`
	Volume         *float64 `json:"volume,omitempty"`
	PitchVariation *float64 `json:"pitch_variation,omitempty"`
}

type Facial struct {
	Expressions    map[string]float64 `json:"expressions,omitempty"`
	AttentionLevel *float64           `json:"attention_level,omitempty"`
}

type Behavioral struct {
	MovementSpeed        string   `json:"movement_speed,omitempty"`
	InteractionFrequency string   `json:"interaction_frequency,omitempty"`
	ActivityInterest     *float64 `json:"activity_interest,omitempty"`
}

// Sensors bundles the optional readings that accompany a traveler-state update.
type Sensors struct {
	Biometric  *Biometric  `json:"biometric,omitempty"`
	Speech     *Speech     `json:"speech,omitempty"`
	Facial     *Facial     `json:"facial,omitempty"`
	Behavioral *Behavioral `json:"behavioral,omitempty"`
}

func (s Sensors) Empty() bool {
	return s.Biometric == nil && s.Speech == nil && s.Facial == nil && s.Behavioral == nil
}

// Feedback is what the traveler says about how they feel.
type Feedback struct {
	Headache bool   `json:"headache"`
	Fatigue  bool   `json:"fatigue"`
	Mood     string `json:"mood,omitempty"`
}

// Analyzer turns sensor readings into an emotional state and service adaptations.
type Analyzer interface {
	Update(s Sensors) travel.EmotionalState
	ApplyFeedback(fb Feedback) travel.EmotionalState
	Current() travel.EmotionalState
	Recommendations() map[string]string
}

type Tracker struct {
	mu      sync.Mutex
	log     *logger.Logger
	now     func() time.Time
	current travel.EmotionalState
	history []travel.EmotionalState
}

func NewTracker(log *logger.Logger) *Tracker {
	if log == nil {
		log = logger.Nop()
	}
	return &Tracker{
		log: log.With("service", "EmotionTracker"),
		now: time.Now,
		current: travel.EmotionalState{
			FatigueLevel:    0.5,
			StressLevel:     0.5,
			EngagementLevel: 0.5,
			EnergyLevel:     0.5,
			ComfortLevel:    0.5,
			DominantEmotion: "neutral",
		},
	}
}

func (t *Tracker) Update(s Sensors) travel.EmotionalState {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.current
	if b := s.Biometric; b != nil {
		next.FatigueLevel = fatigueLevel(b)
		next.StressLevel = stressLevel(b)
		next.ComfortLevel = comfortLevel(b)
	}
	if sp := s.Speech; sp != nil {
		next.EngagementLevel = engagement(sp.WordCount, sp.SpeechRate)
	}
	if f := s.Facial; f != nil {
		next.DominantEmotion = dominantEmotion(f.Expressions)
	}
	if bh := s.Behavioral; bh != nil {
		next.EnergyLevel = levelFor(bh.MovementSpeed, movementEnergy)
	}
	return t.commit(next)
}

// ApplyFeedback overrides sensor-derived levels with what the traveler reported.
func (t *Tracker) ApplyFeedback(fb Feedback) travel.EmotionalState {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.current
	if fb.Headache {
		next.ComfortLevel = 0.3
		next.StressLevel = 0.7
	}
	if fb.Fatigue {
		next.FatigueLevel = 0.8
		next.EnergyLevel = 0.2
	}
	if fb.Mood != "" {
		next.DominantEmotion = fb.Mood
	}
	return t.commit(next)
}

func (t *Tracker) commit(next travel.EmotionalState) travel.EmotionalState {
	next.Timestamp = t.now().UTC().Format(time.RFC3339)
	t.history = append(t.history, t.current)
	if len(t.history) > historyLimit {
		t.history = t.history[len(t.history)-historyLimit:]
	}
	t.current = next
	t.log.Info("Emotional state updated",
		"fatigue", next.FatigueLevel,
		"stress", next.StressLevel,
		"energy", next.EnergyLevel,
		"comfort", next.ComfortLevel,
		"dominant_emotion", next.DominantEmotion,
	)
	return next
}

func (t *Tracker) Current() travel.EmotionalState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Tracker) History() []travel.EmotionalState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]travel.EmotionalState(nil), t.history...)
}

// Recommendations lists service adaptations for levels past the 0.6 threshold
// (or below 0.4 for energy and comfort).
func (t *Tracker) Recommendations() map[string]string {
	t.mu.Lock()
	s := t.current
	t.mu.Unlock()

	rec := map[string]string{}
	if s.FatigueLevel > adaptationThreshold {
		rec["activity_duration"] = "shortened"
		rec["activity_intensity"] = "reduced"
		rec["rest_breaks"] = "increased"
	}
	if s.StressLevel > adaptationThreshold {
		rec["environment"] = "calming"
		rec["pace"] = "relaxed"
		rec["sensory_input"] = "reduced"
	}
	if s.EnergyLevel < 1-adaptationThreshold {
		rec["physical_exertion"] = "minimized"
		rec["transportation"] = "convenient"
		rec["scheduling"] = "spacious"
	}
	if s.ComfortLevel < 1-adaptationThreshold {
		rec["amenities"] = "enhanced"
		rec["environment_control"] = "personalized"
		rec["seating"] = "prioritized"
	}
	return rec
}
