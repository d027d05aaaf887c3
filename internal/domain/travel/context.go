package travel

import "time"

type TimeOfDay string

const (
	EarlyMorning TimeOfDay = "early_morning"
	Morning      TimeOfDay = "morning"
	Midday       TimeOfDay = "midday"
	Afternoon    TimeOfDay = "afternoon"
	Evening      TimeOfDay = "evening"
	Night        TimeOfDay = "night"
)

// TimeOfDayFor buckets an hour: [5,8) early morning, [8,12) morning,
// [12,15) midday, [15,18) afternoon, [18,21) evening, otherwise night.
func TimeOfDayFor(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 8:
		return EarlyMorning
	case hour >= 8 && hour < 12:
		return Morning
	case hour >= 12 && hour < 15:
		return Midday
	case hour >= 15 && hour < 18:
		return Afternoon
	case hour >= 18 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// DefaultTemperature stands in for a missing weather reading.
const DefaultTemperature = 35.0

// DefaultEnergyLevel stands in for a missing traveler energy reading.
const DefaultEnergyLevel = 1.0

type Weather struct {
	Temperature         float64   `json:"temperature" yaml:"temperature"`
	Humidity            float64   `json:"humidity" yaml:"humidity"`
	PrecipitationChance float64   `json:"precipitation_chance" yaml:"precipitation_chance"`
	UVIndex             float64   `json:"uv_index" yaml:"uv_index"`
	WindSpeed           float64   `json:"wind_speed" yaml:"wind_speed"`
	Condition           string    `json:"condition" yaml:"condition"`
	Source              string    `json:"data_source,omitempty" yaml:"-"`
	UpdatedAt           time.Time `json:"last_updated,omitzero" yaml:"-"`
}

type EmotionalState struct {
	FatigueLevel    float64 `json:"fatigue_level"`
	StressLevel     float64 `json:"stress_level"`
	EngagementLevel float64 `json:"engagement_level"`
	EnergyLevel     float64 `json:"energy_level"`
	ComfortLevel    float64 `json:"comfort_level"`
	DominantEmotion string  `json:"dominant_emotion"`
	Timestamp       string  `json:"timestamp,omitempty"`
}

type TravelerState struct {
	EnergyLevel    *float64          `json:"energy_level,omitempty" yaml:"energy_level"`
	LastMealTime   time.Time         `json:"last_meal_time,omitzero" yaml:"-"`
	MealCountToday int               `json:"meal_count_today" yaml:"meal_count_today"`
	StepCount      int               `json:"step_count" yaml:"step_count"`
	HealthStatus   string            `json:"health_status,omitempty" yaml:"health_status"`
	Emotional      *EmotionalState   `json:"emotional_state,omitempty" yaml:"-"`
	Adaptations    map[string]string `json:"adaptation_recommendations,omitempty" yaml:"-"`
	UpdatedAt      time.Time         `json:"last_updated,omitzero" yaml:"-"`
}

// Energy returns the traveler's energy, 1.0 when unknown.
func (t TravelerState) Energy() float64 {
	if t.EnergyLevel == nil {
		return DefaultEnergyLevel
	}
	return *t.EnergyLevel
}

func (t TravelerState) Health() string {
	if t.HealthStatus == "" {
		return "good"
	}
	return t.HealthStatus
}

type TimeContext struct {
	LocalTime   time.Time         `json:"local_time"`
	DayOfWeek   string            `json:"day_of_week"`
	IsWeekend   bool              `json:"is_weekend"`
	IsHoliday   bool              `json:"is_holiday"`
	PrayerTimes map[string]string `json:"prayer_times,omitempty"`
	TimeOfDay   TimeOfDay         `json:"time_of_day"`
}

type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

type Location struct {
	City         string      `json:"city" yaml:"city"`
	District     string      `json:"district,omitempty" yaml:"district"`
	Coordinates  Coordinates `json:"coordinates" yaml:"coordinates"`
	CurrentVenue string      `json:"current_venue,omitempty" yaml:"current_venue"`
}

// TravelPreferences are the coarse trip-level preferences fed to alternative
// generation, distinct from the learned preference model.
type TravelPreferences struct {
	ActivityPreferences []string `json:"activity_preferences,omitempty" yaml:"activity_preferences"`
	BudgetLevel         string   `json:"budget_level,omitempty" yaml:"budget_level"`
}

func (p TravelPreferences) Budget() string {
	if p.BudgetLevel == "" {
		return "standard"
	}
	return p.BudgetLevel
}

// Snapshot is the single mutable record of what is true right now for one
// traveler session.
type Snapshot struct {
	Timestamp        time.Time         `json:"timestamp"`
	Weather          *Weather          `json:"weather,omitempty"`
	LastWeatherCheck *Weather          `json:"last_weather_check,omitempty"`
	Traveler         TravelerState     `json:"traveler_state"`
	Time             TimeContext       `json:"time_context"`
	Location         Location          `json:"location"`
	CurrentPlan      *Plan             `json:"current_plan,omitempty"`
	Preferences      TravelPreferences `json:"preferences"`
}

// Temperature returns the current temperature, 35 when no reading exists.
func (s Snapshot) Temperature() float64 {
	if s.Weather == nil {
		return DefaultTemperature
	}
	return s.Weather.Temperature
}

func (s Snapshot) Condition() string {
	if s.Weather == nil {
		return ""
	}
	return s.Weather.Condition
}

func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Weather != nil {
		w := *s.Weather
		out.Weather = &w
	}
	if s.LastWeatherCheck != nil {
		w := *s.LastWeatherCheck
		out.LastWeatherCheck = &w
	}
	if s.Traveler.EnergyLevel != nil {
		out.Traveler.EnergyLevel = Float(*s.Traveler.EnergyLevel)
	}
	if s.Traveler.Emotional != nil {
		es := *s.Traveler.Emotional
		out.Traveler.Emotional = &es
	}
	if s.Traveler.Adaptations != nil {
		out.Traveler.Adaptations = make(map[string]string, len(s.Traveler.Adaptations))
		for k, v := range s.Traveler.Adaptations {
			out.Traveler.Adaptations[k] = v
		}
	}
	if s.Time.PrayerTimes != nil {
		out.Time.PrayerTimes = make(map[string]string, len(s.Time.PrayerTimes))
		for k, v := range s.Time.PrayerTimes {
			out.Time.PrayerTimes[k] = v
		}
	}
	if s.CurrentPlan != nil {
		p := s.CurrentPlan.Clone()
		out.CurrentPlan = &p
	}
	out.Preferences.ActivityPreferences = append([]string(nil), s.Preferences.ActivityPreferences...)
	return out
}
