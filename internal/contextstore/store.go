package contextstore

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/emotion"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

const DefaultWeatherInterval = 30 * time.Minute

// WeatherProvider fetches live conditions for a location.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, loc travel.Location) (travel.Weather, error)
}

type Config struct {
	Provider        WeatherProvider
	Emotions        emotion.Analyzer
	WeatherInterval time.Duration
	City            string
	Now             func() time.Time
	Rand            *rand.Rand
}

// TravelerPatch carries the traveler-state fields a caller wants to change.
type TravelerPatch struct {
	EnergyLevel    *float64   `json:"energy_level,omitempty" validate:"omitempty,min=0,max=1"`
	LastMealTime   *time.Time `json:"last_meal_time,omitempty"`
	MealCountToday *int       `json:"meal_count_today,omitempty" validate:"omitempty,min=0"`
	StepCount      *int       `json:"step_count,omitempty" validate:"omitempty,min=0"`
	HealthStatus   *string    `json:"health_status,omitempty"`
}

// WeatherPatch is a partial weather reading. Nil fields keep the stored
// value.
type WeatherPatch struct {
	Temperature         *float64 `json:"temperature,omitempty"`
	Humidity            *float64 `json:"humidity,omitempty" validate:"omitempty,min=0,max=100"`
	PrecipitationChance *float64 `json:"precipitation_chance,omitempty" validate:"omitempty,min=0,max=1"`
	UVIndex             *float64 `json:"uv_index,omitempty" validate:"omitempty,min=0"`
	WindSpeed           *float64 `json:"wind_speed,omitempty" validate:"omitempty,min=0"`
	Condition           *string  `json:"condition,omitempty"`
}

// FullReading turns a complete reading into a patch that sets every field.
func FullReading(w travel.Weather) *WeatherPatch {
	return &WeatherPatch{
		Temperature:         travel.Float(w.Temperature),
		Humidity:            travel.Float(w.Humidity),
		PrecipitationChance: travel.Float(w.PrecipitationChance),
		UVIndex:             travel.Float(w.UVIndex),
		WindSpeed:           travel.Float(w.WindSpeed),
		Condition:           &w.Condition,
	}
}

func (p WeatherPatch) apply(w travel.Weather) travel.Weather {
	if p.Temperature != nil {
		w.Temperature = *p.Temperature
	}
	if p.Humidity != nil {
		w.Humidity = *p.Humidity
	}
	if p.PrecipitationChance != nil {
		w.PrecipitationChance = *p.PrecipitationChance
	}
	if p.UVIndex != nil {
		w.UVIndex = *p.UVIndex
	}
	if p.WindSpeed != nil {
		w.WindSpeed = *p.WindSpeed
	}
	if p.Condition != nil {
		w.Condition = *p.Condition
	}
	return w
}

// Store holds one traveler's context snapshot. It is not safe for concurrent
// use; the owning session serializes access.
type Store struct {
	log      *logger.Logger
	provider WeatherProvider
	emotions emotion.Analyzer
	interval time.Duration
	now      func() time.Time
	rng      *rand.Rand

	snap          travel.Snapshot
	weatherAt     time.Time
	weatherSource string
}

func New(log *logger.Logger, cfg Config) *Store {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.WeatherInterval <= 0 {
		cfg.WeatherInterval = DefaultWeatherInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(cfg.Now().UnixNano()))
	}
	if cfg.Emotions == nil {
		cfg.Emotions = emotion.NewTracker(log)
	}
	if cfg.City == "" {
		cfg.City = "Dubai"
	}
	s := &Store{
		log:      log.With("service", "ContextStore"),
		provider: cfg.Provider,
		emotions: cfg.Emotions,
		interval: cfg.WeatherInterval,
		now:      cfg.Now,
		rng:      cfg.Rand,
	}
	s.reset(cfg.City)
	return s
}

func (s *Store) reset(city string) {
	now := s.now()
	s.snap = travel.Snapshot{
		Timestamp: now,
		Weather: &travel.Weather{
			Temperature:         travel.DefaultTemperature,
			Humidity:            60,
			PrecipitationChance: 0.1,
			UVIndex:             7,
			WindSpeed:           10,
			Condition:           "sunny",
			UpdatedAt:           now,
		},
		Location: travel.Location{
			City:         city,
			District:     "Downtown Dubai",
			Coordinates:  travel.Coordinates{Lat: 25.2048, Lng: 55.2708},
			CurrentVenue: "Hotel",
		},
		Traveler: travel.TravelerState{
			EnergyLevel:    travel.Float(travel.DefaultEnergyLevel),
			LastMealTime:   now.Add(-3 * time.Hour),
			MealCountToday: 1,
			StepCount:      2000,
			UpdatedAt:      now,
		},
	}
	s.snap.Time = s.timeContext(now)
	s.weatherAt = now
}

// Snapshot returns a deep copy of the current context.
func (s *Store) Snapshot() travel.Snapshot {
	return s.snap.Clone()
}

// UpdateWeather refreshes weather when forced or when the refresh interval has
// elapsed, archiving the previous reading for delta detection.
func (s *Store) UpdateWeather(ctx context.Context, force bool) travel.Weather {
	now := s.now()
	if !force && now.Sub(s.weatherAt) < s.interval {
		return s.currentWeather()
	}

	if s.snap.Weather != nil {
		prev := *s.snap.Weather
		s.snap.LastWeatherCheck = &prev
	}

	w, ok := s.fetchWeather(ctx)
	if !ok {
		w = s.synthesizeWeather(now)
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = now
	}
	s.snap.Weather = &w
	s.snap.Timestamp = now
	s.weatherAt = now

	s.log.Info("Weather updated",
		"temperature", w.Temperature,
		"condition", w.Condition,
		"source", w.Source,
	)
	return w
}

func (s *Store) fetchWeather(ctx context.Context) (travel.Weather, bool) {
	if s.provider == nil {
		return travel.Weather{}, false
	}
	w, err := s.provider.CurrentWeather(ctx, s.snap.Location)
	if err != nil {
		s.log.Warn("Weather provider failed; synthesizing", "error", err)
		return travel.Weather{}, false
	}
	return w, true
}

func (s *Store) currentWeather() travel.Weather {
	if s.snap.Weather == nil {
		return travel.Weather{Temperature: travel.DefaultTemperature}
	}
	return *s.snap.Weather
}

// SetWeather merges patches onto the current and previous weather. A nil
// patch leaves its reading untouched; a previous reading that was never set
// starts from the current one.
func (s *Store) SetWeather(current, last *WeatherPatch) {
	if current != nil {
		w := current.apply(s.currentWeather())
		w.UpdatedAt = s.now()
		s.snap.Weather = &w
		s.weatherAt = w.UpdatedAt
	}
	if last != nil {
		base := s.currentWeather()
		if s.snap.LastWeatherCheck != nil {
			base = *s.snap.LastWeatherCheck
		}
		w := last.apply(base)
		s.snap.LastWeatherCheck = &w
	}
	s.snap.Timestamp = s.now()
}

// UpdateTravelerState merges patch into the traveler state. When any sensor
// reading is supplied the emotional state and adaptation recommendations are
// recomputed.
func (s *Store) UpdateTravelerState(patch TravelerPatch, sensors emotion.Sensors) travel.TravelerState {
	ts := &s.snap.Traveler
	if patch.EnergyLevel != nil {
		ts.EnergyLevel = travel.Float(*patch.EnergyLevel)
	}
	if patch.LastMealTime != nil {
		ts.LastMealTime = *patch.LastMealTime
	}
	if patch.MealCountToday != nil {
		ts.MealCountToday = *patch.MealCountToday
	}
	if patch.StepCount != nil {
		ts.StepCount = *patch.StepCount
	}
	if patch.HealthStatus != nil {
		ts.HealthStatus = *patch.HealthStatus
	}
	ts.UpdatedAt = s.now()

	if !sensors.Empty() && s.emotions != nil {
		es := s.emotions.Update(sensors)
		ts.Emotional = &es
		ts.Adaptations = s.emotions.Recommendations()
		s.log.Info("Traveler emotional state recomputed",
			"dominant_emotion", es.DominantEmotion,
			"adaptations", len(ts.Adaptations),
		)
	}
	s.snap.Timestamp = ts.UpdatedAt
	return s.Snapshot().Traveler
}

// ApplyEmotionalFeedback records how the traveler says they feel.
func (s *Store) ApplyEmotionalFeedback(fb emotion.Feedback) travel.TravelerState {
	if s.emotions == nil {
		return s.Snapshot().Traveler
	}
	es := s.emotions.ApplyFeedback(fb)
	s.snap.Traveler.Emotional = &es
	s.snap.Traveler.Adaptations = s.emotions.Recommendations()
	s.snap.Traveler.UpdatedAt = s.now()
	return s.Snapshot().Traveler
}

// DecayEnergy simulates energy drain since the last update: a flat 0.05 plus a
// tenth of each planned activity's stated effort, floored at 0.1, with a
// further 0.1 lost when the last meal is more than five hours old.
func (s *Store) DecayEnergy() float64 {
	ts := &s.snap.Traveler
	drain := 0.05
	if p := s.snap.CurrentPlan; p != nil {
		for _, a := range p.Activities {
			if a.EnergyRequired != nil {
				drain += *a.EnergyRequired * 0.1
			}
		}
	}
	next := math.Max(0.1, ts.Energy()-drain)
	if !ts.LastMealTime.IsZero() && s.now().Sub(ts.LastMealTime) > 5*time.Hour {
		next -= 0.1
	}
	next = math.Round(next*100) / 100
	ts.EnergyLevel = travel.Float(next)
	ts.UpdatedAt = s.now()
	return next
}

func (s *Store) UpdateTimeContext() travel.TimeContext {
	s.snap.Time = s.timeContext(s.now())
	return s.snap.Time
}

// UpdateLocation replaces the location when loc is non-nil and returns the
// current one.
func (s *Store) UpdateLocation(loc *travel.Location) travel.Location {
	if loc != nil {
		s.snap.Location = *loc
		s.snap.Timestamp = s.now()
	}
	return s.snap.Location
}

func (s *Store) SetPlan(p *travel.Plan) {
	if p == nil {
		s.snap.CurrentPlan = nil
		return
	}
	cp := p.Clone()
	s.snap.CurrentPlan = &cp
}

func (s *Store) SetPreferences(p travel.TravelPreferences) {
	s.snap.Preferences = p
}

func (s *Store) timeContext(now time.Time) travel.TimeContext {
	wd := now.Weekday()
	return travel.TimeContext{
		LocalTime:   now,
		DayOfWeek:   wd.String(),
		IsWeekend:   wd == time.Saturday || wd == time.Sunday,
		IsHoliday:   false,
		PrayerTimes: prayerTimes(),
		TimeOfDay:   travel.TimeOfDayFor(now.Hour()),
	}
}

func prayerTimes() map[string]string {
	return map[string]string{
		"fajr":    "04:45",
		"dhuhr":   "12:23",
		"asr":     "15:43",
		"maghrib": "18:32",
		"isha":    "19:46",
	}
}
