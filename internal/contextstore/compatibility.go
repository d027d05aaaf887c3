package contextstore

import (
	"math"
	"math/rand"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

type Factors struct {
	Weather float64 `json:"weather"`
	Time    float64 `json:"time"`
	Energy  float64 `json:"energy"`
}

type Compatibility struct {
	Overall float64 `json:"overall_score"`
	Factors Factors `json:"factors"`
}

// ActivityCompatibility scores how well a fits the current context as
// 0.4*weather + 0.3*time + 0.3*energy.
func (s *Store) ActivityCompatibility(a travel.Activity) Compatibility {
	return Score(s.snap, a)
}

// Score computes compatibility against an arbitrary snapshot.
func Score(snap travel.Snapshot, a travel.Activity) Compatibility {
	f := Factors{
		Weather: WeatherFactor(a, snap.Temperature()),
		Time:    TimeFactor(a, snap.Time.TimeOfDay),
		Energy:  EnergyFactor(a, snap.Traveler.Energy()),
	}
	return Compatibility{
		Overall: f.Weather*0.4 + f.Time*0.3 + f.Energy*0.3,
		Factors: f,
	}
}

func WeatherFactor(a travel.Activity, temp float64) float64 {
	if !a.IsOutdoor {
		return 1.0
	}
	switch {
	case temp > 42:
		return 0.2
	case temp > 38:
		return 0.5
	case temp > 32:
		return 0.8
	default:
		return 1.0
	}
}

func TimeFactor(a travel.Activity, tod travel.TimeOfDay) float64 {
	if a.Category == travel.CategoryAdventure && a.IsOutdoor && (tod == travel.Midday || tod == travel.Afternoon) {
		return 0.6
	}
	if a.Category == travel.CategoryCulture && (tod == travel.Morning || tod == travel.Midday || tod == travel.Afternoon) {
		return 1.0
	}
	if (a.Category == travel.CategoryDining || a.Category == travel.CategoryEntertainment) && (tod == travel.Evening || tod == travel.Night) {
		return 1.0
	}
	return 0.8
}

// EnergyFactor bands d = energy - required. d is rounded to nine places so
// that values like 0.4-0.5 land on their intended band.
func EnergyFactor(a travel.Activity, energy float64) float64 {
	d := math.Round((energy-a.Energy())*1e9) / 1e9
	switch {
	case d < -0.3:
		return 0.3
	case d < -0.1:
		return 0.6
	case d < 0:
		return 0.8
	default:
		return 1.0
	}
}

func (s *Store) synthesizeWeather(now time.Time) travel.Weather {
	hour := now.Hour()
	daytime := hour >= 7 && hour <= 18

	var base float64
	if daytime {
		base = uniform(s.rng, 35, 45)
	} else {
		base = uniform(s.rng, 25, 32)
	}
	temp := round(base+uniform(s.rng, -2, 2), 1)
	humidity := round(uniform(s.rng, 50, 80), 1)
	precip := round(uniform(s.rng, 0, 0.2), 2)

	var uv float64
	if daytime {
		uv = float64(7 + s.rng.Intn(5))
	} else {
		uv = float64(s.rng.Intn(4))
	}

	cond := "sunny"
	switch {
	case precip > 0.15:
		cond = "light rain"
	case humidity > 70 && temp > 40:
		cond = "hazy"
	}
	return travel.Weather{
		Temperature:         temp,
		Humidity:            humidity,
		PrecipitationChance: precip,
		UVIndex:             uv,
		WindSpeed:           round(uniform(s.rng, 5, 20), 1),
		Condition:           cond,
		Source:              "synthesized",
		UpdatedAt:           now,
	}
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
