package decision

import (
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

const (
	reflectionMinDecisions = 3
	reflectionWindow       = 10
	reflectionPattern      = 5
)

const (
	AdviceFewerOutdoor   = "favor indoor activities when planning"
	AdviceFewerPerDay    = "reduce the number of activities per day"
	reflectionSkipReason = "not enough decision history"
)

// Reflection summarizes recent decisions. Its advisories are informational;
// no planning parameter changes because of them.
type Reflection struct {
	At             time.Time `json:"at"`
	Considered     int       `json:"considered"`
	WeatherChanges int       `json:"weather_changes"`
	EnergyChanges  int       `json:"energy_changes"`
	Advisories     []string  `json:"advisories,omitempty"`
	Skipped        string    `json:"skipped,omitempty"`
}

func (e *Engine) reflect(now time.Time) Reflection {
	r := Reflection{At: now}
	if e.history.len() < reflectionMinDecisions {
		r.Skipped = reflectionSkipReason
		e.log.Info("Skipping reflection", "decisions", e.history.len())
		return r
	}
	recent := e.history.last(reflectionWindow)
	r.Considered = len(recent)
	for _, d := range recent {
		switch d.Reason {
		case travel.ReasonWeather:
			r.WeatherChanges++
		case travel.ReasonEnergy:
			r.EnergyChanges++
		}
	}
	if r.WeatherChanges > reflectionPattern {
		r.Advisories = append(r.Advisories, AdviceFewerOutdoor)
		e.log.Info("Reflection: many weather-driven changes", "count", r.WeatherChanges, "advice", AdviceFewerOutdoor)
	}
	if r.EnergyChanges > reflectionPattern {
		r.Advisories = append(r.Advisories, AdviceFewerPerDay)
		e.log.Info("Reflection: many energy-driven changes", "count", r.EnergyChanges, "advice", AdviceFewerPerDay)
	}
	return r
}

// LastReflection returns the most recent reflection, or nil if none ran.
func (e *Engine) LastReflection() *Reflection {
	if e.reflection == nil {
		return nil
	}
	r := *e.reflection
	r.Advisories = append([]string(nil), e.reflection.Advisories...)
	return &r
}
