package emotion

import "sort"

var movementEnergy = map[string]float64{
	"very_slow": 0.1,
	"slow":      0.3,
	"normal":    0.5,
	"fast":      0.7,
	"very_fast": 0.9,
}

var interactionEngagement = map[string]float64{
	"very_low":  0.1,
	"low":       0.3,
	"normal":    0.5,
	"high":      0.7,
	"very_high": 0.9,
}

func fatigueLevel(b *Biometric) float64 {
	hr := or(b.HeartRate, 70)
	sleep := or(b.SleepHours, 7)
	steps := 5000
	if b.Steps != nil {
		steps = *b.Steps
	}

	v := 0.5
	switch {
	case sleep < 6:
		v += 0.3
	case sleep > 8:
		v -= 0.2
	}
	switch {
	case hr < 60:
		v += 0.1
	case hr > 90:
		v += 0.2
	}
	if steps < 1000 {
		v += 0.1
	}
	return clamp01(v)
}

func stressLevel(b *Biometric) float64 {
	v := 0.5
	if or(b.HeartRate, 70) > 80 {
		v += 0.2
	}
	if or(b.HeartRateVariability, 50) < 30 {
		v += 0.3
	}
	if or(b.SkinConductance, 0.5) > 0.7 {
		v += 0.2
	}
	return clamp01(v)
}

func comfortLevel(b *Biometric) float64 {
	v := 0.8
	if temp := or(b.BodyTemperature, 98.6); temp > 99.5 || temp < 97.5 {
		v -= 0.3
	}
	if or(b.MovementComfort, 0.5) < 0.3 {
		v -= 0.2
	}
	if pain := or(b.PainIndicator, 0); pain > 0 {
		v -= pain * 0.5
	}
	return clamp01(v)
}

func engagement(words int, rate string) float64 {
	v := 0.5
	switch {
	case words < 10:
		v -= 0.3
	case words > 50:
		v += 0.2
	}
	switch rate {
	case "slow":
		v -= 0.2
	case "fast":
		v += 0.2
	}
	return clamp01(v)
}

// CommunicationEnergy scores how animated the traveler sounds.
func CommunicationEnergy(s Speech) float64 {
	v := 0.5
	v += (or(s.Volume, 0.5) - 0.5) * 0.5
	v += (or(s.PitchVariation, 0.5) - 0.5) * 0.5
	switch {
	case s.WordCount < 10:
		v -= 0.2
	case s.WordCount > 50:
		v += 0.2
	}
	return clamp01(v)
}

// SocialEngagement maps an interaction-frequency label to a level.
func SocialEngagement(freq string) float64 {
	return levelFor(freq, interactionEngagement)
}

func dominantEmotion(expr map[string]float64) string {
	if len(expr) == 0 {
		return "neutral"
	}
	keys := make([]string, 0, len(expr))
	for k := range expr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if expr[k] > expr[best] {
			best = k
		}
	}
	return best
}

func levelFor(label string, table map[string]float64) float64 {
	if v, ok := table[label]; ok {
		return v
	}
	return 0.5
}

func or(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
