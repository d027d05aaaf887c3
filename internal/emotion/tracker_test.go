package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestFatigueLevel(t *testing.T) {
	steps := 500
	cases := []struct {
		name string
		in   Biometric
		want float64
	}{
		{"defaults", Biometric{}, 0.5},
		{"short sleep high hr", Biometric{SleepHours: f(5), HeartRate: f(95)}, 1.0},
		{"long sleep", Biometric{SleepHours: f(9)}, 0.3},
		{"sedentary low hr", Biometric{HeartRate: f(55), Steps: &steps}, 0.7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, fatigueLevel(&tc.in), 1e-9)
		})
	}
}

func TestStressAndComfort(t *testing.T) {
	b := &Biometric{HeartRate: f(85), HeartRateVariability: f(20), SkinConductance: f(0.9)}
	assert.Equal(t, 1.0, stressLevel(b))

	assert.InDelta(t, 0.8, comfortLevel(&Biometric{}), 1e-9)
	assert.InDelta(t, 0.3, comfortLevel(&Biometric{BodyTemperature: f(100.2), MovementComfort: f(0.1)}), 1e-9)
	assert.Equal(t, 0.0, comfortLevel(&Biometric{PainIndicator: f(2)}))
}

func TestEngagementAndCommunicationEnergy(t *testing.T) {
	assert.InDelta(t, 0.0, engagement(5, "slow"), 1e-9)
	assert.InDelta(t, 0.9, engagement(60, "fast"), 1e-9)
	assert.InDelta(t, 0.5, engagement(20, "normal"), 1e-9)

	assert.InDelta(t, 0.3, CommunicationEnergy(Speech{WordCount: 5}), 1e-9)
	assert.InDelta(t, 0.95, CommunicationEnergy(Speech{WordCount: 60, Volume: f(0.8), PitchVariation: f(0.7)}), 1e-9)
}

func TestDominantEmotionAndLevelMaps(t *testing.T) {
	assert.Equal(t, "neutral", dominantEmotion(nil))
	assert.Equal(t, "tired", dominantEmotion(map[string]float64{"happy": 0.2, "tired": 0.7, "neutral": 0.1}))
	assert.Equal(t, 0.1, levelFor("very_slow", movementEnergy))
	assert.Equal(t, 0.5, levelFor("unknown", movementEnergy))
	assert.Equal(t, 0.9, SocialEngagement("very_high"))
}

func TestTrackerUpdateAndRecommendations(t *testing.T) {
	tr := NewTracker(nil)

	st := tr.Update(Sensors{
		Biometric:  &Biometric{SleepHours: f(4), HeartRate: f(95), HeartRateVariability: f(25)},
		Facial:     &Facial{Expressions: map[string]float64{"tired": 0.8, "happy": 0.1}},
		Behavioral: &Behavioral{MovementSpeed: "slow"},
	})
	assert.InDelta(t, 1.0, st.FatigueLevel, 1e-9)
	assert.Equal(t, "tired", st.DominantEmotion)
	assert.Equal(t, 0.3, st.EnergyLevel)
	// engagement untouched without speech
	assert.Equal(t, 0.5, st.EngagementLevel)
	assert.NotEmpty(t, st.Timestamp)

	rec := tr.Recommendations()
	assert.Equal(t, "shortened", rec["activity_duration"])
	assert.Equal(t, "calming", rec["environment"])
	assert.Equal(t, "minimized", rec["physical_exertion"])
	assert.NotContains(t, rec, "amenities")
}

func TestTrackerFeedbackOverrides(t *testing.T) {
	tr := NewTracker(nil)
	st := tr.ApplyFeedback(Feedback{Headache: true, Fatigue: true, Mood: "grumpy"})
	assert.Equal(t, 0.3, st.ComfortLevel)
	assert.Equal(t, 0.7, st.StressLevel)
	assert.Equal(t, 0.8, st.FatigueLevel)
	assert.Equal(t, 0.2, st.EnergyLevel)
	assert.Equal(t, "grumpy", st.DominantEmotion)
	assert.Equal(t, st, tr.Current())
}

func TestTrackerHistoryBounded(t *testing.T) {
	tr := NewTracker(nil)
	for i := 0; i < 15; i++ {
		tr.ApplyFeedback(Feedback{Mood: "calm"})
	}
	h := tr.History()
	require.Len(t, h, historyLimit)
	assert.Equal(t, "calm", h[len(h)-1].DominantEmotion)
}
