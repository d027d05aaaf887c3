package decision

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 4, 25, 13, 0, 0, 0, time.UTC)}
}

func newEngine(c *clock, cfg Config) *Engine {
	cfg.Now = c.now
	return New(logger.Nop(), cfg)
}

type fakeSafety struct {
	safe  bool
	err   error
	calls int32
}

func (f *fakeSafety) AnalyzeSafety(context.Context, ai.SafetyRequest) (ai.SafetyAssessment, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return ai.SafetyAssessment{}, f.err
	}
	return ai.SafetyAssessment{IsSafe: f.safe, RiskLevel: "High", Reason: "heat stress"}, nil
}

type fakeExplainer struct {
	text string
	err  error
}

func (f fakeExplainer) Explain(context.Context, ai.ExplainRequest) (string, error) { return f.text, f.err }

func weather(temp float64) *travel.Weather {
	return &travel.Weather{Temperature: temp, Condition: "sunny"}
}

func plan(activities ...travel.Activity) *travel.Plan {
	return &travel.Plan{Day: 3, Date: "2025-04-25", Activities: activities}
}

func safari(energy float64) travel.Activity {
	return travel.Activity{
		Name:           "Desert Safari",
		Time:           "14:00-18:00",
		Category:       travel.CategoryAdventure,
		IsOutdoor:      true,
		EnergyRequired: travel.Float(energy),
	}
}

func snapshot(temp, last, energy float64, p *travel.Plan) travel.Snapshot {
	return travel.Snapshot{
		Weather:          weather(temp),
		LastWeatherCheck: weather(last),
		Traveler:         travel.TravelerState{EnergyLevel: travel.Float(energy)},
		CurrentPlan:      p,
	}
}

func TestShouldReevaluateBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		snap   travel.Snapshot
		expect bool
	}{
		{"delta exactly 5", snapshot(40, 35, 1, nil), false},
		{"delta 5.01", snapshot(40.01, 35, 1, nil), true},
		{"negative delta", snapshot(29, 35, 1, nil), true},
		{"energy 0.4", snapshot(35, 35, 0.4, nil), false},
		{"energy 0.39", snapshot(35, 35, 0.39, nil), true},
		{"energy zero", snapshot(35, 35, 0, nil), true},
		{"no previous weather", travel.Snapshot{Weather: weather(45)}, false},
		{"missing energy means rested", travel.Snapshot{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, ShouldReevaluate(tc.snap))
		})
	}
}

func TestScenarioExtremeHeatSwapsOutdoorActivity(t *testing.T) {
	e := newEngine(newClock(), Config{})
	snap := snapshot(43, 36, 0.8, plan(safari(0.7)))

	require.True(t, e.ShouldReevaluate(snap))
	ev := e.EvaluateCurrentPlan(context.Background(), snap)

	require.True(t, ev.NeedsChange)
	require.NotNil(t, ev.NewPlan)
	assert.True(t, ev.NewPlan.IsModified)
	assert.Equal(t, travel.ReasonWeather, ev.NewPlan.ModificationReason)
	require.Len(t, ev.NewPlan.Activities, 1)
	assert.Equal(t, "Dubai Museum Cultural Tour", ev.NewPlan.Activities[0].Name)
	assert.Equal(t, 1, ev.DecisionID)
	assert.NotEmpty(t, ev.SafetyIssues)

	// The input snapshot is untouched.
	assert.Equal(t, "Desert Safari", snap.CurrentPlan.Activities[0].Name)
	assert.Equal(t, StateModified, e.LastOutcome())
	assert.Equal(t, StateStable, e.State())
}

func TestScenarioLowEnergySwapsDemandingActivity(t *testing.T) {
	e := newEngine(newClock(), Config{})
	snap := snapshot(30, 30, 0.3, plan(safari(0.8), travel.Activity{Name: "Dinner", EnergyRequired: travel.Float(0.3)}))

	ev := e.EvaluateCurrentPlan(context.Background(), snap)
	require.True(t, ev.NeedsChange)
	assert.Equal(t, travel.ReasonEnergy, ev.Reason)
	assert.Equal(t, "Luxury Spa Experience", ev.NewPlan.Activities[0].Name)
	assert.Equal(t, "Dinner", ev.NewPlan.Activities[1].Name)
}

func TestScenarioConfidenceForExtremeHeat(t *testing.T) {
	e := newEngine(newClock(), Config{})
	snap := snapshot(44, 36, 0.8, plan(safari(0.7)))
	ev := e.EvaluateCurrentPlan(context.Background(), snap)
	rec, err := e.Decision(ev.DecisionID)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, e.ConfidenceScore(rec), 1e-9)
	assert.False(t, e.RequiresApproval(0.9))
	assert.True(t, e.RequiresApproval(0.69))
}

func TestEvaluateWithoutPlanIsNoop(t *testing.T) {
	e := newEngine(newClock(), Config{})
	ev := e.EvaluateCurrentPlan(context.Background(), snapshot(45, 30, 0.1, nil))
	assert.Equal(t, travel.Evaluation{}, ev)
	assert.Empty(t, e.Decisions())
}

func TestEvaluateUnchangedPlan(t *testing.T) {
	e := newEngine(newClock(), Config{})
	snap := snapshot(30, 30, 0.9, plan(safari(0.9)))
	ev := e.EvaluateCurrentPlan(context.Background(), snap)
	assert.False(t, ev.NeedsChange)
	require.NotNil(t, ev.NewPlan)
	assert.False(t, ev.NewPlan.IsModified)
	assert.Equal(t, StateUnchanged, e.LastOutcome())
}

func TestRainTriggersWeatherChange(t *testing.T) {
	e := newEngine(newClock(), Config{})
	snap := snapshot(28, 28, 0.9, plan(safari(0.5)))
	snap.Weather.Condition = "Light Rain"
	_, bad := e.CheckWeatherCompatibility(context.Background(), snap, *snap.CurrentPlan)
	assert.True(t, bad)
}

func TestSafetyAnalyzer(t *testing.T) {
	indoor := travel.Activity{Name: "Museum", Category: travel.CategoryCulture}
	snap := snapshot(35, 35, 0.9, plan(safari(0.5), indoor, safari(0.6)))

	unsafe := &fakeSafety{safe: false}
	e := newEngine(newClock(), Config{Safety: unsafe})
	issues, bad := e.CheckWeatherCompatibility(context.Background(), snap, *snap.CurrentPlan)
	assert.True(t, bad)
	assert.Len(t, issues, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&unsafe.calls))

	failing := &fakeSafety{err: errors.New("timeout")}
	e = newEngine(newClock(), Config{Safety: failing})
	ev := e.EvaluateCurrentPlan(context.Background(), snap)
	assert.False(t, ev.NeedsChange)

	// Obvious cases never reach the analyzer.
	hot := &fakeSafety{safe: true}
	e = newEngine(newClock(), Config{Safety: hot})
	hotSnap := snapshot(41, 41, 0.9, plan(safari(0.5)))
	_, bad = e.CheckWeatherCompatibility(context.Background(), hotSnap, *hotSnap.CurrentPlan)
	assert.True(t, bad)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hot.calls))
}

func TestEnergyCompatibilityEdges(t *testing.T) {
	e := newEngine(newClock(), Config{})
	cases := []struct {
		name     string
		energy   float64
		required float64
		expect   bool
	}{
		{"exactly 0.7 is fine", 0.1, 0.7, false},
		{"0.71 while tired", 0.39, 0.71, true},
		{"rested traveler", 0.4, 0.9, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshot(30, 30, tc.energy, plan(safari(tc.required)))
			assert.Equal(t, tc.expect, e.CheckEnergyCompatibility(snap, *snap.CurrentPlan))
		})
	}
}

func TestRegenerationKeepsShapeAndTags(t *testing.T) {
	e := newEngine(newClock(), Config{})
	snap := snapshot(43, 36, 0.8, plan(safari(0.7), travel.Activity{Name: "Souk", IsOutdoor: true, Category: travel.CategoryCulture}))

	first, _ := e.GenerateAlternativePlan(context.Background(), snap, *snap.CurrentPlan, travel.ReasonWeather)
	second, _ := e.GenerateAlternativePlan(context.Background(), snap, first, travel.ReasonWeather)

	assert.Len(t, second.Activities, len(first.Activities))
	assert.Equal(t, first.IsModified, second.IsModified)
	assert.Equal(t, first.ModificationReason, second.ModificationReason)
	// No rule covers an outdoor culture activity, so it stays in place.
	assert.Equal(t, "Souk", second.Activities[1].Name)
}

func TestConfidenceUsesSameReasonHistory(t *testing.T) {
	e := newEngine(newClock(), Config{})
	mild := snapshot(30, 30, 0.3, plan(safari(0.8)))

	a := e.EvaluateCurrentPlan(context.Background(), mild)
	b := e.EvaluateCurrentPlan(context.Background(), mild)
	require.NoError(t, e.MarkDecision(a.DecisionID, true))
	require.NoError(t, e.MarkDecision(b.DecisionID, true))

	c := e.EvaluateCurrentPlan(context.Background(), mild)
	rec, err := e.Decision(c.DecisionID)
	require.NoError(t, err)
	// 0.5 - 0.1 + (1.0 - 0.5) * 0.2
	assert.InDelta(t, 0.5, e.ConfidenceScore(rec), 1e-9)

	require.NoError(t, e.MarkDecision(a.DecisionID, false))
	require.NoError(t, e.MarkDecision(b.DecisionID, false))
	assert.InDelta(t, 0.3, e.ConfidenceScore(rec), 1e-9)

	assert.ErrorIs(t, e.MarkDecision(99, true), ErrDecisionNotFound)
}

func TestConfidenceCountsPendingDecisionsAsNotAccepted(t *testing.T) {
	e := newEngine(newClock(), Config{})
	mild := snapshot(30, 30, 0.3, plan(safari(0.8)))

	pending := e.EvaluateCurrentPlan(context.Background(), mild)
	latest := e.EvaluateCurrentPlan(context.Background(), mild)

	first, err := e.Decision(pending.DecisionID)
	require.NoError(t, err)
	require.False(t, first.Resolved())
	rec, err := e.Decision(latest.DecisionID)
	require.NoError(t, err)
	// 0.5 - 0.1 + (0/1 - 0.5) * 0.2
	assert.InDelta(t, 0.3, e.ConfidenceScore(rec), 1e-9)

	require.NoError(t, e.MarkDecision(pending.DecisionID, true))
	assert.InDelta(t, 0.5, e.ConfidenceScore(rec), 1e-9)
}

func TestConfidenceBounds(t *testing.T) {
	e := newEngine(newClock(), Config{})
	recs := []travel.DecisionRecord{
		{},
		{Reason: travel.ReasonWeather},
		{Reason: travel.ReasonWeather, Context: travel.Snapshot{Weather: weather(60)}},
		{Reason: travel.ReasonEnergy},
		{Reason: "unknown"},
	}
	for _, r := range recs {
		c := e.ConfidenceScore(r)
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestExplainDecision(t *testing.T) {
	snap := snapshot(43, 36, 0.8, plan(safari(0.7)))

	e := newEngine(newClock(), Config{})
	assert.Equal(t, NotFoundExplanation, e.ExplainDecision(context.Background(), 1, nil))
	ev := e.EvaluateCurrentPlan(context.Background(), snap)
	assert.Contains(t, e.ExplainDecision(context.Background(), ev.DecisionID, snap.Weather), "weather conditions")

	e = newEngine(newClock(), Config{Explainer: fakeExplainer{err: errors.New("rate limited")}})
	ev = e.EvaluateCurrentPlan(context.Background(), snapshot(30, 30, 0.2, plan(safari(0.9))))
	assert.Contains(t, e.ExplainDecision(context.Background(), ev.DecisionID, nil), "energy levels")

	e = newEngine(newClock(), Config{Explainer: fakeExplainer{text: "It is too hot for the desert today."}})
	ev = e.EvaluateCurrentPlan(context.Background(), snap)
	assert.Equal(t, "It is too hot for the desert today.", e.ExplainDecision(context.Background(), ev.DecisionID, snap.Weather))

	assert.Contains(t, TemplateExplanation("other", "crowds"), "due to crowds")
}

func TestHistoryIsBounded(t *testing.T) {
	e := newEngine(newClock(), Config{HistoryLimit: 3})
	snap := snapshot(43, 36, 0.8, plan(safari(0.7)))
	for i := 0; i < 5; i++ {
		e.EvaluateCurrentPlan(context.Background(), snap)
	}
	recs := e.Decisions()
	require.Len(t, recs, 3)
	assert.Equal(t, []int{3, 4, 5}, []int{recs[0].ID, recs[1].ID, recs[2].ID})
	_, err := e.Decision(1)
	assert.ErrorIs(t, err, ErrDecisionNotFound)
	last, ok := e.LastDecision()
	require.True(t, ok)
	assert.Equal(t, 5, last.ID)
}

func TestSelfReflectionIsAdvisory(t *testing.T) {
	c := newClock()
	e := newEngine(c, Config{})
	snap := snapshot(43, 36, 0.8, plan(safari(0.7)))

	for i := 0; i < 6; i++ {
		e.EvaluateCurrentPlan(context.Background(), snap)
	}
	assert.Nil(t, e.LastReflection(), "interval not yet elapsed")

	c.advance(7 * time.Hour)
	ev := e.EvaluateCurrentPlan(context.Background(), snap)
	r := e.LastReflection()
	require.NotNil(t, r)
	assert.Equal(t, 7, r.Considered)
	assert.Equal(t, 7, r.WeatherChanges)
	assert.Equal(t, []string{AdviceFewerOutdoor}, r.Advisories)

	// Behavior is unchanged after reflecting.
	next := e.EvaluateCurrentPlan(context.Background(), snap)
	assert.Equal(t, len(ev.NewPlan.Activities), len(next.NewPlan.Activities))
	assert.Equal(t, DefaultConfidenceThreshold, e.ConfidenceThreshold())
}

func TestReflectionNeedsThreeDecisions(t *testing.T) {
	c := newClock()
	e := newEngine(c, Config{ReflectionInterval: time.Minute})
	c.advance(time.Hour)
	e.EvaluateCurrentPlan(context.Background(), snapshot(43, 36, 0.8, plan(safari(0.7))))
	r := e.LastReflection()
	require.NotNil(t, r)
	assert.Equal(t, reflectionSkipReason, r.Skipped)
}

func TestGoals(t *testing.T) {
	e := newEngine(newClock(), Config{})
	require.NoError(t, e.AddGoal(travel.Goal{Name: "Experience local culture", Priority: 8, SatisfactionScore: 0.9}))
	assert.Error(t, e.AddGoal(travel.Goal{Name: "Too eager", Priority: 11}))
	assert.Error(t, e.AddGoal(travel.Goal{Priority: 5}))

	goals := e.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, 0.0, goals[0].SatisfactionScore)
}
