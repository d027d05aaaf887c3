package preference

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	return New(nil, Config{
		Now:  func() time.Time { return time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC) },
		Rand: rand.New(rand.NewSource(7)),
	})
}

func TestImplicitFeedbackLovedCultureFromEmpty(t *testing.T) {
	m := newTestModel(t)
	m.UpdateFromImplicitFeedback(travel.Activity{
		Name:     "Old Dubai Cultural Tour",
		Category: travel.CategoryCulture,
	}, Loved)

	e, ok := m.Get("category_culture_score")
	require.True(t, ok)
	assert.InDelta(t, 0.75, e.Value.Num, 1e-9)
	assert.InDelta(t, 0.4, e.Confidence, 1e-9)

	_, hasOutdoor := m.Get(KeyOutdoor)
	assert.False(t, hasOutdoor, "indoor activity leaves outdoor preference alone")

	price, ok := m.Get(KeyPriceRange)
	require.True(t, ok)
	assert.Equal(t, "$$", price.Value.Str)
	assert.InDelta(t, 0.4, price.Confidence, 1e-9)
}

func TestImplicitFeedbackPaceAndCaps(t *testing.T) {
	m := newTestModel(t)
	jetski := travel.Activity{Name: "Jet Ski", Category: travel.CategoryAdventure, IsOutdoor: true, EnergyRequired: travel.Float(0.9)}

	m.UpdateFromImplicitFeedback(jetski, Hated)
	pace, ok := m.Get(KeyPace)
	require.True(t, ok)
	assert.Equal(t, "relaxed", pace.Value.Str)

	for i := 0; i < 10; i++ {
		m.UpdateFromImplicitFeedback(jetski, Loved)
	}
	pace, _ = m.Get(KeyPace)
	assert.Equal(t, "active", pace.Value.Str)
	assert.InDelta(t, 0.9, pace.Confidence, 1e-9)

	outdoor, _ := m.Get(KeyOutdoor)
	assert.InDelta(t, 0.9, outdoor.Confidence, 1e-9)
	price, _ := m.Get(KeyPriceRange)
	assert.InDelta(t, 0.8, price.Confidence, 1e-9)

	_, ok = m.Get("category_adventure_score")
	assert.True(t, ok)
}

func TestExplicitFeedbackMerging(t *testing.T) {
	m := newTestModel(t)
	m.Initialize(map[string]Value{
		"cuisine_preferences": List("local", "indian"),
		"budget_score":        Number(0.4),
		"avoid_crowds":        Bool(false),
		KeyPace:               String("moderate"),
	}, map[string]float64{
		"cuisine_preferences": 0.5,
		"budget_score":        0.4,
		"avoid_crowds":        0.6,
	})

	m.UpdateFromExplicitFeedback(map[string]Value{
		"cuisine_preferences": List("indian", "thai"),
		"budget_score":        Number(1.0),
		"avoid_crowds":        Bool(true),
		KeyPace:               String("relaxed"),
		"new_key":             Number(3),
		"budget_mismatch":     String("x"),
	})

	c, _ := m.Get("cuisine_preferences")
	assert.Equal(t, []string{"local", "indian", "thai"}, c.Value.List)
	assert.InDelta(t, 0.7, c.Confidence, 1e-9)

	b, _ := m.Get("budget_score")
	assert.InDelta(t, (0.4*0.4+1.0*0.8)/(0.4+0.8), b.Value.Num, 1e-9)
	assert.InDelta(t, 0.6, b.Confidence, 1e-9)

	ac, _ := m.Get("avoid_crowds")
	assert.True(t, ac.Value.Bool)
	assert.Equal(t, 1.0, ac.Confidence)

	p, _ := m.Get(KeyPace)
	assert.Equal(t, "relaxed", p.Value.Str)
	assert.Equal(t, 1.0, p.Confidence, "string overwrite")

	n, _ := m.Get("new_key")
	assert.Equal(t, 0.8, n.Confidence)

	m.UpdateFromExplicitFeedback(map[string]Value{"budget_score": String("high")})
	b2, _ := m.Get("budget_score")
	assert.Equal(t, KindNumber, b2.Value.Kind, "kind mismatch is ignored")
}

func TestNaturalLanguageRules(t *testing.T) {
	cases := []struct {
		name    string
		message string
		key     string
		want    Value
	}{
		{"heat", "It was TOO HOT today", KeyMaxTemperature, Number(35)},
		{"tired", "we are exhausted", KeyPace, String("relaxed")},
		{"bored", "a bit bored, more adventure please", KeyPace, String("active")},
		{"spicy", "we love spicy food", KeyCuisine, List("indian", "thai")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(t)
			changed := m.UpdateFromNaturalLanguage(tc.message)
			assert.Contains(t, changed, tc.key)
			e, ok := m.Get(tc.key)
			require.True(t, ok)
			assert.True(t, tc.want.Equal(e.Value), "got %+v", e.Value)
			assert.Equal(t, 0.7, e.Confidence)
		})
	}

	m := newTestModel(t)
	assert.Empty(t, m.UpdateFromNaturalLanguage("lovely day"))
	_, ok := m.Get(KeyPace)
	assert.False(t, ok)
}

func TestTiredWinsOverBored(t *testing.T) {
	m := newTestModel(t)
	m.UpdateFromNaturalLanguage("tired and bored")
	e, _ := m.Get(KeyPace)
	assert.Equal(t, "relaxed", e.Value.Str)
}

func TestActivityScore(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, 0.5, m.ActivityScore(travel.Activity{Name: "x", Category: travel.CategoryCulture}))

	m.Initialize(map[string]Value{
		"category_culture_score": Number(0.8),
		KeyOutdoor:               Number(0.6),
		KeyPace:                  String("moderate"),
		KeyPriceRange:            String("$$$"),
	}, map[string]float64{
		"category_culture_score": 0.7,
		KeyOutdoor:               0.6,
		KeyPace:                  0.7,
		KeyPriceRange:            0.8,
	})

	got := m.ActivityScore(travel.Activity{
		Category:       travel.CategoryCulture,
		IsOutdoor:      true,
		EnergyRequired: travel.Float(0.5),
		PriceRange:     "$$$",
	})
	want := 0.5 + 0.3*0.7 + 0.1*0.6 + 0.2*0.7 + 0.1*0.8
	assert.InDelta(t, math.Min(1, want), got, 1e-9)

	// pace mismatch still counts as a considered factor
	got = m.ActivityScore(travel.Activity{Category: travel.CategoryShopping, EnergyRequired: travel.Float(0.9)})
	assert.Equal(t, 0.5, got)
}

func TestActivityScoreClamped(t *testing.T) {
	m := newTestModel(t)
	m.Initialize(map[string]Value{
		"category_adventure_score": Number(50),
		KeyOutdoor:                 Number(-40),
	}, map[string]float64{
		"category_adventure_score": 1,
		KeyOutdoor:                 1,
	})
	assert.Equal(t, 1.0, m.ActivityScore(travel.Activity{Category: travel.CategoryAdventure}))
	assert.Equal(t, 0.0, m.ActivityScore(travel.Activity{Category: travel.CategoryShopping, IsOutdoor: true}))

	for i := 0; i < 50; i++ {
		s := m.ActivityScore(travel.Activity{Category: travel.CategoryAdventure, IsOutdoor: i%2 == 0})
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestExploration(t *testing.T) {
	day := time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)
	m := New(nil, Config{Now: func() time.Time { return day }, Rand: rand.New(rand.NewSource(3))})
	assert.Equal(t, DefaultExploration, m.ExplorationRate())

	hits := 0
	for i := 0; i < 2000; i++ {
		if m.ShouldExplore() {
			hits++
		}
	}
	assert.InDelta(t, 0.2, float64(hits)/2000, 0.05)

	for i := 0; i < 4; i++ {
		m.UpdateFromNaturalLanguage("hello")
		day = day.Add(24 * time.Hour)
	}
	assert.InDelta(t, 0.15, m.AdjustExplorationRate(), 1e-9)

	m.Initialize(map[string]Value{"a": Bool(true)}, map[string]float64{"a": 0.95})
	assert.InDelta(t, 0.05, m.AdjustExplorationRate(), 1e-9)
	assert.InDelta(t, 0.05, m.AdjustExplorationRate(), 1e-9)
}

func TestEvolution(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, EvolutionInsufficient, m.Evolution().Status)

	m.Initialize(map[string]Value{
		"category_culture_score": Number(0.8),
		KeyCuisine:               List("local"),
		KeyPace:                  String("moderate"),
		"gone":                   Bool(true),
	}, map[string]float64{"category_culture_score": 0.7})
	assert.Equal(t, EvolutionInsufficient, m.Evolution().Status)

	m.UpdateFromImplicitFeedback(travel.Activity{Category: travel.CategoryCulture}, Loved)
	m.UpdateFromNaturalLanguage("so tired, but we love spicy food")
	delete(m.entries, "gone")

	ev := m.Evolution()
	require.Equal(t, EvolutionOK, ev.Status)

	culture := ev.Preferences["category_culture_score"]
	require.NotNil(t, culture.Change)
	assert.Greater(t, *culture.Change, 0.0)
	require.NotNil(t, culture.PercentChange)

	cuisine := ev.Preferences[KeyCuisine]
	assert.Equal(t, []string{"indian", "thai"}, cuisine.Added)
	assert.Empty(t, cuisine.Removed)

	pace := ev.Preferences[KeyPace]
	require.NotNil(t, pace.Changed)
	assert.True(t, *pace.Changed)

	assert.Equal(t, "removed", ev.Preferences["gone"].Status)
	assert.Equal(t, "added", ev.Preferences[KeyPriceRange].Status)

	cc := ev.Confidence["category_culture_score"]
	require.NotNil(t, cc.Change)
	assert.InDelta(t, 0.1, *cc.Change, 1e-9)
}

func TestHistoryBounded(t *testing.T) {
	m := New(nil, Config{HistoryLimit: 3})
	for i := 0; i < 10; i++ {
		m.UpdateFromNaturalLanguage("hi")
	}
	assert.Len(t, m.History(), 3)
	assert.Len(t, m.Feedback(), 3)
	assert.Equal(t, EvolutionOK, m.Evolution().Status)
}

func TestValueJSON(t *testing.T) {
	var got map[string]Value
	require.NoError(t, json.Unmarshal([]byte(`{"a":1.5,"b":"x","c":true,"d":["p","q"]}`), &got))
	assert.True(t, Number(1.5).Equal(got["a"]))
	assert.True(t, String("x").Equal(got["b"]))
	assert.True(t, Bool(true).Equal(got["c"]))
	assert.True(t, List("p", "q").Equal(got["d"]))

	raw, err := json.Marshal(Entry{Value: List(), Confidence: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":[],"confidence":0.5}`, string(raw))

	err = json.Unmarshal([]byte(`{"a":{"nested":1}}`), &got)
	assert.Error(t, err)
}
