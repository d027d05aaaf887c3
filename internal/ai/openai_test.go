package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

type fakeClient struct {
	json     string
	text     string
	err      error
	lastUser string
}

func (f *fakeClient) GenerateJSON(ctx context.Context, system, user string, out any) error {
	f.lastUser = user
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.json), out)
}

func (f *fakeClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.lastUser = user
	return f.text, f.err
}

func (f *fakeClient) Model() string { return "fake" }

func TestAnalyzeSafety(t *testing.T) {
	fc := &fakeClient{json: `{"is_safe":false,"risk_level":"High","reason":"heat"}`}
	got, err := NewLLM(logger.Nop(), fc).AnalyzeSafety(context.Background(), SafetyRequest{Name: "Desert Safari", IsOutdoor: true, Temperature: 39})
	require.NoError(t, err)
	assert.False(t, got.IsSafe)
	assert.Equal(t, "High", got.RiskLevel)
	assert.Contains(t, fc.lastUser, "Desert Safari")

	fc.json = `{"risk_level":"Low"}`
	_, err = NewLLM(logger.Nop(), fc).AnalyzeSafety(context.Background(), SafetyRequest{})
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "analyze_safety", ce.Op)
}

func TestGenerateAlternativesFiltersByConstraints(t *testing.T) {
	fc := &fakeClient{json: `{"activities":[
		{"name":"Dubai Aquarium","type":"attraction","is_indoor":true,"energy_required":0.3},
		{"name":"Dune Bashing","type":"adventure","is_indoor":false},
		{"name":"Ski Dubai","type":"sport","is_indoor":true,"energy_required":0.9},
		{"name":"","type":"culture","is_indoor":true}
	]}`}
	indoor := false
	got, err := NewLLM(logger.Nop(), fc).GenerateAlternatives(context.Background(), Constraints{
		IsOutdoor:         &indoor,
		EnergyRequiredMax: travel.Float(0.5),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dubai Aquarium", got[0].Name)
	assert.Equal(t, travel.CategoryAttraction, got[0].Category)
	assert.False(t, got[0].IsOutdoor)
}

func TestPersonalizeClampsIndex(t *testing.T) {
	options := []travel.Activity{{Name: "A"}, {Name: "B"}}
	fc := &fakeClient{json: `{"selected_activity_index":1,"explanation":"fits"}`}
	got, err := NewLLM(logger.Nop(), fc).Personalize(context.Background(), UserData{}, options)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Recommendation.Name)

	fc.json = `{"selected_activity_index":7}`
	got, err = NewLLM(logger.Nop(), fc).Personalize(context.Background(), UserData{}, options)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Recommendation.Name)

	_, err = NewLLM(logger.Nop(), fc).Personalize(context.Background(), UserData{}, nil)
	assert.Error(t, err)
}

func TestUnavailableAndErrors(t *testing.T) {
	var l *LLM
	_, err := l.Explain(context.Background(), ExplainRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, Collaborators{}, NewLLM(nil, nil).Collaborators())

	boom := errors.New("boom")
	_, err = NewLLM(logger.Nop(), &fakeClient{err: boom}).Explain(context.Background(), ExplainRequest{Reason: travel.ReasonWeather})
	assert.ErrorIs(t, err, boom)

	c := NewLLM(logger.Nop(), &fakeClient{}).Collaborators()
	assert.NotNil(t, c.Safety)
	assert.NotNil(t, c.Explainer)
}

func TestFallbackAlternativesAreIndoor(t *testing.T) {
	fb := FallbackAlternatives()
	require.Len(t, fb, 3)
	for _, a := range fb {
		assert.False(t, a.IsOutdoor, a.Name)
	}
	assert.Equal(t, "Dubai Museum", fb[0].Name)
}
