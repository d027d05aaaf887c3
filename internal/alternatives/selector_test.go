package alternatives

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

type fakeGenerator struct {
	out []travel.Activity
	err error
}

func (f fakeGenerator) GenerateAlternatives(context.Context, ai.Constraints) ([]travel.Activity, error) {
	return f.out, f.err
}

type fakePersonalizer struct {
	pick  int
	err   error
	calls int
}

func (f *fakePersonalizer) Personalize(_ context.Context, _ ai.UserData, options []travel.Activity) (ai.Personalization, error) {
	f.calls++
	if f.err != nil {
		return ai.Personalization{}, f.err
	}
	return ai.Personalization{Index: f.pick, Recommendation: options[f.pick]}, nil
}

var (
	safari = travel.Activity{Name: "Desert Safari", Category: travel.CategoryAdventure, IsOutdoor: true, EnergyRequired: travel.Float(0.8)}
	indoor = false
)

func TestRuleBased(t *testing.T) {
	cases := []struct {
		name     string
		original travel.Activity
		c        ai.Constraints
		want     string
	}{
		{"outdoor adventure gets museum", safari, ai.Constraints{IsOutdoor: &indoor}, "Dubai Museum Cultural Tour"},
		{"high energy gets spa", safari, ai.Constraints{EnergyRequiredMax: travel.Float(0.5)}, "Luxury Spa Experience"},
		{"outdoor culture has no rule", travel.Activity{Name: "Souk Walk", Category: travel.CategoryCulture, IsOutdoor: true}, ai.Constraints{IsOutdoor: &indoor}, ""},
		{"energy 0.7 is not above ceiling", travel.Activity{Name: "Hike", EnergyRequired: travel.Float(0.7)}, ai.Constraints{EnergyRequiredMax: travel.Float(0.5)}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RuleBased(tc.original, tc.c)
			if tc.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Name)
			assert.False(t, got.IsOutdoor)
		})
	}
}

func TestFindFallsBackWithoutGenerator(t *testing.T) {
	s := New(logger.Nop(), nil, nil)
	got := s.Find(context.Background(), safari, ai.Constraints{IsOutdoor: &indoor}, ai.UserData{})
	require.NotNil(t, got)
	assert.Equal(t, "Dubai Museum Cultural Tour", got.Name)

	s = New(logger.Nop(), fakeGenerator{err: errors.New("down")}, nil)
	got = s.Find(context.Background(), safari, ai.Constraints{EnergyRequiredMax: travel.Float(0.5)}, ai.UserData{})
	require.NotNil(t, got)
	assert.Equal(t, "Luxury Spa Experience", got.Name)
}

func TestFindUsesPersonalizer(t *testing.T) {
	p := &fakePersonalizer{pick: 1}
	gen := fakeGenerator{out: []travel.Activity{{Name: "Aquarium"}, {Name: "Louvre Abu Dhabi"}}}
	got := New(logger.Nop(), gen, p).Find(context.Background(), safari, ai.Constraints{}, ai.UserData{})
	require.NotNil(t, got)
	assert.Equal(t, "Louvre Abu Dhabi", got.Name)
	assert.Equal(t, 1, p.calls)

	p = &fakePersonalizer{err: errors.New("nope")}
	got = New(logger.Nop(), gen, p).Find(context.Background(), safari, ai.Constraints{}, ai.UserData{})
	require.NotNil(t, got)
	assert.Equal(t, "Aquarium", got.Name)
}

func TestFindSingleCandidateSkipsPersonalizer(t *testing.T) {
	p := &fakePersonalizer{}
	got := New(logger.Nop(), fakeGenerator{out: []travel.Activity{{Name: "Aquarium"}}}, p).
		Find(context.Background(), safari, ai.Constraints{}, ai.UserData{})
	require.NotNil(t, got)
	assert.Equal(t, "Aquarium", got.Name)
	assert.Equal(t, 0, p.calls)
}

func TestFindEmptyCandidatesUsesFixedList(t *testing.T) {
	got := New(logger.Nop(), fakeGenerator{}, nil).Find(context.Background(), safari, ai.Constraints{}, ai.UserData{})
	require.NotNil(t, got)
	assert.Equal(t, "Dubai Museum", got.Name)
}
