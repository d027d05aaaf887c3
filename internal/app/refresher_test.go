package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

type fakeSessions struct {
	calls   atomic.Int32
	results []session.RefreshResult
}

func (f *fakeSessions) RefreshAll(ctx context.Context, force bool) []session.RefreshResult {
	f.calls.Add(1)
	return f.results
}

func TestWeatherRefresherCountsProposals(t *testing.T) {
	f := &fakeSessions{results: []session.RefreshResult{
		{TravelerID: "a"},
		{TravelerID: "b", Outcome: session.Outcome{Notification: &travel.Notification{ID: "n1"}}},
	}}
	w := NewWeatherRefresher(logger.Nop(), f, time.Minute)
	assert.Equal(t, 1, w.tick(context.Background()))
}

func TestWeatherRefresherStopsOnCancel(t *testing.T) {
	f := &fakeSessions{}
	w := NewWeatherRefresher(nil, f, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return f.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
