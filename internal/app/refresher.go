package app

import (
	"context"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

type refresher interface {
	RefreshAll(ctx context.Context, force bool) []session.RefreshResult
}

// WeatherRefresher periodically refreshes weather for every live session and
// re-checks any itinerary day scheduled for today.
type WeatherRefresher struct {
	log      *logger.Logger
	sessions refresher
	interval time.Duration
}

func NewWeatherRefresher(log *logger.Logger, sessions refresher, interval time.Duration) *WeatherRefresher {
	if log == nil {
		log = logger.Nop()
	}
	if interval <= 0 {
		interval = defaultWeatherInterval
	}
	return &WeatherRefresher{log: log.With("worker", "WeatherRefresher"), sessions: sessions, interval: interval}
}

// Run ticks until ctx is cancelled.
func (w *WeatherRefresher) Run(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	w.log.Info("Weather refresher started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Weather refresher stopped")
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *WeatherRefresher) tick(ctx context.Context) int {
	results := w.sessions.RefreshAll(ctx, false)
	changed := 0
	for _, r := range results {
		if r.Outcome.Notification != nil {
			changed++
		}
	}
	if len(results) > 0 {
		w.log.Debug("Weather refresh pass", "sessions", len(results), "proposals", changed)
	}
	return changed
}
