package app

import (
	"github.com/yungbote/voyagerverse-backend/internal/http"
	"github.com/yungbote/voyagerverse-backend/internal/observability"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		AllowedOrigins:      cfg.AllowedOrigins,
		Tracing:             cfg.Tracing,
		HealthHandler:       handlers.Health,
		TravelerHandler:     handlers.Traveler,
		PreferenceHandler:   handlers.Preference,
		NotificationHandler: handlers.Notification,
		ItineraryHandler:    handlers.Itinerary,
		RealtimeHandler:     handlers.Realtime,
		DemoHandler:         handlers.Demo,
	})
}
