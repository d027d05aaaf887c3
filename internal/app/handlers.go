package app

import (
	httpH "github.com/yungbote/voyagerverse-backend/internal/http/handlers"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	Traveler     *httpH.TravelerHandler
	Preference   *httpH.PreferenceHandler
	Notification *httpH.NotificationHandler
	Itinerary    *httpH.ItineraryHandler
	Realtime     *httpH.RealtimeHandler
	Demo         *httpH.DemoHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(services.Sessions.Len),
		Traveler:     httpH.NewTravelerHandler(log, services.Sessions),
		Preference:   httpH.NewPreferenceHandler(log, services.Sessions),
		Notification: httpH.NewNotificationHandler(log, services.Sessions),
		Itinerary:    httpH.NewItineraryHandler(log, services.Sessions),
		Realtime:     httpH.NewRealtimeHandler(log, services.SSEHub),
		Demo:         httpH.NewDemoHandler(log, services.Collaborators, nil),
	}
}
