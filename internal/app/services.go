package app

import (
	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/itinerary"
	"github.com/yungbote/voyagerverse-backend/internal/notify"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/realtime"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

type Services struct {
	SSEHub        *realtime.SSEHub
	Publisher     realtime.Publisher
	Collaborators ai.Collaborators
	Itineraries   *itinerary.Store
	Notifications *notify.Pipeline
	Sessions      *session.Registry
	Refresher     *WeatherRefresher
}

func wireServices(log *logger.Logger, cfg Config, clients Clients) Services {
	log.Info("Wiring services...")

	hub := realtime.NewSSEHub(log)

	// With a bus every instance publishes to redis and forwards what it
	// receives into its local hub.
	var publisher realtime.Publisher = hub
	if clients.Bus != nil {
		publisher = clients.Bus
	}

	collab := clients.Collaborators(log)
	itineraries := itinerary.NewStore()
	notifications := notify.New(log, notify.Config{Publisher: publisher})

	sessions := session.NewRegistry(log, session.Config{
		ConfidenceThreshold:    cfg.ConfidenceThreshold,
		WeatherInterval:        cfg.WeatherInterval,
		ReflectionInterval:     cfg.ReflectionInterval,
		DecisionHistoryLimit:   cfg.DecisionHistoryLimit,
		PreferenceHistoryLimit: cfg.PreferenceHistoryLimit,
		MaxSessions:            cfg.MaxSessions,
		City:                   cfg.City,
	}, session.Deps{
		Collaborators: collab,
		Weather:       clients.Weather,
		Itineraries:   itineraries,
		Notifications: notifications,
	})

	return Services{
		SSEHub:        hub,
		Publisher:     publisher,
		Collaborators: collab,
		Itineraries:   itineraries,
		Notifications: notifications,
		Sessions:      sessions,
		Refresher:     NewWeatherRefresher(log, sessions, cfg.WeatherInterval),
	}
}
