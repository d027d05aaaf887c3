package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/voyagerverse-backend/internal/http/handlers"
	httpMW "github.com/yungbote/voyagerverse-backend/internal/http/middleware"
	"github.com/yungbote/voyagerverse-backend/internal/observability"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

const serviceName = "voyagerverse-backend"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
	Tracing        bool

	HealthHandler       *httpH.HealthHandler
	TravelerHandler     *httpH.TravelerHandler
	PreferenceHandler   *httpH.PreferenceHandler
	NotificationHandler *httpH.NotificationHandler
	ItineraryHandler    *httpH.ItineraryHandler
	RealtimeHandler     *httpH.RealtimeHandler
	DemoHandler         *httpH.DemoHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if cfg.DemoHandler != nil {
		r.GET("/demo/tom-priya-scenario", cfg.DemoHandler.TomAndPriya)
	}

	api := r.Group("/api")

	traveler := api.Group("/travelers/:travelerId")
	traveler.Use(httpMW.AttachTravelerContext())
	{
		if h := cfg.TravelerHandler; h != nil {
			traveler.GET("/context", h.GetContext)
			traveler.POST("/context", h.UpdateContext)
			traveler.POST("/traveler-state", h.UpdateTravelerState)
			traveler.POST("/traveler-state/decay", h.DecayEnergy)
			traveler.POST("/weather/refresh", h.RefreshWeather)
			traveler.POST("/compatibility", h.Compatibility)
			traveler.POST("/plan/evaluate", h.EvaluatePlan)
			traveler.GET("/decisions", h.ListDecisions)
			traveler.GET("/decisions/:decisionId/explanation", h.ExplainDecision)
			traveler.GET("/engine", h.EngineStatus)
			traveler.POST("/goals", h.AddGoal)
		}

		if h := cfg.PreferenceHandler; h != nil {
			traveler.GET("/preferences", h.Get)
			traveler.GET("/preferences/evolution", h.Evolution)
			traveler.POST("/preferences/score", h.Score)
			traveler.POST("/feedback/explicit", h.ExplicitFeedback)
			traveler.POST("/feedback/activity", h.ActivityFeedback)
			traveler.POST("/chat", h.Chat)
			traveler.GET("/recommendations", h.Recommendations)
		}

		if h := cfg.ItineraryHandler; h != nil {
			traveler.POST("/itinerary", h.Create)
			traveler.GET("/itinerary", h.Get)
		}

		if h := cfg.NotificationHandler; h != nil {
			traveler.GET("/notifications", h.List)
		}

		// Realtime (SSE)
		if h := cfg.RealtimeHandler; h != nil {
			traveler.GET("/stream", h.Stream)
		}
	}

	if h := cfg.NotificationHandler; h != nil {
		api.POST("/notifications/:notificationId/respond", h.Respond)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}
