package app

import (
	"strings"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/decision"
	"github.com/yungbote/voyagerverse-backend/internal/platform/envutil"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

const (
	defaultPort            = "8000"
	defaultWeatherInterval = 30 * time.Minute
	defaultCity            = "Dubai"
)

type Config struct {
	Port    string
	LogMode string

	ConfidenceThreshold    float64
	WeatherInterval        time.Duration
	ReflectionInterval     time.Duration
	DecisionHistoryLimit   int
	PreferenceHistoryLimit int
	MaxSessions            int
	City                   string

	AllowedOrigins []string
	Tracing        bool
	Environment    string
	Version        string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:                   envutil.String("PORT", defaultPort),
		LogMode:                envutil.String("LOG_MODE", "development"),
		ConfidenceThreshold:    envutil.Float("CONFIDENCE_THRESHOLD", decision.DefaultConfidenceThreshold),
		WeatherInterval:        envutil.Minutes("WEATHER_UPDATE_INTERVAL_MINUTES", defaultWeatherInterval),
		ReflectionInterval:     envutil.Hours("REFLECTION_INTERVAL_HOURS", decision.DefaultReflectionInterval),
		DecisionHistoryLimit:   envutil.Int("DECISION_HISTORY_LIMIT", decision.DefaultHistoryLimit),
		PreferenceHistoryLimit: envutil.Int("PREFERENCE_HISTORY_LIMIT", 0),
		MaxSessions:            envutil.Int("MAX_SESSIONS", session.DefaultMaxSessions),
		City:                   envutil.String("DEFAULT_CITY", defaultCity),
		AllowedOrigins:         splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		Tracing:                envutil.Bool("OTEL_ENABLED", false),
		Environment:            envutil.String("APP_ENV", "development"),
		Version:                envutil.String("APP_VERSION", "dev"),
	}
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 1 {
		if log != nil {
			log.Warn("CONFIDENCE_THRESHOLD out of range, using default", "value", cfg.ConfidenceThreshold)
		}
		cfg.ConfidenceThreshold = decision.DefaultConfidenceThreshold
	}
	return cfg
}

// Address is the listen address for Port.
func (c Config) Address() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
