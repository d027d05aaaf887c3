package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/voyagerverse-backend/internal/decision"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/session"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "CONFIDENCE_THRESHOLD", "WEATHER_UPDATE_INTERVAL_MINUTES", "REFLECTION_INTERVAL_HOURS", "DEFAULT_CITY", "CORS_ALLOWED_ORIGINS", "MAX_SESSIONS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())
	assert.Equal(t, ":8000", cfg.Address())
	assert.InDelta(t, decision.DefaultConfidenceThreshold, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 30*time.Minute, cfg.WeatherInterval)
	assert.Equal(t, decision.DefaultReflectionInterval, cfg.ReflectionInterval)
	assert.Equal(t, "Dubai", cfg.City)
	assert.Equal(t, session.DefaultMaxSessions, cfg.MaxSessions)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9090")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.85")
	t.Setenv("WEATHER_UPDATE_INTERVAL_MINUTES", "5")
	t.Setenv("REFLECTION_INTERVAL_HOURS", "2")
	t.Setenv("DEFAULT_CITY", "Abu Dhabi")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := LoadConfig(logger.Nop())
	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
	assert.InDelta(t, 0.85, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 5*time.Minute, cfg.WeatherInterval)
	assert.Equal(t, 2*time.Hour, cfg.ReflectionInterval)
	assert.Equal(t, "Abu Dhabi", cfg.City)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsBadThreshold(t *testing.T) {
	tests := []string{"0", "-1", "1.5", "abc"}
	for _, v := range tests {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CONFIDENCE_THRESHOLD", v)
			cfg := LoadConfig(nil)
			assert.InDelta(t, decision.DefaultConfidenceThreshold, cfg.ConfidenceThreshold, 1e-9)
		})
	}
}

func TestWireClientsWithoutEnv(t *testing.T) {
	for _, k := range []string{"OPENAI_API_KEY", "WEATHERAPI_KEY", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}
	c, err := wireClients(logger.Nop())
	assert.NoError(t, err)
	assert.Nil(t, c.OpenAI)
	assert.Nil(t, c.Weather)
	assert.Nil(t, c.Bus)
	assert.Nil(t, c.Collaborators(logger.Nop()).Explainer)
	c.Close()
}
