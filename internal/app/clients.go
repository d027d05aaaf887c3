package app

import (
	"fmt"

	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/contextstore"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/platform/openai"
	"github.com/yungbote/voyagerverse-backend/internal/platform/weatherapi"
	"github.com/yungbote/voyagerverse-backend/internal/realtime/bus"
)

// Clients are the optional external integrations. Each stays nil when its
// environment is not configured and the rule-based fallbacks take over.
type Clients struct {
	OpenAI  openai.Client
	Weather contextstore.WeatherProvider
	Bus     bus.Bus
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Openai
	if cfg := openai.ConfigFromEnv(); cfg.APIKey != "" {
		c, err := openai.NewClient(log, cfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.OpenAI = c
	} else {
		log.Warn("OPENAI_API_KEY not set; using rule-based collaborators")
	}

	// Weather
	if cfg := weatherapi.ConfigFromEnv(); cfg.APIKey != "" {
		c, err := weatherapi.New(log, cfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init weather client: %w", err)
		}
		out.Weather = c
	} else {
		log.Warn("WEATHERAPI_KEY not set; weather will be synthesized")
	}

	// Redis
	if cfg := bus.ConfigFromEnv(); cfg.Addr != "" {
		b, err := bus.NewRedisBus(log, cfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
		out.Bus = b
	}

	return out, nil
}

// Collaborators returns the LLM-backed collaborators, or the zero value when
// no LLM is configured.
func (c Clients) Collaborators(log *logger.Logger) ai.Collaborators {
	return ai.NewLLM(log, c.OpenAI).Collaborators()
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}

// Collaborators builds LLM collaborators straight from the environment for
// callers that do not need the rest of the app. Misconfiguration falls back
// to the rule-based path.
func Collaborators(log *logger.Logger) ai.Collaborators {
	cfg := openai.ConfigFromEnv()
	if cfg.APIKey == "" {
		return ai.Collaborators{}
	}
	c, err := openai.NewClient(log, cfg)
	if err != nil {
		log.Warn("openai client unavailable; using rule-based collaborators", "error", err)
		return ai.Collaborators{}
	}
	return ai.NewLLM(log, c).Collaborators()
}
