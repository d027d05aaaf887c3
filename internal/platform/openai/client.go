package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/yungbote/voyagerverse-backend/internal/observability"
	"github.com/yungbote/voyagerverse-backend/internal/platform/envutil"
	"github.com/yungbote/voyagerverse-backend/internal/platform/httpx"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/platform/promptstyle"
)

// Client is the LLM client used by the AI collaborators.
type Client interface {
	// GenerateJSON asks for a JSON object and decodes it into out.
	GenerateJSON(ctx context.Context, system string, user string, out any) error

	// GenerateText returns plain prose.
	GenerateText(ctx context.Context, system string, user string) (string, error)

	Model() string
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	RPS         float64
	Temperature float32
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("OPENAI_API_KEY", ""),
		BaseURL:     envutil.String("OPENAI_BASE_URL", ""),
		Model:       envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:     time.Duration(envutil.Int("OPENAI_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxRetries:  envutil.Int("OPENAI_MAX_RETRIES", 2),
		RPS:         envutil.Float("OPENAI_RPS", 2),
		Temperature: float32(envutil.Float("OPENAI_TEMPERATURE", 0.2)),
	}
}

type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

type client struct {
	log         *logger.Logger
	api         chatAPI
	model       string
	maxRetries  int
	temperature float32
	limiter     *rate.Limiter
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		if !strings.HasSuffix(base, "/v1") {
			base += "/v1"
		}
		oc.BaseURL = base
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return newClient(log, goopenai.NewClientWithConfig(oc), cfg), nil
}

func newClient(log *logger.Logger, api chatAPI, cfg Config) *client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &client{
		log:         log.With("service", "OpenAIClient"),
		api:         api,
		model:       cfg.Model,
		maxRetries:  cfg.MaxRetries,
		temperature: cfg.Temperature,
		limiter:     rate.NewLimiter(limit, 1),
		sleep:       httpx.Sleep,
	}
}

func (c *client) Model() string { return c.model }

func (c *client) GenerateJSON(ctx context.Context, system string, user string, out any) error {
	req := c.request(promptstyle.ApplySystem(system, "json"), user)
	req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
		Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
	}
	text, err := c.complete(ctx, "json", req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to parse model JSON: %w; text=%s", err, text)
	}
	return nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	return c.complete(ctx, "text", c.request(promptstyle.ApplySystem(system, "text"), user))
}

func (c *client) request(system, user string) goopenai.ChatCompletionRequest {
	return goopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
	}
}

func (c *client) complete(ctx context.Context, op string, req goopenai.ChatCompletionRequest) (string, error) {
	backoff := 1 * time.Second
	start := time.Now()

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			observability.Current().ObserveLLMRequest(c.model, op, "200", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("openai returned no choices")
			}
			if refusal := resp.Choices[0].Message.Refusal; refusal != "" {
				return "", fmt.Errorf("model refused: %s", refusal)
			}
			text := strings.TrimSpace(resp.Choices[0].Message.Content)
			if text == "" {
				return "", fmt.Errorf("openai returned empty content")
			}
			return text, nil
		}

		err = classify(err)
		if !httpx.IsRetryableError(err) || attempt >= c.maxRetries {
			observability.Current().ObserveLLMRequest(c.model, op, statusLabel(err), time.Since(start), 0, 0)
			return "", err
		}

		sleepFor := httpx.JitterSleep(min(backoff, 10*time.Second))
		c.log.Warn("OpenAI request retrying",
			"operation", op,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := c.sleep(ctx, sleepFor); err != nil {
			return "", err
		}
		backoff *= 2
	}
}

// classify attaches the HTTP status carried by go-openai errors so retry
// decisions can use it.
func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return fmt.Errorf("%w: %w", &httpx.StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return fmt.Errorf("%w: %w", &httpx.StatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}, err)
	}
	return err
}

func statusLabel(err error) string {
	var sc httpx.HTTPStatusCoder
	if errors.As(err, &sc) {
		return strconv.Itoa(sc.HTTPStatusCode())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}
