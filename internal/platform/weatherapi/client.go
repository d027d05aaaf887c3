package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/observability"
	"github.com/yungbote/voyagerverse-backend/internal/platform/envutil"
	"github.com/yungbote/voyagerverse-backend/internal/platform/httpx"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

const Source = "weatherapi"

type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     strings.TrimSpace(envutil.String("WEATHERAPI_KEY", "")),
		BaseURL:    strings.TrimSpace(envutil.String("WEATHERAPI_BASE_URL", "")),
		Timeout:    time.Duration(envutil.Int("WEATHERAPI_TIMEOUT_SECONDS", 10)) * time.Second,
		MaxRetries: envutil.Int("WEATHERAPI_MAX_RETRIES", 2),
	}
}

// Client reads current conditions from WeatherAPI.com.
type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing WEATHERAPI_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.weatherapi.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		log:        log.With("client", "WeatherAPIClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      httpx.Sleep,
	}, nil
}

type currentResponse struct {
	Current struct {
		TempC      float64 `json:"temp_c"`
		FeelsLikeC float64 `json:"feelslike_c"`
		Humidity   float64 `json:"humidity"`
		PrecipMM   float64 `json:"precip_mm"`
		UV         float64 `json:"uv"`
		WindKPH    float64 `json:"wind_kph"`
		Condition  struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

// CurrentWeather implements contextstore.WeatherProvider.
func (c *Client) CurrentWeather(ctx context.Context, loc travel.Location) (travel.Weather, error) {
	city := strings.TrimSpace(loc.City)
	if city == "" {
		return travel.Weather{}, fmt.Errorf("weatherapi: city required")
	}
	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("q", city)
	q.Set("aqi", "no")

	raw, err := c.get(ctx, "/current.json?"+q.Encode())
	observability.Current().IncWeatherUpdate(sourceLabel(err))
	if err != nil {
		return travel.Weather{}, err
	}

	var resp currentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return travel.Weather{}, fmt.Errorf("weatherapi: decode current: %w", err)
	}
	cur := resp.Current
	return travel.Weather{
		Temperature:         cur.TempC,
		Humidity:            cur.Humidity,
		PrecipitationChance: precipitationChance(cur.PrecipMM),
		UVIndex:             cur.UV,
		WindSpeed:           cur.WindKPH,
		Condition:           strings.ToLower(strings.TrimSpace(cur.Condition.Text)),
		Source:              Source,
	}, nil
}

// precipitationChance maps measured precipitation to a 0..1 likelihood;
// 10mm or more counts as certain.
func precipitationChance(mm float64) float64 {
	if mm <= 0 {
		return 0
	}
	if mm >= 10 {
		return 1
	}
	return mm / 10
}

func sourceLabel(err error) string {
	if err != nil {
		return Source + "_error"
	}
	return Source
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, raw, err := c.getOnce(ctx, path)
		if err == nil {
			return raw, nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 5*time.Second))
		c.log.Warn("WeatherAPI request retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := c.sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}
	return nil, errors.New("unreachable retry loop")
}

func (c *Client) getOnce(ctx context.Context, path string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := strings.TrimSpace(string(raw))
		if len(body) > 500 {
			body = body[:500] + "..."
		}
		return resp, nil, &httpx.StatusError{StatusCode: resp.StatusCode, Body: body}
	}
	return resp, raw, nil
}
