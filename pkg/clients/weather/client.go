package weather

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/farmhub/internal/config"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("weather api key is not configured")

// Client talks to an OpenWeatherMap compatible API.
type Client struct {
	httpClient *resty.Client
	apiKey     string
}

// NewClient builds a weather client from configuration.
func NewClient(cfg config.WeatherConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	return &Client{httpClient: client, apiKey: cfg.APIKey}
}

// Condition is one entry of the upstream weather array.
type Condition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentResponse mirrors the /weather payload.
type CurrentResponse struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []Condition `json:"weather"`
}

// Slot is one 3-hour forecast entry.
type Slot struct {
	Dt   int64 `json:"dt"`
	Main struct {
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
	Rain    struct {
		ThreeHours float64 `json:"3h"`
	} `json:"rain"`
}

// ForecastResponse mirrors the /forecast payload.
type ForecastResponse struct {
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
	List []Slot `json:"list"`
}

type apiError struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

// Current fetches current conditions for a coordinate.
func (c *Client) Current(ctx context.Context, lat, lng float64) (*CurrentResponse, error) {
	out := new(CurrentResponse)
	if err := c.get(ctx, "/weather", lat, lng, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Forecast fetches the 5 day / 3 hour forecast for a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lng float64) (*ForecastResponse, error) {
	out := new(ForecastResponse)
	if err := c.get(ctx, "/forecast", lat, lng, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, lat, lng float64, result any) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":   strconv.FormatFloat(lng, 'f', -1, 64),
			"units": "metric",
			"appid": c.apiKey,
		}).
		SetResult(result).
		SetError(apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("weather api call: %w", err)
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return fmt.Errorf("weather api error (%d): %s", resp.StatusCode(), apiErr.Message)
		}
		return fmt.Errorf("weather api error (%d): %s", resp.StatusCode(), resp.String())
	}
	return nil
}
