package weather

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	client "github.com/mamadbah2/farmhub/pkg/clients/weather"
)

// Provider fetches raw weather payloads.
type Provider interface {
	Current(ctx context.Context, lat, lng float64) (*client.CurrentResponse, error)
	Forecast(ctx context.Context, lat, lng float64) (*client.ForecastResponse, error)
}

// Service reshapes upstream weather for the app.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

// NewService wires a weather service.
func NewService(provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, logger: logger}
}

// ParseCoordinates validates raw lat/lng query values.
func ParseCoordinates(rawLat, rawLng string) (float64, float64, error) {
	rawLat, rawLng = strings.TrimSpace(rawLat), strings.TrimSpace(rawLng)
	if rawLat == "" || rawLng == "" {
		return 0, 0, fmt.Errorf("%w: lat and lng are required", models.ErrInvalidInput)
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: lat must be a number between -90 and 90", models.ErrInvalidInput)
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("%w: lng must be a number between -180 and 180", models.ErrInvalidInput)
	}
	return lat, lng, nil
}

// Current returns current conditions.
func (s *Service) Current(ctx context.Context, lat, lng float64) (*models.CurrentWeather, error) {
	raw, err := s.provider.Current(ctx, lat, lng)
	if err != nil {
		s.logger.Warn("current weather failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	out := &models.CurrentWeather{
		City:        raw.Name,
		Temperature: raw.Main.Temp,
		FeelsLike:   raw.Main.FeelsLike,
		Humidity:    raw.Main.Humidity,
		WindSpeed:   raw.Wind.Speed,
		ObservedAt:  time.Unix(raw.Dt, 0).UTC(),
	}
	if len(raw.Weather) > 0 {
		out.Description = raw.Weather[0].Description
		out.Icon = raw.Weather[0].Icon
	}
	return out, nil
}

// Forecast folds 3-hour slots into local calendar days.
func (s *Service) Forecast(ctx context.Context, lat, lng float64) (*models.Forecast, error) {
	raw, err := s.provider.Forecast(ctx, lat, lng)
	if err != nil {
		s.logger.Warn("weather forecast failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	return &models.Forecast{City: raw.City.Name, Days: foldDays(raw)}, nil
}

type dayAcc struct {
	day         models.ForecastDay
	humiditySum int
	slots       int
	counts      map[string]int
}

func foldDays(raw *client.ForecastResponse) []models.ForecastDay {
	zone := time.FixedZone("local", raw.City.Timezone)
	order := make([]string, 0)
	acc := make(map[string]*dayAcc)

	for _, slot := range raw.List {
		key := time.Unix(slot.Dt, 0).In(zone).Format("2006-01-02")
		a, ok := acc[key]
		if !ok {
			a = &dayAcc{
				day:    models.ForecastDay{Date: key, Min: math.Inf(1), Max: math.Inf(-1)},
				counts: make(map[string]int),
			}
			acc[key] = a
			order = append(order, key)
		}
		a.day.Min = math.Min(a.day.Min, slot.Main.TempMin)
		a.day.Max = math.Max(a.day.Max, slot.Main.TempMax)
		a.day.RainMM += slot.Rain.ThreeHours
		a.humiditySum += slot.Main.Humidity
		a.slots++
		if len(slot.Weather) > 0 {
			desc := slot.Weather[0].Description
			a.counts[desc]++
			if a.counts[desc] > a.counts[a.day.Description] {
				a.day.Description = desc
			}
		}
	}

	days := make([]models.ForecastDay, 0, len(order))
	for _, key := range order {
		a := acc[key]
		a.day.Humidity = int(math.Round(float64(a.humiditySum) / float64(a.slots)))
		a.day.RainMM = math.Round(a.day.RainMM*10) / 10
		days = append(days, a.day)
	}
	return days
}
