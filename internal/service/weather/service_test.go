package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	client "github.com/mamadbah2/farmhub/pkg/clients/weather"
)

type stubProvider struct {
	current  *client.CurrentResponse
	forecast *client.ForecastResponse
	err      error
}

func (p stubProvider) Current(context.Context, float64, float64) (*client.CurrentResponse, error) {
	return p.current, p.err
}

func (p stubProvider) Forecast(context.Context, float64, float64) (*client.ForecastResponse, error) {
	return p.forecast, p.err
}

func slot(at time.Time, lo, hi float64, humidity int, desc string, rain float64) client.Slot {
	var s client.Slot
	s.Dt = at.Unix()
	s.Main.TempMin = lo
	s.Main.TempMax = hi
	s.Main.Humidity = humidity
	s.Weather = []client.Condition{{Description: desc}}
	s.Rain.ThreeHours = rain
	return s
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		lat, lng string
		ok       bool
	}{
		{"18.5", "73.8", true},
		{"", "73.8", false},
		{"abc", "73.8", false},
		{"91", "0", false},
		{"0", "-181", false},
	}
	for _, tt := range tests {
		_, _, err := ParseCoordinates(tt.lat, tt.lng)
		if tt.ok {
			assert.NoError(t, err, tt.lat+","+tt.lng)
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidInput, tt.lat+","+tt.lng)
		}
	}
}

func TestCurrent(t *testing.T) {
	raw := &client.CurrentResponse{Name: "Nashik", Dt: 1717400000}
	raw.Main.Temp = 29.5
	raw.Main.Humidity = 60
	raw.Weather = []client.Condition{{Description: "light rain", Icon: "10d"}}

	svc := NewService(stubProvider{current: raw}, nil)
	cur, err := svc.Current(context.Background(), 20, 73.8)
	require.NoError(t, err)
	assert.Equal(t, "Nashik", cur.City)
	assert.Equal(t, "light rain", cur.Description)
	assert.Equal(t, "10d", cur.Icon)
	assert.Equal(t, int64(1717400000), cur.ObservedAt.Unix())
}

func TestForecastFoldsDays(t *testing.T) {
	// IST, +05:30
	raw := &client.ForecastResponse{}
	raw.City.Name = "Pune"
	raw.City.Timezone = 19800
	ist := time.FixedZone("IST", 19800)
	raw.List = []client.Slot{
		slot(time.Date(2024, 6, 1, 20, 30, 0, 0, ist), 24, 27, 70, "clouds", 0),
		slot(time.Date(2024, 6, 1, 23, 30, 0, 0, ist), 23, 25, 80, "light rain", 1.25),
		slot(time.Date(2024, 6, 2, 2, 30, 0, 0, ist), 22, 24, 90, "light rain", 2.5),
		slot(time.Date(2024, 6, 2, 14, 30, 0, 0, ist), 26, 31, 60, "clouds", 0),
		slot(time.Date(2024, 6, 2, 17, 30, 0, 0, ist), 25, 30, 62, "light rain", 0.4),
	}

	svc := NewService(stubProvider{forecast: raw}, nil)
	fc, err := svc.Forecast(context.Background(), 18.5, 73.8)
	require.NoError(t, err)
	assert.Equal(t, "Pune", fc.City)
	require.Len(t, fc.Days, 2)

	first := fc.Days[0]
	assert.Equal(t, "2024-06-01", first.Date)
	assert.Equal(t, 23.0, first.Min)
	assert.Equal(t, 27.0, first.Max)
	assert.Equal(t, 75, first.Humidity)
	assert.InDelta(t, 1.3, first.RainMM, 0.001)

	second := fc.Days[1]
	assert.Equal(t, "2024-06-02", second.Date)
	assert.Equal(t, 22.0, second.Min)
	assert.Equal(t, 31.0, second.Max)
	assert.Equal(t, "light rain", second.Description)
	assert.InDelta(t, 2.9, second.RainMM, 0.001)
}

func TestUpstreamFailure(t *testing.T) {
	svc := NewService(stubProvider{err: errors.New("Invalid API key")}, nil)

	_, err := svc.Current(context.Background(), 1, 1)
	assert.ErrorIs(t, err, models.ErrUpstream)
	assert.Contains(t, err.Error(), "Invalid API key")

	_, err = svc.Forecast(context.Background(), 1, 1)
	assert.ErrorIs(t, err, models.ErrUpstream)
}
