package market

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/repository/memory"
)

var now = time.Date(2024, 9, 15, 8, 0, 0, 0, time.UTC)

func newService(repo *memory.Repository) *Service {
	svc := NewService(repo.MarketPrices(), nil)
	svc.now = func() time.Time { return now }
	svc.rnd = rand.New(rand.NewSource(7))
	return svc
}

func price(market string, modal float64, daysAgo int, lat, lng float64) models.MarketPrice {
	return models.MarketPrice{
		CropName:   "Wheat",
		Market:     market,
		State:      "Punjab",
		Location:   models.Location{Lat: lat, Lng: lng},
		MinPrice:   modal - 100,
		MaxPrice:   modal + 100,
		ModalPrice: modal,
		Unit:       unitQuintal,
		Date:       now.AddDate(0, 0, -daysAgo),
	}
}

func TestPricesFromStore(t *testing.T) {
	repo := memory.New()
	repo.AddPrices(
		price("Khanna", 2300, 1, 30.69, 76.21),
		price("Rajpura", 2250, 3, 30.48, 76.59),
		price("Old", 2000, 45, 30.0, 76.0),
	)
	svc := newService(repo)

	prices, err := svc.Prices(context.Background(), "wheat")
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "Khanna", prices[0].Market)
	assert.False(t, prices[0].Synthetic)
}

func TestPricesSynthesized(t *testing.T) {
	svc := newService(memory.New())

	prices, err := svc.Prices(context.Background(), "Tomato")
	require.NoError(t, err)
	require.Len(t, prices, len(mandis))
	for _, p := range prices {
		assert.True(t, p.Synthetic)
		assert.Equal(t, "Tomato", p.CropName)
		assert.LessOrEqual(t, p.MinPrice, p.ModalPrice)
		assert.GreaterOrEqual(t, p.MaxPrice, p.ModalPrice)
		assert.InDelta(t, 1500, p.ModalPrice, 1500*0.15+1)
	}

	_, err = svc.Prices(context.Background(), "  ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestBestMarkets(t *testing.T) {
	repo := memory.New()
	repo.AddPrices(
		price("A", 2100, 1, 30.0, 76.0),
		price("A", 2600, 9, 30.0, 76.0),
		price("B", 2400, 2, 28.7, 77.2),
		price("C", 2400, 2, 30.7, 76.2),
		price("D", 2200, 1, 22.7, 75.9),
		price("E", 2150, 1, 19.1, 73.0),
		price("F", 2500, 4, 13.0, 80.2),
	)
	svc := newService(repo)

	origin, err := Origin(ptr(30.9), ptr(75.85))
	require.NoError(t, err)

	ranked, err := svc.BestMarkets(context.Background(), "wheat", origin)
	require.NoError(t, err)
	require.Len(t, ranked, BestMarketLimit)

	names := make([]string, 0, len(ranked))
	for _, m := range ranked {
		names = append(names, m.Market)
		require.NotNil(t, m.DistanceKm)
	}
	// B and C tie on price; C is closer to Ludhiana.
	assert.Equal(t, []string{"F", "C", "B", "D", "E"}, names)
	assert.Less(t, *ranked[1].DistanceKm, *ranked[2].DistanceKm)
}

func TestBestMarketsWithoutOrigin(t *testing.T) {
	svc := newService(memory.New())

	ranked, err := svc.BestMarkets(context.Background(), "onion", nil)
	require.NoError(t, err)
	require.Len(t, ranked, BestMarketLimit)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].ModalPrice, ranked[i].ModalPrice)
		assert.Nil(t, ranked[i].DistanceKm)
	}
}

func TestOrigin(t *testing.T) {
	p, err := Origin(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = Origin(ptr(10), nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = Origin(ptr(95), ptr(10))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func ptr(v float64) *float64 { return &v }
