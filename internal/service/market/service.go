package market

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

const (
	// PriceWindow bounds how old a persisted price may be.
	PriceWindow = 30 * 24 * time.Hour
	// BestMarketLimit caps the best-markets ranking.
	BestMarketLimit = 5
	unitQuintal     = "quintal"
)

// Store reads persisted prices.
type Store interface {
	ListSince(ctx context.Context, cropName string, since time.Time) ([]models.MarketPrice, error)
	LatestPerMarket(ctx context.Context, cropName string) ([]models.MarketPrice, error)
}

type mandi struct {
	name     string
	district string
	state    string
	lat, lng float64
}

var mandis = []mandi{
	{"Azadpur", "North West Delhi", "Delhi", 28.7076, 77.1767},
	{"Vashi", "Thane", "Maharashtra", 19.0771, 72.9986},
	{"Lasalgaon", "Nashik", "Maharashtra", 20.1500, 74.2333},
	{"Koyambedu", "Chennai", "Tamil Nadu", 13.0694, 80.1948},
	{"Yeshwanthpur", "Bengaluru Urban", "Karnataka", 13.0285, 77.5409},
	{"Bowenpally", "Hyderabad", "Telangana", 17.4713, 78.4835},
	{"Khanna", "Ludhiana", "Punjab", 30.6974, 76.2170},
	{"Indore", "Indore", "Madhya Pradesh", 22.7196, 75.8577},
	{"Unjha", "Mehsana", "Gujarat", 23.8042, 72.3929},
	{"Gulabbagh", "Purnia", "Bihar", 25.7771, 87.4753},
}

// base modal price in rupees per quintal.
var basePrices = map[string]float64{
	"wheat":     2275,
	"rice":      2183,
	"paddy":     2183,
	"maize":     2090,
	"cotton":    6620,
	"soybean":   4600,
	"sugarcane": 315,
	"onion":     1800,
	"potato":    1200,
	"tomato":    1500,
	"chickpea":  5440,
	"mustard":   5650,
	"groundnut": 6377,
	"turmeric":  9000,
	"chilli":    12000,
}

const defaultBasePrice = 2500

// Service serves market prices.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewService wires a market service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Prices returns recent persisted prices for a crop, newest first. When none
// exist, indicative prices are synthesized and flagged as such.
func (s *Service) Prices(ctx context.Context, cropName string) ([]models.MarketPrice, error) {
	cropName = strings.TrimSpace(cropName)
	if cropName == "" {
		return nil, fmt.Errorf("%w: crop name is required", models.ErrInvalidInput)
	}

	prices, err := s.store.ListSince(ctx, cropName, s.now().Add(-PriceWindow))
	if err != nil {
		return nil, err
	}
	if len(prices) > 0 {
		return prices, nil
	}

	s.logger.Debug("no stored prices, synthesizing", zap.String("crop", cropName))
	return s.synthesize(cropName), nil
}

// BestMarkets ranks markets by latest modal price. A non-nil origin adds the
// distance to each market and breaks price ties by proximity.
func (s *Service) BestMarkets(ctx context.Context, cropName string, origin *orb.Point) ([]models.BestMarket, error) {
	cropName = strings.TrimSpace(cropName)
	if cropName == "" {
		return nil, fmt.Errorf("%w: crop name is required", models.ErrInvalidInput)
	}

	latest, err := s.store.LatestPerMarket(ctx, cropName)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		latest = s.synthesize(cropName)
	}

	ranked := make([]models.BestMarket, 0, len(latest))
	for _, p := range latest {
		bm := models.BestMarket{MarketPrice: p}
		if origin != nil && (p.Location.Lat != 0 || p.Location.Lng != 0) {
			km := round1(geo.Distance(*origin, orb.Point{p.Location.Lng, p.Location.Lat}) / 1000)
			bm.DistanceKm = &km
		}
		ranked = append(ranked, bm)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.ModalPrice != b.ModalPrice {
			return a.ModalPrice > b.ModalPrice
		}
		if a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
		return a.Market < b.Market
	})

	if len(ranked) > BestMarketLimit {
		ranked = ranked[:BestMarketLimit]
	}
	return ranked, nil
}

// Origin validates caller coordinates. Both empty means no origin.
func Origin(lat, lng *float64) (*orb.Point, error) {
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, fmt.Errorf("%w: lat and lng must be given together", models.ErrInvalidInput)
	}
	if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", models.ErrInvalidInput)
	}
	return &orb.Point{*lng, *lat}, nil
}

func (s *Service) synthesize(cropName string) []models.MarketPrice {
	base, ok := basePrices[strings.ToLower(cropName)]
	if !ok {
		base = defaultBasePrice
	}
	today := models.StartOfDay(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.MarketPrice, 0, len(mandis))
	for _, m := range mandis {
		// modal within ±15% of base, spread of 5-12% either side
		modal := math.Round(base * (0.85 + 0.3*s.rnd.Float64()))
		spread := modal * (0.05 + 0.07*s.rnd.Float64())
		out = append(out, models.MarketPrice{
			CropName:   cropName,
			Market:     m.name,
			State:      m.state,
			District:   m.district,
			Location:   models.Location{Lat: m.lat, Lng: m.lng, City: m.district, State: m.state},
			MinPrice:   math.Round(modal - spread),
			MaxPrice:   math.Round(modal + spread),
			ModalPrice: modal,
			Unit:       unitQuintal,
			Date:       today,
			Synthetic:  true,
		})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
