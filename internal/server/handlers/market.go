package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/service/market"
)

// MarketHandler serves /api/market.
type MarketHandler struct {
	svc    *market.Service
	logger *zap.Logger
}

// NewMarketHandler constructs the market endpoints.
func NewMarketHandler(svc *market.Service, logger *zap.Logger) *MarketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketHandler{svc: svc, logger: logger}
}

func (h *MarketHandler) Prices(c *gin.Context) {
	prices, err := h.svc.Prices(c.Request.Context(), c.Param("cropName"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, prices)
}

// BestMarkets accepts optional lat and lng query parameters.
func (h *MarketHandler) BestMarkets(c *gin.Context) {
	lat, err := optionalFloat(c, "lat")
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	lng, err := optionalFloat(c, "lng")
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	origin, err := market.Origin(lat, lng)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	ranked, err := h.svc.BestMarkets(c.Request.Context(), c.Param("cropName"), origin)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, ranked)
}

func optionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", models.ErrInvalidInput, key)
	}
	return &v, nil
}
