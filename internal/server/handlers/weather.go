package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/service/weather"
)

// WeatherHandler serves /api/weather.
type WeatherHandler struct {
	svc    *weather.Service
	logger *zap.Logger
}

// NewWeatherHandler constructs the weather endpoints.
func NewWeatherHandler(svc *weather.Service, logger *zap.Logger) *WeatherHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherHandler{svc: svc, logger: logger}
}

func (h *WeatherHandler) Current(c *gin.Context) {
	lat, lng, err := weather.ParseCoordinates(c.Query("lat"), c.Query("lng"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	current, err := h.svc.Current(c.Request.Context(), lat, lng)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, current)
}

func (h *WeatherHandler) Forecast(c *gin.Context) {
	lat, lng, err := weather.ParseCoordinates(c.Query("lat"), c.Query("lng"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	forecast, err := h.svc.Forecast(c.Request.Context(), lat, lng)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, forecast)
}
