package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/service/advisor"
)

// AIHandler serves /api/ai.
type AIHandler struct {
	svc    *advisor.Service
	logger *zap.Logger
}

// NewAIHandler constructs the assistant endpoints.
func NewAIHandler(svc *advisor.Service, logger *zap.Logger) *AIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIHandler{svc: svc, logger: logger}
}

func (h *AIHandler) CropRecommendations(c *gin.Context) {
	var req models.CropRecommendationRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	out, err := h.svc.RecommendCrops(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *AIHandler) Ask(c *gin.Context) {
	var req models.AskRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	out, err := h.svc.Ask(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *AIHandler) PesticideRecommendations(c *gin.Context) {
	var req models.PesticideRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	out, err := h.svc.RecommendPesticides(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, out)
}
