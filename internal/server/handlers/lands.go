package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/service/lands"
	"github.com/mamadbah2/farmhub/internal/service/plots"
)

// LandHandler serves /api/lands and /api/plots.
type LandHandler struct {
	lands  *lands.Service
	plots  *plots.Service
	logger *zap.Logger
}

// NewLandHandler constructs the land and plot endpoints.
func NewLandHandler(landSvc *lands.Service, plotSvc *plots.Service, logger *zap.Logger) *LandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LandHandler{lands: landSvc, plots: plotSvc, logger: logger}
}

func (h *LandHandler) Create(c *gin.Context) {
	var req models.CreateLandRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	land, err := h.lands.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, land)
}

func (h *LandHandler) ListByUser(c *gin.Context) {
	list, err := h.lands.ListByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, list)
}

func (h *LandHandler) Get(c *gin.Context) {
	land, err := h.lands.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, land)
}

func (h *LandHandler) Update(c *gin.Context) {
	var req models.UpdateLandRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	land, err := h.lands.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, land)
}

func (h *LandHandler) Delete(c *gin.Context) {
	land, err := h.lands.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, land)
}

func (h *LandHandler) DividePlots(c *gin.Context) {
	var req models.DividePlotsRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	list, err := h.plots.Divide(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, envelope{Success: true, Data: list, Count: intPtr(len(list))})
}

func (h *LandHandler) ListPlots(c *gin.Context) {
	list, err := h.plots.ListByLand(c.Request.Context(), c.Param("landId"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, list)
}

func (h *LandHandler) GetPlot(c *gin.Context) {
	plot, err := h.plots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, plot)
}

func (h *LandHandler) UpdatePlot(c *gin.Context) {
	var req models.UpdatePlotRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	plot, err := h.plots.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, plot)
}

func (h *LandHandler) DeletePlot(c *gin.Context) {
	if err := h.plots.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.logger, err)
		return
	}
	respondMessage(c, "plot deleted")
}

func intPtr(v int) *int { return &v }
