package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/service/crops"
	"github.com/mamadbah2/farmhub/internal/service/reporting"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CropHandler serves /api/crops.
type CropHandler struct {
	svc     *crops.Service
	reports *reporting.Service
	logger  *zap.Logger
}

// NewCropHandler constructs the crop endpoints.
func NewCropHandler(svc *crops.Service, reports *reporting.Service, logger *zap.Logger) *CropHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CropHandler{svc: svc, reports: reports, logger: logger}
}

func (h *CropHandler) Create(c *gin.Context) {
	var req models.CreateCropRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	crop, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, crop)
}

func (h *CropHandler) ListByUser(c *gin.Context) {
	list, err := h.svc.ListByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, list)
}

func (h *CropHandler) ListByLand(c *gin.Context) {
	list, err := h.svc.ListByLand(c.Request.Context(), c.Param("landId"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, list)
}

func (h *CropHandler) Details(c *gin.Context) {
	details, err := h.svc.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, details)
}

func (h *CropHandler) Update(c *gin.Context) {
	var req models.UpdateCropRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	crop, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, crop)
}

func (h *CropHandler) Harvest(c *gin.Context) {
	var req models.HarvestCropRequest
	if err := bindJSON(c, &req, true); err != nil {
		fail(c, h.logger, err)
		return
	}
	crop, err := h.svc.Harvest(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, crop)
}

func (h *CropHandler) SetStage(c *gin.Context) {
	var req models.UpdateStageRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	crop, err := h.svc.SetStage(c.Request.Context(), c.Param("id"), req.Stage)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, crop)
}

func (h *CropHandler) Delete(c *gin.Context) {
	crop, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, crop)
}

// Export downloads the user's crops as an xlsx workbook.
func (h *CropHandler) Export(c *gin.Context) {
	uid := c.Param("uid")

	var buf bytes.Buffer
	if err := h.reports.ExportCrops(c.Request.Context(), uid, &buf); err != nil {
		fail(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", reporting.ExportFilename(uid, time.Now())))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
