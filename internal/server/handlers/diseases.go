package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/service/diseases"
)

// MaxImageBytes bounds uploaded leaf images.
const MaxImageBytes = 10 << 20

// DiseaseHandler serves /api/diseases.
type DiseaseHandler struct {
	svc    *diseases.Service
	logger *zap.Logger
}

// NewDiseaseHandler constructs the disease endpoints.
func NewDiseaseHandler(svc *diseases.Service, logger *zap.Logger) *DiseaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiseaseHandler{svc: svc, logger: logger}
}

func (h *DiseaseHandler) Create(c *gin.Context) {
	var req models.CreateDiseaseRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	disease, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, disease)
}

func (h *DiseaseHandler) ListByCrop(c *gin.Context) {
	list, err := h.svc.ListByCrop(c.Request.Context(), c.Param("cropId"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, list)
}

func (h *DiseaseHandler) ListByUser(c *gin.Context) {
	list, err := h.svc.ListByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, list)
}

func (h *DiseaseHandler) Update(c *gin.Context) {
	var req models.UpdateDiseaseRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	disease, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, disease)
}

func (h *DiseaseHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateDiseaseStatusRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	disease, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, disease)
}

func (h *DiseaseHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.logger, err)
		return
	}
	respondMessage(c, "disease deleted")
}

// Detect accepts multipart field "image" plus optional cropId and persist.
func (h *DiseaseHandler) Detect(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		fail(c, h.logger, fmt.Errorf("%w: image file is required", models.ErrInvalidInput))
		return
	}
	if header.Size > MaxImageBytes {
		fail(c, h.logger, fmt.Errorf("%w: image exceeds %d bytes", models.ErrInvalidInput, MaxImageBytes))
		return
	}

	persist := false
	if raw := c.PostForm("persist"); raw != "" {
		persist, err = strconv.ParseBool(raw)
		if err != nil {
			fail(c, h.logger, fmt.Errorf("%w: persist must be true or false", models.ErrInvalidInput))
			return
		}
	}

	file, err := header.Open()
	if err != nil {
		fail(c, h.logger, fmt.Errorf("%w: unreadable image: %v", models.ErrInvalidInput, err))
		return
	}
	defer file.Close()

	result, err := h.svc.Detect(c.Request.Context(), diseases.DetectRequest{
		Filename: header.Filename,
		Image:    file,
		CropID:   c.PostForm("cropId"),
		Persist:  persist,
	})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, result)
}
