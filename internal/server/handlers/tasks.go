package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/service/tasks"
)

// TaskHandler serves /api/tasks.
type TaskHandler struct {
	svc    *tasks.Service
	logger *zap.Logger
}

// NewTaskHandler constructs the task endpoints.
func NewTaskHandler(svc *tasks.Service, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{svc: svc, logger: logger}
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	task, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, task)
}

func (h *TaskHandler) ListByCrop(c *gin.Context) {
	list, err := h.svc.ListByCrop(c.Request.Context(), c.Param("cropId"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, list)
}

func (h *TaskHandler) ListByUser(c *gin.Context) {
	var completed *bool
	if raw, ok := c.GetQuery("completed"); ok && raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fail(c, h.logger, fmt.Errorf("%w: completed must be true or false", models.ErrInvalidInput))
			return
		}
		completed = &v
	}

	list, err := h.svc.ListByUser(c.Request.Context(), c.Param("uid"), completed)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respondList(c, list)
}

func (h *TaskHandler) Update(c *gin.Context) {
	var req models.UpdateTaskRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	task, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// Complete marks a task done; {"completed": false} reopens it.
func (h *TaskHandler) Complete(c *gin.Context) {
	var req models.CompleteTaskRequest
	if err := bindJSON(c, &req, true); err != nil {
		fail(c, h.logger, err)
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	task, err := h.svc.SetCompleted(c.Request.Context(), c.Param("id"), completed)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.logger, err)
		return
	}
	respondMessage(c, "task deleted")
}
