package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/service/users"
)

// UserHandler serves /api/users.
type UserHandler struct {
	svc    *users.Service
	logger *zap.Logger
}

// NewUserHandler constructs the user endpoints.
func NewUserHandler(svc *users.Service, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{svc: svc, logger: logger}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	user, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

func (h *UserHandler) GetByUID(c *gin.Context) {
	user, err := h.svc.GetByUID(c.Request.Context(), c.Param("uid"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, h.logger, err)
		return
	}
	user, err := h.svc.Update(c.Request.Context(), c.Param("uid"), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, user)
}
