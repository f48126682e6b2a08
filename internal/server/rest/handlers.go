package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/logging"
	"github.com/dmitrijs2005/reelsync/internal/server/services"
	"github.com/dmitrijs2005/reelsync/internal/wire"
	"github.com/gin-gonic/gin"
)

type SyncService interface {
	Sync(ctx context.Context, callerID string, req wire.SyncRequest) (wire.SyncResponse, error)
	Projects(ctx context.Context, userID string) ([]wire.Project, error)
}

type UserService interface {
	Register(ctx context.Context, email, password, username string) (*wire.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*wire.AuthResponse, error)
}

type Handler struct {
	sync   SyncService
	users  UserService
	logger logging.Logger
}

func NewHandler(s SyncService, u UserService, l logging.Logger) *Handler {
	return &Handler{sync: s, users: u, logger: l.With("module", "http_handler")}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, wire.ErrorResponse{Error: msg})
}

func (h *Handler) internal(c *gin.Context, op string, err error) {
	h.logger.Error(c.Request.Context(), op+" failed", "error", err)
	abort(c, http.StatusInternalServerError, "internal error")
}

func (h *Handler) Sync(c *gin.Context) {
	var req wire.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json body")
		return
	}

	resp, err := h.sync.Sync(c.Request.Context(), UserIDFromContext(c), req)
	switch {
	case errors.Is(err, common.ErrValidation):
		h.logger.Warn(c.Request.Context(), "sync rejected", "reason", err)
		c.JSON(http.StatusUnprocessableEntity, services.Rejection(err))
	case err != nil:
		h.internal(c, "sync", err)
	default:
		c.JSON(http.StatusOK, resp)
	}
}

func (h *Handler) Projects(c *gin.Context) {
	userID := UserIDFromContext(c)
	if userID == "" {
		abort(c, http.StatusUnauthorized, "missing token")
		return
	}

	list, err := h.sync.Projects(c.Request.Context(), userID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		abort(c, http.StatusNotFound, "user not found")
	case err != nil:
		h.internal(c, "list projects", err)
	default:
		c.JSON(http.StatusOK, gin.H{"projects": list})
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req wire.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json body")
		return
	}

	resp, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.Username)
	switch {
	case errors.Is(err, common.ErrConflict):
		abort(c, http.StatusConflict, "email already registered")
	case errors.Is(err, common.ErrValidation):
		abort(c, http.StatusBadRequest, err.Error())
	case err != nil:
		h.internal(c, "register", err)
	default:
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req wire.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json body")
		return
	}

	resp, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		abort(c, http.StatusUnauthorized, "wrong email or password")
	case err != nil:
		h.internal(c, "login", err)
	default:
		c.JSON(http.StatusOK, resp)
	}
}
