package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/headless-pm/progress-tracker/internal/auth"
	"github.com/headless-pm/progress-tracker/internal/service"
)

// Handler serves the REST surface over the domain services.
type Handler struct {
	svc *service.Services
	log *slog.Logger
}

func NewHandler(svc *service.Services) *Handler {
	return &Handler{
		svc: svc,
		log: slog.Default().With("layer", "api"),
	}
}

// parseID reads a positive numeric path parameter. It writes the 400 itself
// and reports false when the parameter is unusable.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func actor(c *gin.Context) (service.Actor, bool) {
	a, ok := auth.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	}
	return a, ok
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError maps a service error onto a status code. Unexpected errors are
// logged and answered with a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	var allClaimed *service.AllClaimedError
	switch {
	case errors.As(err, &allClaimed):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "All requested subtasks are already claimed",
			"rejected": allClaimed.Rejected,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	case errors.Is(err, service.ErrClaimConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Claims changed concurrently, try again"})
	default:
		h.log.Error("request:failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"requestID", c.GetString(requestIDKey),
			"err", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
