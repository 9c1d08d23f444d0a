package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetProjectStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stats, err := h.svc.Projects.Stats(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RecomputeProject forces a project's aggregate to be rederived from its tasks.
func (h *Handler) RecomputeProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	project, err := h.svc.Projects.Recompute(c.Request.Context(), id, "mutation")
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
