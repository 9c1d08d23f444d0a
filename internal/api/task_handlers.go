package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/headless-pm/progress-tracker/internal/service"
)

func (h *Handler) CreateTask(c *gin.Context) {
	var req service.CreateTaskInput
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.svc.Tasks.CreateTask(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(c *gin.Context) {
	var projectID *uint
	if q := c.Query("project_id"); q != "" {
		id, err := strconv.ParseUint(q, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id"})
			return
		}
		pid := uint(id)
		projectID = &pid
	}
	var st *models.WorkStatus
	if q := c.Query("status"); q != "" {
		s := models.WorkStatus(q)
		st = &s
	}

	tasks, err := h.svc.Tasks.ListTasks(c.Request.Context(), projectID, st)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := h.svc.Tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type subtaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (h *Handler) SetSubtask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid index"})
		return
	}
	var req subtaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.svc.Tasks.SetSubtaskCompleted(c.Request.Context(), id, index, *req.Completed)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
