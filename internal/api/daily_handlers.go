package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/headless-pm/progress-tracker/internal/service"
)

type claimRequest struct {
	// Date defaults to today.
	Date     string               `json:"date"`
	Subtasks []service.SubtaskRef `json:"subtasks"`
}

// ClaimSubtasks claims subtasks for the caller on a date.
func (h *Handler) ClaimSubtasks(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req claimRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Date == "" {
		req.Date = h.svc.Claims.Today()
	}

	res, err := h.svc.Claims.ReconcileClaims(c.Request.Context(), service.ClaimRequest{
		UserID:   a.ID,
		Date:     req.Date,
		Subtasks: req.Subtasks,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ClaimedSubtasks(c *gin.Context) {
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		date = h.svc.Claims.Today()
	}

	indexes, err := h.svc.Claims.ClaimedSubtasks(c.Request.Context(), taskID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id":         taskID,
		"date":            date,
		"subtask_indexes": indexes,
	})
}

func (h *Handler) MyReport(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	report, err := h.svc.Claims.ReportForDay(c.Request.Context(), a.ID, c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type submitRequest struct {
	Updates []service.ClaimUpdate `json:"updates"`
}

func (h *Handler) SubmitReport(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	reportID, ok := parseID(c, "reportId")
	if !ok {
		return
	}
	var req submitRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.svc.Reports.SubmitReport(c.Request.Context(), a, reportID, req.Updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
