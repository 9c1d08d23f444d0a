package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/headless-pm/progress-tracker/internal/service"
)

func (h *Handler) CreateUser(c *gin.Context) {
	var req service.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Users.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	var role *models.UserRole
	if q := c.Query("role"); q != "" {
		r := models.UserRole(q)
		role = &r
	}
	users, err := h.svc.Users.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) RequestLeave(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.LeaveInput
	if !bindJSON(c, &req) {
		return
	}
	leave, err := h.svc.Leave.Request(c.Request.Context(), a, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, leave)
}

func (h *Handler) ListLeave(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var st *models.LeaveStatus
	if q := c.Query("status"); q != "" {
		s := models.LeaveStatus(q)
		st = &s
	}
	requests, err := h.svc.Leave.List(c.Request.Context(), a, st)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

type reviewRequest struct {
	Decision models.LeaveStatus `json:"decision" binding:"required"`
}

func (h *Handler) ReviewLeave(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	leave, err := h.svc.Leave.Review(c.Request.Context(), a, id, req.Decision)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, leave)
}

func (h *Handler) SubmitStandup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.StandupInput
	if !bindJSON(c, &req) {
		return
	}
	standup, err := h.svc.Standups.Submit(c.Request.Context(), a, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, standup)
}

func (h *Handler) ListStandups(c *gin.Context) {
	standups, err := h.svc.Standups.List(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, standups)
}
