package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/headless-pm/progress-tracker/internal/service"
)

func (h *Handler) CreateProject(c *gin.Context) {
	var req service.CreateProjectInput
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.svc.Projects.CreateProject(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *Handler) ListProjects(c *gin.Context) {
	var st *models.ProjectStatus
	if q := c.Query("status"); q != "" {
		s := models.ProjectStatus(q)
		st = &s
	}
	projects, err := h.svc.Projects.ListProjects(c.Request.Context(), st)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	project, err := h.svc.Projects.GetProject(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateProjectInput
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.svc.Projects.UpdateProject(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Projects.DeleteProject(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

type projectTaskResponse struct {
	Project *models.Project     `json:"project"`
	Task    *models.ProjectTask `json:"task"`
}

func (h *Handler) AddProjectTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.TaskInput
	if !bindJSON(c, &req) {
		return
	}
	project, task, err := h.svc.Projects.AddTask(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projectTaskResponse{Project: project, Task: task})
}

func (h *Handler) UpdateProjectTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}
	var req service.UpdateTaskInput
	if !bindJSON(c, &req) {
		return
	}
	project, task, err := h.svc.Projects.UpdateTask(c.Request.Context(), id, taskID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectTaskResponse{Project: project, Task: task})
}

func (h *Handler) RemoveProjectTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}
	project, err := h.svc.Projects.RemoveTask(c.Request.Context(), id, taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

type logHoursRequest struct {
	Hours float64 `json:"hours" binding:"required"`
}

func (h *Handler) LogHours(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}
	var req logHoursRequest
	if !bindJSON(c, &req) {
		return
	}
	project, task, err := h.svc.Projects.LogHours(c.Request.Context(), id, taskID, req.Hours)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectTaskResponse{Project: project, Task: task})
}

type contentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) AddProjectTaskComment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.svc.Projects.AddTaskComment(c.Request.Context(), id, taskID, a.ID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

type milestoneRequest struct {
	Title   string     `json:"title" binding:"required"`
	DueDate *time.Time `json:"due_date"`
}

func (h *Handler) AddMilestone(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req milestoneRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.Projects.AddMilestone(c.Request.Context(), id, req.Title, req.DueDate)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) AddProjectComment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.svc.Projects.AddComment(c.Request.Context(), id, a.ID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

type fileRequest struct {
	Filename string `json:"filename" binding:"required"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// AddProjectFile records file metadata; the upload itself happens elsewhere.
func (h *Handler) AddProjectFile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req fileRequest
	if !bindJSON(c, &req) {
		return
	}
	file, err := h.svc.Projects.AddFile(c.Request.Context(), id, models.ProjectFile{
		Filename:   req.Filename,
		URL:        req.URL,
		Size:       req.Size,
		MimeType:   req.MimeType,
		UploadedBy: a.ID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}
