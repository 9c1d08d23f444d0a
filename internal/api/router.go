package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/headless-pm/progress-tracker/internal/auth"
	"github.com/headless-pm/progress-tracker/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Verifier       auth.Verifier
	AllowedOrigins []string
}

func SetupRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(slog.Default().With("layer", "http")))
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api", auth.AuthMiddleware(cfg.Verifier))
	{
		projects := api.Group("/projects")
		{
			projects.GET("", handler.ListProjects)
			projects.GET("/:id", handler.GetProject)
			projects.GET("/:id/stats", handler.GetProjectStats)
			projects.POST("", auth.ManagersOnly(), handler.CreateProject)
			projects.PUT("/:id", auth.ManagersOnly(), handler.UpdateProject)
			projects.DELETE("/:id", auth.ManagersOnly(), handler.DeleteProject)
			projects.POST("/:id/recompute", auth.ManagersOnly(), handler.RecomputeProject)

			projects.POST("/:id/tasks", auth.ManagersOnly(), handler.AddProjectTask)
			projects.PUT("/:id/tasks/:taskId", auth.StaffOnly(), handler.UpdateProjectTask)
			projects.DELETE("/:id/tasks/:taskId", auth.ManagersOnly(), handler.RemoveProjectTask)
			projects.POST("/:id/tasks/:taskId/hours", auth.StaffOnly(), handler.LogHours)
			projects.POST("/:id/tasks/:taskId/comments", handler.AddProjectTaskComment)

			projects.POST("/:id/milestones", auth.ManagersOnly(), handler.AddMilestone)
			projects.POST("/:id/comments", handler.AddProjectComment)
			projects.POST("/:id/files", handler.AddProjectFile)
		}

		tasks := api.Group("/tasks")
		{
			tasks.POST("", auth.ManagersOnly(), handler.CreateTask)
			tasks.GET("", handler.ListTasks)
			tasks.GET("/:id", handler.GetTask)
			tasks.PUT("/:id/subtasks/:index", auth.StaffOnly(), handler.SetSubtask)
		}

		daily := api.Group("/daily-tasks")
		{
			daily.POST("/claim", auth.StaffOnly(), handler.ClaimSubtasks)
			daily.GET("/claimed/:taskId", handler.ClaimedSubtasks)
			daily.GET("/mine", handler.MyReport)
			daily.POST("/:reportId/submit", auth.StaffOnly(), handler.SubmitReport)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", handler.GetNotifications)
			notifications.POST("/read-all", handler.MarkAllNotificationsRead)
		}

		leave := api.Group("/leave-requests")
		{
			leave.POST("", handler.RequestLeave)
			leave.GET("", handler.ListLeave)
			leave.POST("/:id/review", auth.ManagersOnly(), handler.ReviewLeave)
		}

		standups := api.Group("/standups")
		{
			standups.POST("", handler.SubmitStandup)
			standups.GET("", handler.ListStandups)
		}

		users := api.Group("/users", auth.ManagersOnly())
		{
			users.GET("", handler.ListUsers)
			users.GET("/:id", handler.GetUser)
			users.POST("", auth.RequireRole(models.UserRoleAdmin), handler.CreateUser)
		}
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AddAllowHeaders("Authorization", requestIDHeader)
	cfg.AddExposeHeaders(requestIDHeader)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
