package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hr-task-review-api/internal/middleware"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/services"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Identity      *services.IdentityService
	Auth          *services.AuthService
	Workspaces    *services.WorkspaceService
	Tasks         *services.TaskService
	Submissions   *services.SubmissionService
	Reviews       *services.ReviewService
	Notifications *services.NotificationService
	Performance   *services.PerformanceService
}

// Health reports that the process is serving
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "HR Task Review API is running",
	})
}

// RegisterRoutes mounts the health check and the /api tree on r.
// Session middleware must already be installed.
func RegisterRoutes(r *gin.Engine, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	workspaceHandler := NewWorkspaceHandler(svc.Workspaces)
	taskHandler := NewTaskHandler(svc.Tasks)
	submissionHandler := NewSubmissionHandler(svc.Submissions, svc.Reviews)
	insightsHandler := NewInsightsHandler(svc.Notifications, svc.Performance)

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	reviewers := middleware.RequireRole(models.RoleAdmin, models.RoleManager)

	r.GET("/health", Health)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth())
		{
			workspaces.POST("", workspaceHandler.CreateWorkspace)
			workspaces.GET("", workspaceHandler.ListWorkspaces)
			workspaces.POST("/join", workspaceHandler.JoinWorkspace)
		}

		ws := workspaces.Group("/:workspace_id")
		ws.Use(middleware.RequireWorkspaceMember(svc.Identity))
		{
			ws.GET("", workspaceHandler.GetWorkspace)
			ws.PATCH("/members/:user_id", adminOnly, workspaceHandler.UpdateMember)
			ws.DELETE("/members/:user_id", adminOnly, workspaceHandler.RemoveMember)
			ws.POST("/regenerate-code", adminOnly, workspaceHandler.RegenerateInviteCode)

			ws.GET("/tasks", taskHandler.ListTasks)
			ws.POST("/tasks", taskHandler.CreateTask)
			ws.GET("/tasks/stats", reviewers, taskHandler.TaskStats)
			ws.POST("/tasks/draft", taskHandler.DraftTasks)
			ws.GET("/tasks/:task_id", taskHandler.GetTask)
			ws.PATCH("/tasks/:task_id", taskHandler.UpdateTask)
			ws.PUT("/tasks/:task_id/status", taskHandler.UpdateStatus)
			ws.DELETE("/tasks/:task_id", taskHandler.DeleteTask)
			ws.POST("/tasks/:task_id/submission", submissionHandler.Submit)

			ws.GET("/submissions/:submission_id", submissionHandler.GetSubmission)
			ws.GET("/submissions/:submission_id/escalation", submissionHandler.GetEscalation)
			ws.POST("/submissions/:submission_id/review", reviewers, submissionHandler.Review)
			ws.GET("/review-queue", reviewers, submissionHandler.ReviewQueue)

			ws.GET("/notifications", insightsHandler.Notifications)
			ws.GET("/performance", insightsHandler.Performance)
		}
	}
}
