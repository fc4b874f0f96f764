package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/middleware"
	"github.com/yukikurage/teamtask/internal/ratelimit"
	"github.com/yukikurage/teamtask/internal/services"
	"go.uber.org/zap"
)

// Services bundles what the HTTP layer needs to serve every route.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Tasks         *services.TaskService
	Teams         *services.TeamService
	WorkPackages  *services.WorkPackageService
	Notifications *services.NotificationService
}

// NewRouter builds the gin engine with every route registered.
// limiter may be nil to disable rate limiting.
func NewRouter(svc Services, limiter ratelimit.Limiter, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log))

	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users)
	taskHandler := NewTaskHandler(svc.Tasks)
	teamHandler := NewTeamHandler(svc.Teams)
	wpHandler := NewWorkPackageHandler(svc.WorkPackages)
	notificationHandler := NewNotificationHandler(svc.Notifications)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "teamtask API is running",
		})
	})

	api := r.Group("/api")

	// Auth routes (public), limited per client IP
	auth := api.Group("/auth")
	if limiter != nil {
		auth.Use(middleware.RateLimit(limiter, log))
	}
	{
		auth.POST("/local", authHandler.Login)
		auth.POST("/local/register", authHandler.Register)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(svc.Auth))
	// Runs after RequireAuth so callers are limited per user.
	if limiter != nil {
		protected.Use(middleware.RateLimit(limiter, log))
	}

	users := protected.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/me", authHandler.GetCurrentUser)
		users.PUT("/:id", middleware.RequireID(), userHandler.UpdateUser)
	}

	tasks := protected.Group("/project-tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.POST("/suggest-work-packages", taskHandler.SuggestWorkPackages)
		tasks.GET("/:id", middleware.RequireID(), taskHandler.GetTask)
		tasks.PUT("/:id", middleware.RequireID(), taskHandler.UpdateTask)
		tasks.DELETE("/:id", middleware.RequireID(), taskHandler.DeleteTask)
	}

	teams := protected.Group("/teams")
	{
		teams.GET("", teamHandler.ListTeams)
		teams.POST("", teamHandler.CreateTeam)
		teams.GET("/:id", middleware.RequireID(), teamHandler.GetTeam)
		teams.PUT("/:id", middleware.RequireID(), teamHandler.UpdateTeam)
		teams.DELETE("/:id", middleware.RequireID(), teamHandler.DeleteTeam)
	}

	workPackages := protected.Group("/work-packages")
	{
		workPackages.GET("", wpHandler.ListWorkPackages)
		workPackages.POST("", wpHandler.CreateWorkPackage)
		workPackages.GET("/:id", middleware.RequireID(), wpHandler.GetWorkPackage)
		workPackages.PUT("/:id", middleware.RequireID(), wpHandler.UpdateWorkPackage)
		workPackages.DELETE("/:id", middleware.RequireID(), wpHandler.DeleteWorkPackage)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", notificationHandler.ListNotifications)
		notifications.POST("", notificationHandler.CreateNotification)
		notifications.GET("/:id", middleware.RequireID(), notificationHandler.GetNotification)
		notifications.PUT("/:id", middleware.RequireID(), notificationHandler.UpdateNotification)
		notifications.DELETE("/:id", middleware.RequireID(), notificationHandler.DeleteNotification)
	}

	protected.DELETE("/notification-tokens", notificationHandler.DeleteNotificationTokens)

	return r
}
