package router

import (
	"github.com/cuongbtq/hirenest-be/internal/api/authn"
	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/handler"
	"github.com/cuongbtq/hirenest-be/internal/api/metrics"
	"github.com/gin-gonic/gin"
)

const serviceName = "hirenest-api-service"

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())
	r.Use(metrics.GinMiddleware())

	r.GET("/health", handler.NewHealthHandler(deps, serviceName).Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	requireAuth := deps.Verifier.Middleware()
	optionalAuth := deps.Verifier.OptionalMiddleware()
	admins := authn.RequireRole(domain.RoleAdmin)
	recruiters := authn.RequireRole(domain.RoleRecruiter, domain.RoleAdmin)
	seekers := authn.RequireRole(domain.RoleSeeker)

	if deps.Hub != nil {
		r.GET("/ws", optionalAuth, deps.Hub.ServeWS)
	}

	jobHandler := handler.NewJobHandler(deps)
	applicationHandler := handler.NewApplicationHandler(deps)
	adminHandler := handler.NewAdminHandler(deps)
	notificationHandler := handler.NewNotificationHandler(deps)
	contactHandler := handler.NewContactHandler(deps)
	userHandler := handler.NewUserHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/recruiter/me", requireAuth, recruiters, jobHandler.ListMyJobs)
			jobs.GET("/:id", optionalAuth, jobHandler.GetJob)
			jobs.POST("", requireAuth, recruiters, jobHandler.CreateJob)
			jobs.PUT("/:id", requireAuth, recruiters, jobHandler.UpdateJob)
			jobs.DELETE("/:id", requireAuth, recruiters, jobHandler.DeleteJob)
		}

		// Role checks for apply and status updates live in the lifecycle
		// so missing jobs report 404 before ownership is considered
		applications := v1.Group("/applications", requireAuth)
		{
			applications.POST("/apply/:jobId", applicationHandler.Apply)
			applications.GET("/job/:jobId", recruiters, applicationHandler.ListForJob)
			applications.GET("/me", seekers, applicationHandler.ListMine)
			applications.GET("/recruiter/me", recruiters, applicationHandler.ListForRecruiter)
			applications.PUT("/:id/status", applicationHandler.UpdateStatus)
		}

		admin := v1.Group("/admin", requireAuth, admins)
		{
			admin.POST("/jobs/:id/approve", adminHandler.ApproveJob)
			admin.GET("/jobs/pending", adminHandler.ListPendingJobs)
			admin.GET("/notifications", notificationHandler.List)
			admin.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			admin.GET("/messages", adminHandler.ListMessages)
			admin.PATCH("/messages/:id/read", adminHandler.MarkMessageRead)
		}

		notifications := v1.Group("/notifications", requireAuth, admins)
		{
			notifications.GET("/admin", notificationHandler.List)
			notifications.GET("/admin/unread-count", notificationHandler.UnreadCount)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		}

		v1.POST("/contact", optionalAuth, contactHandler.Create)
		v1.GET("/users/:id/for-recruiter", requireAuth, userHandler.ForRecruiter)
	}

	return r
}
