package routes

import (
	"github.com/gin-gonic/gin"

	"syllabus-approval-api/controllers"
	"syllabus-approval-api/middleware"
	"syllabus-approval-api/models"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Syllabus Approval API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/logout", controllers.Logout)
			protected.POST("/logout-all", controllers.LogoutAll)

			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Syllabi
			syllabi := protected.Group("/syllabi")
			{
				syllabi.GET("", controllers.GetSyllabi)
				syllabi.GET("/:id", controllers.GetSyllabus)
				syllabi.GET("/:id/timeline", controllers.GetSyllabusTimeline)
				syllabi.GET("/:id/versions", controllers.GetSyllabusVersions)
				syllabi.GET("/:id/comments", controllers.GetSyllabusComments)
				syllabi.GET("/:id/download", controllers.DownloadSyllabus)

				// Only faculty submit (initial upload or revised version)
				syllabi.POST("", middleware.RequireCapability(models.CapabilitySubmit), controllers.SubmitSyllabus)

				// Chain roles decide
				syllabi.POST("/:id/approve",
					middleware.RequireCapability(models.CapabilityApprove),
					controllers.ApproveSyllabus)
				syllabi.POST("/:id/request-revision",
					middleware.RequireCapability(models.CapabilityRequestRevision),
					controllers.RequestSyllabusRevision)
			}

			// Approval queue
			approvals := protected.Group("/approvals")
			approvals.Use(middleware.RequireRole(
				models.RoleDeptHead, models.RoleDean, models.RoleCITLDirector, models.RoleVPAA))
			{
				approvals.GET("/queue", controllers.GetApprovalQueue)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", controllers.GetDashboardStats)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/unread-count", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Admin console
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/syllabi", controllers.GetSyllabi)
				admin.GET("/users", controllers.GetUsers)
				admin.POST("/users", controllers.CreateUser)
				admin.PUT("/users/:id", controllers.UpdateUser)
				admin.DELETE("/users/:id", controllers.DeleteUser)
			}
		}
	}
}
