package routes

import (
	"accountability-api/controllers"
	"accountability-api/middleware"
	"accountability-api/models"

	"github.com/gin-gonic/gin"
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
					"message": "Accountability API is running",
				})
			})

			// Public company directory
			public.GET("/companies", controllers.ListCompanies)
			public.GET("/companies/:slug", controllers.GetCompanyBySlug)
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Participation gate status
			protected.GET("/gate", controllers.GetGateStatus)

			// Evidence submissions
			evidence := protected.Group("/evidence")
			{
				evidence.POST("", controllers.CreateEvidence)
				evidence.GET("", controllers.GetMyEvidence)
				evidence.GET("/:id", controllers.GetEvidence)
			}

			// Company requests
			companyRequests := protected.Group("/company-requests")
			{
				companyRequests.POST("", controllers.CreateCompanyRequest)
				companyRequests.GET("", controllers.GetMyCompanyRequests)
			}

			// Leader tenure change requests
			tenureRequests := protected.Group("/tenure-requests")
			{
				tenureRequests.POST("", controllers.CreateTenureRequest)
				tenureRequests.GET("", controllers.GetMyTenureRequests)
			}

			// Moderation queue (moderators and admins only)
			moderation := protected.Group("/moderation")
			moderation.Use(middleware.RequireModerator())
			{
				moderation.GET("/queue/stats", controllers.GetQueueStats)
				moderation.POST("/queue/claim", controllers.ClaimNext)
				moderation.GET("/assignment", controllers.GetCurrentAssignment)
				moderation.POST("/decisions/:kind/:id", controllers.Decide)

				// Only admin may trigger the reaper by hand
				moderation.POST("/reaper/run", middleware.RequireRole(models.RoleAdmin), controllers.RunReaper)
			}
		}
	}
}
