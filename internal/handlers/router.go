package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/foto-parana/contest-service/internal/services"
	"github.com/foto-parana/contest-service/internal/utils"
	"github.com/foto-parana/contest-service/internal/validator"
)

type HandlerManager struct {
	userHandler    *UserHandler
	imageHandler   *ImageHandler
	ratingHandler  *RatingHandler
	reportHandler  *ReportHandler
	authMiddleware *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		userHandler:    NewUserHandler(serviceManager.User(), validator, logger),
		imageHandler:   NewImageHandler(serviceManager.Image(), validator, logger),
		ratingHandler:  NewRatingHandler(serviceManager.Rating(), validator, logger),
		reportHandler:  NewReportHandler(serviceManager.Report(), logger),
		authMiddleware: NewJWTAuthMiddleware(serviceManager.User()),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Public routes: registration and login need no session
		v1.POST("/users", hm.userHandler.Register)
		v1.POST("/users/login", hm.userHandler.Login)

		authed := v1.Group("")
		authed.Use(hm.authMiddleware.AuthMiddleware())
		{
			// Session check for API consumers
			authed.GET("/auth/validate", hm.userHandler.ValidateToken)

			// User routes
			users := authed.Group("/users")
			{
				users.GET("", hm.userHandler.ListUsers)
				users.GET("/:id", hm.userHandler.GetUser)
				users.PUT("/:id", hm.userHandler.UpdateUser)
				users.DELETE("/:id", hm.userHandler.DeleteUser)
				users.GET("/:id/file", hm.userHandler.GetUserFile)
				users.GET("/:id/images", hm.imageHandler.GetUserImages)

				// Jury onboarding - evaluators only
				users.POST("/invite", hm.authMiddleware.RequireEvaluator(), hm.userHandler.InviteUser)
			}

			// Image routes
			images := authed.Group("/images")
			{
				images.POST("", hm.imageHandler.UploadImage)
				images.GET("", hm.imageHandler.ListImages)
				images.GET("/:id", hm.imageHandler.GetImage)
				images.GET("/:id/data", hm.imageHandler.GetImageData)
				images.PUT("/:id", hm.imageHandler.UpdateImage)
				images.DELETE("/:id", hm.imageHandler.DeleteImage)

				// Legacy per-image scoring - evaluators only
				images.POST("/:id/rate", hm.authMiddleware.RequireEvaluator(), hm.ratingHandler.RateImage)
				images.GET("/:id/rate", hm.authMiddleware.RequireEvaluator(), hm.ratingHandler.GetImageRating)
				images.GET("/ratings", hm.authMiddleware.RequireEvaluator(), hm.ratingHandler.ListImageRatings)
			}

			// Rating routes - evaluators only
			ratings := authed.Group("/ratings")
			ratings.Use(hm.authMiddleware.RequireEvaluator())
			{
				ratings.POST("", hm.ratingHandler.SubmitRatings)
				ratings.PUT("/overwrite", hm.ratingHandler.OverwriteRatings)
				ratings.GET("", hm.ratingHandler.GetRatings)
			}

			// Report routes - evaluators only
			reports := authed.Group("/reports")
			reports.Use(hm.authMiddleware.RequireEvaluator())
			{
				reports.GET("/user-media", hm.reportHandler.GetUserMedia)
				reports.GET("/user-media/export", hm.reportHandler.ExportUserMedia)
				reports.GET("/users/:id/average", hm.reportHandler.GetUserCategoryAverage)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "contest-service",
		})
	})
}
