package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ascend/internal/handlers"
	"ascend/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	sessionHandler *handlers.SessionHandler,
	gradeHandler *handlers.GradeHandler,
	trainingHandler *handlers.TrainingHandler,
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	// ---- public
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/forgot-password", middleware.ForgotPasswordRateLimit(), authHandler.ForgotPassword)
		auth.POST("/verify-reset-code", authHandler.VerifyResetCode)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// ---- protected
	api.Use(middleware.AuthMiddleware())

	api.GET("/auth/validate", authHandler.Validate)
	api.GET("/grades", gradeHandler.List)

	users := api.Group("/users")
	{
		users.GET("/me", userHandler.Me)
		users.GET("/:id", userHandler.GetByID)
	}

	sessions := api.Group("/sessions")
	{
		sessions.POST("", sessionHandler.Create)
		sessions.GET("", sessionHandler.List)
		sessions.GET("/analytics", sessionHandler.Analytics)
		sessions.GET("/analytics/progress", sessionHandler.Progress)
		sessions.GET("/grades/highest", sessionHandler.HighestGrades)
		sessions.GET("/grades/average", sessionHandler.AverageGrades)
		sessions.GET("/export", sessionHandler.Export)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.PUT("/:id", sessionHandler.Replace)
		sessions.PATCH("/:id", sessionHandler.Update)
		sessions.DELETE("/:id", sessionHandler.Delete)
	}

	training := api.Group("/training")
	{
		training.GET("/templates", trainingHandler.ListTemplates)
		training.POST("/user-plans", trainingHandler.StartPlan)
		training.GET("/user-plans", trainingHandler.ListPlans)
		training.GET("/user-plans/active", trainingHandler.ActivePlan)
		training.GET("/user-plans/:id", trainingHandler.PlanDetails)
		training.POST("/user-plans/:id/sessions/:sessionId/complete", trainingHandler.CompleteSession)
		training.POST("/user-plans/:id/pause", trainingHandler.PausePlan)
		training.POST("/user-plans/:id/resume", trainingHandler.ResumePlan)
	}

	return r
}
