package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"ascend/internal/config"
	"ascend/internal/handlers"
	"ascend/internal/middleware"
	"ascend/internal/pdf"
	"ascend/internal/repositories"
	"ascend/internal/routes"
	"ascend/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	_ "ascend/docs"
)

const cleanupInterval = 6 * time.Hour

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	middleware.SetJWTSecret(cfg.JWT.Secret)

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)
	trainingRepo := repositories.NewTrainingRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.AllowedDomains)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	userService := services.NewUserService(userRepo, emailService, authService)
	sessionService := services.NewSessionService(sessionRepo)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, emailService, authService)
	trainingService := services.NewTrainingService(trainingRepo)

	if err := trainingService.SeedTemplates(); err != nil {
		log.Printf("[app] template seeding failed: %v", err)
	}

	reports := pdf.NewReportGenerator()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, resetService)
	userHandler := handlers.NewUserHandler(userService)
	sessionHandler := handlers.NewSessionHandler(sessionService, userService, reports)
	gradeHandler := handlers.NewGradeHandler()
	trainingHandler := handlers.NewTrainingHandler(trainingService)

	// Expired and consumed reset codes are purged on a fixed interval.
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			n, err := resetService.Cleanup(time.Now())
			if err != nil {
				log.Printf("[app] reset code cleanup failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[app] reset code cleanup removed %d rows", n)
			}
		}
	}()

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware(cfg.Server.FrontendURL))

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		sessionHandler,
		gradeHandler,
		trainingHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Server failed: ", err)
	}
}

func corsMiddleware(frontendURL string) gin.HandlerFunc {
	origin := frontendURL
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
