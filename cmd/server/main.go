package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"landlordhq/internal/auth"
	"landlordhq/internal/database"
	"landlordhq/internal/handlers"
	"landlordhq/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	// CORS for the dashboard frontend
	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("X-Cron-Secret")
	router.Use(cors.New(corsConfig))

	// Start the background reminder worker
	worker := services.NewReminderWorker(database.GetDB(), services.NewEmailService(), 4)
	worker.Start(context.Background())

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// Auth routes (no auth required)
	router.POST("/auth/register", handlers.Register)
	router.POST("/auth/login", handlers.Login)

	// External cron trigger (shared-secret guarded)
	router.POST("/reminders/run", handlers.RunReminderPass(worker.Scheduler()))

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/auth/logout", handlers.Logout)
		protected.GET("/auth/me", handlers.GetCurrentUser)
		protected.PATCH("/auth/reminders", handlers.UpdateReminderSettings)

		protected.POST("/properties", handlers.CreateProperty)
		protected.GET("/properties", handlers.GetProperties)
		protected.GET("/properties/:property_id", handlers.GetPropertyByID)
		protected.PATCH("/properties/:property_id", handlers.UpdateProperty)

		protected.POST("/tenancies", handlers.CreateTenancy)
		protected.GET("/tenancies", handlers.GetTenancies)
		protected.GET("/tenancies/:tenancy_id", handlers.GetTenancyByID)
		protected.POST("/tenancies/:tenancy_id/end", handlers.EndTenancy)
		protected.POST("/tenancies/:tenancy_id/documents/:document_type/served", handlers.MarkDocumentServed)

		protected.POST("/certificates", handlers.CreateCertificate)
		protected.GET("/certificates", handlers.GetCertificates)
		protected.POST("/certificates/:certificate_id/document", handlers.UploadCertificateDocument)

		protected.GET("/timeline", handlers.GetTimeline)
		protected.GET("/reminders/preview", handlers.GetRemindersPreview)
	}

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Server starting on port %s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
