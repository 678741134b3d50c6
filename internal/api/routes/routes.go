package routes

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/k12fleet/assetdesk/internal/api/handlers"
	"github.com/k12fleet/assetdesk/internal/api/middleware"
	"github.com/k12fleet/assetdesk/internal/config"
	"github.com/k12fleet/assetdesk/internal/directory"
	"github.com/k12fleet/assetdesk/internal/metrics"
	"github.com/k12fleet/assetdesk/internal/models"
	"github.com/k12fleet/assetdesk/internal/roster"
	"github.com/k12fleet/assetdesk/internal/services"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := db.AutoMigrate(
		&models.AuditSession{},
		&models.AuditPerson{},
		&models.DeviceRecord{},
		&models.Note{},
		&models.Notification{},
		&models.NotificationProvider{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	router.GET("/api/v1/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Services
	notificationService := services.NewNotificationService(db)
	sessionService := services.NewSessionService(db)
	importService := services.NewImportService(db, roster.NewImporter(cfg.ImportMaxRows), notificationService)
	directoryClient := directory.NewClient(cfg.DirectoryBaseURL, cfg.DirectoryAPIKey)
	verificationService := services.NewVerificationService(db, directoryClient, notificationService)
	notesService := services.NewNotesService(db)
	maintenanceService := services.NewMaintenanceService(db)
	healthService := services.NewHealthService(directoryClient)

	// Periodic directory probe. Audit actions themselves are never scheduled;
	// this only keeps the ops status endpoint fresh.
	runner := cron.New()
	if err := healthService.Schedule(runner); err != nil {
		return fmt.Errorf("schedule directory probe: %w", err)
	}
	runner.Start()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		healthService.Check(ctx)
	}()

	api := router.Group("/api/v1")

	systemHandler := handlers.NewSystemHandler(healthService)
	systemHandler.RegisterRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterRoutes(api)

	// Everything below acts on audit state and must be attributable.
	acting := api.Group("/")
	acting.Use(middleware.Identity(cfg.IdentitySecret))
	{
		importHandler := handlers.NewImportHandler(importService, cfg.ImportMaxBytes)
		importHandler.RegisterRoutes(acting)

		sessionHandler := handlers.NewSessionHandler(sessionService)
		sessionHandler.RegisterRoutes(acting)

		verificationHandler := handlers.NewVerificationHandler(verificationService)
		verificationHandler.RegisterRoutes(acting)

		notesHandler := handlers.NewNotesHandler(notesService)
		notesHandler.RegisterRoutes(acting)

		maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
		maintenanceHandler.RegisterRoutes(acting)
	}

	return nil
}
