package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"advisory-backend/internal/archive"
	"advisory-backend/internal/auth"
	"advisory-backend/internal/cache"
	"advisory-backend/internal/config"
	"advisory-backend/internal/database"
	"advisory-backend/internal/db"
	"advisory-backend/internal/events"
	"advisory-backend/internal/handlers"
	"advisory-backend/internal/health"
	h "advisory-backend/internal/http"
	"advisory-backend/internal/middleware"
	"advisory-backend/internal/monitoring"
	"advisory-backend/internal/repositories"
	"advisory-backend/internal/services"
	"advisory-backend/migrations"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (reads fall through to Postgres)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations from the embedded filesystem
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Reconcile the response schema against the column whitelist so
	// columns added in newer releases exist before the server takes
	// traffic.
	reconciler := database.NewReconciler(pool)
	if err := reconciler.ReconcileResponseSchema(ctx); err != nil {
		log.Fatalf("Failed to reconcile response schema: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager and admin guard
	jwtManager := auth.NewJWTManager(cfg)
	adminGuard := auth.NewAdminGuard(cfg.Admin.TOTPSecret)
	if adminGuard.Enabled() {
		log.Println("[Auth] TOTP guard enabled for destructive admin operations")
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	teamRepo := repositories.NewTeamRepository(pool)
	sheetRepo := repositories.NewSheetRepository(pool)
	entryRepo := repositories.NewEntryRepository(pool)
	assignmentRepo := repositories.NewAssignmentRepository(pool)
	responseRepo := repositories.NewResponseRepository(pool)
	trackingRepo := repositories.NewEditTrackingRepository(pool)
	adminActionLogRepo := repositories.NewAdminActionLogRepository(pool)

	// Start monitoring dashboard server in background
	go monitoring.NewMonitoringServer(pool, entryRepo, cfg.StaleLockThreshold(), cfg.Server.MonitoringPort).Start()

	// Initialize event dispatcher and subscribers
	dispatcher := events.NewDispatcher(256)
	defer dispatcher.Close()
	dispatcher.Subscribe(events.LogSubscriber{})

	// Initialize services
	trackingService := services.NewTrackingService(trackingRepo, adminActionLogRepo)
	userService := services.NewUserService(userRepo, teamRepo, jwtManager)
	sheetService := services.NewSheetService(sheetRepo, entryRepo, trackingService)
	distributionService := services.NewDistributionService(sheetRepo, teamRepo, assignmentRepo, responseRepo, dispatcher)
	lockService := services.NewLockService(pool, entryRepo, assignmentRepo, responseRepo, adminActionLogRepo, trackingService, dispatcher, cfg.StaleLockThreshold())
	responseService := services.NewResponseService(entryRepo, assignmentRepo, responseRepo, lockService, trackingService, dispatcher)
	assignmentService := services.NewAssignmentService(pool, assignmentRepo, responseRepo, adminActionLogRepo, dispatcher)
	reportService := services.NewReportService(sheetRepo, teamRepo, assignmentRepo, responseRepo, assignmentService, distributionService)

	// Snapshot archiving to object storage (optional)
	if archiver := archive.New(cfg, distributionService); archiver != nil {
		dispatcher.Subscribe(archiver)
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	sheetHandler := handlers.NewSheetHandler(sheetService)
	distributionHandler := handlers.NewDistributionHandler(distributionService)
	lockHandler := handlers.NewLockHandler(lockService, responseService, adminGuard)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, adminGuard)
	trackingHandler := handlers.NewTrackingHandler(trackingService, adminGuard)
	adminActionLogHandler := handlers.NewAdminActionLogHandler(adminActionLogRepo)
	reportHandler := handlers.NewReportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		sheetHandler,
		distributionHandler,
		lockHandler,
		assignmentHandler,
		trackingHandler,
		adminActionLogHandler,
		reportHandler,
		healthHandler,
		authMiddleware,
	)

	// Wrap with panic recovery and metrics middleware
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
