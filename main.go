package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/config"
	"github.com/prorab-io/prorab-engine/pkg/database"
	"github.com/prorab-io/prorab-engine/pkg/handlers"
	"github.com/prorab-io/prorab-engine/pkg/logging"
	"github.com/prorab-io/prorab-engine/pkg/middleware"
	"github.com/prorab-io/prorab-engine/pkg/repositories"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("redis_host", cfg.Redis.Host))

	ctx := context.Background()

	// Migrations run over database/sql; the app itself uses the pgx pool.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:             cfg.Database.ConnectionString(),
		MaxConnections:  cfg.Database.MaxConnections,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleMinutes) * time.Minute,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	// Repositories
	projectRepo := repositories.NewProjectRepository(db)
	eventRepo := repositories.NewRiskEventRepository(db)
	workPlanRepo := repositories.NewWorkPlanRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	issueRepo := repositories.NewIssueRepository(db)
	checklistRepo := repositories.NewChecklistRepository(db)
	deliveryRepo := repositories.NewDeliveryRepository(db)
	materialRepo := repositories.NewMaterialRepository(db)
	reportRepo := repositories.NewDailyReportRepository(db)
	userRepo := repositories.NewUserRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Services
	riskCache := services.NewRiskCache(redisClient,
		time.Duration(cfg.Risk.HighRiskCacheTTLSeconds)*time.Second, logger)
	riskService := services.NewRiskService(db, projectRepo, eventRepo, workPlanRepo, issueRepo, checklistRepo, riskCache, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)
	projectService := services.NewProjectService(projectRepo, riskService, logger)
	workPlanService := services.NewWorkPlanService(workPlanRepo, projectRepo, riskService, logger)
	taskService := services.NewTaskService(taskRepo, workPlanRepo, projectRepo, riskService, logger)
	issueService := services.NewIssueService(issueRepo, projectRepo, notificationService, riskService, logger)
	checklistService := services.NewChecklistService(checklistRepo, projectRepo, notificationService, riskService, logger)
	deliveryService := services.NewDeliveryService(deliveryRepo, materialRepo, projectRepo, riskService, logger)
	reportService := services.NewDailyReportService(reportRepo, projectRepo, logger)
	userService := services.NewUserService(userRepo, logger)

	// Auth
	verifier, err := auth.NewVerifier(ctx, &cfg.Auth)
	if err != nil {
		logger.Fatal("Failed to create token verifier", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(verifier, userService, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewProjectHandler(projectService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewRiskHandler(riskService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewWorkPlanHandler(workPlanService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewTaskHandler(taskService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewIssueHandler(issueService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewChecklistHandler(checklistService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDeliveryHandler(deliveryService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDailyReportHandler(reportService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewNotificationHandler(notificationService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting prorab-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
