package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"imeitrack/internal/caching"
	"imeitrack/internal/handlers"
	"imeitrack/internal/jobs/background"
	"imeitrack/internal/middleware"
	"imeitrack/internal/repositories"
	"imeitrack/internal/services"
	"imeitrack/pkg/database"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "imeitrack-archive"
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	archiveSvc, err := services.NewMinioArchiveService(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize archive service: %v", err)
	}
	if err := archiveSvc.EnsureBucket(ctx); err != nil {
		log.Printf("WARN: archive bucket unavailable: %v", err)
	}

	// Repositories
	txManager := repositories.NewTxManager(pool)
	usersRepo := repositories.NewUsersRepo(pool)
	unitsRepo := repositories.NewUnitsRepo(pool)
	typesRepo := repositories.NewProductTypesRepo(pool)
	locationsRepo := repositories.NewLocationsRepo(pool)
	transfersRepo := repositories.NewTransfersRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	// Services
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	auditSvc := services.NewAuditLogsService(auditLogsRepo)
	authSvc := services.NewAuthService(usersRepo, cacheSvc, jwtSecret)
	catalogSvc := services.NewCatalogService(txManager, typesRepo, locationsRepo, unitsRepo, auditSvc)
	unitSvc := services.NewUnitService(txManager, unitsRepo, typesRepo, auditSvc, archiveSvc, cacheSvc)
	transferSvc := services.NewTransferService(txManager, transfersRepo, unitsRepo, typesRepo, locationsRepo, auditSvc, archiveSvc, cacheSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(transfersRepo, typesRepo, unitsRepo)
	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	unitHandlers := handlers.NewUnitHandlers(unitSvc)
	productTypeHandlers := handlers.NewProductTypeHandlers(catalogSvc)
	locationHandlers := handlers.NewLocationHandlers(catalogSvc)
	transferHandlers := handlers.NewTransferHandlers(transferSvc)
	auditLogsHandlers := handlers.NewAuditLogsHandlers(auditSvc)
	jobHandlers := handlers.NewJobHandlers(scheduler)
	healthHandlers := handlers.NewHealthHandlers(pool)

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Ready)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", authHandlers.Login)

	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(jwtSecret))
	protected.Use(middleware.ActorMiddleware())

	protected.POST("/auth/reauthenticate", authHandlers.Reauthenticate, middleware.RequireAdmin())
	protected.POST("/auth/register", authHandlers.Register, middleware.RequireAdmin())

	protected.GET("/units", unitHandlers.ListUnits)
	protected.GET("/units/search", unitHandlers.SearchUnits)
	protected.GET("/units/:imei", unitHandlers.GetUnit)
	protected.POST("/units", unitHandlers.RegisterUnit)
	protected.POST("/units/status", unitHandlers.ChangeStatus)
	protected.POST("/units/import", unitHandlers.ImportUnits, middleware.RequireAdmin())
	protected.POST("/units/bulk-delete", unitHandlers.BulkDelete, middleware.RequireAdmin())

	protected.GET("/product-types", productTypeHandlers.ListProductTypes)
	protected.POST("/product-types", productTypeHandlers.CreateProductType)
	protected.GET("/product-types/:id", productTypeHandlers.GetProductType)
	protected.PUT("/product-types/:id", productTypeHandlers.UpdateProductType)
	protected.DELETE("/product-types/:id", productTypeHandlers.DeleteProductType, middleware.RequireAdmin())
	protected.POST("/product-types/:id/reassign-delete", productTypeHandlers.ReassignAndDelete, middleware.RequireAdmin())

	protected.GET("/locations", locationHandlers.ListLocations)
	protected.POST("/locations", locationHandlers.CreateLocation, middleware.RequireAdmin())
	protected.GET("/locations/:id", locationHandlers.GetLocation)
	protected.PUT("/locations/:id", locationHandlers.UpdateLocation, middleware.RequireAdmin())

	protected.GET("/transfers", transferHandlers.ListTransfers)
	protected.POST("/transfers", transferHandlers.CreateTransfer)
	protected.GET("/transfers/:id", transferHandlers.GetTransfer)
	protected.GET("/transfers/:id/report", transferHandlers.GetTransferReport)
	protected.POST("/transfers/:id/confirm", transferHandlers.ConfirmTransfer)
	protected.POST("/transfers/:id/cancel", transferHandlers.CancelTransfer, middleware.RequireAdmin())

	protected.GET("/audit-logs", auditLogsHandlers.ListAuditLogs)
	protected.GET("/audit-logs/record/:record_id", auditLogsHandlers.GetRecordHistory)

	protected.GET("/jobs/status", jobHandlers.GetJobStatus, middleware.RequireAdmin())

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("imeitrack server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
