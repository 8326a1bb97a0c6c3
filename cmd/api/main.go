package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-applicant-tracker/config"
	_ "go-applicant-tracker/docs" // Important for Swagger
	v1 "go-applicant-tracker/internal/delivery/http/v1"
	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/internal/repository/postgres"
	"go-applicant-tracker/internal/repository/sqlite"
	"go-applicant-tracker/internal/usecase"
	"go-applicant-tracker/pkg/audit"
	"go-applicant-tracker/pkg/auth"
	"go-applicant-tracker/pkg/database"
	"go-applicant-tracker/pkg/logger"
	"go-applicant-tracker/pkg/redis"
	"go-applicant-tracker/pkg/security"
	"go-applicant-tracker/pkg/security/antivirus"
	"go-applicant-tracker/pkg/storage"
	"go-applicant-tracker/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           Applicant Tracker API
// @version         1.0
// @description     Applicant store, reviewer comments and consensus for the hiring dashboard.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting applicant tracker", "port", cfg.Port, "store", cfg.StoreDriver, "resumes", cfg.ResumeStorage)

	ctx := context.Background()

	// 3. Setup Applicant Store
	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open applicant store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 4. Setup Resume Storage
	resumes, err := openResumeStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to set up resume storage", "error", err)
		os.Exit(1)
	}

	// 5. Setup Redis (optional)
	if err := redis.Initialize(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, rate limits are per process", "error", err)
	}
	defer redis.Close()

	// 6. Setup UseCases
	auditLog := audit.New("applicant-tracker", cfg.AuditLog)
	defer auditLog.Sync()

	var scanner antivirus.Scanner = antivirus.Nop{}
	if cfg.ClamAVAddr != "" {
		scanner = antivirus.NewClamAV(cfg.ClamAVAddr, 30*time.Second)
	} else {
		logger.Log.Warn("CLAMAV_ADDR not set, resumes are stored without a malware scan")
	}

	applicantUC := usecase.NewApplicantUsecase(repo, validation.New(), auditLog, usecase.WithResumeCleanup(resumes))
	resumeUC := usecase.NewResumeUsecase(resumes,
		security.NewUploadLimiter(redis.Client(), cfg.UploadsPerMinute),
		cfg.MaxUploadBytes(), auditLog, usecase.WithScanner(scanner))
	healthUC := usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"database":  repo.Ping,
		"redis":     redis.HealthCheck,
		"antivirus": scanner.Ping,
	})

	// 7. Setup Auth
	verifier := auth.NewVerifier(cfg.AuthJWTSecret)
	if !verifier.Enabled() {
		logger.Log.Warn("AUTH_JWT_SECRET not set, API is open to anyone who can reach it")
	}

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ApplicantUC: applicantUC,
		ResumeUC:    resumeUC,
		HealthUC:    healthUC,
		Verifier:    verifier,
		Redis:       redis.Client(),
		Config:      cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func openStore(ctx context.Context, cfg *config.Config) (domain.ApplicantRepository, func(), error) {
	switch cfg.StoreDriver {
	case "sqlite":
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewApplicantRepository(db), func() { db.Close() }, nil
	default:
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewApplicantRepository(pool), pool.Close, nil
	}
}

func openResumeStore(ctx context.Context, cfg *config.Config) (storage.ResumeStore, error) {
	if cfg.ResumeStorage != "s3" {
		return storage.NewLocalStore(cfg.UploadDir)
	}

	client, err := storage.NewS3Client(ctx, storage.S3Config{
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		UsePathStyle:    cfg.S3UsePathStyle,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
}
