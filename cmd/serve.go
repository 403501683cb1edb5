package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/posture-check/internal/auth"
	"github.com/example/posture-check/internal/config"
	"github.com/example/posture-check/internal/grpcclient"
	"github.com/example/posture-check/internal/handlers"
	"github.com/example/posture-check/internal/logging"
	"github.com/example/posture-check/internal/posture"
	"github.com/example/posture-check/internal/repository"
	"github.com/example/posture-check/internal/telemetry"
	"github.com/example/posture-check/internal/usecase"
)

var configPath string

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the screening HTTP API",
		Long: `Start the HTTP API. Postgres, Redis and the pose estimation service
must be reachable at startup.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger.Info("starting posture-check", zap.String("host", logging.Hostname()), zap.String("addr", cfg.Server.Addr))

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	db, err := initDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	repo := repository.NewScreeningRepository(db, logger)
	if err := repo.AutoMigrate(ctx); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}

	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	extractor, conn, err := grpcclient.DialPoseEstimator(ctx, cfg.Pose.Addr, cfg.Pose.Timeout, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to pose estimator: %w", err)
	}
	defer conn.Close()

	metrics := telemetry.NewMetrics()
	screenings := usecase.NewScreeningUseCase(
		repo,
		usecase.NewRedisCache(redisClient),
		extractor,
		posture.NewClassifier(cfg.Thresholds),
		metrics,
		logger,
	).WithCacheTTL(cfg.Cache.TTL)
	accounts := usecase.NewAccountUseCase(repo, usecase.TokenSettings{
		Secret:   cfg.Auth.JWTSecret,
		Audience: cfg.Auth.JWTAudience,
		TTL:      cfg.Auth.TokenTTL,
	}, logger)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(cfg, screenings, accounts, metrics, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("posture-check API listening", zap.String("addr", cfg.Server.Addr))
	return serveHTTPServer(server, cfg.Server.ShutdownTimeout, logger)
}

func newRouter(cfg *config.Config, screenings handlers.ScreeningService, accounts handlers.AccountService, metrics *telemetry.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestID(), handlers.AccessLog(logger))
	r.MaxMultipartMemory = cfg.Upload.MaxBytes

	handlers.RegisterRoutes(r, screenings, accounts, auth.JWTMiddleware(cfg.Auth.JWTSecret, cfg.Auth.JWTAudience), handlers.Options{
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Metrics:        metrics.Handler(),
	})
	return r
}
