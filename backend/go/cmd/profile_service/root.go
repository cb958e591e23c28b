package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Profile_1.0/backend/go/internal/catfact"
	"Profile_1.0/backend/go/internal/config"
	"Profile_1.0/backend/go/internal/models"
	"Profile_1.0/backend/go/internal/profile_service/api"
	"Profile_1.0/backend/go/internal/profile_service/service"
	httpserver "Profile_1.0/backend/go/pkg/http"
	"Profile_1.0/backend/go/pkg/logger"
	"Profile_1.0/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:           "profile_service",
	Short:         "Serve the GET /me profile endpoint",
	Long:          `Profile service returning a static profile, a fresh UTC timestamp and a cat fact fetched on every request.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "profile_service: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "backend/go/internal/config/config.yaml", "path to the YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a .env file (optional)")
}

// loadConfig 加载 .env 与 YAML 配置并初始化日志。
func loadConfig() (*config.AppConfig, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.AppConfig) error {
	serviceLogger := logger.New(cfg.App.Name, "")
	serviceLogger.WithPayload(map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"fact_api":    cfg.FactAPI.URL,
	}).Info("Logger initialized")

	// Provider -> Assembler -> Handler
	facts := catfact.NewClient(cfg.FactAPI, serviceLogger.WithField("component", "catfact"))
	assembler := service.NewAssembler(service.ProfileFromConfig(cfg.Profile), facts)
	handler := api.NewHandler(assembler, serviceLogger)

	limiter, err := ratelimiter.FromConfig(cfg.Middleware.RateLimiter)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to create rate limiter")
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}
	if limiter != nil {
		serviceLogger.Info("Enabling Rate Limiter middleware with algorithm: " + cfg.Middleware.RateLimiter.Algorithm)
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(handler, cfg.Middleware, serviceLogger, api.WithRateLimiter(limiter))

	srv := httpserver.NewServer(cfg, router,
		httpserver.WithLogger(serviceLogger),
		httpserver.WithShutdownTimeout(cfg.Server.ShutdownTimeoutDuration()),
	)

	serviceLogger.Info("Profile endpoint available at http://localhost" + srv.Addr() + "/me")
	return srv.Run(ctx, nil)
}
