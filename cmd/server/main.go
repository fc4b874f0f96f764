package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/config"
	"github.com/yukikurage/teamtask/internal/database"
	"github.com/yukikurage/teamtask/internal/handlers"
	"github.com/yukikurage/teamtask/internal/logger"
	"github.com/yukikurage/teamtask/internal/ratelimit"
	"github.com/yukikurage/teamtask/internal/repository"
	"github.com/yukikurage/teamtask/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New("teamtask-api", cfg.AppEnv, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize AI service
	var suggester services.WorkPackageSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Info("OPENAI_API_KEY not set, work package suggestions disabled")
	}

	// Rate limiting shared through redis when enabled, otherwise per process
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	if cfg.RedisEnabled {
		client := ratelimit.NewRedisClient(cfg.RedisHost+":"+cfg.RedisPort, cfg.RedisPassword)
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, using in-memory rate limiting", zap.Error(err))
		} else {
			limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimitPerMinute)
		}
		cancel()
	}

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	router := handlers.NewRouter(handlers.Services{
		Auth:          services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry),
		Users:         services.NewUserService(userRepo),
		Tasks:         services.NewTaskService(taskRepo, teamRepo, suggester),
		Teams:         services.NewTeamService(teamRepo, userRepo),
		WorkPackages:  services.NewWorkPackageService(repository.NewWorkPackageRepository(db), taskRepo),
		Notifications: services.NewNotificationService(repository.NewNotificationRepository(db), userRepo),
	}, limiter, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}
