package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yamdb/backend/internal/config"
	"github.com/yamdb/backend/internal/database"
	"github.com/yamdb/backend/internal/handler"
	"github.com/yamdb/backend/internal/mailer"
	"github.com/yamdb/backend/internal/middleware"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/internal/router"
	"github.com/yamdb/backend/internal/service"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			logger.Log.Warn("Ignoring LOG_LEVEL", zap.Error(err))
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	limiterConfig := middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	}
	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		limiter = middleware.NewRedisRateLimiter(redisClient, limiterConfig)
		logger.Log.Info("Rate limiting through Redis")
	} else {
		limiter = middleware.NewLocalRateLimiter(limiterConfig)
		logger.Log.Info("Rate limiting in process")
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	mail, err := mailer.New(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to configure mailer", zap.Error(err))
	}

	authService := service.NewAuthService(userRepo, mail, cfg)

	engine := router.New(cfg, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Users:      handler.NewUserHandler(service.NewUserService(userRepo)),
		Categories: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		Genres:     handler.NewGenreHandler(service.NewGenreService(genreRepo)),
		Titles:     handler.NewTitleHandler(service.NewTitleService(titleRepo, categoryRepo, genreRepo)),
		Reviews:    handler.NewReviewHandler(service.NewReviewService(reviewRepo, titleRepo)),
		Comments:   handler.NewCommentHandler(service.NewCommentService(commentRepo, reviewRepo)),
		Health:     handler.NewHealthHandler(db),
	}, userRepo, limiter)

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting", zap.String("addr", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
	}
}
