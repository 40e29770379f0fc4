// @title                       VibeCircles Messaging API
// @version                     1.0
// @description                 Direct messages between VibeCircles users.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"vibecircles.web/internal/config"
	"vibecircles.web/internal/handler"
	"vibecircles.web/internal/health"
	"vibecircles.web/internal/jwt"
	"vibecircles.web/internal/middleware"
	imNats "vibecircles.web/internal/nats"
	"vibecircles.web/internal/repository"
	"vibecircles.web/internal/router"
	"vibecircles.web/internal/service"
)

func main() {
	configPath := config.GetEnv("CONFIG_PATH", "configs/config.yaml")

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := connectDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host)

	// events are optional; without NATS the service still answers requests
	var publisher service.EventPublisher
	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		natsClient, err := imNats.NewClient(cfg.NATS, logger)
		if err != nil {
			logger.Error("Failed to connect to NATS", "url", cfg.NATS.URL, "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		natsConn = natsClient.Conn()
		publisher = natsClient.Publisher()
		logger.Info("Connected to NATS", "url", cfg.NATS.URL)
	} else {
		logger.Warn("NATS_URL not set, message events disabled")
	}

	jwtService := jwt.NewService(cfg.JWT.SecretKey, cfg.JWT.AccessExpire, cfg.JWT.Issuer)

	// Redis only backs the rate limiter; when it is off /health leaves Redis out
	var redisClient redis.UniversalClient
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		client := connectRedis(cfg.Redis)
		defer client.Close()
		redisClient = client
		rateLimiter = middleware.NewRateLimiter(client, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		logger.Info("Connected to Redis", "host", cfg.Redis.Host)
	} else {
		logger.Info("Rate limiting disabled, Redis not used")
	}

	// repositories
	messageRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)

	// services
	messageService := service.NewMessageService(messageRepo, userRepo, publisher)

	// handlers
	healthChecker := health.NewChecker(natsConn, redisClient, db)
	healthHandler := handler.NewHealthHandler(healthChecker, cfg.App.Environment())
	messageHandler := handler.NewMessageHandler(messageService)

	r := router.SetupRouter(cfg, logger, jwtService, rateLimiter, healthHandler, messageHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Web server started", "addr", server.Addr, "mode", cfg.App.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	cancel()
	logger.Info("Server stopped")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectDatabase connects the PostgreSQL pool
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// connectRedis creates the redis client; connections are lazy
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
