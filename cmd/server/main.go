package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-draws/cache"
	"github.com/Dosada05/tournament-draws/config"
	"github.com/Dosada05/tournament-draws/db"
	"github.com/Dosada05/tournament-draws/handlers"
	"github.com/Dosada05/tournament-draws/hub"
	"github.com/Dosada05/tournament-draws/repositories"
	api "github.com/Dosada05/tournament-draws/routes"
	"github.com/Dosada05/tournament-draws/services"
	"github.com/Dosada05/tournament-draws/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to apply schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	var drawCache cache.DrawCache = cache.Nop{}
	if cfg.RedisURL != "" {
		redisClient := cache.NewClient(cache.Options{Addr: cfg.RedisURL, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// кэш необязателен, работаем напрямую с базой
			logger.Warn("redis unavailable, draw cache disabled", slog.Any("error", err))
		} else {
			drawCache = cache.NewRedisDrawCache(redisClient, cfg.CacheTTL)
			logger.Info("redis draw cache enabled", slog.Duration("ttl", cfg.CacheTTL))
		}
	}

	var store storage.ObjectStore
	if cfg.R2Enabled() {
		store, err = storage.NewR2Store(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 export store initialized")
	}

	// Инициализация WebSocket Hub
	wsHub := hub.NewHub()
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	drawRepo := repositories.NewPostgresDrawRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)

	drawService := services.NewDrawService(drawRepo, participantRepo, drawCache, store, wsHub, logger)
	authService := services.NewAuthService(cfg.AdminKeyHash, cfg.JWTSecretKey, 24*time.Hour)
	if cfg.AdminKeyHash == "" {
		logger.Warn("ADMIN_KEY_HASH is not set, organizer tokens cannot be issued")
	}

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		handlers.NewDrawHandler(drawService),
		handlers.NewAuthHandler(authService),
		handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins),
		api.Options{
			JWTSecret:      cfg.JWTSecretKey,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitRPS:   cfg.RateLimitRPS,
		},
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
