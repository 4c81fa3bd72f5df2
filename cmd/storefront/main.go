package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wonderpark/storefront/internal/booking"
	"github.com/wonderpark/storefront/internal/catalog"
	"github.com/wonderpark/storefront/internal/handler"
	"github.com/wonderpark/storefront/internal/middleware"
	"github.com/wonderpark/storefront/internal/parkapi"
	"github.com/wonderpark/storefront/internal/selection"
	"github.com/wonderpark/storefront/internal/session"
	"github.com/wonderpark/storefront/pkg/config"
	"github.com/wonderpark/storefront/pkg/logger"
	pkgredis "github.com/wonderpark/storefront/pkg/redis"
	"github.com/wonderpark/storefront/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting park storefront...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry init failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Error(fmt.Sprintf("Telemetry shutdown failed: %v", err))
		}
	}()

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info(fmt.Sprintf("Redis connected at %s", redisCfg.Addr()))

	// Park API client
	apiClient := parkapi.NewHTTPClient(parkapi.Config{
		BaseURL: cfg.ParkAPI.BaseURL,
		Timeout: cfg.ParkAPI.Timeout,
	})

	// Session layer
	vault := session.NewRedisVault(redisClient, cfg.Session.TTL)
	manager := session.NewManager(vault, apiClient, appLog)
	defer manager.Close()

	// Catalog, selection, booking
	cache := catalog.NewCache(apiClient, appLog)
	selections := selection.NewService(selection.NewRedisRepository(redisClient, cfg.Session.TTL))
	submitter := booking.NewSubmitter(apiClient, selections, cache, appLog)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Auth:      handler.NewAuthHandler(manager),
		Catalog:   handler.NewCatalogHandler(cache),
		Selection: handler.NewSelectionHandler(selections, cache),
		Booking:   handler.NewBookingHandler(submitter),
		Health:    handler.NewHealthHandler(redisClient, cfg.App.Version),
		Manager:   manager,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secret: cfg.Session.Secret,
			Secure: cfg.Session.CookieSecure,
		},
		CORS:        middleware.DefaultCORSConfig(),
		Log:         appLog,
		ServiceName: cfg.App.Name,
		Idempotency: middleware.DefaultIdempotencyConfig(redisClient),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Park storefront listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
