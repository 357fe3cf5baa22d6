package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/lims-dash/lims-dash/internal/app"
	"github.com/lims-dash/lims-dash/internal/assistant"
	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/dashboard"
	"github.com/lims-dash/lims-dash/internal/inventory"
	"github.com/lims-dash/lims-dash/internal/orders"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
	"github.com/lims-dash/lims-dash/internal/users"
	"github.com/lims-dash/lims-dash/internal/view"
	"github.com/lims-dash/lims-dash/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "limsdash_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	apiClient := upstream.NewClient(cfg.LimsAPIURL)

	authService := auth.NewService(apiClient)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardService := dashboard.NewService(apiClient, dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, templates, csrfManager)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	inventoryService := inventory.NewService(apiClient)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, templates, csrfManager, jobsClient)

	ordersService := orders.NewService(apiClient)
	ordersHandler := orders.NewHandler(logger, ordersService, templates, csrfManager)

	usersService := users.NewService(apiClient)
	usersHandler := users.NewHandler(logger, usersService, templates, csrfManager)

	assistantService := assistant.NewService(apiClient)
	assistantHandler := assistant.NewHandler(logger, assistantService, templates, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthMiddleware:   authMiddleware,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		InventoryHandler: inventoryHandler,
		OrdersHandler:    ordersHandler,
		UsersHandler:     usersHandler,
		AssistantHandler: assistantHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
