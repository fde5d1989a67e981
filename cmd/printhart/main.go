package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/printhart/printhart/internal/analytics"
	analytichttp "github.com/printhart/printhart/internal/analytics/http"
	"github.com/printhart/printhart/internal/app"
	"github.com/printhart/printhart/internal/auth"
	"github.com/printhart/printhart/internal/inventory"
	"github.com/printhart/printhart/internal/orders"
	"github.com/printhart/printhart/internal/platform/db"
	"github.com/printhart/printhart/internal/shared"
	"github.com/printhart/printhart/internal/suppliers"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}

	sessions := shared.NewSessionManager(redisClient, "printhart_session",
		cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)
	validate := validator.New()

	ordersSvc := orders.NewService(orders.NewRepository(pool))
	inventorySvc := inventory.NewService(inventory.NewRepository(pool))
	suppliersSvc := suppliers.NewService(suppliers.NewRepository(pool))
	analyticsSvc := analytics.NewService(analytics.NewRepository(pool))
	authSvc := auth.NewService(auth.NewRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessions,
		CSRFManager:    csrf,

		AuthHandler:      auth.NewHandler(logger, authSvc, sessions, csrf, validate),
		OrdersHandler:    orders.NewHandler(logger, ordersSvc, validate),
		InventoryHandler: inventory.NewHandler(logger, inventorySvc, validate),
		SuppliersHandler: suppliers.NewHandler(logger, suppliersSvc, validate),
		ReportsHandler:   analytichttp.NewHandler(logger, analyticsSvc),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
