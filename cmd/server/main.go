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

	apirepository "ctchen222/Connect-Four/internal/api/repository"
	"ctchen222/Connect-Four/internal/api/service"
	"ctchen222/Connect-Four/internal/config"
	"ctchen222/Connect-Four/internal/db"
	"ctchen222/Connect-Four/internal/hub"
	"ctchen222/Connect-Four/internal/logger"
	"ctchen222/Connect-Four/internal/repository"
	"ctchen222/Connect-Four/internal/server"
	"ctchen222/Connect-Four/internal/telemetry"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize telemetry before the logger so the otelslog bridge picks up
	// the real LoggerProvider.
	shutdown, err := telemetry.InitOtel(ctx, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)

	// Live tables go to Redis when configured, otherwise they stay in memory.
	var tables repository.TableRepository
	if cfg.RedisConn != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisConn)
		if err != nil {
			slog.Error("failed to initialize redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		tables = repository.NewTableRepository(rdb, cfg.TableTTL)
		slog.Info("Using redis table store", "table.ttl", cfg.TableTTL)
	} else {
		tables = repository.NewMemoryTableRepository()
		slog.Info("Using in-memory table store")
	}

	pool, err := db.Connect(ctx, cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open sqlite db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := db.InitializeSchema(ctx, pool); err != nil {
		slog.Error("failed to initialize sqlite db", "error", err)
		os.Exit(1)
	}

	userService := service.NewUserService(apirepository.NewUserRepository(pool), cfg.JWTSecret)
	tableService := service.NewTableService(tables, cfg.BoardWidth, cfg.BoardHeight)

	h := hub.NewHub(tables)
	go h.Run(ctx)

	srv := server.NewServer(h, userService, tableService, cfg.WebDir)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(srv.Engine(), "connect-four"),
	}

	go func() {
		slog.Info("http server started", "http.addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServe failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
