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
	"go.uber.org/zap"
)

func main() {
	// Auto-load ./.env if present before reading vars
	loadDotEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig("configs/config.yml")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Support a lightweight migrate command: `./prodapi migrate`
	// It runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := initDB(cfg, logger); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
		logger.Info("migration and seeding completed")
		return
	}

	if err := initDB(cfg, logger); err != nil {
		logger.Fatal("failed to connect postgres database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := connectMongo(ctx, cfg, logger); err != nil {
		logger.Fatal("failed to connect mongodb", zap.Error(err))
	}

	setupConfig(cfg, logger)
	setupAuth(cfg, &gormUserSource{db: db})

	r := gin.Default()
	setupRoutes(r)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}
	closeMongo(shutdownCtx, logger)
}

// setupConfig publishes config and logger to the handler layer.
func setupConfig(c *Config, l *zap.Logger) {
	cfg = c
	logger = l
}
