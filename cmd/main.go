package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-backend/internal/config"
	"crm-backend/internal/server"
	"crm-backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := logger.Init(os.Getenv("APP_ENV") != "production"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		logger.L().Fatal("JWT_SECRET must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	srv, err := server.New(ctx, cfg)
	cancel()
	if err != nil {
		logger.L().Fatal("failed to start server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.L().Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.L().Error("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("shutdown incomplete", zap.Error(err))
	}
}
