package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wekeepgrowing/ticket-payment/internal/app"
	"github.com/wekeepgrowing/ticket-payment/internal/config"
	grpcServer "github.com/wekeepgrowing/ticket-payment/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/ticket-payment/internal/infrastructure/http"
	"github.com/wekeepgrowing/ticket-payment/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger = zapLogger.With(
		zap.String("service", cfg.Service.Name),
		zap.String("environment", cfg.Service.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}
	defer container.Close()

	// Initialize servers
	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Services{
		Checkout: container.Payments,
		Refunds:  container.Payments,
		Settings: container.Settings,
	})

	var grpcSrv *grpcServer.Server
	if cfg.Server.GRPC.Port != 0 {
		grpcSrv = grpcServer.NewServer(cfg, zapLogger)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				zapLogger.Error("gRPC server stopped", zap.Error(err))
				stop()
			}
		}()
	}

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown waits for in-flight checkouts before the database closes.
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}

	zapLogger.Info("Servers shut down successfully")
}
