package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/paylink-sync/internal/config"
	domainProvider "github.com/wekeepgrowing/paylink-sync/internal/domain/provider"
	"github.com/wekeepgrowing/paylink-sync/internal/infrastructure/airtable"
	httpServer "github.com/wekeepgrowing/paylink-sync/internal/infrastructure/http"
	"github.com/wekeepgrowing/paylink-sync/internal/infrastructure/provider"
	"github.com/wekeepgrowing/paylink-sync/internal/scheduler"
	"github.com/wekeepgrowing/paylink-sync/internal/usecase"
	"github.com/wekeepgrowing/paylink-sync/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

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

	zapLogger = zapLogger.With(zap.String("service", cfg.Service.Name))

	// Initialize clients
	contacts := airtable.NewClient(cfg.Airtable, zapLogger)
	gateway, err := provider.NewFactory(cfg, zapLogger).GetProvider(domainProvider.ProviderTypeStripe)
	if err != nil {
		zapLogger.Fatal("Failed to create billing gateway", zap.Error(err))
	}

	pipeline := usecase.NewContactProcessingService(contacts, gateway, cfg.Stripe.PortalLoginURL, zapLogger)

	hours, err := scheduler.NewBusinessHours(cfg.Scheduler)
	if err != nil {
		zapLogger.Fatal("Invalid business hours", zap.Error(err))
	}
	sched := scheduler.New(pipeline, hours, cfg.Scheduler.Interval, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start scheduler and server
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Run(ctx)
	}()

	httpSrv := httpServer.NewServer(cfg, zapLogger)
	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	select {
	case <-schedDone:
	case <-shutdownCtx.Done():
		zapLogger.Warn("Scheduler did not stop before shutdown timeout")
	}

	zapLogger.Info("Shutdown complete")
}
