package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/app/background"
	"github.com/LavaJover/agro-escrow-service/internal/app/setup"
	"github.com/LavaJover/agro-escrow-service/internal/config"
	"github.com/LavaJover/agro-escrow-service/internal/delivery/grpcapi"
	"github.com/LavaJover/agro-escrow-service/internal/delivery/http/handlers"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	appLogger, logCloser, err := logger.Setup(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logCloser.Close()

	deps, err := setup.InitializeDependencies(cfg)
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}
	defer deps.Close()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		log.Fatalf("failed to init usecases: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background work: auto-release sweep and payment confirmations
	var payments *background.PaymentConsumer
	if deps.KafkaSubscriber != nil {
		payments = background.NewPaymentConsumer(
			deps.KafkaSubscriber,
			ucs.EscrowUsecase,
			deps.Metrics,
			cfg.KafkaService.PaymentsTopic,
			cfg.KafkaService.GroupID,
		)
	}
	tasks := background.NewBackgroundTasks(ucs.SettlementUsecase, payments, cfg.Escrow.SweepSchedule, cfg.Escrow.SweepBatchSize)
	if err := tasks.StartAll(ctx); err != nil {
		log.Fatalf("failed to start background tasks: %v", err)
	}

	// gRPC
	grpcServer, healthServer := grpcapi.NewServer(grpcapi.NewEscrowHandler(ucs.EscrowUsecase, ucs.SettlementUsecase))
	grpcAddr := fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	go func() {
		slog.Info("gRPC server started", "addr", grpcAddr)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server stopped", "error", err.Error())
			stop()
		}
	}()

	// HTTP
	router := handlers.NewRouter(
		handlers.NewEscrowHandler(ucs.EscrowUsecase, ucs.SettlementUsecase, cfg.Escrow.DefaultCurrency),
		handlers.RouterConfig{
			RPS:          cfg.RateLimit.RPS,
			Burst:        cfg.RateLimit.Burst,
			Timeout:      cfg.HTTPServer.WriteTimeout,
			Gatherer:     deps.Registry,
			Logger:       appLogger,
			GatewayToken: cfg.PaymentGateway.Token,
		},
	)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}
	go func() {
		slog.Info("HTTP server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err.Error())
	}
	grpcServer.GracefulStop()
	slog.Info("escrow service stopped")
}
