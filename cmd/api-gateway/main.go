package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/health"
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/infra/adapters/service"
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/infra/httpx"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator/sagalog/sqlite"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/config"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/events"
	sharedhttpx "github.com/jcmexdev/purchase-sagas/internal/pkg/httpx"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/metrics"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/remote"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("api-gateway", pflag.ExitOnError)
	flags.Int("port", 8000, "listen port")
	flags.String("saga_log_path", "", "sqlite file for the saga log, empty keeps it in memory")
	flags.Uint("reconcile_retry_attempts", 1, "attempts for the final order status update")
	_ = flags.Parse(os.Args[1:])

	cfg := &config.Gateway{}
	if err := config.Load(config.GatewayPrefix, cfg, config.DefaultGateway(), flags); err != nil {
		return err
	}
	logger := telemetry.InitLogger(cfg.LogLevel, httpx.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, httpx.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	reg := metrics.NewRegistry()
	client := remote.NewClient(
		remote.WithTimeout(cfg.RemoteTimeout),
		remote.WithObserver(reg),
		remote.WithLogger(logger),
	)

	var sagaLog sagalog.Repository = sagalog.NewMemoryRepository()
	if cfg.SagaLogPath != "" {
		repo, err := sqlite.Open(cfg.SagaLogPath)
		if err != nil {
			return err
		}
		defer repo.Close()
		sagaLog = repo
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		slog.Info("publishing purchase outcomes", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer publisher.Close()

	orchestrator := coordinator.NewService(
		service.NewHTTPIdentityService(client, cfg.IdentityURL),
		service.NewHTTPOrderService(client, cfg.OrdersURL),
		service.NewHTTPPaymentService(client, cfg.BillingURL),
		coordinator.WithSagaLog(sagaLog),
		coordinator.WithPublisher(publisher),
		coordinator.WithPublishTimeout(cfg.KafkaPublishTimeout),
		coordinator.WithRecorder(reg),
		coordinator.WithReconcileRetry(cfg.ReconcileRetryAttempts, cfg.ReconcileRetryDelay),
	)

	reporter := health.NewReporter(client,
		health.Target{Name: "identity", BaseURL: cfg.IdentityURL},
		health.Target{Name: "orders", BaseURL: cfg.OrdersURL},
		health.Target{Name: "billing", BaseURL: cfg.BillingURL},
	)

	router := httpx.NewRouter(httpx.NewHandler(orchestrator, reporter), reg.Handler())
	return sharedhttpx.Serve(ctx, httpx.ServiceName, cfg.Port, router, cfg.ShutdownTimeout)
}
