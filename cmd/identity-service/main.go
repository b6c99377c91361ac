package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jcmexdev/purchase-sagas/internal/identity-service/adapters/httpx"
	"github.com/jcmexdev/purchase-sagas/internal/identity-service/app"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/config"
	sharedhttpx "github.com/jcmexdev/purchase-sagas/internal/pkg/httpx"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/storage"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("identity service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("identity-service", pflag.ExitOnError)
	flags.Int("port", 8001, "listen port")
	flags.String("store_backend", storage.BackendMemory, "memory, pebble or redis")
	_ = flags.Parse(os.Args[1:])

	cfg := &config.Registry{}
	if err := config.Load(config.IdentityPrefix, cfg, config.DefaultRegistry(8001, "./data/identity"), flags); err != nil {
		return err
	}
	telemetry.InitLogger(cfg.LogLevel, httpx.ServiceName)

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

	backend, err := storage.Open(cfg.StorageOptions(httpx.ServiceName))
	if err != nil {
		return err
	}
	defer backend.Close()

	registry, err := app.NewRegistryFromBackend(backend)
	if err != nil {
		return err
	}

	slog.Info("identity registry ready", "store_backend", cfg.StoreBackend)
	return sharedhttpx.Serve(ctx, httpx.ServiceName, cfg.Port, httpx.NewRouter(httpx.NewHandler(registry)), cfg.ShutdownTimeout)
}
