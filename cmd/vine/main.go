package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/vine/config"
	"github.com/Ramsey-B/vine/pkg/server"
	"github.com/Ramsey-B/vine/pkg/tracing"
	"github.com/Ramsey-B/vine/pkg/tracing/exporters"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := setupTracing(ctx, cfg)
		if err != nil {
			logger.WithContext(ctx).WithError(err).Error("Failed to set up tracing")
			os.Exit(1)
		}
		defer shutdown()
	}
	tracing.SetTracer(otel.Tracer(cfg.AppName))

	srv := server.New(cfg, logger)
	if err := srv.Run(ctx); err != nil {
		logger.WithContext(ctx).WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		var b []byte
		if cfg.PrettyLogs {
			b, _ = json.MarshalIndent(msg, "", "  ")
		} else {
			b, _ = json.Marshal(msg)
		}
		fmt.Fprintln(os.Stdout, string(b))
	})
}

func setupTracing(ctx context.Context, cfg *config.Config) (func(), error) {
	otlpCfg := exporters.DefaultOTLPConfig()
	otlpCfg.Endpoint = cfg.OTLPEndpoint
	otlpCfg.Protocol = cfg.OTLPProtocol
	otlpCfg.Insecure = cfg.OTLPInsecure

	exporter, err := exporters.NewOTLPExporter(ctx, otlpCfg)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", cfg.AppName),
		)),
	)
	otel.SetTracerProvider(provider)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), otlpCfg.Timeout)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}, nil
}
