package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/soapsift/soapsift/configs"
	"github.com/soapsift/soapsift/internal/adapter/outbound/chunker"
	"github.com/soapsift/soapsift/internal/adapter/outbound/localfs"
	"github.com/soapsift/soapsift/internal/adapter/outbound/openapiexport"
	"github.com/soapsift/soapsift/internal/adapter/outbound/specfile"
	"github.com/soapsift/soapsift/internal/adapter/outbound/vectorsink"
	"github.com/soapsift/soapsift/internal/adapter/outbound/wsdl"
	"github.com/soapsift/soapsift/internal/usecase"
)

func main() {
	// === Command Line Flags ===
	var inputDir, outputDir, strategy string
	flag.StringVar(&inputDir, "input", "", "Input directory containing .wsdl and .xsd files (overrides config)")
	flag.StringVar(&outputDir, "output", "", "Output directory for spec JSON documents (overrides config)")
	flag.StringVar(&strategy, "strategy", "", "Chunking strategy: endpoint-based, fixed-size, semantic or hybrid (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if strategy != "" {
		cfg.ChunkStrategy = strategy
	}
	chunkStrategy, err := cfg.Strategy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// === Logging ===
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.ParsedLogLevel()}))
	slog.SetDefault(logger)
	logger.Info("Logger initialized.",
		slog.String("level", cfg.ParsedLogLevel().String()),
		slog.String("strategy", string(chunkStrategy)))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := initOtelProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Dependency Injection ===
	logger.Info("Initializing dependencies.")

	discoverer := localfs.NewDiscoverer(logger)
	grouping := localfs.NewTokenOverlapGrouping(logger)

	generator := wsdl.NewSpecGenerator(wsdl.SpecDefaults{
		Version:     cfg.APIVersion,
		Category:    cfg.Category,
		OwningApp:   cfg.OwningApp,
		SealID:      cfg.SealID,
		Auth:        cfg.Auth,
		Integration: cfg.Integration,
	}, logger)

	specChunker, err := chunker.New(chunkStrategy, chunker.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		MinChunkSize: cfg.MinChunkSize,
		MaxChunks:    cfg.MaxChunks,
	}, logger)
	if err != nil {
		logger.Error("Failed to configure chunker.", slog.Any("error", err))
		os.Exit(1)
	}

	writer := specfile.NewWriter(cfg.OutputDir, logger)

	var exporter usecase.SpecExporter
	if cfg.ExportOpenAPI {
		exporter = openapiexport.New(cfg.OutputDir, logger)
	}
	var sink usecase.DocumentSink
	if cfg.SinkURL != "" {
		sink = vectorsink.New(vectorsink.Config{
			BaseURL: cfg.SinkURL,
			APIKey:  cfg.SinkAPIKey,
			Timeout: cfg.SinkTimeout,
		}, logger)
	}

	ingestUC := usecase.NewIngestGroupUseCase(generator, specChunker, writer, exporter, sink, logger)
	runUC := usecase.NewRunIngestUseCase(discoverer, grouping, ingestUC, cfg.Workers, logger)

	// === Run ===
	report, err := runUC.Execute(ctx, cfg.InputDir)
	if err != nil {
		if errors.Is(err, usecase.ErrInputDirMissing) {
			logger.Error("Input location is missing or unreadable.", slog.Any("error", err))
		} else {
			logger.Error("Run failed.", slog.Any("error", err))
		}
		os.Exit(1)
	}

	printReport(report)
	// A run with zero resolvable groups is a clean, empty result.
	os.Exit(0)
}

// printReport renders the structured run report for the operator.
func printReport(report *usecase.RunReport) {
	fmt.Printf("Files found:      %d\n", report.FilesFound)
	fmt.Printf("Groups processed: %d\n", report.GroupsProcessed)
	fmt.Printf("Groups failed:    %d\n", report.GroupsFailed)
	for _, result := range report.Results {
		if result.Err != nil {
			fmt.Printf("  [FAIL] %s: %v\n", result.Group, result.Err)
			continue
		}
		fmt.Printf("  [OK]   %s: %d chunks -> %s\n", result.Group, result.ChunkCount, result.SpecPath)
		if result.ExportPath != "" {
			fmt.Printf("         openapi -> %s\n", result.ExportPath)
		}
		for _, warning := range result.Warnings {
			fmt.Printf("         warning: %s\n", warning)
		}
	}
	for _, orphan := range report.Orphans {
		fmt.Printf("  [ORPHAN] %s matched no interface file\n", orphan)
	}
}

// initOtelProvider initializes the OpenTelemetry SDK and sets up the OTLP
// trace exporter. It returns a shutdown function to be called on exit.
func initOtelProvider(cfg *configs.Config) (func(context.Context) error, error) {
	ctx := context.Background()

	if cfg.OtelExporterOtlpEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, OpenTelemetry tracing disabled.")
		return func(context.Context) error { return nil }, nil
	}

	slog.Info("Initializing OTLP exporter.", slog.String("endpoint", cfg.OtelExporterOtlpEndpoint))

	grpcOpts := []grpc.DialOption{}
	if cfg.OtelExporterOtlpInsecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		slog.Warn("Using insecure connection for OTLP exporter.")
	}

	conn, err := grpc.NewClient(cfg.OtelExporterOtlpEndpoint, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTLP endpoint: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("soapsift"),
		),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) error {
		providerErr := tp.Shutdown(ctx)
		connErr := conn.Close()
		return errors.Join(providerErr, connErr)
	}, nil
}
