package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/formation-kit/internal/config"
	"github.com/jonathan/formation-kit/internal/db"
	"github.com/jonathan/formation-kit/internal/llm"
	"github.com/jonathan/formation-kit/internal/observability"
	"github.com/jonathan/formation-kit/internal/pipeline"
	"github.com/jonathan/formation-kit/internal/server"
	"github.com/jonathan/formation-kit/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the document catalog, generation, download and equity endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	l, _, err := observability.NewLogger(level)
	if err != nil {
		return err
	}
	logger = l

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	orchestrator := pipeline.New(client, database, database, pipeline.Options{
		Logger:           logger,
		Metrics:          metrics,
		BatchConcurrency: cfg.MaxConcurrentGenerations,
	})

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      ratelimit.LoadConfig(),
	}, server.Deps{
		Orchestrator: orchestrator,
		Store:        database,
		JWT:          server.NewJWTService(jwtCfg),
		Logger:       logger,
		Metrics:      metrics,
		Gatherer:     registry,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.Int("max_concurrent_generations", cfg.MaxConcurrentGenerations),
		zap.String("model_advanced", client.GetModel(llm.TierAdvanced)),
	)
	return srv.Start(ctx)
}
