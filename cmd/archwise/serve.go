package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/polisai/archwise/internal/governance"
	"github.com/polisai/archwise/pkg/config"
	"github.com/polisai/archwise/pkg/logging"
	"github.com/polisai/archwise/pkg/recommend"
	"github.com/polisai/archwise/pkg/server"
	"github.com/polisai/archwise/pkg/storage"
	"github.com/polisai/archwise/pkg/telemetry"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	Address        string
	MetricsAddress string
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the wizard HTTP API",
		Long: `Run the wizard HTTP API and the Prometheus metrics endpoint.

When --config is given the file is watched and compliance policy changes are
applied without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, global, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Address, "addr", "", "API listen address (overrides config)")
	cmd.Flags().StringVar(&opts.MetricsAddress, "metrics-addr", "", "Metrics listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, global *globalOptions, opts *serveOptions) error {
	var (
		cfg      *config.Config
		provider *config.FileProvider
		err      error
	)
	if global.ConfigPath != "" {
		provider, err = config.NewFileProvider(global.ConfigPath, slog.Default())
		if err != nil {
			return err
		}
		defer provider.Close()
		snapshot := *provider.Current()
		cfg = &snapshot
	} else {
		cfg, err = config.Load("")
		if err != nil {
			return err
		}
	}
	if global.LogLevel != "" {
		cfg.Logging.Level = global.LogLevel
	}
	if opts.Address != "" {
		cfg.Server.Address = opts.Address
	}
	if opts.MetricsAddress != "" {
		cfg.Server.MetricsAddress = opts.MetricsAddress
	}

	logger := logging.SetupLogger(logging.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	shutdownTelemetry, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Environment: cfg.Telemetry.Environment,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     cfg.Telemetry.Headers,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Error("failed to flush telemetry", "error", err)
		}
	}()

	store := storage.NewMemorySessionStore()
	defer store.Close()
	store.StartCleanup(ctx, cfg.Sessions.CleanupInterval, cfg.Sessions.TTL)

	if cfg.LLM.APIKey == "" {
		logger.Warn("no LLM api key configured; recommendation requests will fail")
	}
	var source recommend.Source = recommend.NewOpenAISource(openAIConfig(cfg.LLM), promptProvider(cfg.LLM), logger)
	if cfg.LLM.Breaker.MaxFailures > 0 {
		source = recommend.NewGuardedSource(source, governance.BreakerConfig{
			MaxFailures: cfg.LLM.Breaker.MaxFailures,
			OpenTimeout: cfg.LLM.Breaker.OpenTimeout,
		}, logger)
	}

	var limiter *governance.RateLimiter
	if rl := cfg.Server.RecommendRateLimit; rl.RequestsPerSecond > 0 {
		limiter = governance.NewRateLimiter(governance.RateLimitConfig{
			RequestsPerSecond: rl.RequestsPerSecond,
			Burst:             rl.Burst,
			TrustForwardedFor: rl.TrustForwardedFor,
		})
	}

	srv, err := server.New(server.Options{
		Store:    store,
		Source:   source,
		Resolver: cfg.Compliance.Resolver(),
		Logger:   logger,
		Limiter:  limiter,
	})
	if err != nil {
		return err
	}
	if provider != nil {
		go srv.WatchConfig(ctx, provider.Subscribe())
	}

	logger.Info("starting archwise",
		"addr", cfg.Server.Address,
		"metrics_addr", cfg.Server.MetricsAddress,
		"model", cfg.LLM.Model,
	)
	if err := srv.Run(ctx, cfg.Server); err != nil {
		return err
	}
	logger.Info("archwise stopped")
	return nil
}

func openAIConfig(c config.LLMConfig) recommend.OpenAIConfig {
	return recommend.OpenAIConfig{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
}

func promptProvider(c config.LLMConfig) recommend.PromptProvider {
	if c.PromptsDir == "" {
		return recommend.DefaultPromptProvider{}
	}
	return recommend.NewLocalPromptProvider(c.PromptsDir)
}
