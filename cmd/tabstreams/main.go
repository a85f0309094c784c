// Package main implements the entry point for the TabStreams service.
// TabStreams consumes rejected tab-separated records from NATS, runs an
// operator-supplied repair script against each one, and republishes
// repaired records for revalidation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/tabstreams/component"
	"github.com/c360/tabstreams/config"
	"github.com/c360/tabstreams/metric"
	"github.com/c360/tabstreams/natsclient"
	"github.com/c360/tabstreams/processor/tsvrepair"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "tabstreams"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx := context.Background()

	natsClient, metricsRegistry, err := setupInfrastructure(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = natsClient.Close(ctx) }()

	metricsServer := startMetricsServer(cfg, metricsRegistry)
	if metricsServer != nil {
		defer func() { _ = metricsServer.Stop() }()
	}

	registry := component.NewRegistry()
	if err := registerFactories(registry); err != nil {
		return fmt.Errorf("register components: %w", err)
	}

	deps := component.Dependencies{
		NATSClient:      natsClient,
		MetricsRegistry: metricsRegistry,
		Logger:          slog.Default(),
	}

	components, err := createComponents(cfg, registry, deps)
	if err != nil {
		return err
	}

	metricsRegistry.CoreMetrics().ServiceStatus.WithLabelValues(cfg.ServiceID).Set(1)

	return runWithSignalHandling(ctx, components, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting TabStreams (tab-separated record repair)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, false, nil
}

// loadConfig loads and validates configuration from the specified file
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupInfrastructure creates the NATS client and metrics registry and
// establishes the connection.
func setupInfrastructure(
	ctx context.Context, cfg *config.Config,
) (*natsclient.Client, *metric.MetricsRegistry, error) {
	metricsRegistry := metric.NewMetricsRegistry()
	core := metricsRegistry.CoreMetrics()

	opts := []natsclient.ClientOption{
		natsclient.WithName(cfg.ServiceID),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait),
		natsclient.WithDisconnectCallback(func(error) {
			core.NATSConnected.Set(0)
		}),
		natsclient.WithReconnectCallback(func() {
			core.NATSConnected.Set(1)
			core.NATSReconnects.Inc()
		}),
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}

	natsClient, err := natsclient.NewClient(cfg.NATS.URLs[0], opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS client: %w", err)
	}

	slog.Info("Connecting to NATS", "url", cfg.NATS.URLs[0])
	if err := natsClient.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := natsClient.WaitForConnection(connCtx); err != nil {
		return nil, nil, fmt.Errorf("NATS connection timeout: %w", err)
	}
	core.NATSConnected.Set(1)

	return natsClient, metricsRegistry, nil
}

// startMetricsServer starts the metrics HTTP endpoint when enabled.
func startMetricsServer(cfg *config.Config, registry *metric.MetricsRegistry) *metric.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	go func() {
		slog.Info("Metrics server listening", "address", server.Address())
		if err := server.Start(); err != nil {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}

// registerFactories registers all component factories with the registry
func registerFactories(registry *component.Registry) error {
	if err := tsvrepair.Register(registry); err != nil {
		return err
	}

	factories := registry.ListFactories()
	slog.Info("Component factories registered", "count", len(factories), "factories", factories)
	return nil
}

// createComponents instantiates every enabled component from config.
func createComponents(
	cfg *config.Config, registry *component.Registry, deps component.Dependencies,
) ([]component.LifecycleComponent, error) {
	var components []component.LifecycleComponent

	for instanceName, cc := range cfg.Components {
		if !cc.Enabled {
			slog.Info("Component disabled in config", "instance", instanceName)
			continue
		}

		instance, err := registry.CreateComponent(instanceName, cc.Type, cc.Config, deps)
		if err != nil {
			return nil, fmt.Errorf("create component %s: %w", instanceName, err)
		}

		lc, ok := component.AsLifecycleComponent(instance)
		if !ok {
			return nil, fmt.Errorf("component %s does not implement lifecycle", instanceName)
		}

		if err := lc.Initialize(); err != nil {
			return nil, fmt.Errorf("initialize component %s: %w", instanceName, err)
		}

		slog.Info("Created component", "instance", instanceName, "type", cc.Type)
		components = append(components, lc)
	}

	if len(components) == 0 {
		return nil, fmt.Errorf("no enabled components configured")
	}

	return components, nil
}

// runWithSignalHandling starts components and handles shutdown signals
func runWithSignalHandling(
	ctx context.Context, components []component.LifecycleComponent, shutdownTimeout time.Duration,
) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	for _, lc := range components {
		if err := lc.Start(signalCtx); err != nil {
			return fmt.Errorf("start component %s: %w", lc.Meta().Name, err)
		}
	}

	slog.Info("TabStreams started", "components", len(components))

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	// Stop in reverse order
	var stopErr error
	for i := len(components) - 1; i >= 0; i-- {
		lc := components[i]
		if err := lc.Stop(shutdownTimeout); err != nil {
			slog.Error("Error stopping component", "component", lc.Meta().Name, "error", err)
			stopErr = err
		}
	}
	if stopErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", stopErr)
	}

	slog.Info("TabStreams shutdown complete")
	return nil
}
