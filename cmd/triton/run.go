package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"automata-hq/triton/pkg/audit"
	"automata-hq/triton/pkg/audit/retention"
	auditstorage "automata-hq/triton/pkg/audit/storage"
	"automata-hq/triton/pkg/cli"
	"automata-hq/triton/pkg/config"
	"automata-hq/triton/pkg/engine"
	"automata-hq/triton/pkg/enrich"
	"automata-hq/triton/pkg/entity"
	entitystorage "automata-hq/triton/pkg/entity/storage"
	"automata-hq/triton/pkg/notify"
	"automata-hq/triton/pkg/rules/store"
	"automata-hq/triton/pkg/server"
	"automata-hq/triton/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Triton rule engine server",
	Long: `Start the Triton server with the specified configuration.

The server listens for trigger events on the configured address, evaluates
every active rule against each event, dispatches matched actions, and records
every dispatch attempt in the execution history.

Examples:
  # Start with default config
  triton run

  # Start with custom config
  triton run --config /etc/triton/config.yaml

  # Override listen address
  triton run --listen 0.0.0.0:8085

  # Validate config without starting the server
  triton run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	setupLogging(&cfg.Telemetry.Logging)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Triton v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, stop := cli.SignalContext()
	defer stop()

	// Rule store
	ruleStore, err := buildRuleStore(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer ruleStore.Close()
	fmt.Println("✓ Rule store initialized")

	// Derived-record store
	entities, err := buildEntityStore(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer entities.Close()
	fmt.Println("✓ Entity store initialized")

	// Execution history
	auditStorage, err := buildAuditStorage(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer auditStorage.Close()

	auditLogger := audit.NewLogger(auditStorage, &audit.Config{
		AsyncBuffer: cfg.Audit.AsyncBuffer,
	})
	defer auditLogger.Close()

	if cfg.Audit.Retention.PruneSchedule != "" {
		pruner := retention.NewPruner(auditStorage, &retention.Config{
			RetentionDays: cfg.Audit.Retention.Days,
			PruneSchedule: cfg.Audit.Retention.PruneSchedule,
			MaxRecords:    cfg.Audit.Retention.MaxRecords,
		})
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				slog.Debug("audit retention scheduler started", "next_pruning", next)
			}
		}
	}
	fmt.Println("✓ Execution history initialized")

	// Metrics
	var engineMetrics *metrics.EngineMetrics
	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		collector := metrics.NewCollector(metrics.DefaultConfig())
		engineMetrics = collector.Engine
		metricsHandler = collector.Handler()
	}

	// Enrichment
	enricher, err := buildEnricher(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer enricher.Close()

	// Notifications
	broadcaster := notify.NewBroadcaster(cfg.Notify.Buffer)
	defer broadcaster.Close()
	publisher := notify.Multi{notify.NewLogPublisher(), broadcaster}

	// Engine
	engineConfig := &engine.Config{
		EnrichmentTimeout:    cfg.Engine.EnrichmentTimeout,
		DefaultCurrency:      cfg.Engine.DefaultCurrency,
		DefaultEventDuration: cfg.Engine.DefaultEventDuration,
	}
	dispatcher := engine.NewDispatcher(engineConfig, entities, enricher, publisher, nil, engineMetrics)
	eng := engine.New(ruleStore, entities, dispatcher, auditLogger, engineMetrics)

	srv := server.NewServer(&cfg.Server, eng, metricsHandler)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Event endpoint: http://%s/v1/events\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// setupLogging installs the process-wide slog default from config.
func setupLogging(cfg *config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// buildRuleStore constructs the rule store for the configured backend. For
// the file backend the rules are loaded into a memory store and, when
// watching is enabled, replaced wholesale on every file change.
func buildRuleStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Rules.Backend {
	case "file":
		memStore := store.NewMemoryStore()
		source := store.NewFileSource(cfg.Rules.Path, slog.Default())

		reload := func() error {
			contents, err := source.Load(ctx)
			if err != nil {
				return err
			}
			if err := memStore.ReplaceAll(ctx, contents.Rules); err != nil {
				return err
			}
			for instanceID, owner := range contents.Owners {
				if err := memStore.SetInstanceOwner(ctx, instanceID, owner); err != nil {
					return err
				}
			}
			return nil
		}
		if err := reload(); err != nil {
			return nil, fmt.Errorf("failed to load rules from %q: %w", cfg.Rules.Path, err)
		}

		if cfg.Rules.Watch {
			watcherConfig := store.DefaultWatcherConfig(cfg.Rules.Path)
			if cfg.Rules.WatchDebounce > 0 {
				watcherConfig.DebounceInterval = cfg.Rules.WatchDebounce
			}
			watcher, err := store.NewWatcher(watcherConfig, slog.Default())
			if err != nil {
				return nil, err
			}
			go func() {
				if err := watcher.Watch(ctx, reload); err != nil {
					slog.Error("rule file watcher stopped", "error", err)
				}
			}()
		}
		return memStore, nil

	case "sqlite":
		sqliteConfig := store.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Rules.Path
		return store.NewSQLiteStore(sqliteConfig)

	case "memory":
		return store.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported rules backend: %s", cfg.Rules.Backend)
	}
}

// buildEntityStore constructs derived-record storage.
func buildEntityStore(cfg *config.Config) (entity.Store, error) {
	switch cfg.Entities.Backend {
	case "sqlite":
		sqliteConfig := entitystorage.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Entities.Path
		return entitystorage.NewSQLiteStore(sqliteConfig)
	case "memory":
		return entitystorage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported entities backend: %s", cfg.Entities.Backend)
	}
}

// buildAuditStorage constructs execution record storage.
func buildAuditStorage(cfg *config.Config) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		return auditstorage.NewSQLiteStorage(auditstorage.DefaultSQLiteConfig(cfg.Audit.Path))
	case "memory":
		return auditstorage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
	}
}

// buildEnricher constructs the enrichment client, or a noop when no service
// is configured.
func buildEnricher(cfg *config.Config) (enrich.Service, error) {
	if cfg.Enrichment.BaseURL == "" {
		slog.Info("enrichment disabled, actions fall back to template defaults")
		return enrich.NoopService{}, nil
	}
	return enrich.NewHTTPService(&enrich.HTTPConfig{
		BaseURL:    cfg.Enrichment.BaseURL,
		APIKey:     cfg.Enrichment.APIKey,
		Timeout:    cfg.Enrichment.Timeout,
		MaxRetries: cfg.Enrichment.MaxRetries,
	})
}
