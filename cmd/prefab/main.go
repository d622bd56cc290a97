package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prefab-dev/prefab/internal/sim"
	"github.com/prefab-dev/prefab/pkg/config"
	"github.com/prefab-dev/prefab/pkg/logger"
	"github.com/prefab-dev/prefab/pkg/observability"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "prefab",
		Short: "Prefab - pooled instance lifecycle manager",
		Long: `Prefab manages pools of reusable instances behind a single registry:
blueprints are registered once, instances are acquired and released through
the registry, and a tick-driven world exercises the whole lifecycle.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Prefab v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var validateConfigFile string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(validateConfigFile)
			if err != nil {
				return err
			}
			fmt.Printf("%s: ok (%d pools)\n", validateConfigFile, len(cfg.Pools))
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&validateConfigFile, "config", "c", "", "Path to configuration file (required)")
	_ = validateCmd.MarkFlagRequired("config")
	root.AddCommand(validateCmd)

	var (
		runConfigFile string
		ticks         int
		spawnRate     int
		tickInterval  time.Duration
		seed          int64
		logLevel      string
		statsJSON     bool
	)
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pool-driven simulation world",
		Long: `Run the tick-driven world against the pools declared in the
configuration file. Flags override the corresponding configuration values.

Example:
  prefab run --config prefab.yaml --ticks 1000 --spawn-rate 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(runConfigFile)
			if err != nil {
				return err
			}

			// Flags win over file values when explicitly set.
			if cmd.Flags().Changed("ticks") {
				cfg.Simulation.Ticks = ticks
			}
			if cmd.Flags().Changed("spawn-rate") {
				cfg.Simulation.SpawnRate = spawnRate
			}
			if cmd.Flags().Changed("tick-interval") {
				cfg.Simulation.TickInterval = tickInterval
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.Seed = seed
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Observability.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			return runWorld(cfg, statsJSON)
		},
	}
	runCmd.Flags().StringVarP(&runConfigFile, "config", "c", "", "Path to configuration file (required)")
	_ = runCmd.MarkFlagRequired("config")
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "Number of simulation ticks (0 = until interrupted)")
	runCmd.Flags().IntVar(&spawnRate, "spawn-rate", 0, "Instances acquired per tick")
	runCmd.Flags().DurationVar(&tickInterval, "tick-interval", 0, "Wall-clock delay between ticks (e.g., 16ms)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for reproducible runs (0 = time-based)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&statsJSON, "stats-json", false, "Print final pool statistics as JSON")
	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates a configuration file. Decoding starts from
// the defaults so fields the file omits keep their documented values.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.NewConfig("")
	if err := config.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// runWorld wires logging and tracing, builds the world, and runs it until
// the tick budget is spent or the process is interrupted.
func runWorld(cfg *config.Config, statsJSON bool) error {
	if err := logger.Init(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogEncoding,
	}); err != nil {
		return fmt.Errorf("logger setup failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, logger.SessionIDKey, fmt.Sprintf("run-%d", time.Now().UnixNano()))
	ctx = context.WithValue(ctx, logger.WorldKey, cfg.Name)
	log := logger.WithContext(ctx).With(zap.String("component", "prefab-cli"))

	if cfg.Observability.EnableTracing {
		tc := observability.DefaultConfig()
		tc.ServiceName = cfg.Name
		tc.SamplingRate = cfg.Observability.TracingSampleRate
		if err := observability.Initialize(tc); err != nil {
			return fmt.Errorf("tracing setup failed: %w", err)
		}
	}

	world, err := sim.NewWorld(cfg, log)
	if err != nil {
		return err
	}

	startTime := time.Now()
	if err := world.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("world execution failed: %w", err)
	}

	stats := world.Registry().Stats()
	log.Info("run finished",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int64("total_created", stats.TotalCreated),
		zap.Int64("total_reused", stats.TotalReused),
		zap.Int("in_flight", world.InFlight()))

	if statsJSON {
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode stats: %w", err)
		}
		fmt.Println(string(out))
	}

	world.Drain()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := observability.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}

	return nil
}
