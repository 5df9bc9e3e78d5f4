// Package cli provides the scheduler-analytics command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/obscura-observatory/scheduler-analytics/internal/config"
	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/infra/memstore"
	"github.com/obscura-observatory/scheduler-analytics/internal/infra/sqlite"
	"github.com/obscura-observatory/scheduler-analytics/internal/jobs"
	"github.com/obscura-observatory/scheduler-analytics/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "scheduler-analytics",
	Short: "Schedule analytics and feasibility engine",
	Long: `Ingest astronomical scheduling blocks, derive per-block analytics
(visibility windows, time bins, distributions, validation), and run
feasibility checks that isolate a minimal infeasible subset when a plan
cannot be realized.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config.toml (optional)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (implies relational repository)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config, then applies the
// --db override: naming a database selects the relational repository.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.RepositoryKind = config.RepositoryRelational
		cfg.SQLitePath = db
	}
	return cfg, nil
}

// openRepository selects the backing store per cfg.RepositoryKind. The
// returned closer is a no-op for the in-memory store.
func openRepository(cfg config.Config) (domain.Repository, func() error, error) {
	switch cfg.RepositoryKind {
	case config.RepositoryRelational:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open repository: %w", err)
		}
		return db, db.Close, nil
	default:
		return memstore.New(), func() error { return nil }, nil
	}
}

func newOrchestrator(cfg config.Config) (*service.Orchestrator, func() error, error) {
	repo, closer, err := openRepository(cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.New(repo, jobs.New(), cfg, service.DefaultConfig()), closer, nil
}
