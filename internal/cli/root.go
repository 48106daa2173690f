// Package cli wires configuration, storage and the scraper into the
// courtfetch commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JustJay7/court-status-fetcher/internal/api"
	"github.com/JustJay7/court-status-fetcher/internal/browser"
	"github.com/JustJay7/court-status-fetcher/internal/config"
	"github.com/JustJay7/court-status-fetcher/internal/scraper"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

// app carries what every command needs once the root has loaded it.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	logLevel   string
	newFetcher func(*config.Config, *logger.Logger) (api.Fetcher, error)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{newFetcher: newScraper})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "courtfetch",
		Short:         "Fetch case status records from the court's public portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}

			log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			a.cfg = cfg
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(a),
		newFetchCmd(a),
		newMigrateCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure. SIGINT and
// SIGTERM cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newScraper builds the rod-backed pipeline from configuration.
func newScraper(cfg *config.Config, log *logger.Logger) (api.Fetcher, error) {
	layout, err := scraper.LoadLayout(cfg.SiteLayoutFile)
	if err != nil {
		return nil, err
	}
	launcher := browser.NewRodLauncher(cfg.UserAgent, cfg.BrowserPath, log)
	return scraper.NewScraper(cfg, layout, launcher, log), nil
}
