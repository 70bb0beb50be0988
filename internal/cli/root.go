// Package cli provides the command-line interface for docpipe.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/docpipe/internal/config"
	"github.com/raphaelgruber/docpipe/internal/db"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configPath string

	// Global config, logger and store
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	store      db.Store
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "docpipe",
	Short: "Document summarization and keyword pipeline",
	Long: `docpipe ingests PDF, DOCX and plain text documents, extracts their text,
builds a length-aware extractive summary and a ranked keyword list, and stores
the result as queryable metadata.

The metadata store is MongoDB by default. Set DOCPIPE_STORE=surreal or
DOCPIPE_STORE=memory to use SurrealDB or an in-process store.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		path := configPath
		if path == "" {
			path = os.Getenv("DOCPIPE_CONFIG")
		}
		var err error
		cfg, err = config.LoadFile(path)
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "DEBUG"
		}

		jobLog := config.SetupLogger(cfg)
		logger, logCleanup = jobLog.Logger, jobLog.Close
		slog.SetDefault(logger)

		store, err = db.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("open %s store: %w", cfg.Store, err)
		}
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $DOCPIPE_CONFIG)")

	// Add subcommands
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(updateCmd)

	// Close the store before the log file so shutdown messages are kept.
	cobra.OnFinalize(func() {
		if store != nil {
			if err := store.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
			store = nil
		}
		if logCleanup != nil {
			_ = logCleanup()
			logCleanup = nil
		}
	})
}
