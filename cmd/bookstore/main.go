package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookstore/internal/config"
	logpkg "github.com/kailas-cloud/bookstore/internal/logger"
	"github.com/kailas-cloud/bookstore/internal/metrics"
)

// app is the state shared by subcommands once the root command has run.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "bookstore",
		Short:         "Query catalog over the books collection",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&a.env, "env", "", "config environment (default: $ENV or local)")

	cmd.AddCommand(runCmd(a), seedCmd(a), serveCmd(a), versionCmd())
	return cmd
}

// init loads .env, the config file for the environment and the logger.
func (a *app) init(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if a.env == "" {
		a.env = config.GetEnv()
	}
	cfg, err := config.Load(a.env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logger, err := logpkg.NewLogger(a.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger

	// Register query metrics explicitly (no init())
	metrics.RegisterQueryMetrics()
	return nil
}
